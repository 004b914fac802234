package imageprocessor

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailSize is the bounding box of avatar thumbnails.
const ThumbnailSize = 150

// Processor creates scaled copies of uploaded images.
type Processor struct {
	quality int
}

// NewProcessor creates a Processor writing JPEG at the given quality.
func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Thumbnail decodes r, scales it to fit into a size x size box keeping the
// aspect ratio and writes it to w. JPEG sources stay JPEG, everything else
// becomes PNG. It returns the file extension of the written format.
func (p *Processor) Thumbnail(r io.Reader, w io.Writer, size int) (string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	scaled := fit(img, size, size)
	if format == "jpeg" {
		if err := jpeg.Encode(w, scaled, &jpeg.Options{Quality: p.quality}); err != nil {
			return "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
		return ".jpg", nil
	}
	if err := png.Encode(w, scaled); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return ".png", nil
}

// ThumbnailFile writes a thumbnail of src next to dstBase, adding the
// extension of the chosen format, and returns the full path.
func (p *Processor) ThumbnailFile(src, dstBase string, size int) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dstBase), 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dstBase), "thumb-*")
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer os.Remove(tmp.Name())

	ext, err := p.Thumbnail(in, tmp, size)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	dst := dstBase + ext
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to store thumbnail %s: %w", dst, err)
	}
	return dst, nil
}

// fit scales img down into maxW x maxH. Images already inside the box are
// copied unchanged.
func fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	nw, nh := maxW, maxH
	if w*maxH > h*maxW {
		nh = max(1, h*maxW/w)
	} else {
		nw = max(1, w*maxH/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
