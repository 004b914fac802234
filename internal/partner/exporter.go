package partner

import (
	"fmt"
	"os"
	"path/filepath"

	"retailorders/internal/models"

	"github.com/pkg/errors"
)

// BuildFeed converts a shop's stored catalog back into the feed format.
// infos must have Product and ProductParameters.Parameter loaded.
func BuildFeed(shop *models.Shop, categories []models.Category, infos []models.ProductInfo) *Feed {
	feed := &Feed{
		Shop:       shop.Name,
		Categories: make([]FeedCategory, 0, len(categories)),
		Goods:      make([]FeedGood, 0, len(infos)),
	}
	for _, c := range categories {
		feed.Categories = append(feed.Categories, FeedCategory{ID: c.ID, Name: c.Name})
	}
	for _, info := range infos {
		good := FeedGood{
			ID:         info.ExternalID,
			Model:      info.Model,
			Price:      info.Price,
			PriceRRC:   info.PriceRRC,
			Quantity:   info.Quantity,
			Parameters: make(map[string]string, len(info.ProductParameters)),
		}
		if info.Product != nil {
			good.Name = info.Product.Name
			good.Category = info.Product.CategoryID
		}
		for _, pp := range info.ProductParameters {
			if pp.Parameter != nil {
				good.Parameters[pp.Parameter.Name] = pp.Value
			}
		}
		feed.Goods = append(feed.Goods, good)
	}
	return feed
}

// ExportPath is where the export of shopID is written inside dir.
func ExportPath(dir string, shopID uint) string {
	return filepath.Join(dir, fmt.Sprintf("shop_%d.yaml", shopID))
}

// WriteExport stores feed as the current export of shopID. The file is
// replaced atomically so readers never see a partial document.
func WriteExport(dir string, shopID uint, feed *Feed) (string, error) {
	data, err := feed.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create export dir %s", dir)
	}

	path := ExportPath(dir, shopID)
	tmp, err := os.CreateTemp(dir, "export-*.yaml")
	if err != nil {
		return "", errors.Wrap(err, "create temp export file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "write export")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "close export")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "move export to %s", path)
	}
	return path, nil
}
