package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"retailorders/internal/events"
	"retailorders/internal/imageprocessor"
	"retailorders/internal/logger"
	"retailorders/internal/repositories"

	"github.com/google/uuid"
)

var avatarExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// AvatarService stores user avatars under the media directory and keeps
// their thumbnails up to date.
type AvatarService struct {
	userRepo  repositories.UserRepository
	publisher events.Publisher
	processor *imageprocessor.Processor
	mediaDir  string
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(userRepo repositories.UserRepository, publisher events.Publisher,
	processor *imageprocessor.Processor, mediaDir string) *AvatarService {
	return &AvatarService{
		userRepo:  userRepo,
		publisher: publisher,
		processor: processor,
		mediaDir:  mediaDir,
	}
}

// Upload saves a new avatar for the user and emits user.avatar_updated.
// It returns the path relative to the media directory.
func (s *AvatarService) Upload(ctx context.Context, userID uint, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExtensions[ext] {
		return "", NewValidationError("file",
			"Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением.")
	}

	rel := filepath.ToSlash(filepath.Join("avatars", uuid.NewString()+ext))
	dst := filepath.Join(s.mediaDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar": rel}); err != nil {
		os.Remove(dst)
		return "", err
	}

	emit(ctx, s.publisher, events.AvatarUpdated, events.AvatarPayload{UserID: userID, Path: rel})
	return rel, nil
}

// ProcessAvatar builds the thumbnail for an uploaded avatar. Events for an
// avatar the user has since replaced are ignored.
func (s *AvatarService) ProcessAvatar(ctx context.Context, p events.AvatarPayload) error {
	user, err := s.userRepo.GetByID(p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("avatar owner no longer exists", "user_id", p.UserID)
			return nil
		}
		return err
	}
	if user.Avatar != p.Path {
		logger.Debug("skipping stale avatar", "user_id", p.UserID, "path", p.Path)
		return nil
	}

	base := strings.TrimSuffix(p.Path, filepath.Ext(p.Path))
	thumbBase := filepath.Join(s.mediaDir, "avatars", "thumbs", filepath.Base(base))
	thumb, err := s.processor.ThumbnailFile(filepath.Join(s.mediaDir, filepath.FromSlash(p.Path)), thumbBase, imageprocessor.ThumbnailSize)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(s.mediaDir, thumb)
	if err != nil {
		return fmt.Errorf("failed to resolve thumbnail path: %w", err)
	}
	return s.userRepo.UpdateFields(p.UserID, map[string]interface{}{"avatar_thumbnail": filepath.ToSlash(rel)})
}
