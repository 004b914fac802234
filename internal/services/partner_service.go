package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"retailorders/internal/events"
	"retailorders/internal/logger"
	"retailorders/internal/partner"
	"retailorders/internal/repositories"
	"retailorders/internal/validation"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidURL rejects a feed URL that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid feed url")
	// ErrFeedUnavailable wraps any fetch failure other than a missing feed.
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// FeedFetcher downloads a partner feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PartnerService runs catalog import and export for shop users.
type PartnerService struct {
	catalogRepo repositories.CatalogRepository
	fetcher     FeedFetcher
	publisher   events.Publisher
	validate    *validator.Validate
	exportDir   string
}

// NewPartnerService creates a new PartnerService.
func NewPartnerService(catalogRepo repositories.CatalogRepository, fetcher FeedFetcher,
	publisher events.Publisher, validate *validator.Validate, exportDir string) *PartnerService {
	return &PartnerService{
		catalogRepo: catalogRepo,
		fetcher:     fetcher,
		publisher:   publisher,
		validate:    validate,
		exportDir:   exportDir,
	}
}

// RequestImport fetches and validates the feed at rawURL and queues it for
// import. partner.ErrFeedNotFound is returned as is, other fetch errors
// wrap ErrFeedUnavailable.
func (s *PartnerService) RequestImport(ctx context.Context, userID uint, rawURL string) error {
	if rawURL == "" {
		return ErrMissingArguments
	}
	if err := s.validate.Var(rawURL, "required,url"); err != nil {
		return ErrInvalidURL
	}
	if u, err := url.Parse(rawURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, partner.ErrFeedNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	feed, err := partner.ParseFeed(body)
	if err != nil {
		return NewValidationError("non_field_errors", err.Error())
	}
	if err := feed.Validate(s.validate); err != nil {
		return &ValidationError{Fields: validation.FieldErrors(err)}
	}

	raw, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	payload := events.PartnerImportPayload{UserID: userID, URL: rawURL, Feed: raw}
	if err := s.publisher.Publish(ctx, events.PartnerImport, payload); err != nil {
		return fmt.Errorf("failed to queue import: %w", err)
	}
	return nil
}

// ApplyImport writes a queued feed into the catalog.
func (s *PartnerService) ApplyImport(ctx context.Context, p events.PartnerImportPayload) error {
	var feed partner.Feed
	if err := json.Unmarshal(p.Feed, &feed); err != nil {
		return fmt.Errorf("failed to decode queued feed: %w", err)
	}
	shop, err := s.catalogRepo.ImportFeed(p.UserID, &feed)
	if err != nil {
		return err
	}
	logger.Info("partner feed imported", "user_id", p.UserID, "shop_id", shop.ID, "goods", len(feed.Goods))
	return nil
}

// RequestExport queues an export of the user's catalog.
func (s *PartnerService) RequestExport(ctx context.Context, userID uint) error {
	if err := s.publisher.Publish(ctx, events.PartnerExport, events.PartnerExportPayload{UserID: userID}); err != nil {
		return fmt.Errorf("failed to queue export: %w", err)
	}
	return nil
}

// RunExport writes the user's shop catalog to the export directory and
// returns the file path.
func (s *PartnerService) RunExport(ctx context.Context, p events.PartnerExportPayload) (string, error) {
	shop, err := s.catalogRepo.GetShopByUserID(p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("export requested for user without shop", "user_id", p.UserID)
			return "", nil
		}
		return "", err
	}
	categories, infos, err := s.catalogRepo.ListShopCatalog(shop.ID)
	if err != nil {
		return "", err
	}

	path, err := partner.WriteExport(s.exportDir, shop.ID, partner.BuildFeed(shop, categories, infos))
	if err != nil {
		return "", err
	}
	logger.Info("partner catalog exported", "user_id", p.UserID, "shop_id", shop.ID, "path", path)
	return path, nil
}

// ExportFile returns the path of the user's last export.
func (s *PartnerService) ExportFile(userID uint) (string, error) {
	shop, err := s.catalogRepo.GetShopByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	path := partner.ExportPath(s.exportDir, shop.ID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return path, nil
}
