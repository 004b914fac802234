package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"retailorders/internal/events"
	"retailorders/internal/models"
	"retailorders/internal/partner"
	"retailorders/internal/services"
	"retailorders/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const feedYAML = `
shop: Связной
categories:
  - id: 224
    name: Смартфоны
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Смартфон Apple iPhone XS Max 512GB (золотистый)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Диагональ (дюйм)": 6.5
`

const feedURL = "https://example.com/shop1.yaml"

func TestPartnerService_RequestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("bad url", func(t *testing.T) {
		svc := services.NewPartnerService(new(MockCatalogRepository), new(MockFetcher), new(MockPublisher), validation.New(), t.TempDir())
		assert.ErrorIs(t, svc.RequestImport(ctx, 1, "not a url"), services.ErrInvalidURL)
		assert.ErrorIs(t, svc.RequestImport(ctx, 1, "ftp://example.com/feed.yaml"), services.ErrInvalidURL)
		assert.ErrorIs(t, svc.RequestImport(ctx, 1, ""), services.ErrMissingArguments)
	})

	t.Run("feed not found", func(t *testing.T) {
		fetcher := new(MockFetcher)
		svc := services.NewPartnerService(new(MockCatalogRepository), fetcher, new(MockPublisher), validation.New(), t.TempDir())
		fetcher.On("Fetch", feedURL).Return(nil, partner.ErrFeedNotFound).Once()

		assert.ErrorIs(t, svc.RequestImport(ctx, 1, feedURL), partner.ErrFeedNotFound)
	})

	t.Run("feed host down", func(t *testing.T) {
		fetcher := new(MockFetcher)
		svc := services.NewPartnerService(new(MockCatalogRepository), fetcher, new(MockPublisher), validation.New(), t.TempDir())
		fetcher.On("Fetch", feedURL).Return(nil, errors.New("connection refused")).Once()

		err := svc.RequestImport(ctx, 1, feedURL)
		assert.ErrorIs(t, err, services.ErrFeedUnavailable)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("invalid feed", func(t *testing.T) {
		fetcher := new(MockFetcher)
		svc := services.NewPartnerService(new(MockCatalogRepository), fetcher, new(MockPublisher), validation.New(), t.TempDir())
		fetcher.On("Fetch", feedURL).Return([]byte("goods:\n  - id: 1\n"), nil).Once()

		err := svc.RequestImport(ctx, 1, feedURL)
		var verr *services.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "shop")
	})

	t.Run("queued", func(t *testing.T) {
		fetcher := new(MockFetcher)
		pub := new(MockPublisher)
		svc := services.NewPartnerService(new(MockCatalogRepository), fetcher, pub, validation.New(), t.TempDir())
		fetcher.On("Fetch", feedURL).Return([]byte(feedYAML), nil).Once()

		var queued events.PartnerImportPayload
		pub.On("Publish", events.PartnerImport, mock.AnythingOfType("events.PartnerImportPayload")).
			Run(func(args mock.Arguments) { queued = args.Get(1).(events.PartnerImportPayload) }).
			Return(nil).Once()

		require.NoError(t, svc.RequestImport(ctx, 7, feedURL))
		assert.Equal(t, uint(7), queued.UserID)

		var feed partner.Feed
		require.NoError(t, json.Unmarshal(queued.Feed, &feed))
		assert.Equal(t, "Связной", feed.Shop)
		assert.Equal(t, "6.5", feed.Goods[0].Parameters["Диагональ (дюйм)"])
	})
}

func TestPartnerService_ApplyImport(t *testing.T) {
	repo := new(MockCatalogRepository)
	svc := services.NewPartnerService(repo, new(MockFetcher), new(MockPublisher), validation.New(), t.TempDir())

	raw, err := json.Marshal(partner.Feed{Shop: "Связной"})
	require.NoError(t, err)
	repo.On("ImportFeed", uint(7), mock.MatchedBy(func(f *partner.Feed) bool { return f.Shop == "Связной" })).
		Return(&models.Shop{ID: 2, Name: "Связной"}, nil).Once()

	require.NoError(t, svc.ApplyImport(context.Background(), events.PartnerImportPayload{UserID: 7, Feed: raw}))
	repo.AssertExpectations(t)
}

func TestPartnerService_Export(t *testing.T) {
	dir := t.TempDir()
	repo := new(MockCatalogRepository)
	pub := new(MockPublisher)
	svc := services.NewPartnerService(repo, new(MockFetcher), pub, validation.New(), dir)
	ctx := context.Background()

	pub.On("Publish", events.PartnerExport, events.PartnerExportPayload{UserID: 7}).Return(nil).Once()
	require.NoError(t, svc.RequestExport(ctx, 7))

	shop := &models.Shop{ID: 2, Name: "Связной"}
	repo.On("GetShopByUserID", uint(7)).Return(shop, nil)
	repo.On("ListShopCatalog", uint(2)).Return(
		[]models.Category{{ID: 224, Name: "Смартфоны"}},
		[]models.ProductInfo{{ExternalID: 1, Price: 10, Product: &models.Product{Name: "Чехол", CategoryID: 224}}},
		nil).Once()

	_, err := svc.ExportFile(7)
	assert.ErrorIs(t, err, services.ErrNotFound)

	path, err := svc.RunExport(ctx, events.PartnerExportPayload{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shop_2.yaml"), path)

	got, err := svc.ExportFile(7)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Чехол")
	pub.AssertExpectations(t)
}
