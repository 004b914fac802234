package services

import (
	"context"
	"errors"

	"retailorders/internal/models"
	"retailorders/internal/repositories"
)

// CatalogService serves catalog browsing and shop status.
type CatalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// Shops returns the shops currently accepting orders.
func (s *CatalogService) Shops() ([]models.Shop, error) {
	return s.repo.ListActiveShops()
}

// Categories returns all categories.
func (s *CatalogService) Categories() ([]models.Category, error) {
	return s.repo.ListCategories()
}

// Products searches offers of active shops. Both filters are optional
// numeric strings.
func (s *CatalogService) Products(shopID, categoryID string) ([]models.ProductInfo, error) {
	shop, err := parseOptionalID(shopID)
	if err != nil {
		return nil, err
	}
	category, err := parseOptionalID(categoryID)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchProductInfos(repositories.ProductFilter{ShopID: shop, CategoryID: category})
}

// ShopState returns the shop owned by the user.
func (s *CatalogService) ShopState(userID uint) (*models.Shop, error) {
	shop, err := s.repo.GetShopByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return shop, nil
}

// SetShopState opens or closes the user's shop for orders.
func (s *CatalogService) SetShopState(ctx context.Context, userID uint, state string) error {
	if state == "" {
		return ErrMissingArguments
	}
	open, err := parseTruth(state)
	if err != nil {
		return err
	}
	_, err = s.repo.SetShopState(userID, open)
	return err
}
