package repositories

import (
	"retailorders/internal/models"
	"retailorders/internal/partner"
)

// ProductFilter narrows a product search. Nil fields are not applied.
type ProductFilter struct {
	ShopID     *uint
	CategoryID *uint
}

// CatalogRepository defines data access for shops, categories and products.
type CatalogRepository interface {
	ListActiveShops() ([]models.Shop, error)
	ListCategories() ([]models.Category, error)
	SearchProductInfos(filter ProductFilter) ([]models.ProductInfo, error)
	ProductInfoExists(id uint) (bool, error)

	GetShopByUserID(userID uint) (*models.Shop, error)
	SetShopState(userID uint, state bool) (int64, error)

	ImportFeed(userID uint, feed *partner.Feed) (*models.Shop, error)
	ListShopCatalog(shopID uint) ([]models.Category, []models.ProductInfo, error)
}
