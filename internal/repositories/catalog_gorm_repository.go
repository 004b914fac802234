package repositories

import (
	"errors"
	"fmt"

	"retailorders/internal/models"
	"retailorders/internal/partner"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{
		db: db,
	}
}

// ListActiveShops returns shops that currently accept orders.
func (r *GORMCatalogRepository) ListActiveShops() ([]models.Shop, error) {
	shops := []models.Shop{}
	if err := r.db.Where("state = ?", true).Order("id").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

// ListCategories returns every category.
func (r *GORMCatalogRepository) ListCategories() ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// SearchProductInfos returns offers of active shops, one row per offer, with
// shop, product, category and parameters loaded.
func (r *GORMCatalogRepository) SearchProductInfos(filter ProductFilter) ([]models.ProductInfo, error) {
	q := r.db.Model(&models.ProductInfo{}).
		Select("product_infos.*").
		Joins("JOIN shops ON shops.id = product_infos.shop_id AND shops.state = ?", true)
	if filter.ShopID != nil {
		q = q.Where("product_infos.shop_id = ?", *filter.ShopID)
	}
	if filter.CategoryID != nil {
		q = q.Joins("JOIN products ON products.id = product_infos.product_id").
			Where("products.category_id = ?", *filter.CategoryID)
	}

	infos := []models.ProductInfo{}
	err := q.Preload("Shop").
		Preload("Product.Category").
		Preload("ProductParameters.Parameter").
		Order("product_infos.id").
		Find(&infos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return infos, nil
}

// ProductInfoExists reports whether an offer with id exists.
func (r *GORMCatalogRepository) ProductInfoExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ProductInfo{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product info %d: %w", id, err)
	}
	return count > 0, nil
}

// GetShopByUserID returns the shop owned by a user.
func (r *GORMCatalogRepository) GetShopByUserID(userID uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.Where("user_id = ?", userID).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop of user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shop of user %d: %w", userID, err)
	}
	return &shop, nil
}

// SetShopState switches order acceptance for the user's shop.
func (r *GORMCatalogRepository) SetShopState(userID uint, state bool) (int64, error) {
	res := r.db.Model(&models.Shop{}).Where("user_id = ?", userID).Update("state", state)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update state of shop of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// ImportFeed applies a partner feed in a single transaction. Running it
// twice with the same feed leaves the catalog unchanged.
func (r *GORMCatalogRepository) ImportFeed(userID uint, feed *partner.Feed) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.Transaction(func(tx *gorm.DB) error {
		s, err := bindShop(tx, userID, feed.Shop)
		if err != nil {
			return err
		}
		shop = *s

		for _, c := range feed.Categories {
			category := models.Category{ID: c.ID, Name: c.Name}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name"}),
			}).Create(&category).Error
			if err != nil {
				return fmt.Errorf("failed to upsert category %d: %w", c.ID, err)
			}
			if err := tx.Model(&category).Association("Shops").Append(&shop); err != nil {
				return fmt.Errorf("failed to link category %d to shop: %w", c.ID, err)
			}
		}

		parameters := make(map[string]uint)
		kept := make([]uint, 0, len(feed.Goods))
		for _, good := range feed.Goods {
			info, err := upsertGood(tx, shop.ID, good, parameters)
			if err != nil {
				return err
			}
			kept = append(kept, info)
		}

		stale := tx.Model(&models.ProductInfo{}).Where("shop_id = ?", shop.ID)
		if len(kept) > 0 {
			stale = stale.Where("id NOT IN ?", kept)
		}
		if err := stale.Update("quantity", 0).Error; err != nil {
			return fmt.Errorf("failed to reset stock of removed goods: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// bindShop finds or creates the shop for userID and gives it name.
func bindShop(tx *gorm.DB, userID uint, name string) (*models.Shop, error) {
	var shop models.Shop
	err := tx.Where("user_id = ?", userID).First(&shop).Error
	switch {
	case err == nil:
		if shop.Name != name {
			if err := tx.Model(&shop).Update("name", name).Error; err != nil {
				return nil, fmt.Errorf("failed to rename shop %d: %w", shop.ID, err)
			}
		}
		return &shop, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to get shop of user %d: %w", userID, err)
	}

	err = tx.Where("name = ?", name).First(&shop).Error
	switch {
	case err == nil:
		if shop.UserID != nil && *shop.UserID != userID {
			return nil, fmt.Errorf("shop %q belongs to another user", name)
		}
		if err := tx.Model(&shop).Update("user_id", userID).Error; err != nil {
			return nil, fmt.Errorf("failed to bind shop %d: %w", shop.ID, err)
		}
		shop.UserID = &userID
		return &shop, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to get shop %q: %w", name, err)
	}

	shop = models.Shop{Name: name, UserID: &userID, State: true}
	if err := tx.Create(&shop).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop %q: %w", name, err)
	}
	return &shop, nil
}

// upsertGood stores one feed good and returns the id of its ProductInfo.
func upsertGood(tx *gorm.DB, shopID uint, good partner.FeedGood, parameters map[string]uint) (uint, error) {
	product := models.Product{Name: good.Name, CategoryID: good.Category}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&product).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product %q: %w", good.Name, err)
	}
	if product.ID == 0 {
		if err := tx.Where("name = ? AND category_id = ?", good.Name, good.Category).First(&product).Error; err != nil {
			return 0, fmt.Errorf("failed to reload product %q: %w", good.Name, err)
		}
	}

	info := models.ProductInfo{
		ProductID:  product.ID,
		ShopID:     shopID,
		ExternalID: good.ID,
		Model:      good.Model,
		Quantity:   good.Quantity,
		Price:      good.Price,
		PriceRRC:   good.PriceRRC,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "shop_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model", "quantity", "price", "price_rrc"}),
	}).Create(&info).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product info %d: %w", good.ID, err)
	}
	if info.ID == 0 {
		err := tx.Where("product_id = ? AND shop_id = ? AND external_id = ?", product.ID, shopID, good.ID).
			First(&info).Error
		if err != nil {
			return 0, fmt.Errorf("failed to reload product info %d: %w", good.ID, err)
		}
	}

	if err := tx.Where("product_info_id = ?", info.ID).Delete(&models.ProductParameter{}).Error; err != nil {
		return 0, fmt.Errorf("failed to clear parameters of product info %d: %w", info.ID, err)
	}
	for name, value := range good.Parameters {
		pid, err := parameterID(tx, name, parameters)
		if err != nil {
			return 0, err
		}
		pp := models.ProductParameter{ProductInfoID: info.ID, ParameterID: pid, Value: value}
		if err := tx.Create(&pp).Error; err != nil {
			return 0, fmt.Errorf("failed to store parameter %q of product info %d: %w", name, info.ID, err)
		}
	}
	return info.ID, nil
}

func parameterID(tx *gorm.DB, name string, cache map[string]uint) (uint, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	parameter := models.Parameter{Name: name}
	err := tx.Where(models.Parameter{Name: name}).FirstOrCreate(&parameter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert parameter %q: %w", name, err)
	}
	cache[name] = parameter.ID
	return parameter.ID, nil
}

// ListShopCatalog returns the categories linked to a shop and its offers with
// product and parameters loaded.
func (r *GORMCatalogRepository) ListShopCatalog(shopID uint) ([]models.Category, []models.ProductInfo, error) {
	categories := []models.Category{}
	err := r.db.Joins("JOIN category_shops ON category_shops.category_id = categories.id").
		Where("category_shops.shop_id = ?", shopID).
		Order("categories.id").
		Find(&categories).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list categories of shop %d: %w", shopID, err)
	}

	infos := []models.ProductInfo{}
	err = r.db.Where("shop_id = ?", shopID).
		Preload("Product").
		Preload("ProductParameters.Parameter").
		Order("id").
		Find(&infos).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list offers of shop %d: %w", shopID, err)
	}
	return categories, infos, nil
}
