package repositories

import (
	"errors"
	"fmt"

	"retailorders/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func basketOf(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Order{}).Select("id").Where("user_id = ? AND state = ?", userID, models.OrderStateBasket)
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderedItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("OrderedItems.ProductInfo.Product.Category").
		Preload("OrderedItems.ProductInfo.Shop").
		Preload("OrderedItems.ProductInfo.ProductParameters.Parameter").
		Preload("Contact")
}

// GetOrCreateBasket returns the user's basket, creating it if needed. The
// partial unique index on orders keeps concurrent callers from creating two.
func (r *GORMOrderRepository) GetOrCreateBasket(userID uint) (*models.Order, error) {
	basket := models.Order{}
	cond := models.Order{UserID: userID, State: models.OrderStateBasket}
	err := r.db.Where(cond).FirstOrCreate(&basket).Error
	if err == nil {
		return &basket, nil
	}

	// lost the race against another request; the winner's row is there now
	if lookupErr := r.db.Where(cond).First(&basket).Error; lookupErr == nil {
		return &basket, nil
	}
	return nil, fmt.Errorf("failed to get or create basket for user %d: %w", userID, err)
}

// ListBasket returns the user's basket with its items, or an empty list.
func (r *GORMOrderRepository) ListBasket(userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := withOrderDetails(r.db).
		Where("user_id = ? AND state = ?", userID, models.OrderStateBasket).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get basket of user %d: %w", userID, err)
	}
	for i := range orders {
		orders[i].CalculateTotals()
	}
	return orders, nil
}

// ListOrders returns the user's placed orders, newest first.
func (r *GORMOrderRepository) ListOrders(userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := withOrderDetails(r.db).
		Where("user_id = ? AND state <> ?", userID, models.OrderStateBasket).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	for i := range orders {
		orders[i].CalculateTotals()
	}
	return orders, nil
}

// GetOrder returns one order of the user with its details.
func (r *GORMOrderRepository) GetOrder(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := withOrderDetails(r.db).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d of user %d: %w", orderID, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	order.CalculateTotals()
	return &order, nil
}

// AddItems inserts basket lines one by one and stops at the first failure.
// Lines inserted before the failure are kept.
func (r *GORMOrderRepository) AddItems(items []models.OrderItem) error {
	for i := range items {
		if err := r.db.Omit("ProductInfo").Create(&items[i]).Error; err != nil {
			return fmt.Errorf("failed to add product info %d to order %d: %w", items[i].ProductInfoID, items[i].OrderID, err)
		}
	}
	return nil
}

// UpdateBasketItem changes the quantity of a line in the user's basket.
func (r *GORMOrderRepository) UpdateBasketItem(userID, itemID, quantity uint) (int64, error) {
	res := r.db.Model(&models.OrderItem{}).
		Where("id = ? AND order_id IN (?)", itemID, basketOf(r.db, userID)).
		Update("quantity", quantity)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update basket item %d: %w", itemID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteBasketItems removes lines from the user's basket.
func (r *GORMOrderRepository) DeleteBasketItems(userID uint, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("id IN ? AND order_id IN (?)", itemIDs, basketOf(r.db, userID)).Delete(&models.OrderItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete basket items: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PlaceOrder turns the user's basket into a new order delivered to one of
// the user's contacts, in a single statement. It returns the number of
// orders changed, 0 when the id, state or contact did not match.
func (r *GORMOrderRepository) PlaceOrder(userID, orderID, contactID uint) (int64, error) {
	owned := r.db.Model(&models.Contact{}).Select("id").Where("id = ? AND user_id = ?", contactID, userID)
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND state = ?", orderID, userID, models.OrderStateBasket).
		Where("EXISTS (?)", owned).
		Updates(map[string]interface{}{
			"contact_id": contactID,
			"state":      models.OrderStateNew,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to place order %d: %w", orderID, res.Error)
	}
	return res.RowsAffected, nil
}
