package repositories

import "retailorders/internal/models"

// OrderRepository defines data access for baskets and placed orders.
type OrderRepository interface {
	GetOrCreateBasket(userID uint) (*models.Order, error)
	ListBasket(userID uint) ([]models.Order, error)
	ListOrders(userID uint) ([]models.Order, error)
	GetOrder(userID, orderID uint) (*models.Order, error)

	AddItems(items []models.OrderItem) error
	UpdateBasketItem(userID, itemID, quantity uint) (int64, error)
	DeleteBasketItems(userID uint, itemIDs []uint) (int64, error)

	PlaceOrder(userID, orderID, contactID uint) (int64, error)
}
