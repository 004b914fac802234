package services

import (
	"context"

	"retailorders/internal/events"
	"retailorders/internal/logger"
	"retailorders/internal/models"
	"retailorders/internal/repositories"
)

// OrderService handles business logic related to placed orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher events.Publisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, publisher events.Publisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// List returns the user's orders, baskets excluded.
func (s *OrderService) List(userID uint) ([]models.Order, error) {
	return s.orderRepo.ListOrders(userID)
}

// Place turns the user's basket into a new order for one of their
// contacts and emits order.placed.
//
// A non-numeric order id, a wrong owner or an unknown contact all end up as
// ErrMissingArguments because the update simply matches nothing. A store
// failure during the update is ErrInvalidArguments.
func (s *OrderService) Place(ctx context.Context, userID uint, id, contact string) error {
	if id == "" || contact == "" {
		return ErrMissingArguments
	}
	orderID, ok := parseID(id)
	if !ok {
		return ErrMissingArguments
	}
	contactID, ok := parseID(contact)
	if !ok {
		return ErrInvalidArguments
	}

	updated, err := s.orderRepo.PlaceOrder(userID, orderID, contactID)
	if err != nil {
		logger.Error("failed to place order", "order_id", orderID, "user_id", userID, "error", err)
		return ErrInvalidArguments
	}
	if updated == 0 {
		return ErrMissingArguments
	}

	emit(ctx, s.publisher, events.OrderPlaced, events.OrderPlacedPayload{UserID: userID, OrderID: orderID})
	return nil
}
