package services_test

import (
	"context"
	"errors"
	"testing"

	"retailorders/internal/events"
	"retailorders/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("arguments", func(t *testing.T) {
		svc := services.NewOrderService(new(MockOrderRepository), new(MockPublisher))
		assert.ErrorIs(t, svc.Place(ctx, 1, "", "2"), services.ErrMissingArguments)
		assert.ErrorIs(t, svc.Place(ctx, 1, "abc", "2"), services.ErrMissingArguments)
		assert.ErrorIs(t, svc.Place(ctx, 1, "5", "two"), services.ErrInvalidArguments)
	})

	t.Run("nothing matched", func(t *testing.T) {
		orders := new(MockOrderRepository)
		pub := new(MockPublisher)
		svc := services.NewOrderService(orders, pub)
		orders.On("PlaceOrder", uint(1), uint(5), uint(2)).Return(int64(0), nil).Once()

		assert.ErrorIs(t, svc.Place(ctx, 1, "5", "2"), services.ErrMissingArguments)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := services.NewOrderService(orders, new(MockPublisher))
		orders.On("PlaceOrder", uint(1), uint(5), uint(2)).Return(int64(0), errors.New("FOREIGN KEY constraint failed")).Once()

		assert.ErrorIs(t, svc.Place(ctx, 1, "5", "2"), services.ErrInvalidArguments)
	})

	t.Run("placed", func(t *testing.T) {
		orders := new(MockOrderRepository)
		pub := new(MockPublisher)
		svc := services.NewOrderService(orders, pub)
		orders.On("PlaceOrder", uint(1), uint(5), uint(2)).Return(int64(1), nil).Once()
		pub.On("Publish", events.OrderPlaced, events.OrderPlacedPayload{UserID: 1, OrderID: 5}).Return(nil).Once()

		assert.NoError(t, svc.Place(ctx, 1, "5", "2"))
		orders.AssertExpectations(t)
		pub.AssertExpectations(t)
	})
}
