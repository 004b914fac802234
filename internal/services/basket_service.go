package services

import (
	"context"
	"fmt"

	"retailorders/internal/models"
	"retailorders/internal/repositories"
	"retailorders/internal/validation"

	"github.com/go-playground/validator/v10"
)

// BasketService handles the user's open order.
type BasketService struct {
	orderRepo   repositories.OrderRepository
	catalogRepo repositories.CatalogRepository
	validate    *validator.Validate
}

// NewBasketService creates a new BasketService.
func NewBasketService(orderRepo repositories.OrderRepository, catalogRepo repositories.CatalogRepository,
	validate *validator.Validate) *BasketService {
	return &BasketService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		validate:    validate,
	}
}

// BasketItemInput is one product to put into the basket. Fields are signed
// so that negative input reaches validation instead of failing to decode.
type BasketItemInput struct {
	ProductInfo int64 `json:"product_info" validate:"required,gt=0"`
	Quantity    int64 `json:"quantity" validate:"required,gt=0"`
}

// BasketQuantity is a new quantity for an existing basket line.
type BasketQuantity struct {
	ID       uint
	Quantity uint
}

// Get returns the user's basket as a list of zero or one orders.
func (s *BasketService) Get(userID uint) ([]models.Order, error) {
	return s.orderRepo.ListBasket(userID)
}

// Add validates every item and then inserts them into the basket. A line
// that already exists stops the insert with a ConflictError; lines inserted
// before it are kept.
func (s *BasketService) Add(ctx context.Context, userID uint, items []BasketItemInput) (int, error) {
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			return 0, &ValidationError{Fields: validation.FieldErrors(err)}
		}
		exists, err := s.catalogRepo.ProductInfoExists(uint(item.ProductInfo))
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, NewValidationError("product_info",
				fmt.Sprintf("Недопустимый первичный ключ \"%d\" - объект не существует.", item.ProductInfo))
		}
	}

	basket, err := s.orderRepo.GetOrCreateBasket(userID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range items {
		line := models.OrderItem{OrderID: basket.ID, ProductInfoID: uint(item.ProductInfo), Quantity: uint(item.Quantity)}
		if err := s.orderRepo.AddItems([]models.OrderItem{line}); err != nil {
			return created, &ConflictError{Err: err}
		}
		created++
	}
	return created, nil
}

// Update sets quantities of basket lines and returns how many were changed.
// Entries with a zero id or quantity are skipped.
func (s *BasketService) Update(ctx context.Context, userID uint, items []BasketQuantity) (int64, error) {
	var updated int64
	for _, item := range items {
		if item.ID == 0 || item.Quantity == 0 {
			continue
		}
		n, err := s.orderRepo.UpdateBasketItem(userID, item.ID, item.Quantity)
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}

// Delete removes basket lines listed as "1,2,3".
func (s *BasketService) Delete(ctx context.Context, userID uint, items string) (int64, error) {
	ids, err := parseIDList(items)
	if err != nil {
		return 0, err
	}
	return s.orderRepo.DeleteBasketItems(userID, ids)
}
