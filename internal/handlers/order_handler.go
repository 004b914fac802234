package handlers

import (
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for placed orders.
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers the order routes, all behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/order", auth)
	orderRoutes.Get("", h.HandleList)
	orderRoutes.Post("", h.HandlePlace)
}

// HandleList returns the caller's orders, the basket excluded.
func (h *OrderHandler) HandleList(c *fiber.Ctx) error {
	orders, err := h.orderService.List(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

type placeOrderRequest struct {
	ID      flexString `json:"id"`
	Contact flexString `json:"contact"`
}

// HandlePlace turns the basket into an order delivered to contact.
func (h *OrderHandler) HandlePlace(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.orderService.Place(c.UserContext(), currentUserID(c), req.ID.String(), req.Contact.String()); err != nil {
		return fail(c, err)
	}
	return statusTrue(c)
}
