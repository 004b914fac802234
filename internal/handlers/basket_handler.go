package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BasketHandler handles the caller's basket.
type BasketHandler struct {
	basketService *services.BasketService
}

// NewBasketHandler creates a new BasketHandler.
func NewBasketHandler(basketService *services.BasketService) *BasketHandler {
	return &BasketHandler{basketService: basketService}
}

// RegisterRoutes registers the basket routes, all behind auth.
func (h *BasketHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	basketRoutes := router.Group("/basket", auth)
	basketRoutes.Get("", h.HandleGet)
	basketRoutes.Post("", h.HandleAdd)
	basketRoutes.Put("", h.HandleUpdate)
	basketRoutes.Delete("", h.HandleDelete)
}

type basketRequest struct {
	Items json.RawMessage `json:"items"`
}

// HandleGet returns the basket with line sums and the total.
func (h *BasketHandler) HandleGet(c *fiber.Ctx) error {
	basket, err := h.basketService.Get(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(basket)
}

// HandleAdd puts products into the basket. items is a JSON array of
// {product_info, quantity}, or a string holding one. Numbers may be sent
// as strings.
func (h *BasketHandler) HandleAdd(c *fiber.Ctx) error {
	var req basketRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if absent(req.Items) {
		return statusFalse(c, fiber.StatusBadRequest, msgMissingArguments)
	}

	var entries []map[string]interface{}
	if err := decodeList(req.Items, &entries); err != nil {
		return statusFalse(c, fiber.StatusBadRequest, msgMalformed)
	}

	items := make([]services.BasketItemInput, 0, len(entries))
	for _, entry := range entries {
		var item services.BasketItemInput
		var ok bool
		if item.ProductInfo, ok = intField(entry["product_info"]); !ok {
			return fail(c, services.NewValidationError("product_info", msgNotInteger))
		}
		if item.Quantity, ok = intField(entry["quantity"]); !ok {
			return fail(c, services.NewValidationError("quantity", msgNotInteger))
		}
		items = append(items, item)
	}

	created, err := h.basketService.Add(c.UserContext(), currentUserID(c), items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"Status": true, "Создано объектов": created})
}

// HandleUpdate sets quantities. Entries whose id or quantity is not a
// positive integer are skipped.
func (h *BasketHandler) HandleUpdate(c *fiber.Ctx) error {
	var req basketRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if absent(req.Items) {
		return statusFalse(c, fiber.StatusBadRequest, msgMissingArguments)
	}

	var entries []map[string]interface{}
	if err := decodeList(req.Items, &entries); err != nil {
		return statusFalse(c, fiber.StatusBadRequest, msgMalformed)
	}

	items := make([]services.BasketQuantity, 0, len(entries))
	for _, entry := range entries {
		id, ok := positiveInt(entry["id"])
		if !ok {
			continue
		}
		quantity, ok := positiveInt(entry["quantity"])
		if !ok {
			continue
		}
		items = append(items, services.BasketQuantity{ID: id, Quantity: quantity})
	}

	updated, err := h.basketService.Update(c.UserContext(), currentUserID(c), items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"Status": true, "Обновлено объектов": updated})
}

// HandleDelete removes basket lines, e.g. {"items":"3,4"}.
func (h *BasketHandler) HandleDelete(c *fiber.Ctx) error {
	var req struct {
		Items flexString `json:"items"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	deleted, err := h.basketService.Delete(c.UserContext(), currentUserID(c), req.Items.String())
	if err != nil {
		if errors.Is(err, services.ErrInvalidIDList) {
			return statusFalse(c, fiber.StatusBadRequest, msgInvalidIDs)
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"Status": true, "Удалено объектов": deleted})
}

// intField reads an integer sent as a JSON number or a string of digits.
// A missing value reads as zero and is left to validation.
func intField(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func positiveInt(v interface{}) (uint, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil || i <= 0 {
		return 0, false
	}
	return uint(i), true
}
