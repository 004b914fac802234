package handlers

import (
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the public catalog.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shops", h.HandleShops)
	router.Get("/categories", h.HandleCategories)
	router.Get("/products", h.HandleProducts)
}

// HandleShops lists shops that accept orders.
func (h *CatalogHandler) HandleShops(c *fiber.Ctx) error {
	shops, err := h.catalogService.Shops()
	if err != nil {
		return err
	}
	return c.JSON(shops)
}

// HandleCategories lists all categories.
func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.Categories()
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// HandleProducts searches offers, optionally by shop_id and category_id.
func (h *CatalogHandler) HandleProducts(c *fiber.Ctx) error {
	infos, err := h.catalogService.Products(c.Query("shop_id"), c.Query("category_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(infos)
}
