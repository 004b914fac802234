package handlers

import (
	"errors"
	"os"

	"retailorders/internal/logger"
	"retailorders/internal/middleware"
	"retailorders/internal/partner"
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PartnerHandler handles catalog import, export and shop state for shop
// users.
type PartnerHandler struct {
	partnerService *services.PartnerService
	catalogService *services.CatalogService
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(partnerService *services.PartnerService, catalogService *services.CatalogService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		catalogService: catalogService,
	}
}

// RegisterRoutes registers the partner routes behind auth and the shop
// role check.
func (h *PartnerHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	partnerRoutes := router.Group("/partner", auth, middleware.ShopRequired())
	partnerRoutes.Post("/update", h.HandleUpdate)
	partnerRoutes.Post("/export", h.HandleExport)
	partnerRoutes.Get("/export", h.HandleDownloadExport)
	partnerRoutes.Get("/state", h.HandleGetState)
	partnerRoutes.Post("/state", h.HandleSetState)
}

// HandleUpdate fetches and validates a partner feed and queues its import.
func (h *PartnerHandler) HandleUpdate(c *fiber.Ctx) error {
	var req struct {
		URL flexString `json:"url"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	err := h.partnerService.RequestImport(c.UserContext(), currentUserID(c), req.URL.String())
	switch {
	case err == nil:
		return statusTrue(c)
	case errors.Is(err, services.ErrInvalidURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Status": false, "Error": "Введите правильный URL."})
	case errors.Is(err, partner.ErrFeedNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Неверный url"})
	case errors.Is(err, services.ErrFeedUnavailable):
		logger.Warn("partner feed fetch failed", "url", req.URL.String(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"Status": false, "Error": err.Error()})
	}
	return fail(c, err)
}

// HandleExport queues an export of the caller's catalog.
func (h *PartnerHandler) HandleExport(c *fiber.Ctx) error {
	if err := h.partnerService.RequestExport(c.UserContext(), currentUserID(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "Экспорт данных прошел успешно"})
}

// HandleDownloadExport sends the last exported feed.
func (h *PartnerHandler) HandleDownloadExport(c *fiber.Ctx) error {
	path, err := h.partnerService.ExportFile(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(body)
}

// HandleGetState returns the caller's shop.
func (h *PartnerHandler) HandleGetState(c *fiber.Ctx) error {
	shop, err := h.catalogService.ShopState(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(shop)
}

// HandleSetState opens or closes the caller's shop, e.g. {"state":"off"}.
func (h *PartnerHandler) HandleSetState(c *fiber.Ctx) error {
	var req struct {
		State flexString `json:"state"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.catalogService.SetShopState(c.UserContext(), currentUserID(c), req.State.String()); err != nil {
		return fail(c, err)
	}
	return statusTrue(c)
}
