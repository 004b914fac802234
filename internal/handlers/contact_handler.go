package handlers

import (
	"errors"

	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles the caller's delivery contacts.
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// RegisterRoutes registers the contact routes, all behind auth.
func (h *ContactHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	contactRoutes := router.Group("/user/contact", auth)
	contactRoutes.Get("", h.HandleList)
	contactRoutes.Post("", h.HandleCreate)
	contactRoutes.Put("", h.HandleUpdate)
	contactRoutes.Delete("", h.HandleDelete)
}

type contactRequest struct {
	ID        flexString `json:"id"`
	City      flexString `json:"city"`
	Street    flexString `json:"street"`
	House     flexString `json:"house"`
	Structure flexString `json:"structure"`
	Building  flexString `json:"building"`
	Apartment flexString `json:"apartment"`
	Phone     flexString `json:"phone"`
	Items     flexString `json:"items"`
}

func (r contactRequest) input() services.ContactInput {
	return services.ContactInput{
		City:      r.City.Ptr(),
		Street:    r.Street.Ptr(),
		House:     r.House.Ptr(),
		Structure: r.Structure.Ptr(),
		Building:  r.Building.Ptr(),
		Apartment: r.Apartment.Ptr(),
		Phone:     r.Phone.Ptr(),
	}
}

func missingContactArguments(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Status": msgMissingArguments})
}

// HandleList returns the caller's contacts.
func (h *ContactHandler) HandleList(c *fiber.Ctx) error {
	contacts, err := h.contactService.List(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(contacts)
}

// HandleCreate adds a contact.
func (h *ContactHandler) HandleCreate(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return missingContactArguments(c)
	}

	if _, err := h.contactService.Create(c.UserContext(), currentUserID(c), req.input()); err != nil {
		if errors.Is(err, services.ErrMissingArguments) {
			return missingContactArguments(c)
		}
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Контакты добавлены"})
}

// HandleUpdate changes one of the caller's contacts.
func (h *ContactHandler) HandleUpdate(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return missingContactArguments(c)
	}

	if err := h.contactService.Update(c.UserContext(), currentUserID(c), req.ID.String(), req.input()); err != nil {
		if errors.Is(err, services.ErrMissingArguments) {
			return missingContactArguments(c)
		}
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Контакты обновлены"})
}

// HandleDelete removes the listed contacts, e.g. {"items":"1,2"}.
func (h *ContactHandler) HandleDelete(c *fiber.Ctx) error {
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return missingContactArguments(c)
	}

	deleted, err := h.contactService.Delete(c.UserContext(), currentUserID(c), req.Items.String())
	switch {
	case errors.Is(err, services.ErrMissingArguments):
		return missingContactArguments(c)
	case errors.Is(err, services.ErrInvalidIDList):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": msgInvalidIDs})
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"message": "Удалено " + itoa(deleted)})
}
