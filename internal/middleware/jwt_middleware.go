package middleware

import (
	"errors"
	"strings"

	"retailorders/internal/logger"
	"retailorders/internal/models"
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token. Both "Bearer <token>" and "Token <token>" are accepted.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") || parts[1] == "" {
			return loginRequired(c)
		}

		user, err := auth.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			if !errors.Is(err, services.ErrInvalidToken) {
				logger.Error("authentication failed", "error", err)
			}
			return loginRequired(c)
		}

		c.Locals(userKey, user)
		c.Locals("user_id", user.ID)
		return c.Next()
	}
}

// ShopRequired lets only shop users through. It must run after AuthRequired.
func ShopRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsShop() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"Status": false,
				"Error":  "Только для магазинов",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func loginRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"message": "Требуется войти",
	})
}
