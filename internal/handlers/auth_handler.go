package handlers

import (
	"errors"

	"retailorders/internal/logger"
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account endpoints under /user.
type UserHandler struct {
	authService   *services.AuthService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		authService:   authService,
		avatarService: avatarService,
	}
}

// RegisterRoutes registers the account routes. auth guards the endpoints
// that need a logged in user.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/user")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/register/confirm", h.HandleConfirm)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/password_reset", h.HandlePasswordReset)
	userRoutes.Post("/password_reset/confirm", h.HandlePasswordResetConfirm)
	userRoutes.Get("/details", auth, h.HandleGetDetails)
	userRoutes.Post("/details", auth, h.HandleUpdateDetails)
	userRoutes.Post("/avatar", auth, h.HandleAvatar)
}

type registerRequest struct {
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Email     flexString `json:"email"`
	Password  flexString `json:"password"`
	Company   flexString `json:"company"`
	Position  flexString `json:"position"`
	Type      flexString `json:"type"`
}

// HandleRegister creates an inactive account and sends the confirmation
// token by email.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
	}

	_, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		FirstName: req.FirstName.String(),
		LastName:  req.LastName.String(),
		Email:     req.Email.String(),
		Password:  req.Password.String(),
		Company:   req.Company.String(),
		Position:  req.Position.String(),
		Type:      req.Type.String(),
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingArguments) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
		}
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Регистрация прошла успешно"})
}

type confirmRequest struct {
	Email flexString `json:"email"`
	Token flexString `json:"token"`
}

// HandleConfirm activates an account by email and confirmation token.
func (h *UserHandler) HandleConfirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
	}

	err := h.authService.ConfirmEmail(c.UserContext(), req.Email.String(), req.Token.String())
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Почтовый адрес подтвержден"})
	case errors.Is(err, services.ErrMissingArguments):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
	case errors.Is(err, services.ErrInvalidConfirmation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"Status": "Неправильно указан токен или email"})
	}
	return err
}

type loginRequest struct {
	Email    flexString `json:"email"`
	Password flexString `json:"password"`
}

// HandleLogin checks the credentials and issues a bearer token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
	}

	token, err := h.authService.Login(c.UserContext(), req.Email.String(), req.Password.String())
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "Авторизация прошла успешно", "Token": token})
	case errors.Is(err, services.ErrMissingArguments):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": msgMissingArguments})
	case errors.Is(err, services.ErrInvalidCredentials):
		logger.Debug("login rejected", "email", req.Email.String())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "Не удалось авторизовать"})
	}
	return err
}

// HandleGetDetails returns the caller with contacts.
func (h *UserHandler) HandleGetDetails(c *fiber.Ctx) error {
	user, err := h.authService.Details(currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

type detailsRequest struct {
	FirstName flexString `json:"first_name"`
	LastName  flexString `json:"last_name"`
	Email     flexString `json:"email"`
	Company   flexString `json:"company"`
	Position  flexString `json:"position"`
	Password  flexString `json:"password"`
}

// HandleUpdateDetails applies a partial profile update.
func (h *UserHandler) HandleUpdateDetails(c *fiber.Ctx) error {
	var req detailsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	err := h.authService.UpdateDetails(c.UserContext(), currentUserID(c), services.UpdateDetailsInput{
		FirstName: req.FirstName.Ptr(),
		LastName:  req.LastName.Ptr(),
		Email:     req.Email.Ptr(),
		Company:   req.Company.Ptr(),
		Position:  req.Position.Ptr(),
		Password:  req.Password.Ptr(),
	})
	if err != nil {
		return fail(c, err)
	}
	return statusTrue(c)
}

// HandleAvatar stores an uploaded avatar. The thumbnail is built in the
// background.
func (h *UserHandler) HandleAvatar(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return statusFalse(c, fiber.StatusBadRequest, map[string][]string{
			"file": {"Ни одного файла не было отправлено."},
		})
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := h.avatarService.Upload(c.UserContext(), currentUserID(c), header.Filename, file); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "Изображение загружено"})
}

type passwordResetRequest struct {
	Email    flexString `json:"email"`
	Token    flexString `json:"token"`
	Password flexString `json:"password"`
}

// HandlePasswordReset issues a reset token. The answer does not depend on
// whether the address is registered.
func (h *UserHandler) HandlePasswordReset(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email.String()); err != nil {
		if errors.Is(err, services.ErrMissingArguments) {
			return statusFalse(c, fiber.StatusBadRequest, map[string][]string{"email": {"Обязательное поле."}})
		}
		return err
	}
	return c.JSON(fiber.Map{"status": "OK"})
}

// HandlePasswordResetConfirm sets a new password with a reset token.
func (h *UserHandler) HandlePasswordResetConfirm(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	err := h.authService.ConfirmPasswordReset(c.UserContext(), req.Token.String(), req.Password.String())
	if errors.Is(err, services.ErrInvalidToken) {
		return statusFalse(c, fiber.StatusNotFound, "Токен недействителен или устарел.")
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "OK"})
}
