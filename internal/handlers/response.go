package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"retailorders/internal/logger"
	"retailorders/internal/middleware"
	"retailorders/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	msgMissingArguments = "Не указаны все необходимые аргументы"
	msgInvalidIDs       = "Введены некорректные данные"
	msgMalformed        = "Неверный формат запроса"
	msgInvalidArguments = "Неправильно указаны аргументы"
	msgNotInteger       = "Требуется целочисленное значение."
)

// flexString accepts a JSON string, number or boolean and keeps its text,
// so clients may send "id": 5 as well as "id": "5".
type flexString struct {
	Value string
	Set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		if err := json.Unmarshal(b, &f.Value); err != nil {
			return err
		}
	case '{', '[':
		return fmt.Errorf("expected a scalar, got %s", b)
	default:
		f.Value = string(b)
	}
	f.Set = true
	return nil
}

func (f flexString) String() string {
	return f.Value
}

// Ptr returns nil for an absent field.
func (f flexString) Ptr() *string {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// decodeList reads a list sent either as a JSON array or as a string
// holding one. Numbers are kept as json.Number.
func decodeList(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// parseBody decodes the request body into v. An empty body leaves v
// untouched so handlers report missing fields rather than a parse error.
func parseBody(c *fiber.Ctx, v interface{}) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: %v", services.ErrMalformedPayload, err)
	}
	return nil
}

func absent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null" || string(raw) == `""`
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func currentUserID(c *fiber.Ctx) uint {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func statusFalse(c *fiber.Ctx, code int, errs interface{}) error {
	return c.Status(code).JSON(fiber.Map{"Status": false, "Errors": errs})
}

func statusTrue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"Status": true})
}

// fail renders the error kinds shared by most endpoints. Anything it does
// not recognise goes to ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	var aerr *services.ArgumentError
	var cerr *services.ConflictError
	switch {
	case errors.As(err, &verr):
		return statusFalse(c, fiber.StatusBadRequest, verr.Fields)
	case errors.As(err, &aerr):
		return statusFalse(c, fiber.StatusBadRequest, aerr.Msg)
	case errors.As(err, &cerr):
		return statusFalse(c, fiber.StatusConflict, cerr.Error())
	case errors.Is(err, services.ErrMalformedPayload):
		return statusFalse(c, fiber.StatusBadRequest, msgMalformed)
	case errors.Is(err, services.ErrMissingArguments):
		return statusFalse(c, fiber.StatusBadRequest, msgMissingArguments)
	case errors.Is(err, services.ErrInvalidIDList):
		return statusFalse(c, fiber.StatusBadRequest, msgInvalidIDs)
	case errors.Is(err, services.ErrInvalidArguments):
		return statusFalse(c, fiber.StatusBadRequest, msgInvalidArguments)
	case errors.Is(err, services.ErrNotFound):
		return statusFalse(c, fiber.StatusNotFound, "Не найдено")
	}
	return err
}

// ErrorHandler is the fiber error handler. It keeps every response a JSON
// envelope, including unknown routes and panics recovered upstream.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Внутренняя ошибка сервера"

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
		message = ferr.Message
	} else {
		logger.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"Status": false, "Error": message})
}
