package services

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArguments    = errors.New("missing required arguments")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidConfirmation = errors.New("invalid email or confirmation token")
	ErrNotFound            = errors.New("not found")
	ErrMalformedPayload    = errors.New("malformed request payload")
	ErrInvalidIDList       = errors.New("invalid id list")
	ErrInvalidArguments    = errors.New("invalid arguments")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// ValidationError carries field name -> messages for a rejected input.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field string, messages ...string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: messages}}
}

// ConflictError reports that the store rejected a write, usually because
// of a unique constraint. The message of the wrapped error is shown to the
// client as is.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return e.Err.Error()
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// ArgumentError rejects a request with a single message meant for the
// client.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}
