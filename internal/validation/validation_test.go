package validation_test

import (
	"errors"
	"testing"

	"retailorders/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"first_name" validate:"max=3"`
	Kind  string `json:"type" validate:"omitempty,oneof=customer shop"`
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	v := validation.New()

	err := v.Struct(signup{Email: "email", Name: "toolong", Kind: "admin"})
	require.Error(t, err)

	fields := validation.FieldErrors(err)
	assert.Equal(t, []string{"Введите правильный адрес электронной почты."}, fields["email"])
	assert.Equal(t, []string{"Убедитесь, что это значение содержит не более 3 символов."}, fields["first_name"])
	assert.Contains(t, fields["type"][0], "admin")
}

func TestFieldErrors_Required(t *testing.T) {
	v := validation.New()

	fields := validation.FieldErrors(v.Struct(signup{}))
	assert.Equal(t, []string{"Обязательное поле."}, fields["email"])
	assert.NotContains(t, fields, "first_name")
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := validation.FieldErrors(errors.New("boom"))
	assert.Equal(t, []string{"boom"}, fields["non_field_errors"])
}
