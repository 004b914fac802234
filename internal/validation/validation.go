package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors converts a validator error into field name -> messages, the
// shape the API reports validation failures in. Errors that are not
// validation errors are reported under "non_field_errors".
func FieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out["non_field_errors"] = []string{err.Error()}
		return out
	}
	for _, e := range validationErrors {
		field := fieldPath(e)
		out[field] = append(out[field], message(e))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// feed errors read "goods[0].price" rather than "Feed.goods[0].price".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Обязательное поле."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "url":
		return "Введите правильный URL."
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов.", e.Param())
	case "min":
		return fmt.Sprintf("Убедитесь, что это значение содержит не менее %s символов.", e.Param())
	case "gt":
		return fmt.Sprintf("Убедитесь, что это значение больше %s.", e.Param())
	case "gte":
		return fmt.Sprintf("Убедитесь, что это значение больше либо равно %s.", e.Param())
	case "oneof":
		return fmt.Sprintf("Значение %v недопустимо.", e.Value())
	default:
		return fmt.Sprintf("Поле не прошло проверку %q.", e.Tag())
	}
}
