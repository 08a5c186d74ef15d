// Package validation checks request input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Struct validates v against its validate tags and returns the first
// failure as a ValidationError
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return toValidationError(fieldErrs[0])
}

func toValidationError(fe validator.FieldError) ValidationError {
	field := fe.Field()
	var msg string

	switch fe.Tag() {
	case "required", "notblank":
		msg = field + " is required"
	case "email":
		msg = "invalid email format"
	case "url", "http_url":
		msg = field + " must be a valid URL"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
	case "max", "lte":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
	case "len":
		msg = fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "alphanum":
		msg = field + " must contain only letters and digits"
	default:
		msg = field + " is invalid"
	}

	return ValidationError{Field: field, Message: msg}
}
