package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON parses the body into dst and runs its validate tags. The returned
// message is safe to show to clients.
func bindJSON(c *fiber.Ctx, dst any) (string, bool) {
	if err := c.BodyParser(dst); err != nil {
		return "Invalid request body", false
	}
	if err := validate.Struct(dst); err != nil {
		return describeValidationError(err), false
	}
	return "", true
}

func describeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request body"
	}

	fieldErr := validationErrors[0]
	field := fieldErr.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt", "min":
		return fmt.Sprintf("%s must be at least %s", field, minimumFor(fieldErr))
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, datetimeLabel(fieldErr.Param()))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func minimumFor(fieldErr validator.FieldError) string {
	if fieldErr.Tag() == "gt" {
		return "1"
	}
	return fieldErr.Param()
}

func datetimeLabel(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	default:
		return layout
	}
}
