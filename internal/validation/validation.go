// Package validation configures go-playground/validator for the request and
// model rules of the dashboard and turns failures into client-facing text.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// IsEmail reports whether s is an address accepted for registration.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return v
}

// Message renders the first failed rule of err as a sentence.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}

	fe := verrs[0]
	field := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please provide %s %s", article(field), strings.ToLower(field))
	case "emailaddr", "email":
		return "Please provide a valid email"
	case "max":
		if isNumeric(fe.Kind().String()) {
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
	case "min":
		if isNumeric(fe.Kind().String()) {
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func label(field string) string {
	switch field {
	case "IsActive":
		return "Active flag"
	default:
		return field
	}
}

func article(s string) string {
	if s == "" {
		return "a"
	}
	switch strings.ToLower(s[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}

func isNumeric(kind string) bool {
	return strings.HasPrefix(kind, "int") || strings.HasPrefix(kind, "uint") || strings.HasPrefix(kind, "float")
}
