// Package validation configures gin's validator and turns its errors into
// field-level details for the error body.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

const passwordSpecials = "!@#$%^&*"

var setupOnce sync.Once

// Setup registers the JSON tag name function and the custom rules on gin's
// default validator. It is safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("password", validPassword)
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// validPassword requires at least 8 characters with a lowercase letter, an
// uppercase letter, a digit and one of !@#$%^&*.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// FieldErrors lists one entry per failed rule. Errors that do not come from
// the validator yield a single entry describing a malformed body.
func FieldErrors(err error) []apperr.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []apperr.FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("must be a %s", typeErr.Type)}}
	}
	return []apperr.FieldError{{Field: "body", Message: "malformed request body"}}
}

// Error wraps a binding failure into the 400 returned to clients.
func Error(err error) *apperr.Error {
	return apperr.Validation("invalid input data", FieldErrors(err)...)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String || isStringPtr(fe) {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String || isStringPtr(fe) {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url", "uri", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters and contain a lowercase letter, an uppercase letter, a digit and one of %s", field, passwordSpecials)
	case "excluded_with", "isdefault":
		return fmt.Sprintf("%s is not allowed here", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func isStringPtr(fe validator.FieldError) bool {
	t := fe.Type()
	return t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.String
}
