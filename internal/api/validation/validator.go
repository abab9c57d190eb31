// Package validation checks request DTOs with struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/wuyan/lifescope/pkg/util"
)

var (
	validate *validator.Validate
	once     sync.Once

	usernamePattern = regexp.MustCompile(`^[\x{4e00}-\x{9fa5}a-zA-Z0-9_]{2,20}$`)
	passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]{8,32}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			pw := fl.Field().String()
			return passwordPattern.MatchString(pw) && hasLetter.MatchString(pw) && hasDigit.MatchString(pw)
		})
	})
	return validate
}

// Struct validates s and returns a bad-request DomainError listing every failing field.
func Struct(s any) error {
	fieldErrors, err := collect(s, "")
	if err != nil {
		return err
	}
	return toError(fieldErrors)
}

// Each validates every element of items; an empty slice is itself invalid.
// Field names are prefixed with the element index, e.g. "[1].app_name".
func Each[T any](items []T) error {
	if len(items) == 0 {
		return apperrors.NewValidationError("at least one item is required", nil)
	}
	var all []FieldError
	for i := range items {
		fieldErrors, err := collect(items[i], fmt.Sprintf("[%d].", i))
		if err != nil {
			return err
		}
		all = append(all, fieldErrors...)
	}
	return toError(all)
}

func collect(s any, prefix string) ([]FieldError, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, apperrors.NewValidationError("validation failed", nil)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{Field: prefix + fieldPath(e), Message: formatValidationError(e)})
	}
	return fieldErrors, nil
}

func toError(fieldErrors []FieldError) error {
	if len(fieldErrors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Field+": "+fe.Message)
	}
	return apperrors.NewValidationError(strings.Join(messages, "; "), map[string]any{"fields": fieldErrors})
}

// fieldPath drops the top-level struct name from the namespace: "req.username" -> "username".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	if ns == "" {
		return e.Field()
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "username":
		return "must be 2-20 characters of letters, digits or underscores"
	case "password":
		return "must be 8-32 letters and digits with at least one of each"
	case "datetime":
		return "must be a date formatted as " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
