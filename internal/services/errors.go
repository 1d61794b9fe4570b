package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks malformed or forbidden input.
	ErrValidation = errors.New("validation failed")
	// ErrAuth marks a missing, invalid, expired or revoked credential.
	ErrAuth = errors.New("authentication failed")
	// ErrNotFound marks a record that is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports per-field problems with user input.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// authError wraps ErrAuth with a reason.
func authError(reason string) error {
	return fmt.Errorf("%w: %s", ErrAuth, reason)
}

// fromValidator converts validator output into a ValidationError keyed by
// JSON field name.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		out.Fields[e.Field()] = describe(e)
	}
	return out
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "nopassword":
		return "cannot contain 'password'"
	default:
		return fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
}
