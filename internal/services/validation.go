package services

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports JSON field names and knows
// the nopassword rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), "password")
	})
	return v
}

// UserInput is the validated shape of a user's editable fields.
type UserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,nopassword"`
	Age      int    `json:"age" validate:"gte=0"`
}

func (in *UserInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
