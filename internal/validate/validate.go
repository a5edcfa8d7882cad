// Package validate plugs go-playground/validator into echo as the request
// payload validator.
package validate

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// password: at least one upper, one lower, one digit
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator. Validation failures surface as
// validator.ValidationErrors and are rendered by the HTTP error handler.
func (va *Validator) Validate(i interface{}) error {
	return va.v.Struct(i)
}
