package utils

import (
	"github.com/go-playground/validator/v10"

	apperrors "lab-inventory-system/pkg/errors"
)

// EchoValidator adapts go-playground/validator to echo's Validator interface.
type EchoValidator struct {
	validator *validator.Validate
}

func NewValidator(v *validator.Validate) *EchoValidator {
	return &EchoValidator{validator: v}
}

func (ev *EchoValidator) Validate(i interface{}) error {
	if err := ev.validator.Struct(i); err != nil {
		return apperrors.NewInvalidInputError("validation failed: %v", err)
	}
	return nil
}
