package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks caller input that was rejected before touching the store.
var ErrValidation = errors.New("validation failed")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func check(input any) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, name)
	}
	return nil
}
