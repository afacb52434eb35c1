// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/payments/internal/errors"
)

var (
	// currencyRegex matches ISO 4217 alphabetic currency codes.
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// CurrencyCode validates that a value is a three-letter uppercase currency code.
type CurrencyCode struct{}

// Validate checks the value against the ISO 4217 alphabetic format.
func (CurrencyCode) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_currency", "currency must be a string")
	}
	if !currencyRegex.MatchString(s) {
		return validation.NewError(
			"validation_currency",
			"currency must be a three-letter uppercase code",
		)
	}
	return nil
}

// PositiveAmount validates that a monetary amount (in minor units) is greater than zero.
type PositiveAmount struct{}

// Validate checks the value is a positive int64.
func (PositiveAmount) Validate(value interface{}) error {
	n, ok := value.(int64)
	if !ok {
		return validation.NewError("validation_amount", "amount must be an integer")
	}
	if n <= 0 {
		return validation.NewError("validation_amount", "amount must be greater than zero")
	}
	return nil
}
