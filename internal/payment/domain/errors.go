package domain

import (
	"github.com/allisson/payments/internal/errors"
)

// Payment-specific error definitions.
var (
	// ErrIntentNotFound indicates the referenced intent or order does not exist.
	ErrIntentNotFound = errors.Wrap(errors.ErrNotFound, "payment intent not found")

	// ErrIntentAlreadyPaid indicates the order already has a paid intent and
	// must not be charged again.
	ErrIntentAlreadyPaid = errors.Wrap(errors.ErrConflict, "order already paid")

	// ErrNoProviderAvailable indicates no active provider connection can serve
	// the store.
	ErrNoProviderAvailable = errors.Wrap(errors.ErrUnprocessable, "no payment provider available")

	// ErrRefundNotFound indicates the referenced refund does not exist.
	ErrRefundNotFound = errors.Wrap(errors.ErrNotFound, "refund not found")

	// ErrIntentNotRefundable indicates the intent is not in a state that admits refunds.
	ErrIntentNotRefundable = errors.Wrap(errors.ErrUnprocessable, "intent is not refundable")

	// ErrRefundExceedsPaidAmount indicates the requested refund would push the
	// refunded total past the originally paid amount.
	ErrRefundExceedsPaidAmount = errors.Wrap(errors.ErrUnprocessable, "refund exceeds paid amount")
)
