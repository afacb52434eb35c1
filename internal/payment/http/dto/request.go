// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/payments/internal/validation"
)

// CreateIntentRequest contains the parameters for starting a payment intent.
// Amount and currency are resolved server-side from the order and never
// accepted from the caller.
type CreateIntentRequest struct {
	OrderID       string `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
	Provider      string `json:"provider"`
}

// Validate checks if the create intent request is valid.
func (r *CreateIntentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderID, validation.Required),
		validation.Field(&r.PaymentMethod, validation.In("card", "paypal")),
		validation.Field(&r.Provider, validation.In("paypal", "stripe")),
	)
}

// CreateRefundRequest contains the parameters for refunding a paid intent.
type CreateRefundRequest struct {
	Amount int64 `json:"amount"`
}

// Validate checks if the create refund request is valid.
func (r *CreateRefundRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Amount, customValidation.PositiveAmount{}),
	)
}
