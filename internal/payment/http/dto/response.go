package dto

import (
	"time"

	paymentDomain "github.com/allisson/payments/internal/payment/domain"
)

// PaymentIntentResponse represents a payment intent in API responses.
// ClientSecret is only populated on creation; subsequent reads return the
// sanitized projection.
type PaymentIntentResponse struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"order_id"`
	StoreID          string     `json:"store_id"`
	Provider         string     `json:"provider"`
	ProviderIntentID *string    `json:"provider_intent_id,omitempty"`
	Status           string     `json:"status"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	ClientSecret     string     `json:"client_secret,omitempty"`
	ClientURL        string     `json:"client_url,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MapIntentToCreateResponse converts a domain intent to an API response for
// POST operations. This is the only place the client secret leaves the engine.
func MapIntentToCreateResponse(intent *paymentDomain.PaymentIntent) PaymentIntentResponse {
	response := mapIntent(intent)
	response.ClientSecret = intent.ClientSecret
	return response
}

// MapIntentToGetResponse converts a domain intent to a sanitized API response
// for GET operations. The client secret is never included.
func MapIntentToGetResponse(intent *paymentDomain.PaymentIntent) PaymentIntentResponse {
	return mapIntent(intent)
}

func mapIntent(intent *paymentDomain.PaymentIntent) PaymentIntentResponse {
	return PaymentIntentResponse{
		ID:               intent.ID.String(),
		OrderID:          intent.OrderID.String(),
		StoreID:          intent.StoreID.String(),
		Provider:         string(intent.Provider),
		ProviderIntentID: intent.ProviderIntentID,
		Status:           string(intent.Status),
		Amount:           intent.Amount,
		Currency:         intent.Currency,
		ClientURL:        intent.ClientURL,
		ExpiresAt:        intent.ExpiresAt,
		CreatedAt:        intent.CreatedAt,
		UpdatedAt:        intent.UpdatedAt,
	}
}

// RefundResponse represents a refund in API responses.
type RefundResponse struct {
	ID               string    `json:"id"`
	PaymentIntentID  string    `json:"payment_intent_id"`
	ProviderRefundID *string   `json:"provider_refund_id,omitempty"`
	Amount           int64     `json:"amount"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MapRefundToResponse converts a domain refund to an API response.
func MapRefundToResponse(refund *paymentDomain.Refund) RefundResponse {
	return RefundResponse{
		ID:               refund.ID.String(),
		PaymentIntentID:  refund.PaymentIntentID.String(),
		ProviderRefundID: refund.ProviderRefundID,
		Amount:           refund.Amount,
		Status:           string(refund.Status),
		CreatedAt:        refund.CreatedAt,
		UpdatedAt:        refund.UpdatedAt,
	}
}
