// Package domain defines the payment service provider domain: the provider
// enum, per-store provider connections, and the normalized webhook event that
// every adapter produces regardless of the PSP's own wire format.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a supported payment service provider.
type Provider string

const (
	ProviderPayPal Provider = "paypal"
	ProviderStripe Provider = "stripe"
)

// Valid reports whether the provider is one of the supported PSPs.
func (p Provider) Valid() bool {
	switch p {
	case ProviderPayPal, ProviderStripe:
		return true
	}
	return false
}

// ConnectionStatus represents the usability of a provider connection.
type ConnectionStatus string

const (
	ConnectionStatusActive   ConnectionStatus = "active"
	ConnectionStatusInactive ConnectionStatus = "inactive"
)

// Connection holds a store's credentials for one PSP.
//
// WebhookSecret is the material the adapter uses to authenticate inbound
// webhooks: an HMAC signing secret for Stripe, a webhook id for PayPal.
type Connection struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	Provider      Provider
	Status        ConnectionStatus
	ClientID      string
	ClientSecret  string `json:"-"`
	WebhookSecret string `json:"-"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventKind distinguishes payment events from refund events.
type EventKind string

const (
	EventKindPayment EventKind = "payment"
	EventKindRefund  EventKind = "refund"
)

// EventStatus is the canonical status an adapter maps provider states onto.
// Payment events use pending/paid/failed/canceled; refund events use
// pending/succeeded/failed/canceled.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusPaid      EventStatus = "paid"
	EventStatusFailed    EventStatus = "failed"
	EventStatusCanceled  EventStatus = "canceled"
	EventStatusSucceeded EventStatus = "succeeded"
)

// NormalizedEvent is the provider-independent representation of one webhook
// delivery (or one synthetic reconciliation event).
//
// ProviderEventID is the PSP's own idempotency key: applying the same id
// twice is a no-op.
type NormalizedEvent struct {
	ProviderEventID  string
	Kind             EventKind
	ProviderIntentID string
	ProviderRefundID string
	RawStatus        string
	Status           EventStatus
	Amount           int64
	Currency         string
	Metadata         json.RawMessage
	OccurredAt       time.Time
}

// CreateIntentRequest carries what an adapter needs invoke intent creation
// at the PSP.
type CreateIntentRequest struct {
	IntentID  uuid.UUID
	OrderID   uuid.UUID
	Amount    int64
	Currency  string
	ReturnURL string
	CancelURL string
}

// CreateIntentResult is the minimal provider response after intent creation.
type CreateIntentResult struct {
	ProviderIntentID string
	ClientSecret     string
	ClientURL        string
}

// RefundResult is the minimal provider response after a refund request.
type RefundResult struct {
	ProviderRefundID string
	Status           EventStatus
}

// StatusResult is the provider's answer to an active status query, used only
// by the reconciliation sweep. Amount may be zero when the provider does not
// report one; callers fall back to the locally stored amount.
type StatusResult struct {
	Status    EventStatus
	RawStatus string
	Amount    int64
	Currency  string
}
