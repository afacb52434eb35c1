// Package domain defines the core payment domain entities and the intent state
// machine. A PaymentIntent records one attempt to collect money for an order;
// its status only moves along the transitions declared here, and only through
// the orchestrator use case.
package domain

import (
	"time"

	"github.com/google/uuid"

	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// IntentStatus represents the lifecycle state of a payment intent.
type IntentStatus string

const (
	IntentStatusCreated           IntentStatus = "created"
	IntentStatusPending           IntentStatus = "pending"
	IntentStatusPaid              IntentStatus = "paid"
	IntentStatusFailed            IntentStatus = "failed"
	IntentStatusCanceled          IntentStatus = "canceled"
	IntentStatusRefunded          IntentStatus = "refunded"
	IntentStatusPartiallyRefunded IntentStatus = "partially_refunded"
)

// legalTransitions is the intent state machine. Anything not listed here is
// either a duplicate (same status) or an out-of-order event and must be
// dropped without side effects.
var legalTransitions = map[IntentStatus][]IntentStatus{
	IntentStatusCreated: {IntentStatusPending},
	IntentStatusPending: {IntentStatusPaid, IntentStatusFailed, IntentStatusCanceled},
	IntentStatusPaid:    {IntentStatusRefunded, IntentStatusPartiallyRefunded},
	IntentStatusPartiallyRefunded: {
		IntentStatusRefunded,
		IntentStatusPartiallyRefunded,
	},
}

// CanTransition reports whether moving from one status to another is legal.
// A transition to the same status is not legal; callers treat it as a
// duplicate delivery and skip all writes.
func CanTransition(from, to IntentStatus) bool {
	if from == to && from != IntentStatusPartiallyRefunded {
		return false
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further webhook-driven
// transitions besides refunds of a paid intent.
func (s IntentStatus) Terminal() bool {
	switch s {
	case IntentStatusFailed, IntentStatusCanceled, IntentStatusRefunded:
		return true
	}
	return false
}

// Open reports whether the intent still represents an in-flight collection
// attempt. At most one open intent may exist per order.
func (s IntentStatus) Open() bool {
	return s == IntentStatusCreated || s == IntentStatusPending
}

// PaymentIntent identifies one attempt to collect money for one order.
//
// Amount and currency are always resolved server-side from the order, never
// accepted from a caller. Intents are never deleted; they are retained for audit.
type PaymentIntent struct {
	// ID is the unique identifier of the intent.
	ID uuid.UUID
	// OrderID references the order this intent collects money for.
	OrderID uuid.UUID
	// StoreID references the store the order belongs to.
	StoreID uuid.UUID
	// Provider is the PSP handling this intent.
	Provider providerDomain.Provider
	// ProviderIntentID is the PSP's identifier, nil until the provider confirms creation.
	ProviderIntentID *string
	// Status is the current state machine position.
	Status IntentStatus
	// Amount is the charge amount in the currency's minor units.
	Amount int64
	// Currency is the ISO 4217 alphabetic code.
	Currency string
	// ClientSecret is the opaque provider-issued credential the storefront
	// needs to complete the payment. Returned only at creation time.
	ClientSecret string `json:"-"`
	// ClientURL is the provider-hosted page the shopper is redirected to, if any.
	ClientURL string
	// ExpiresAt marks when the client credentials stop being actionable.
	ExpiresAt *time.Time
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time
	// UpdatedAt is bumped on every applied transition; stale-intent sweeps key on it.
	UpdatedAt time.Time
}
