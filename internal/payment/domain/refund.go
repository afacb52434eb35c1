package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus represents the lifecycle state of a refund request.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
	RefundStatusCanceled  RefundStatus = "canceled"
)

// Terminal reports whether the refund admits no further transitions.
func (s RefundStatus) Terminal() bool {
	return s != RefundStatusPending
}

// Refund is a request to return funds for a previously paid intent.
//
// The sum of succeeded refund amounts for an intent never exceeds the
// intent's paid amount; the orchestrator enforces this before accepting a
// refund and again when finalizing one.
type Refund struct {
	// ID is the unique identifier of the refund.
	ID uuid.UUID
	// PaymentIntentID references the paid intent being refunded.
	PaymentIntentID uuid.UUID
	// ProviderRefundID is the PSP's refund identifier, nil until the provider accepts it.
	ProviderRefundID *string
	// Amount is the refund amount in the intent currency's minor units.
	Amount int64
	// Status is the current refund state.
	Status RefundStatus
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time
	// UpdatedAt is bumped on every transition; stale-refund sweeps key on it.
	UpdatedAt time.Time
}
