// Package domain defines the core outbox domain entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	// OutboxEventStatusPending marks an event written but not yet published.
	OutboxEventStatusPending OutboxEventStatus = "pending"
	// OutboxEventStatusPublished marks an event delivered to its sink.
	OutboxEventStatusPublished OutboxEventStatus = "published"
	// OutboxEventStatusFailed marks an event that exhausted its retries. It
	// stays visible for inspection, never silently dropped.
	OutboxEventStatusFailed OutboxEventStatus = "failed"
)

// EventType identifies what happened to the aggregate the event belongs to.
type EventType string

const (
	EventTypePaymentCreated           EventType = "payment.created"
	EventTypePaymentPaid              EventType = "payment.paid"
	EventTypePaymentFailed            EventType = "payment.failed"
	EventTypePaymentCanceled          EventType = "payment.canceled"
	EventTypePaymentRefunded          EventType = "payment.refunded"
	EventTypePaymentPartiallyRefunded EventType = "payment.partially_refunded"
	EventTypeRefundCreated            EventType = "refund.created"
	EventTypeLedgerSync               EventType = "ledger.sync"
)

// OutboxEvent represents an event in the transactional outbox pattern.
// Events are written inside the same transaction as the state change they
// describe, then published asynchronously by the outbox worker.
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   EventType
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOutboxEvent builds a pending event with a JSON-encoded payload.
func NewOutboxEvent(aggregateID uuid.UUID, eventType EventType, payload any) (*OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode outbox payload")
	}
	return &OutboxEvent{
		ID:          uuid.Must(uuid.NewV7()),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     string(data),
		Status:      OutboxEventStatusPending,
	}, nil
}
