// Package usecase implements the payment orchestrator: intent creation,
// webhook-driven state transitions, refunds, and the atomic write that ties
// state, ledger, and outbox together.
package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	ledgerDomain "github.com/allisson/payments/internal/ledger/domain"
	orderDomain "github.com/allisson/payments/internal/order/domain"
	outboxDomain "github.com/allisson/payments/internal/outbox/domain"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	"github.com/allisson/payments/internal/provider/adapter"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// IntentRepository defines the interface for PaymentIntent persistence
// operations.
type IntentRepository interface {
	Create(ctx context.Context, intent *paymentDomain.PaymentIntent) error
	GetByID(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error)
	GetByIDForUpdate(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error)
	GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*paymentDomain.PaymentIntent, error)
	GetByProviderIntentID(ctx context.Context, provider providerDomain.Provider, providerIntentID string) (*paymentDomain.PaymentIntent, error)
	ExistsSettledByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error)
	UpdateStatusIf(ctx context.Context, intentID uuid.UUID, from, to paymentDomain.IntentStatus) error
	SetProviderDetails(ctx context.Context, intentID uuid.UUID, providerIntentID, clientSecret, clientURL string, expiresAt *time.Time) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDomain.PaymentIntent, error)
}

// RefundRepository defines the interface for Refund persistence operations.
type RefundRepository interface {
	Create(ctx context.Context, refund *paymentDomain.Refund) error
	GetByID(ctx context.Context, refundID uuid.UUID) (*paymentDomain.Refund, error)
	GetByProviderRefundID(ctx context.Context, providerRefundID string) (*paymentDomain.Refund, error)
	SumActiveByIntent(ctx context.Context, intentID uuid.UUID) (int64, error)
	SumSucceededByIntent(ctx context.Context, intentID uuid.UUID) (int64, error)
	UpdateStatusIf(ctx context.Context, refundID uuid.UUID, from, to paymentDomain.RefundStatus) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDomain.Refund, error)
}

// AppliedEventRepository defines the interface for applied provider event
// persistence operations.
type AppliedEventRepository interface {
	Create(ctx context.Context, event *paymentDomain.AppliedEvent) error
	Exists(ctx context.Context, provider providerDomain.Provider, providerEventID string) (bool, error)
}

// OrderRepository defines the interface for Order lookups.
type OrderRepository interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error)
}

// ConnectionRepository defines the interface for provider connection lookups.
type ConnectionRepository interface {
	GetActive(ctx context.Context, storeID uuid.UUID, provider providerDomain.Provider) (*providerDomain.Connection, error)
	GetFirstActive(ctx context.Context, storeID uuid.UUID) (*providerDomain.Connection, error)
	ListActiveByProvider(ctx context.Context, provider providerDomain.Provider) ([]*providerDomain.Connection, error)
}

// LedgerRepository defines the interface for ledger persistence operations.
type LedgerRepository interface {
	Create(ctx context.Context, tx *ledgerDomain.Transaction) error
}

// OutboxEventRepository defines the interface for outbox event writes.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AdapterRegistry resolves provider adapters per connection.
type AdapterRegistry interface {
	Adapter(ctx context.Context, conn providerDomain.Connection) (adapter.Adapter, error)
}

// PaymentUseCase defines the interface for payment orchestration business
// logic.
type PaymentUseCase interface {
	// CreateIntent starts (or resumes) the collection attempt for an order.
	// An empty provider selects the store's first active connection.
	CreateIntent(ctx context.Context, orderID uuid.UUID, provider providerDomain.Provider) (*paymentDomain.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error)
	// CreateRefund requests a refund against a paid intent. The sum of
	// pending and succeeded refunds never exceeds the intent amount.
	CreateRefund(ctx context.Context, intentID uuid.UUID, amount int64) (*paymentDomain.Refund, error)
	// ProcessWebhook verifies, normalizes, and applies one provider
	// delivery. ErrWebhookSignatureInvalid is the only error handlers turn
	// into a non-2xx response.
	ProcessWebhook(ctx context.Context, provider providerDomain.Provider, header http.Header, body []byte) error
	// SyncIntentStatus applies one normalized payment event to an intent.
	// The dedupe check, transition, ledger entries, and outbox events
	// commit or roll back as one transaction.
	SyncIntentStatus(ctx context.Context, intentID uuid.UUID, event *providerDomain.NormalizedEvent, actor string) error
	// SyncRefundStatus applies one normalized refund event to a refund and,
	// when it succeeds, moves the intent to refunded or partially_refunded.
	SyncRefundStatus(ctx context.Context, refundID uuid.UUID, event *providerDomain.NormalizedEvent, actor string) error
}
