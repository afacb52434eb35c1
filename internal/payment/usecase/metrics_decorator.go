package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/metrics"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// paymentUseCaseWithMetrics decorates PaymentUseCase with metrics instrumentation.
type paymentUseCaseWithMetrics struct {
	next    PaymentUseCase
	metrics metrics.BusinessMetrics
}

// NewPaymentUseCaseWithMetrics wraps a PaymentUseCase with metrics recording.
func NewPaymentUseCaseWithMetrics(useCase PaymentUseCase, m metrics.BusinessMetrics) PaymentUseCase {
	return &paymentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CreateIntent records metrics for intent creation operations.
func (p *paymentUseCaseWithMetrics) CreateIntent(
	ctx context.Context,
	orderID uuid.UUID,
	provider providerDomain.Provider,
) (*paymentDomain.PaymentIntent, error) {
	start := time.Now()
	intent, err := p.next.CreateIntent(ctx, orderID, provider)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "intent_create", status)
	p.metrics.RecordDuration(ctx, "payment", "intent_create", time.Since(start), status)

	return intent, err
}

// GetIntent records metrics for intent retrieval operations.
func (p *paymentUseCaseWithMetrics) GetIntent(
	ctx context.Context,
	intentID uuid.UUID,
) (*paymentDomain.PaymentIntent, error) {
	start := time.Now()
	intent, err := p.next.GetIntent(ctx, intentID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "intent_get", status)
	p.metrics.RecordDuration(ctx, "payment", "intent_get", time.Since(start), status)

	return intent, err
}

// CreateRefund records metrics for refund creation operations.
func (p *paymentUseCaseWithMetrics) CreateRefund(
	ctx context.Context,
	intentID uuid.UUID,
	amount int64,
) (*paymentDomain.Refund, error) {
	start := time.Now()
	refund, err := p.next.CreateRefund(ctx, intentID, amount)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "refund_create", status)
	p.metrics.RecordDuration(ctx, "payment", "refund_create", time.Since(start), status)

	return refund, err
}

// ProcessWebhook records metrics for webhook processing operations.
func (p *paymentUseCaseWithMetrics) ProcessWebhook(
	ctx context.Context,
	provider providerDomain.Provider,
	header http.Header,
	body []byte,
) error {
	start := time.Now()
	err := p.next.ProcessWebhook(ctx, provider, header, body)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "webhook_process", status)
	p.metrics.RecordDuration(ctx, "payment", "webhook_process", time.Since(start), status)

	return err
}

// SyncIntentStatus records metrics for intent synchronization operations.
func (p *paymentUseCaseWithMetrics) SyncIntentStatus(
	ctx context.Context,
	intentID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	start := time.Now()
	err := p.next.SyncIntentStatus(ctx, intentID, event, actor)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "intent_sync", status)
	p.metrics.RecordDuration(ctx, "payment", "intent_sync", time.Since(start), status)

	return err
}

// SyncRefundStatus records metrics for refund synchronization operations.
func (p *paymentUseCaseWithMetrics) SyncRefundStatus(
	ctx context.Context,
	refundID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	start := time.Now()
	err := p.next.SyncRefundStatus(ctx, refundID, event, actor)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "payment", "refund_sync", status)
	p.metrics.RecordDuration(ctx, "payment", "refund_sync", time.Since(start), status)

	return err
}
