// Package usecase implements the reconciliation worker: it sweeps intents and
// refunds that stayed pending past their deadline, asks the provider for the
// authoritative state, and applies the answer through the same sync path
// webhooks use.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	"github.com/allisson/payments/internal/provider/adapter"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// Config holds reconciliation use case configuration.
type Config struct {
	Interval      time.Duration
	IntentTimeout time.Duration
	RefundTimeout time.Duration
	BatchSize     int
}

// IntentRepository defines the intent lookups the sweeper needs.
type IntentRepository interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDomain.PaymentIntent, error)
}

// RefundRepository defines the refund lookups the sweeper needs.
type RefundRepository interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDomain.Refund, error)
}

// IntentByIDGetter resolves the intent a pending refund belongs to.
type IntentByIDGetter interface {
	GetByID(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error)
}

// ConnectionRepository resolves the provider connection for a store.
type ConnectionRepository interface {
	GetActive(ctx context.Context, storeID uuid.UUID, provider providerDomain.Provider) (*providerDomain.Connection, error)
}

// AdapterRegistry resolves provider adapters per connection.
type AdapterRegistry interface {
	Adapter(ctx context.Context, conn providerDomain.Connection) (adapter.Adapter, error)
}

// StatusSyncer applies normalized events to intents and refunds.
type StatusSyncer interface {
	SyncIntentStatus(ctx context.Context, intentID uuid.UUID, event *providerDomain.NormalizedEvent, actor string) error
	SyncRefundStatus(ctx context.Context, refundID uuid.UUID, event *providerDomain.NormalizedEvent, actor string) error
}

// Result summarizes one reconciliation sweep.
type Result struct {
	CheckedIntents int `json:"checked_intents"`
	SyncedIntents  int `json:"synced_intents"`
	CheckedRefunds int `json:"checked_refunds"`
	SyncedRefunds  int `json:"synced_refunds"`
	Failed         int `json:"failed"`
}

// UseCase defines the interface for reconciliation use cases.
type UseCase interface {
	Start(ctx context.Context) error
	Run(ctx context.Context) (Result, error)
}

// ReconciliationUseCase implements the stale intent and refund sweeps.
type ReconciliationUseCase struct {
	config     Config
	intentRepo IntentRepository
	refundRepo RefundRepository
	getter     IntentByIDGetter
	connRepo   ConnectionRepository
	registry   AdapterRegistry
	syncer     StatusSyncer
	logger     *slog.Logger
	now        func() time.Time
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	config Config,
	intentRepo IntentRepository,
	refundRepo RefundRepository,
	getter IntentByIDGetter,
	connRepo ConnectionRepository,
	registry AdapterRegistry,
	syncer StatusSyncer,
	logger *slog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		config:     config,
		intentRepo: intentRepo,
		refundRepo: refundRepo,
		getter:     getter,
		connRepo:   connRepo,
		registry:   registry,
		syncer:     syncer,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs the reconciliation loop until the context is canceled.
func (uc *ReconciliationUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting reconciliation worker",
			slog.Duration("interval", uc.config.Interval),
			slog.Duration("intent_timeout", uc.config.IntentTimeout),
			slog.Duration("refund_timeout", uc.config.RefundTimeout),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping reconciliation worker")
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.Run(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("reconciliation sweep failed", slog.Any("error", err))
				}
			}
		}
	}
}

// Run executes one full sweep over stale intents and stale refunds. An error
// on one item never stops the sweep; only listing failures abort.
func (uc *ReconciliationUseCase) Run(ctx context.Context) (Result, error) {
	var result Result

	if err := uc.reconcileIntents(ctx, &result); err != nil {
		return result, err
	}
	if err := uc.reconcileRefunds(ctx, &result); err != nil {
		return result, err
	}

	return result, nil
}

func (uc *ReconciliationUseCase) reconcileIntents(ctx context.Context, result *Result) error {
	cutoff := uc.now().Add(-uc.config.IntentTimeout)
	intents, err := uc.intentRepo.ListStalePending(ctx, cutoff, uc.config.BatchSize)
	if err != nil {
		return apperrors.Wrap(err, "failed to list stale intents")
	}

	for _, intent := range intents {
		result.CheckedIntents++
		synced, err := uc.reconcileIntent(ctx, intent)
		if err != nil {
			result.Failed++
			if uc.logger != nil {
				uc.logger.Error("failed to reconcile intent",
					slog.String("payment_intent_id", intent.ID.String()),
					slog.Any("error", err),
				)
			}
			continue
		}
		if synced {
			result.SyncedIntents++
		}
	}

	return nil
}

func (uc *ReconciliationUseCase) reconcileIntent(
	ctx context.Context,
	intent *paymentDomain.PaymentIntent,
) (bool, error) {
	if intent.ProviderIntentID == nil {
		// Provider registration never completed; the next CreateIntent call
		// for the order resumes it.
		return false, nil
	}

	providerAdapter, err := uc.adapterFor(ctx, intent)
	if err != nil {
		return false, err
	}

	status, err := providerAdapter.QueryIntentStatus(ctx, *intent.ProviderIntentID)
	if err != nil {
		return false, err
	}

	if status.Status == providerDomain.EventStatusPending {
		if intent.ExpiresAt == nil || uc.now().Before(*intent.ExpiresAt) {
			// Still collectible, check again next sweep.
			return false, nil
		}
		// The provider will never settle an expired intent; close it out.
		status.Status = providerDomain.EventStatusCanceled
		status.RawStatus = "expired"
	}

	amount := status.Amount
	if amount == 0 {
		amount = intent.Amount
	}
	event := &providerDomain.NormalizedEvent{
		ProviderEventID:  syntheticEventID("intent", intent.ID, uc.now()),
		Kind:             providerDomain.EventKindPayment,
		ProviderIntentID: *intent.ProviderIntentID,
		RawStatus:        status.RawStatus,
		Status:           status.Status,
		Amount:           amount,
		Currency:         intent.Currency,
		OccurredAt:       uc.now(),
	}

	if err := uc.syncer.SyncIntentStatus(ctx, intent.ID, event, paymentDomain.ActorSystem); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *ReconciliationUseCase) reconcileRefunds(ctx context.Context, result *Result) error {
	cutoff := uc.now().Add(-uc.config.RefundTimeout)
	refunds, err := uc.refundRepo.ListStalePending(ctx, cutoff, uc.config.BatchSize)
	if err != nil {
		return apperrors.Wrap(err, "failed to list stale refunds")
	}

	for _, refund := range refunds {
		result.CheckedRefunds++
		synced, err := uc.reconcileRefund(ctx, refund)
		if err != nil {
			result.Failed++
			if uc.logger != nil {
				uc.logger.Error("failed to reconcile refund",
					slog.String("refund_id", refund.ID.String()),
					slog.Any("error", err),
				)
			}
			continue
		}
		if synced {
			result.SyncedRefunds++
		}
	}

	return nil
}

func (uc *ReconciliationUseCase) reconcileRefund(
	ctx context.Context,
	refund *paymentDomain.Refund,
) (bool, error) {
	if refund.ProviderRefundID == nil {
		return false, nil
	}

	intent, err := uc.getter.GetByID(ctx, refund.PaymentIntentID)
	if err != nil {
		return false, err
	}

	providerAdapter, err := uc.adapterFor(ctx, intent)
	if err != nil {
		return false, err
	}

	status, err := providerAdapter.QueryRefundStatus(ctx, *refund.ProviderRefundID)
	if err != nil {
		return false, err
	}
	if status.Status == providerDomain.EventStatusPending {
		return false, nil
	}

	event := &providerDomain.NormalizedEvent{
		ProviderEventID:  syntheticEventID("refund", refund.ID, uc.now()),
		Kind:             providerDomain.EventKindRefund,
		ProviderRefundID: *refund.ProviderRefundID,
		RawStatus:        status.RawStatus,
		Status:           status.Status,
		Amount:           refund.Amount,
		Currency:         intent.Currency,
		OccurredAt:       uc.now(),
	}

	if err := uc.syncer.SyncRefundStatus(ctx, refund.ID, event, paymentDomain.ActorSystem); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *ReconciliationUseCase) adapterFor(
	ctx context.Context,
	intent *paymentDomain.PaymentIntent,
) (adapter.Adapter, error) {
	conn, err := uc.connRepo.GetActive(ctx, intent.StoreID, intent.Provider)
	if err != nil {
		return nil, err
	}
	return uc.registry.Adapter(ctx, *conn)
}

// syntheticEventID builds a unique provider event id for reconciliation
// writes. The timestamp keeps repeated sweeps over the same object from
// colliding on the applied-event unique index.
func syntheticEventID(kind string, id uuid.UUID, now time.Time) string {
	return fmt.Sprintf("reconcile-%s-%s-%d", kind, id, now.Unix())
}
