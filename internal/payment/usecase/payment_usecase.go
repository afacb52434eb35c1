package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	ledgerDomain "github.com/allisson/payments/internal/ledger/domain"
	outboxDomain "github.com/allisson/payments/internal/outbox/domain"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// Config holds payment use case configuration.
type Config struct {
	// IntentExpiry bounds how long client credentials stay actionable.
	IntentExpiry time.Duration
	// ReturnURL and CancelURL are where redirect-based providers send the
	// shopper back.
	ReturnURL string
	CancelURL string
}

// paymentUseCase implements the PaymentUseCase interface.
type paymentUseCase struct {
	config     Config
	txManager  database.TxManager
	intentRepo IntentRepository
	refundRepo RefundRepository
	eventRepo  AppliedEventRepository
	orderRepo  OrderRepository
	connRepo   ConnectionRepository
	ledgerRepo LedgerRepository
	outboxRepo OutboxEventRepository
	registry   AdapterRegistry
	logger     *slog.Logger
}

// NewPaymentUseCase creates a new payment orchestrator use case.
func NewPaymentUseCase(
	config Config,
	txManager database.TxManager,
	intentRepo IntentRepository,
	refundRepo RefundRepository,
	eventRepo AppliedEventRepository,
	orderRepo OrderRepository,
	connRepo ConnectionRepository,
	ledgerRepo LedgerRepository,
	outboxRepo OutboxEventRepository,
	registry AdapterRegistry,
	logger *slog.Logger,
) PaymentUseCase {
	return &paymentUseCase{
		config:     config,
		txManager:  txManager,
		intentRepo: intentRepo,
		refundRepo: refundRepo,
		eventRepo:  eventRepo,
		orderRepo:  orderRepo,
		connRepo:   connRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		registry:   registry,
		logger:     logger,
	}
}

// intentEventPayload is the outbox payload for intent lifecycle events.
type intentEventPayload struct {
	PaymentIntentID uuid.UUID                  `json:"payment_intent_id"`
	OrderID         uuid.UUID                  `json:"order_id"`
	StoreID         uuid.UUID                  `json:"store_id"`
	Provider        providerDomain.Provider    `json:"provider"`
	Status          paymentDomain.IntentStatus `json:"status"`
	Amount          int64                      `json:"amount"`
	Currency        string                     `json:"currency"`
	Actor           string                     `json:"actor,omitempty"`
	ProviderEventID string                     `json:"provider_event_id,omitempty"`
}

// refundEventPayload is the outbox payload for refund creation events.
type refundEventPayload struct {
	RefundID        uuid.UUID                  `json:"refund_id"`
	PaymentIntentID uuid.UUID                  `json:"payment_intent_id"`
	Amount          int64                      `json:"amount"`
	Status          paymentDomain.RefundStatus `json:"status"`
}

// ledgerSyncPayload is the outbox payload emitted alongside every ledger
// transaction for external ledger export.
type ledgerSyncPayload struct {
	LedgerTransactionID uuid.UUID                    `json:"ledger_transaction_id"`
	PaymentIntentID     uuid.UUID                    `json:"payment_intent_id"`
	RefundID            *uuid.UUID                   `json:"refund_id,omitempty"`
	Kind                ledgerDomain.TransactionKind `json:"kind"`
}

// CreateIntent starts the collection attempt for an order. Calling it again
// while an open intent exists resumes that intent instead of erroring.
func (u *paymentUseCase) CreateIntent(
	ctx context.Context,
	orderID uuid.UUID,
	provider providerDomain.Provider,
) (*paymentDomain.PaymentIntent, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	settled, err := u.intentRepo.ExistsSettledByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, paymentDomain.ErrIntentAlreadyPaid
	}

	existing, err := u.intentRepo.GetOpenByOrderID(ctx, orderID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == paymentDomain.IntentStatusCreated && existing.ProviderIntentID == nil {
			// Provider creation failed last time, drive it again.
			return u.driveProviderCreate(ctx, existing)
		}
		return existing, nil
	}

	conn, err := u.selectConnection(ctx, order.StoreID, provider)
	if err != nil {
		return nil, err
	}

	intent := &paymentDomain.PaymentIntent{
		ID:       uuid.Must(uuid.NewV7()),
		OrderID:  order.ID,
		StoreID:  order.StoreID,
		Provider: conn.Provider,
		Status:   paymentDomain.IntentStatusCreated,
		Amount:   order.TotalAmount,
		Currency: order.Currency,
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.intentRepo.Create(txCtx, intent); err != nil {
			return err
		}
		return u.emitIntentEvent(txCtx, intent, outboxDomain.EventTypePaymentCreated, "", "")
	})
	if err != nil {
		return nil, err
	}

	return u.driveProviderCreate(ctx, intent)
}

// driveProviderCreate registers the intent with the PSP and moves it to
// pending. The provider call happens outside any transaction.
func (u *paymentUseCase) driveProviderCreate(
	ctx context.Context,
	intent *paymentDomain.PaymentIntent,
) (*paymentDomain.PaymentIntent, error) {
	conn, err := u.connRepo.GetActive(ctx, intent.StoreID, intent.Provider)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, paymentDomain.ErrNoProviderAvailable
		}
		return nil, err
	}
	providerAdapter, err := u.registry.Adapter(ctx, *conn)
	if err != nil {
		return nil, err
	}

	result, err := providerAdapter.CreateIntent(ctx, providerDomain.CreateIntentRequest{
		IntentID:  intent.ID,
		OrderID:   intent.OrderID,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		ReturnURL: u.config.ReturnURL,
		CancelURL: u.config.CancelURL,
	})
	if err != nil {
		// Intent stays in created, the next CreateIntent call retries.
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(u.config.IntentExpiry)
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		err := u.intentRepo.SetProviderDetails(
			txCtx, intent.ID, result.ProviderIntentID, result.ClientSecret, result.ClientURL, &expiresAt,
		)
		if err != nil {
			return err
		}
		return u.intentRepo.UpdateStatusIf(
			txCtx, intent.ID, paymentDomain.IntentStatusCreated, paymentDomain.IntentStatusPending,
		)
	})
	if err != nil {
		return nil, err
	}

	intent.ProviderIntentID = &result.ProviderIntentID
	intent.ClientSecret = result.ClientSecret
	intent.ClientURL = result.ClientURL
	intent.ExpiresAt = &expiresAt
	intent.Status = paymentDomain.IntentStatusPending
	return intent, nil
}

func (u *paymentUseCase) selectConnection(
	ctx context.Context,
	storeID uuid.UUID,
	provider providerDomain.Provider,
) (*providerDomain.Connection, error) {
	var conn *providerDomain.Connection
	var err error
	if provider != "" {
		if !provider.Valid() {
			return nil, providerDomain.ErrUnsupportedProvider
		}
		conn, err = u.connRepo.GetActive(ctx, storeID, provider)
	} else {
		conn, err = u.connRepo.GetFirstActive(ctx, storeID)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, paymentDomain.ErrNoProviderAvailable
		}
		return nil, err
	}
	return conn, nil
}

// GetIntent retrieves a payment intent by its id.
func (u *paymentUseCase) GetIntent(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error) {
	return u.intentRepo.GetByID(ctx, intentID)
}

// CreateRefund requests a refund against a paid intent.
func (u *paymentUseCase) CreateRefund(
	ctx context.Context,
	intentID uuid.UUID,
	amount int64,
) (*paymentDomain.Refund, error) {
	if amount <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "refund amount must be positive")
	}

	var intent *paymentDomain.PaymentIntent
	var result *providerDomain.RefundResult
	var refund *paymentDomain.Refund
	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		// The row lock serializes concurrent refund requests for the same
		// intent, otherwise two could both pass the headroom check. It is
		// held across the provider call, bounded by the adapter timeout.
		var err error
		intent, err = u.intentRepo.GetByIDForUpdate(txCtx, intentID)
		if err != nil {
			return err
		}
		if intent.Status != paymentDomain.IntentStatusPaid &&
			intent.Status != paymentDomain.IntentStatusPartiallyRefunded {
			return paymentDomain.ErrIntentNotRefundable
		}
		if intent.ProviderIntentID == nil {
			return paymentDomain.ErrIntentNotRefundable
		}

		// Pending refunds count too, they may still succeed.
		active, err := u.refundRepo.SumActiveByIntent(txCtx, intentID)
		if err != nil {
			return err
		}
		if active+amount > intent.Amount {
			return paymentDomain.ErrRefundExceedsPaidAmount
		}

		conn, err := u.connRepo.GetActive(txCtx, intent.StoreID, intent.Provider)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return paymentDomain.ErrNoProviderAvailable
			}
			return err
		}
		providerAdapter, err := u.registry.Adapter(txCtx, *conn)
		if err != nil {
			return err
		}

		result, err = providerAdapter.Refund(txCtx, *intent.ProviderIntentID, amount, intent.Currency)
		if err != nil {
			return err
		}

		refund = &paymentDomain.Refund{
			ID:               uuid.Must(uuid.NewV7()),
			PaymentIntentID:  intent.ID,
			ProviderRefundID: &result.ProviderRefundID,
			Amount:           amount,
			Status:           paymentDomain.RefundStatusPending,
		}
		if err := u.refundRepo.Create(txCtx, refund); err != nil {
			return err
		}
		event, err := outboxDomain.NewOutboxEvent(refund.ID, outboxDomain.EventTypeRefundCreated, refundEventPayload{
			RefundID:        refund.ID,
			PaymentIntentID: intent.ID,
			Amount:          amount,
			Status:          refund.Status,
		})
		if err != nil {
			return err
		}
		return u.outboxRepo.Create(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	// Some providers settle refunds synchronously. Apply the final state
	// through the same path a webhook would take.
	if result.Status != providerDomain.EventStatusPending {
		syncErr := u.SyncRefundStatus(ctx, refund.ID, &providerDomain.NormalizedEvent{
			ProviderEventID:  fmt.Sprintf("refund-create-%s", result.ProviderRefundID),
			Kind:             providerDomain.EventKindRefund,
			ProviderRefundID: result.ProviderRefundID,
			Status:           result.Status,
			Amount:           amount,
			Currency:         intent.Currency,
			OccurredAt:       time.Now().UTC(),
		}, paymentDomain.ActorSystem)
		if syncErr != nil {
			u.logger.Error("failed to apply synchronous refund result",
				slog.String("refund_id", refund.ID.String()),
				slog.Any("error", syncErr),
			)
		} else {
			refund.Status = refundStatusFromEvent(result.Status)
		}
	}

	return refund, nil
}

// ProcessWebhook verifies and applies one provider delivery.
func (u *paymentUseCase) ProcessWebhook(
	ctx context.Context,
	provider providerDomain.Provider,
	header http.Header,
	body []byte,
) error {
	if !provider.Valid() {
		return providerDomain.ErrUnsupportedProvider
	}

	conns, err := u.connRepo.ListActiveByProvider(ctx, provider)
	if err != nil {
		return err
	}

	// Deliveries do not say which store they belong to, so each active
	// connection's secret is tried until one verifies.
	var event *providerDomain.NormalizedEvent
	verified := false
	for _, conn := range conns {
		providerAdapter, err := u.registry.Adapter(ctx, *conn)
		if err != nil {
			u.logger.Warn("skipping provider connection",
				slog.String("connection_id", conn.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		event, err = providerAdapter.ParseWebhook(ctx, header, body)
		if err != nil {
			if apperrors.Is(err, providerDomain.ErrWebhookSignatureInvalid) {
				continue
			}
			return err
		}
		verified = true
		break
	}
	if !verified {
		return providerDomain.ErrWebhookSignatureInvalid
	}
	if event == nil {
		// Event type the engine does not care about.
		return nil
	}

	switch event.Kind {
	case providerDomain.EventKindPayment:
		return u.applyPaymentEvent(ctx, provider, event)
	case providerDomain.EventKindRefund:
		return u.applyRefundEvent(ctx, provider, event)
	default:
		u.logger.Warn("unknown event kind", slog.String("kind", string(event.Kind)))
		return nil
	}
}

func (u *paymentUseCase) applyPaymentEvent(
	ctx context.Context,
	provider providerDomain.Provider,
	event *providerDomain.NormalizedEvent,
) error {
	intent, err := u.intentRepo.GetByProviderIntentID(ctx, provider, event.ProviderIntentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			u.logger.Warn("webhook references unknown intent",
				slog.String("provider", string(provider)),
				slog.String("provider_intent_id", event.ProviderIntentID),
				slog.String("provider_event_id", event.ProviderEventID),
			)
			return nil
		}
		return err
	}
	return u.SyncIntentStatus(ctx, intent.ID, event, paymentDomain.WebhookActor(event.ProviderEventID))
}

func (u *paymentUseCase) applyRefundEvent(
	ctx context.Context,
	provider providerDomain.Provider,
	event *providerDomain.NormalizedEvent,
) error {
	refund, err := u.refundRepo.GetByProviderRefundID(ctx, event.ProviderRefundID)
	if err == nil {
		return u.SyncRefundStatus(ctx, refund.ID, event, paymentDomain.WebhookActor(event.ProviderEventID))
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	// A refund issued outside the engine (provider dashboard). Register it
	// if the delivery carries enough to correlate the intent.
	if event.ProviderIntentID == "" {
		u.logger.Warn("webhook references unknown refund",
			slog.String("provider", string(provider)),
			slog.String("provider_refund_id", event.ProviderRefundID),
		)
		return nil
	}
	intent, err := u.intentRepo.GetByProviderIntentID(ctx, provider, event.ProviderIntentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			u.logger.Warn("webhook references unknown refund and intent",
				slog.String("provider", string(provider)),
				slog.String("provider_refund_id", event.ProviderRefundID),
			)
			return nil
		}
		return err
	}

	refund = &paymentDomain.Refund{
		ID:               uuid.Must(uuid.NewV7()),
		PaymentIntentID:  intent.ID,
		ProviderRefundID: &event.ProviderRefundID,
		Amount:           event.Amount,
		Status:           paymentDomain.RefundStatusPending,
	}
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.refundRepo.Create(txCtx, refund); err != nil {
			return err
		}
		outboxEvent, err := outboxDomain.NewOutboxEvent(refund.ID, outboxDomain.EventTypeRefundCreated, refundEventPayload{
			RefundID:        refund.ID,
			PaymentIntentID: intent.ID,
			Amount:          refund.Amount,
			Status:          refund.Status,
		})
		if err != nil {
			return err
		}
		return u.outboxRepo.Create(txCtx, outboxEvent)
	})
	if err != nil {
		return err
	}
	return u.SyncRefundStatus(ctx, refund.ID, event, paymentDomain.WebhookActor(event.ProviderEventID))
}

// SyncIntentStatus applies one normalized payment event to an intent. All
// writes happen in one transaction; an out-of-order or duplicate event
// produces zero writes.
func (u *paymentUseCase) SyncIntentStatus(
	ctx context.Context,
	intentID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		intent, err := u.intentRepo.GetByID(txCtx, intentID)
		if err != nil {
			return err
		}

		applied, err := u.eventRepo.Exists(txCtx, intent.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if applied {
			u.logger.Info("skipping already applied event",
				slog.String("provider_event_id", event.ProviderEventID),
				slog.String("payment_intent_id", intent.ID.String()),
			)
			return nil
		}

		target, ok := intentStatusFromEvent(event.Status)
		if !ok {
			u.logger.Warn("payment event carries unmappable status",
				slog.String("provider_event_id", event.ProviderEventID),
				slog.String("status", string(event.Status)),
			)
			return nil
		}
		if !paymentDomain.CanTransition(intent.Status, target) {
			u.logger.Warn("dropping out-of-order payment event",
				slog.String("payment_intent_id", intent.ID.String()),
				slog.String("provider_event_id", event.ProviderEventID),
				slog.String("from", string(intent.Status)),
				slog.String("to", string(target)),
			)
			return nil
		}
		if event.Amount != 0 && event.Amount != intent.Amount {
			u.logger.Warn("payment event amount differs from intent",
				slog.String("payment_intent_id", intent.ID.String()),
				slog.Int64("event_amount", event.Amount),
				slog.Int64("intent_amount", intent.Amount),
			)
		}

		if err := u.recordAppliedEvent(txCtx, intent.Provider, event, actor); err != nil {
			return err
		}
		if err := u.intentRepo.UpdateStatusIf(txCtx, intent.ID, intent.Status, target); err != nil {
			return err
		}

		if target == paymentDomain.IntentStatusPaid {
			ledgerTx := ledgerDomain.NewPaymentTransaction(intent.ID, intent.Amount, intent.Currency)
			if err := u.ledgerRepo.Create(txCtx, ledgerTx); err != nil {
				return err
			}
			if err := u.emitLedgerSync(txCtx, ledgerTx); err != nil {
				return err
			}
		}

		intent.Status = target
		return u.emitIntentEvent(txCtx, intent, eventTypeForIntentStatus(target), actor, event.ProviderEventID)
	})
}

// SyncRefundStatus applies one normalized refund event. A refund that
// succeeds also moves its intent to refunded or partially_refunded and books
// the refund in the ledger, all in the same transaction.
func (u *paymentUseCase) SyncRefundStatus(
	ctx context.Context,
	refundID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		refund, err := u.refundRepo.GetByID(txCtx, refundID)
		if err != nil {
			return err
		}
		intent, err := u.intentRepo.GetByID(txCtx, refund.PaymentIntentID)
		if err != nil {
			return err
		}

		applied, err := u.eventRepo.Exists(txCtx, intent.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if applied {
			u.logger.Info("skipping already applied event",
				slog.String("provider_event_id", event.ProviderEventID),
				slog.String("refund_id", refund.ID.String()),
			)
			return nil
		}

		target := refundStatusFromEvent(event.Status)
		if refund.Status.Terminal() || target == refund.Status {
			u.logger.Warn("dropping out-of-order refund event",
				slog.String("refund_id", refund.ID.String()),
				slog.String("provider_event_id", event.ProviderEventID),
				slog.String("from", string(refund.Status)),
				slog.String("to", string(target)),
			)
			return nil
		}

		if err := u.recordAppliedEvent(txCtx, intent.Provider, event, actor); err != nil {
			return err
		}
		if err := u.refundRepo.UpdateStatusIf(txCtx, refund.ID, refund.Status, target); err != nil {
			return err
		}

		if target != paymentDomain.RefundStatusSucceeded {
			return nil
		}

		// The update above is visible inside the transaction, so the sum
		// already includes this refund.
		refunded, err := u.refundRepo.SumSucceededByIntent(txCtx, intent.ID)
		if err != nil {
			return err
		}
		ledgerKind := ledgerDomain.TransactionKindPartialRefund
		intentTarget := paymentDomain.IntentStatusPartiallyRefunded
		if refunded >= intent.Amount {
			ledgerKind = ledgerDomain.TransactionKindRefund
			intentTarget = paymentDomain.IntentStatusRefunded
		}

		ledgerTx := ledgerDomain.NewRefundTransaction(intent.ID, refund.ID, refund.Amount, intent.Currency, ledgerKind)
		if err := u.ledgerRepo.Create(txCtx, ledgerTx); err != nil {
			return err
		}
		if err := u.emitLedgerSync(txCtx, ledgerTx); err != nil {
			return err
		}
		if !paymentDomain.CanTransition(intent.Status, intentTarget) {
			u.logger.Warn("refund succeeded but intent cannot transition",
				slog.String("payment_intent_id", intent.ID.String()),
				slog.String("from", string(intent.Status)),
				slog.String("to", string(intentTarget)),
			)
			return nil
		}
		if err := u.intentRepo.UpdateStatusIf(txCtx, intent.ID, intent.Status, intentTarget); err != nil {
			return err
		}

		intent.Status = intentTarget
		return u.emitIntentEvent(txCtx, intent, eventTypeForIntentStatus(intentTarget), actor, event.ProviderEventID)
	})
}

func (u *paymentUseCase) recordAppliedEvent(
	ctx context.Context,
	provider providerDomain.Provider,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	return u.eventRepo.Create(ctx, &paymentDomain.AppliedEvent{
		ID:              uuid.Must(uuid.NewV7()),
		Provider:        provider,
		ProviderEventID: event.ProviderEventID,
		Kind:            event.Kind,
		Actor:           actor,
		Payload:         event.Metadata,
	})
}

func (u *paymentUseCase) emitIntentEvent(
	ctx context.Context,
	intent *paymentDomain.PaymentIntent,
	eventType outboxDomain.EventType,
	actor, providerEventID string,
) error {
	event, err := outboxDomain.NewOutboxEvent(intent.ID, eventType, intentEventPayload{
		PaymentIntentID: intent.ID,
		OrderID:         intent.OrderID,
		StoreID:         intent.StoreID,
		Provider:        intent.Provider,
		Status:          intent.Status,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Actor:           actor,
		ProviderEventID: providerEventID,
	})
	if err != nil {
		return err
	}
	return u.outboxRepo.Create(ctx, event)
}

func (u *paymentUseCase) emitLedgerSync(ctx context.Context, ledgerTx *ledgerDomain.Transaction) error {
	event, err := outboxDomain.NewOutboxEvent(ledgerTx.ID, outboxDomain.EventTypeLedgerSync, ledgerSyncPayload{
		LedgerTransactionID: ledgerTx.ID,
		PaymentIntentID:     ledgerTx.PaymentIntentID,
		RefundID:            ledgerTx.RefundID,
		Kind:                ledgerTx.Kind,
	})
	if err != nil {
		return err
	}
	return u.outboxRepo.Create(ctx, event)
}

// intentStatusFromEvent maps canonical event statuses onto intent statuses.
// Refund-only statuses do not map.
func intentStatusFromEvent(status providerDomain.EventStatus) (paymentDomain.IntentStatus, bool) {
	switch status {
	case providerDomain.EventStatusPending:
		return paymentDomain.IntentStatusPending, true
	case providerDomain.EventStatusPaid:
		return paymentDomain.IntentStatusPaid, true
	case providerDomain.EventStatusFailed:
		return paymentDomain.IntentStatusFailed, true
	case providerDomain.EventStatusCanceled:
		return paymentDomain.IntentStatusCanceled, true
	}
	return "", false
}

func refundStatusFromEvent(status providerDomain.EventStatus) paymentDomain.RefundStatus {
	switch status {
	case providerDomain.EventStatusSucceeded:
		return paymentDomain.RefundStatusSucceeded
	case providerDomain.EventStatusFailed:
		return paymentDomain.RefundStatusFailed
	case providerDomain.EventStatusCanceled:
		return paymentDomain.RefundStatusCanceled
	default:
		return paymentDomain.RefundStatusPending
	}
}

// eventTypeForIntentStatus maps an applied intent status onto its outbox
// event type.
func eventTypeForIntentStatus(status paymentDomain.IntentStatus) outboxDomain.EventType {
	switch status {
	case paymentDomain.IntentStatusPaid:
		return outboxDomain.EventTypePaymentPaid
	case paymentDomain.IntentStatusFailed:
		return outboxDomain.EventTypePaymentFailed
	case paymentDomain.IntentStatusCanceled:
		return outboxDomain.EventTypePaymentCanceled
	case paymentDomain.IntentStatusRefunded:
		return outboxDomain.EventTypePaymentRefunded
	case paymentDomain.IntentStatusPartiallyRefunded:
		return outboxDomain.EventTypePaymentPartiallyRefunded
	default:
		return outboxDomain.EventTypePaymentCreated
	}
}
