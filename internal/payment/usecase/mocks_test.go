package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	ledgerDomain "github.com/allisson/payments/internal/ledger/domain"
	orderDomain "github.com/allisson/payments/internal/order/domain"
	outboxDomain "github.com/allisson/payments/internal/outbox/domain"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	"github.com/allisson/payments/internal/provider/adapter"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockIntentRepository is a mock implementation of IntentRepository
type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) Create(ctx context.Context, intent *paymentDomain.PaymentIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) GetByID(
	ctx context.Context,
	intentID uuid.UUID,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) GetByIDForUpdate(
	ctx context.Context,
	intentID uuid.UUID,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) GetOpenByOrderID(
	ctx context.Context,
	orderID uuid.UUID,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) GetByProviderIntentID(
	ctx context.Context,
	provider providerDomain.Provider,
	providerIntentID string,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, provider, providerIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) ExistsSettledByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntentRepository) UpdateStatusIf(
	ctx context.Context,
	intentID uuid.UUID,
	from, to paymentDomain.IntentStatus,
) error {
	args := m.Called(ctx, intentID, from, to)
	return args.Error(0)
}

func (m *MockIntentRepository) SetProviderDetails(
	ctx context.Context,
	intentID uuid.UUID,
	providerIntentID, clientSecret, clientURL string,
	expiresAt *time.Time,
) error {
	args := m.Called(ctx, intentID, providerIntentID, clientSecret, clientURL, expiresAt)
	return args.Error(0)
}

func (m *MockIntentRepository) ListStalePending(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymentDomain.PaymentIntent), args.Error(1)
}

// MockRefundRepository is a mock implementation of RefundRepository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) Create(ctx context.Context, refund *paymentDomain.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) GetByID(ctx context.Context, refundID uuid.UUID) (*paymentDomain.Refund, error) {
	args := m.Called(ctx, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Refund), args.Error(1)
}

func (m *MockRefundRepository) GetByProviderRefundID(
	ctx context.Context,
	providerRefundID string,
) (*paymentDomain.Refund, error) {
	args := m.Called(ctx, providerRefundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Refund), args.Error(1)
}

func (m *MockRefundRepository) SumActiveByIntent(ctx context.Context, intentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, intentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefundRepository) SumSucceededByIntent(ctx context.Context, intentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, intentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRefundRepository) UpdateStatusIf(
	ctx context.Context,
	refundID uuid.UUID,
	from, to paymentDomain.RefundStatus,
) error {
	args := m.Called(ctx, refundID, from, to)
	return args.Error(0)
}

func (m *MockRefundRepository) ListStalePending(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*paymentDomain.Refund, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymentDomain.Refund), args.Error(1)
}

// MockAppliedEventRepository is a mock implementation of AppliedEventRepository
type MockAppliedEventRepository struct {
	mock.Mock
}

func (m *MockAppliedEventRepository) Create(ctx context.Context, event *paymentDomain.AppliedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAppliedEventRepository) Exists(
	ctx context.Context,
	provider providerDomain.Provider,
	providerEventID string,
) (bool, error) {
	args := m.Called(ctx, provider, providerEventID)
	return args.Bool(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

// MockConnectionRepository is a mock implementation of ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) GetActive(
	ctx context.Context,
	storeID uuid.UUID,
	provider providerDomain.Provider,
) (*providerDomain.Connection, error) {
	args := m.Called(ctx, storeID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) GetFirstActive(
	ctx context.Context,
	storeID uuid.UUID,
) (*providerDomain.Connection, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ListActiveByProvider(
	ctx context.Context,
	provider providerDomain.Provider,
) ([]*providerDomain.Connection, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*providerDomain.Connection), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, tx *ledgerDomain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockAdapterRegistry is a mock implementation of AdapterRegistry
type MockAdapterRegistry struct {
	mock.Mock
}

func (m *MockAdapterRegistry) Adapter(
	ctx context.Context,
	conn providerDomain.Connection,
) (adapter.Adapter, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(adapter.Adapter), args.Error(1)
}

// MockAdapter is a mock implementation of adapter.Adapter
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Provider() providerDomain.Provider {
	args := m.Called()
	return args.Get(0).(providerDomain.Provider)
}

func (m *MockAdapter) CreateIntent(
	ctx context.Context,
	req providerDomain.CreateIntentRequest,
) (*providerDomain.CreateIntentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.CreateIntentResult), args.Error(1)
}

func (m *MockAdapter) ParseWebhook(
	ctx context.Context,
	header http.Header,
	body []byte,
) (*providerDomain.NormalizedEvent, error) {
	args := m.Called(ctx, header, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.NormalizedEvent), args.Error(1)
}

func (m *MockAdapter) QueryIntentStatus(
	ctx context.Context,
	providerIntentID string,
) (*providerDomain.StatusResult, error) {
	args := m.Called(ctx, providerIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.StatusResult), args.Error(1)
}

func (m *MockAdapter) Refund(
	ctx context.Context,
	providerIntentID string,
	amount int64,
	currency string,
) (*providerDomain.RefundResult, error) {
	args := m.Called(ctx, providerIntentID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.RefundResult), args.Error(1)
}

func (m *MockAdapter) QueryRefundStatus(
	ctx context.Context,
	providerRefundID string,
) (*providerDomain.StatusResult, error) {
	args := m.Called(ctx, providerRefundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providerDomain.StatusResult), args.Error(1)
}
