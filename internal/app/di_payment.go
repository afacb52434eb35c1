package app

import (
	"fmt"
	"sync"

	"github.com/allisson/payments/internal/http"
	ledgerRepository "github.com/allisson/payments/internal/ledger/repository"
	orderRepository "github.com/allisson/payments/internal/order/repository"
	paymentHTTP "github.com/allisson/payments/internal/payment/http"
	paymentRepository "github.com/allisson/payments/internal/payment/repository"
	paymentUsecase "github.com/allisson/payments/internal/payment/usecase"
	"github.com/allisson/payments/internal/provider/adapter"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
	providerRepository "github.com/allisson/payments/internal/provider/repository"
)

// paymentComponents holds the payment domain dependencies of the container.
type paymentComponents struct {
	intentRepo *paymentRepository.PostgreSQLIntentRepository
	refundRepo *paymentRepository.PostgreSQLRefundRepository
	eventRepo  *paymentRepository.PostgreSQLAppliedEventRepository
	orderRepo  *orderRepository.PostgreSQLOrderRepository
	connRepo   *providerRepository.PostgreSQLConnectionRepository
	ledgerRepo *ledgerRepository.PostgreSQLLedgerRepository

	registry       *adapter.Registry
	paymentUseCase paymentUsecase.PaymentUseCase

	paymentHandler *paymentHTTP.PaymentHandler
	webhookHandler *paymentHTTP.WebhookHandler
	workerHandler  *http.WorkerHandler

	intentRepoInit     sync.Once
	refundRepoInit     sync.Once
	eventRepoInit      sync.Once
	orderRepoInit      sync.Once
	connRepoInit       sync.Once
	ledgerRepoInit     sync.Once
	registryInit       sync.Once
	paymentUseCaseInit sync.Once
	paymentHandlerInit sync.Once
	webhookHandlerInit sync.Once
	workerHandlerInit  sync.Once
}

// IntentRepository returns the payment intent repository instance.
func (c *Container) IntentRepository() (*paymentRepository.PostgreSQLIntentRepository, error) {
	var err error
	c.intentRepoInit.Do(func() {
		c.intentRepo, err = c.initIntentRepository()
		if err != nil {
			c.initErrors["intentRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["intentRepo"]; exists {
		return nil, storedErr
	}
	return c.intentRepo, nil
}

// RefundRepository returns the refund repository instance.
func (c *Container) RefundRepository() (*paymentRepository.PostgreSQLRefundRepository, error) {
	var err error
	c.refundRepoInit.Do(func() {
		c.refundRepo, err = c.initRefundRepository()
		if err != nil {
			c.initErrors["refundRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refundRepo"]; exists {
		return nil, storedErr
	}
	return c.refundRepo, nil
}

// AppliedEventRepository returns the applied provider event repository instance.
func (c *Container) AppliedEventRepository() (*paymentRepository.PostgreSQLAppliedEventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initAppliedEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// OrderRepository returns the order repository instance.
func (c *Container) OrderRepository() (*orderRepository.PostgreSQLOrderRepository, error) {
	var err error
	c.orderRepoInit.Do(func() {
		c.orderRepo, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// ConnectionRepository returns the provider connection repository instance.
func (c *Container) ConnectionRepository() (*providerRepository.PostgreSQLConnectionRepository, error) {
	var err error
	c.connRepoInit.Do(func() {
		c.connRepo, err = c.initConnectionRepository()
		if err != nil {
			c.initErrors["connRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["connRepo"]; exists {
		return nil, storedErr
	}
	return c.connRepo, nil
}

// LedgerRepository returns the ledger repository instance.
func (c *Container) LedgerRepository() (*ledgerRepository.PostgreSQLLedgerRepository, error) {
	var err error
	c.ledgerRepoInit.Do(func() {
		c.ledgerRepo, err = c.initLedgerRepository()
		if err != nil {
			c.initErrors["ledgerRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ledgerRepo"]; exists {
		return nil, storedErr
	}
	return c.ledgerRepo, nil
}

// AdapterRegistry returns the provider adapter registry with all supported
// provider factories installed.
func (c *Container) AdapterRegistry() *adapter.Registry {
	c.registryInit.Do(func() {
		logger := c.Logger()
		c.registry = adapter.NewRegistry()
		c.registry.Register(providerDomain.ProviderStripe, adapter.NewStripeFactory(
			c.config.StripeAPIBase,
			c.config.ProviderHTTPTimeout,
			c.config.WebhookTolerance,
			logger,
		))
		c.registry.Register(providerDomain.ProviderPayPal, adapter.NewPayPalFactory(
			c.config.PayPalAPIBase,
			logger,
		))
	})
	return c.registry
}

// PaymentUseCase returns the payment orchestrator use case instance.
func (c *Container) PaymentUseCase() (paymentUsecase.PaymentUseCase, error) {
	var err error
	c.paymentUseCaseInit.Do(func() {
		c.paymentUseCase, err = c.initPaymentUseCase()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["paymentUseCase"]; exists {
		return nil, storedErr
	}
	return c.paymentUseCase, nil
}

// PaymentHandler returns the payment HTTP handler instance.
func (c *Container) PaymentHandler() (*paymentHTTP.PaymentHandler, error) {
	var err error
	c.paymentHandlerInit.Do(func() {
		c.paymentHandler, err = c.initPaymentHandler()
		if err != nil {
			c.initErrors["paymentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["paymentHandler"]; exists {
		return nil, storedErr
	}
	return c.paymentHandler, nil
}

// WebhookHandler returns the webhook HTTP handler instance.
func (c *Container) WebhookHandler() (*paymentHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.initErrors["webhookHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookHandler"]; exists {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

// WorkerHandler returns the worker trigger HTTP handler instance.
func (c *Container) WorkerHandler() (*http.WorkerHandler, error) {
	var err error
	c.workerHandlerInit.Do(func() {
		c.workerHandler, err = c.initWorkerHandler()
		if err != nil {
			c.initErrors["workerHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workerHandler"]; exists {
		return nil, storedErr
	}
	return c.workerHandler, nil
}

// initIntentRepository creates the payment intent repository instance.
func (c *Container) initIntentRepository() (*paymentRepository.PostgreSQLIntentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for intent repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return paymentRepository.NewPostgreSQLIntentRepository(db), nil
}

// initRefundRepository creates the refund repository instance.
func (c *Container) initRefundRepository() (*paymentRepository.PostgreSQLRefundRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for refund repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return paymentRepository.NewPostgreSQLRefundRepository(db), nil
}

// initAppliedEventRepository creates the applied provider event repository instance.
func (c *Container) initAppliedEventRepository() (*paymentRepository.PostgreSQLAppliedEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for applied event repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return paymentRepository.NewPostgreSQLAppliedEventRepository(db), nil
}

// initOrderRepository creates the order repository instance.
func (c *Container) initOrderRepository() (*orderRepository.PostgreSQLOrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return orderRepository.NewPostgreSQLOrderRepository(db), nil
}

// initConnectionRepository creates the provider connection repository instance.
func (c *Container) initConnectionRepository() (*providerRepository.PostgreSQLConnectionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for connection repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return providerRepository.NewPostgreSQLConnectionRepository(db), nil
}

// initLedgerRepository creates the ledger repository instance.
func (c *Container) initLedgerRepository() (*ledgerRepository.PostgreSQLLedgerRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ledger repository: %w", err)
	}
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return ledgerRepository.NewPostgreSQLLedgerRepository(db), nil
}

// initPaymentUseCase creates the payment use case with all its dependencies.
func (c *Container) initPaymentUseCase() (paymentUsecase.PaymentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for payment use case: %w", err)
	}

	intentRepo, err := c.IntentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get intent repository for payment use case: %w", err)
	}

	refundRepo, err := c.RefundRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refund repository for payment use case: %w", err)
	}

	eventRepo, err := c.AppliedEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get applied event repository for payment use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for payment use case: %w", err)
	}

	connRepo, err := c.ConnectionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection repository for payment use case: %w", err)
	}

	ledgerRepo, err := c.LedgerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger repository for payment use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for payment use case: %w", err)
	}

	useCaseConfig := paymentUsecase.Config{
		IntentExpiry: c.config.IntentExpiry,
		ReturnURL:    c.config.PaymentReturnURL,
		CancelURL:    c.config.PaymentCancelURL,
	}

	baseUseCase := paymentUsecase.NewPaymentUseCase(
		useCaseConfig,
		txManager,
		intentRepo,
		refundRepo,
		eventRepo,
		orderRepo,
		connRepo,
		ledgerRepo,
		outboxRepo,
		c.AdapterRegistry(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for payment use case: %w", err)
		}
		return paymentUsecase.NewPaymentUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initPaymentHandler creates the payment HTTP handler.
func (c *Container) initPaymentHandler() (*paymentHTTP.PaymentHandler, error) {
	useCase, err := c.PaymentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment use case for payment handler: %w", err)
	}
	return paymentHTTP.NewPaymentHandler(useCase, c.Logger()), nil
}

// initWebhookHandler creates the webhook HTTP handler.
func (c *Container) initWebhookHandler() (*paymentHTTP.WebhookHandler, error) {
	useCase, err := c.PaymentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment use case for webhook handler: %w", err)
	}
	return paymentHTTP.NewWebhookHandler(useCase, c.Logger()), nil
}

// initWorkerHandler creates the worker trigger HTTP handler.
func (c *Container) initWorkerHandler() (*http.WorkerHandler, error) {
	outboxUseCase, err := c.OutboxUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox use case for worker handler: %w", err)
	}

	reconciliationUseCase, err := c.ReconciliationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation use case for worker handler: %w", err)
	}

	return http.NewWorkerHandler(outboxUseCase, reconciliationUseCase, c.Logger()), nil
}
