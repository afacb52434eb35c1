package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	"github.com/allisson/payments/internal/payment/http/dto"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// MockPaymentUseCase is a mock implementation of usecase.PaymentUseCase
type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) CreateIntent(
	ctx context.Context,
	orderID uuid.UUID,
	provider providerDomain.Provider,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, orderID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentUseCase) GetIntent(
	ctx context.Context,
	intentID uuid.UUID,
) (*paymentDomain.PaymentIntent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentUseCase) CreateRefund(
	ctx context.Context,
	intentID uuid.UUID,
	amount int64,
) (*paymentDomain.Refund, error) {
	args := m.Called(ctx, intentID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Refund), args.Error(1)
}

func (m *MockPaymentUseCase) ProcessWebhook(
	ctx context.Context,
	provider providerDomain.Provider,
	header http.Header,
	body []byte,
) error {
	args := m.Called(ctx, provider, header, body)
	return args.Error(0)
}

func (m *MockPaymentUseCase) SyncIntentStatus(
	ctx context.Context,
	intentID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	args := m.Called(ctx, intentID, event, actor)
	return args.Error(0)
}

func (m *MockPaymentUseCase) SyncRefundStatus(
	ctx context.Context,
	refundID uuid.UUID,
	event *providerDomain.NormalizedEvent,
	actor string,
) error {
	args := m.Called(ctx, refundID, event, actor)
	return args.Error(0)
}

// setupTestHandler creates a test handler with mocked dependencies.
func setupTestHandler(t *testing.T) (*PaymentHandler, *MockPaymentUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockPaymentUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewPaymentHandler(mockUseCase, logger), mockUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func testHandlerIntent(status paymentDomain.IntentStatus) *paymentDomain.PaymentIntent {
	providerIntentID := "pi_123"
	expiresAt := time.Now().UTC().Add(time.Hour)
	return &paymentDomain.PaymentIntent{
		ID:               uuid.Must(uuid.NewV7()),
		OrderID:          uuid.Must(uuid.NewV7()),
		StoreID:          uuid.Must(uuid.NewV7()),
		Provider:         providerDomain.ProviderStripe,
		ProviderIntentID: &providerIntentID,
		Status:           status,
		Amount:           2500,
		Currency:         "USD",
		ClientSecret:     "pi_123_secret",
		ExpiresAt:        &expiresAt,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func TestPaymentHandler_CreateIntentHandler(t *testing.T) {
	t.Run("Success_ReturnsClientSecret", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intent := testHandlerIntent(paymentDomain.IntentStatusPending)

		mockUseCase.On("CreateIntent", mock.Anything, intent.OrderID, providerDomain.ProviderStripe).
			Return(intent, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payment-intents", dto.CreateIntentRequest{
			OrderID:  intent.OrderID.String(),
			Provider: "stripe",
		})

		handler.CreateIntentHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.PaymentIntentResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, intent.ID.String(), response.ID)
		assert.Equal(t, "pi_123_secret", response.ClientSecret)
		assert.Equal(t, "pending", response.Status)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("PayPalPaymentMethodSelectsPayPal", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intent := testHandlerIntent(paymentDomain.IntentStatusPending)
		intent.Provider = providerDomain.ProviderPayPal

		mockUseCase.On("CreateIntent", mock.Anything, intent.OrderID, providerDomain.ProviderPayPal).
			Return(intent, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payment-intents", dto.CreateIntentRequest{
			OrderID:       intent.OrderID.String(),
			PaymentMethod: "paypal",
		})

		handler.CreateIntentHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("InvalidOrderID", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/payment-intents", dto.CreateIntentRequest{
			OrderID: "not-a-uuid",
		})

		handler.CreateIntentHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownProviderRejected", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/payment-intents", dto.CreateIntentRequest{
			OrderID:  uuid.Must(uuid.NewV7()).String(),
			Provider: "square",
		})

		handler.CreateIntentHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("OrderAlreadyPaid", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		orderID := uuid.Must(uuid.NewV7())

		mockUseCase.On("CreateIntent", mock.Anything, orderID, providerDomain.Provider("")).
			Return(nil, paymentDomain.ErrIntentAlreadyPaid).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payment-intents", dto.CreateIntentRequest{
			OrderID: orderID.String(),
		})

		handler.CreateIntentHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPaymentHandler_GetIntentHandler(t *testing.T) {
	t.Run("Success_SanitizedResponse", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intent := testHandlerIntent(paymentDomain.IntentStatusPaid)

		mockUseCase.On("GetIntent", mock.Anything, intent.ID).Return(intent, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/payment-intents/"+intent.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: intent.ID.String()}}

		handler.GetIntentHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.PaymentIntentResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, intent.ID.String(), response.ID)
		assert.Empty(t, response.ClientSecret)
		assert.NotContains(t, w.Body.String(), "pi_123_secret")
	})

	t.Run("NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("GetIntent", mock.Anything, intentID).
			Return(nil, paymentDomain.ErrIntentNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/payment-intents/"+intentID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

		handler.GetIntentHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/payment-intents/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		handler.GetIntentHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPaymentHandler_CreateRefundHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intentID := uuid.Must(uuid.NewV7())
		providerRefundID := "re_1"
		refund := &paymentDomain.Refund{
			ID:               uuid.Must(uuid.NewV7()),
			PaymentIntentID:  intentID,
			ProviderRefundID: &providerRefundID,
			Amount:           1000,
			Status:           paymentDomain.RefundStatusPending,
		}

		mockUseCase.On("CreateRefund", mock.Anything, intentID, int64(1000)).
			Return(refund, nil).Once()

		c, w := createTestContext(
			http.MethodPost,
			"/v1/payment-intents/"+intentID.String()+"/refunds",
			dto.CreateRefundRequest{Amount: 1000},
		)
		c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

		handler.CreateRefundHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.RefundResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, refund.ID.String(), response.ID)
		assert.Equal(t, "pending", response.Status)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intentID := uuid.Must(uuid.NewV7())

		c, w := createTestContext(
			http.MethodPost,
			"/v1/payment-intents/"+intentID.String()+"/refunds",
			dto.CreateRefundRequest{Amount: 0},
		)
		c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

		handler.CreateRefundHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RefundExceedsPaidAmount", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("CreateRefund", mock.Anything, intentID, int64(5000)).
			Return(nil, paymentDomain.ErrRefundExceedsPaidAmount).Once()

		c, w := createTestContext(
			http.MethodPost,
			"/v1/payment-intents/"+intentID.String()+"/refunds",
			dto.CreateRefundRequest{Amount: 5000},
		)
		c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

		handler.CreateRefundHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("ProviderFailureHidesDetail", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		intentID := uuid.Must(uuid.NewV7())

		mockUseCase.On("CreateRefund", mock.Anything, intentID, int64(1000)).
			Return(nil, apperrors.New("stripe: card_declined (request req_123)")).Once()

		c, w := createTestContext(
			http.MethodPost,
			"/v1/payment-intents/"+intentID.String()+"/refunds",
			dto.CreateRefundRequest{Amount: 1000},
		)
		c.Params = gin.Params{{Key: "id", Value: intentID.String()}}

		handler.CreateRefundHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "req_123")
	})
}
