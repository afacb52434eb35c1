package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/allisson/payments/internal/errors"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

func setupWebhookHandler(t *testing.T) (*WebhookHandler, *MockPaymentUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockPaymentUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewWebhookHandler(mockUseCase, logger), mockUseCase
}

func webhookContext(provider string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/"+provider, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	c.Request = req
	c.Params = gin.Params{{Key: "provider", Value: provider}}

	return c, w
}

func TestWebhookHandler_ReceiveHandler(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupWebhookHandler(t)

		mockUseCase.On(
			"ProcessWebhook", mock.Anything, providerDomain.ProviderStripe, mock.Anything, body,
		).Return(nil).Once()

		c, w := webhookContext("stripe", body)
		handler.ReceiveHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("InvalidSignatureReturns400", func(t *testing.T) {
		handler, mockUseCase := setupWebhookHandler(t)

		mockUseCase.On(
			"ProcessWebhook", mock.Anything, providerDomain.ProviderStripe, mock.Anything, body,
		).Return(providerDomain.ErrWebhookSignatureInvalid).Once()

		c, w := webhookContext("stripe", body)
		handler.ReceiveHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnsupportedProviderReturns400", func(t *testing.T) {
		handler, mockUseCase := setupWebhookHandler(t)

		mockUseCase.On(
			"ProcessWebhook", mock.Anything, providerDomain.Provider("square"), mock.Anything, body,
		).Return(providerDomain.ErrUnsupportedProvider).Once()

		c, w := webhookContext("square", body)
		handler.ReceiveHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InternalErrorStillReturns200", func(t *testing.T) {
		handler, mockUseCase := setupWebhookHandler(t)

		mockUseCase.On(
			"ProcessWebhook", mock.Anything, providerDomain.ProviderStripe, mock.Anything, body,
		).Return(apperrors.New("database unavailable")).Once()

		c, w := webhookContext("stripe", body)
		handler.ReceiveHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RawBodyReachesUseCaseUntouched", func(t *testing.T) {
		handler, mockUseCase := setupWebhookHandler(t)
		rawBody := []byte(`{"id": "evt_1",   "unformatted": true}`)

		mockUseCase.On(
			"ProcessWebhook", mock.Anything, providerDomain.ProviderStripe, mock.Anything, rawBody,
		).Return(nil).Once()

		c, w := webhookContext("stripe", rawBody)
		handler.ReceiveHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}
