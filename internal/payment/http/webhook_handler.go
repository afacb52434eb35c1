package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/payments/internal/errors"
	paymentUseCase "github.com/allisson/payments/internal/payment/usecase"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// WebhookHandler handles inbound provider webhook deliveries.
type WebhookHandler struct {
	useCase paymentUseCase.PaymentUseCase
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with required dependencies.
func NewWebhookHandler(useCase paymentUseCase.PaymentUseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// ReceiveHandler verifies and applies one provider delivery.
// POST /v1/webhooks/:provider
//
// The raw body is read before anything else; signature verification runs over
// the exact bytes the provider sent. A bad signature is the only condition
// that produces a non-2xx response. Internal failures are logged and answered
// with 200 so the provider does not retry forever; reconciliation repairs the
// state later.
func (h *WebhookHandler) ReceiveHandler(c *gin.Context) {
	provider := providerDomain.Provider(c.Param("provider"))

	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("failed to read webhook body", slog.Any("error", err))
		c.Status(http.StatusOK)
		return
	}

	err = h.useCase.ProcessWebhook(c.Request.Context(), provider, c.Request.Header, body)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case apperrors.Is(err, providerDomain.ErrWebhookSignatureInvalid),
		apperrors.Is(err, providerDomain.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
	default:
		h.logger.Error("webhook processing failed",
			slog.String("provider", string(provider)),
			slog.Any("error", err),
		)
		c.Status(http.StatusOK)
	}
}
