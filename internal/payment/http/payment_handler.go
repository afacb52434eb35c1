// Package http provides HTTP handlers for payment intents, refunds, and
// provider webhook ingestion.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/payments/internal/errors"
	"github.com/allisson/payments/internal/httputil"
	"github.com/allisson/payments/internal/payment/http/dto"
	paymentUseCase "github.com/allisson/payments/internal/payment/usecase"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
	customValidation "github.com/allisson/payments/internal/validation"
)

// PaymentHandler handles HTTP requests for payment intent and refund operations.
type PaymentHandler struct {
	useCase paymentUseCase.PaymentUseCase
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment handler with required dependencies.
func NewPaymentHandler(useCase paymentUseCase.PaymentUseCase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// CreateIntentHandler starts (or resumes) the payment intent for an order.
// POST /v1/payment-intents
// Returns 201 Created with the client secret. This is the only response that
// carries it.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "order_id must be a valid uuid"),
			h.logger,
		)
		return
	}

	provider := providerDomain.Provider(req.Provider)
	if provider == "" && req.PaymentMethod == "paypal" {
		// A paypal payment method can only be served by the paypal provider.
		provider = providerDomain.ProviderPayPal
	}

	intent, err := h.useCase.CreateIntent(c.Request.Context(), orderID, provider)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIntentToCreateResponse(intent))
}

// GetIntentHandler retrieves a payment intent by id.
// GET /v1/payment-intents/:id
// Returns 200 OK with the sanitized projection (no client secret).
func (h *PaymentHandler) GetIntentHandler(c *gin.Context) {
	intentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "id must be a valid uuid"),
			h.logger,
		)
		return
	}

	intent, err := h.useCase.GetIntent(c.Request.Context(), intentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIntentToGetResponse(intent))
}

// CreateRefundHandler requests a refund against a paid intent.
// POST /v1/payment-intents/:id/refunds
// Returns 201 Created with the refund, usually still pending.
func (h *PaymentHandler) CreateRefundHandler(c *gin.Context) {
	intentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			apperrors.Wrap(apperrors.ErrInvalidInput, "id must be a valid uuid"),
			h.logger,
		)
		return
	}

	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	refund, err := h.useCase.CreateRefund(c.Request.Context(), intentID, req.Amount)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRefundToResponse(refund))
}
