package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/plutov/paypal/v4"

	"github.com/allisson/payments/internal/errors"
	"github.com/allisson/payments/internal/provider/domain"
)

// PayPal order and capture states.
const (
	payPalOrderCompleted = "COMPLETED"
	payPalOrderApproved  = "APPROVED"
	payPalOrderVoided    = "VOIDED"
)

type payPalAdapter struct {
	client    *paypal.Client
	apiBase   string
	webhookID string
	logger    *slog.Logger
}

// NewPayPalFactory returns a factory that builds PayPal adapters against the
// given API base (sandbox or live). The connection's WebhookSecret holds the
// PayPal webhook id used for signature verification.
func NewPayPalFactory(apiBase string, logger *slog.Logger) Factory {
	return func(ctx context.Context, conn domain.Connection) (Adapter, error) {
		client, err := paypal.NewClient(conn.ClientID, conn.ClientSecret, apiBase)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrProviderInitFailed, "paypal client: %v", err)
		}
		if _, err := client.GetAccessToken(ctx); err != nil {
			return nil, errors.Wrapf(domain.ErrProviderInitFailed, "paypal access token: %v", err)
		}
		return &payPalAdapter{
			client:    client,
			apiBase:   apiBase,
			webhookID: conn.WebhookSecret,
			logger:    logger.With("adapter", "paypal", "connection_id", conn.ID.String()),
		}, nil
	}
}

func (a *payPalAdapter) Provider() domain.Provider {
	return domain.ProviderPayPal
}

func (a *payPalAdapter) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.CreateIntentResult, error) {
	currency := strings.ToUpper(req.Currency)
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: req.IntentID.String(),
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    minorToDecimal(req.Amount, currency),
			},
			Description: fmt.Sprintf("Order %s", req.OrderID),
		},
	}
	appContext := &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	}

	order, err := a.client.CreateOrder(ctx, "CAPTURE", units, nil, appContext)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal create order: %v", err)
	}

	approvalURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, errors.Wrap(errors.ErrUnprocessable, "paypal order has no approval link")
	}

	return &domain.CreateIntentResult{
		ProviderIntentID: order.ID,
		ClientURL:        approvalURL,
	}, nil
}

// payPalEvent is the common envelope of PayPal webhook deliveries.
type payPalEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime time.Time       `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

func (a *payPalAdapter) ParseWebhook(ctx context.Context, header http.Header, body []byte) (*domain.NormalizedEvent, error) {
	if err := a.verifyWebhook(ctx, header, body); err != nil {
		return nil, err
	}

	var event payPalEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "paypal webhook payload: %v", err)
	}

	switch event.EventType {
	case "CHECKOUT.ORDER.APPROVED":
		return a.handleOrderApproved(ctx, event)
	case "PAYMENT.CAPTURE.COMPLETED":
		return a.captureEvent(event, domain.EventStatusPaid)
	case "PAYMENT.CAPTURE.DENIED":
		return a.captureEvent(event, domain.EventStatusFailed)
	case "PAYMENT.CAPTURE.REFUNDED":
		return a.refundEvent(event)
	default:
		a.logger.Debug("ignoring paypal webhook event", "event_type", event.EventType, "event_id", event.ID)
		return nil, nil
	}
}

// verifyWebhook calls PayPal's verify-webhook-signature endpoint with the
// transmission headers and raw body of the delivery.
func (a *payPalAdapter) verifyWebhook(ctx context.Context, header http.Header, body []byte) error {
	payload := struct {
		AuthAlgo         string          `json:"auth_algo"`
		CertURL          string          `json:"cert_url"`
		TransmissionID   string          `json:"transmission_id"`
		TransmissionSig  string          `json:"transmission_sig"`
		TransmissionTime string          `json:"transmission_time"`
		WebhookID        string          `json:"webhook_id"`
		WebhookEvent     json.RawMessage `json:"webhook_event"`
	}{
		AuthAlgo:         header.Get("Paypal-Auth-Algo"),
		CertURL:          header.Get("Paypal-Cert-Url"),
		TransmissionID:   header.Get("Paypal-Transmission-Id"),
		TransmissionSig:  header.Get("Paypal-Transmission-Sig"),
		TransmissionTime: header.Get("Paypal-Transmission-Time"),
		WebhookID:        a.webhookID,
		WebhookEvent:     json.RawMessage(body),
	}
	if payload.TransmissionID == "" || payload.TransmissionSig == "" {
		return errors.Wrap(domain.ErrWebhookSignatureInvalid, "missing paypal transmission headers")
	}

	req, err := a.client.NewRequest(ctx, http.MethodPost, a.apiBase+"/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "paypal verify request: %v", err)
	}
	var resp struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := a.client.SendWithAuth(req, &resp); err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "paypal verify call: %v", err)
	}
	if resp.VerificationStatus != "SUCCESS" {
		return errors.Wrapf(domain.ErrWebhookSignatureInvalid, "verification status %q", resp.VerificationStatus)
	}
	return nil
}

// handleOrderApproved captures the approved order. PayPal does not capture
// orders automatically, so approval is the point where the engine collects
// the funds.
func (a *payPalAdapter) handleOrderApproved(ctx context.Context, event payPalEvent) (*domain.NormalizedEvent, error) {
	var res struct {
		ID            string `json:"id"`
		PurchaseUnits []struct {
			Amount struct {
				CurrencyCode string `json:"currency_code"`
				Value        string `json:"value"`
			} `json:"amount"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "paypal order resource: %v", err)
	}
	if res.ID == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "paypal order resource has no id")
	}

	normalized := &domain.NormalizedEvent{
		ProviderEventID:  event.ID,
		Kind:             domain.EventKindPayment,
		ProviderIntentID: res.ID,
		Metadata:         event.Resource,
		OccurredAt:       event.CreateTime,
	}
	if len(res.PurchaseUnits) > 0 {
		amount, err := decimalToMinor(res.PurchaseUnits[0].Amount.Value, res.PurchaseUnits[0].Amount.CurrencyCode)
		if err == nil {
			normalized.Amount = amount
			normalized.Currency = res.PurchaseUnits[0].Amount.CurrencyCode
		}
	}

	order, err := a.client.GetOrder(ctx, res.ID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal get order: %v", err)
	}
	normalized.RawStatus = order.Status

	switch order.Status {
	case payPalOrderCompleted:
		normalized.Status = domain.EventStatusPaid
	case payPalOrderApproved:
		capture, err := a.client.CaptureOrder(ctx, res.ID, paypal.CaptureOrderRequest{})
		if err != nil {
			return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal capture order: %v", err)
		}
		normalized.RawStatus = capture.Status
		if capture.Status == payPalOrderCompleted {
			normalized.Status = domain.EventStatusPaid
		} else {
			normalized.Status = domain.EventStatusFailed
		}
	case payPalOrderVoided:
		normalized.Status = domain.EventStatusCanceled
	default:
		normalized.Status = domain.EventStatusPending
	}
	return normalized, nil
}

// captureEvent normalizes PAYMENT.CAPTURE.* deliveries. The capture resource
// carries the parent order id in supplementary_data.
func (a *payPalAdapter) captureEvent(event payPalEvent, status domain.EventStatus) (*domain.NormalizedEvent, error) {
	var res struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	}
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "paypal capture resource: %v", err)
	}
	if res.SupplementaryData.RelatedIDs.OrderID == "" {
		a.logger.Warn("paypal capture event has no related order id", "event_id", event.ID, "capture_id", res.ID)
		return nil, nil
	}

	amount, _ := decimalToMinor(res.Amount.Value, res.Amount.CurrencyCode)
	return &domain.NormalizedEvent{
		ProviderEventID:  event.ID,
		Kind:             domain.EventKindPayment,
		ProviderIntentID: res.SupplementaryData.RelatedIDs.OrderID,
		RawStatus:        res.Status,
		Status:           status,
		Amount:           amount,
		Currency:         res.Amount.CurrencyCode,
		Metadata:         event.Resource,
		OccurredAt:       event.CreateTime,
	}, nil
}

func (a *payPalAdapter) refundEvent(event payPalEvent) (*domain.NormalizedEvent, error) {
	var res struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(event.Resource, &res); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "paypal refund resource: %v", err)
	}

	amount, _ := decimalToMinor(res.Amount.Value, res.Amount.CurrencyCode)
	return &domain.NormalizedEvent{
		ProviderEventID:  event.ID,
		Kind:             domain.EventKindRefund,
		ProviderRefundID: res.ID,
		RawStatus:        res.Status,
		Status:           mapPayPalRefundStatus(res.Status),
		Amount:           amount,
		Currency:         res.Amount.CurrencyCode,
		Metadata:         event.Resource,
		OccurredAt:       event.CreateTime,
	}, nil
}

func (a *payPalAdapter) QueryIntentStatus(ctx context.Context, providerIntentID string) (*domain.StatusResult, error) {
	order, err := a.client.GetOrder(ctx, providerIntentID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal get order: %v", err)
	}

	status := order.Status
	if status == payPalOrderApproved {
		// Approved but never captured, the approval webhook was lost.
		capture, err := a.client.CaptureOrder(ctx, providerIntentID, paypal.CaptureOrderRequest{})
		if err != nil {
			return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal capture order: %v", err)
		}
		status = capture.Status
	}

	result := &domain.StatusResult{RawStatus: status}
	switch status {
	case payPalOrderCompleted:
		result.Status = domain.EventStatusPaid
	case payPalOrderVoided:
		result.Status = domain.EventStatusCanceled
	default:
		result.Status = domain.EventStatusPending
	}
	return result, nil
}

func (a *payPalAdapter) Refund(ctx context.Context, providerIntentID string, amount int64, currency string) (*domain.RefundResult, error) {
	captureID, err := a.lookupCaptureID(ctx, providerIntentID)
	if err != nil {
		return nil, err
	}

	currency = strings.ToUpper(currency)
	resp, err := a.client.RefundCapture(ctx, captureID, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: currency,
			Value:    minorToDecimal(amount, currency),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal refund capture: %v", err)
	}

	return &domain.RefundResult{
		ProviderRefundID: resp.ID,
		Status:           mapPayPalRefundStatus(resp.Status),
	}, nil
}

func (a *payPalAdapter) QueryRefundStatus(ctx context.Context, providerRefundID string) (*domain.StatusResult, error) {
	req, err := a.client.NewRequest(ctx, http.MethodGet, a.apiBase+"/v2/payments/refunds/"+providerRefundID, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal refund request: %v", err)
	}
	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	}
	if err := a.client.SendWithAuth(req, &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrUnprocessable, "paypal get refund: %v", err)
	}

	amount, _ := decimalToMinor(resp.Amount.Value, resp.Amount.CurrencyCode)
	return &domain.StatusResult{
		Status:    mapPayPalRefundStatus(resp.Status),
		RawStatus: resp.Status,
		Amount:    amount,
		Currency:  resp.Amount.CurrencyCode,
	}, nil
}

// lookupCaptureID resolves the capture behind an order. Refunds address
// captures, not orders.
func (a *payPalAdapter) lookupCaptureID(ctx context.Context, orderID string) (string, error) {
	req, err := a.client.NewRequest(ctx, http.MethodGet, a.apiBase+"/v2/checkout/orders/"+orderID, nil)
	if err != nil {
		return "", errors.Wrapf(errors.ErrUnprocessable, "paypal order request: %v", err)
	}
	var resp struct {
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID string `json:"id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := a.client.SendWithAuth(req, &resp); err != nil {
		return "", errors.Wrapf(errors.ErrUnprocessable, "paypal get order: %v", err)
	}
	for _, unit := range resp.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			if capture.ID != "" {
				return capture.ID, nil
			}
		}
	}
	return "", errors.Wrap(errors.ErrUnprocessable, "paypal order has no capture to refund")
}

func mapPayPalRefundStatus(status string) domain.EventStatus {
	switch status {
	case "COMPLETED":
		return domain.EventStatusSucceeded
	case "CANCELLED":
		return domain.EventStatusCanceled
	case "FAILED":
		return domain.EventStatusFailed
	default:
		return domain.EventStatusPending
	}
}
