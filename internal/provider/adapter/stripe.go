package adapter

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/payments/internal/errors"
	"github.com/allisson/payments/internal/provider/domain"
)

type stripeAdapter struct {
	httpClient    *http.Client
	apiBase       string
	secretKey     string
	webhookSecret string
	tolerance     time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewStripeFactory returns a factory that builds Stripe adapters. The
// connection's ClientSecret is the API secret key and WebhookSecret is the
// endpoint signing secret. tolerance bounds the age of webhook signatures.
func NewStripeFactory(apiBase string, timeout, tolerance time.Duration, logger *slog.Logger) Factory {
	return func(ctx context.Context, conn domain.Connection) (Adapter, error) {
		if conn.ClientSecret == "" {
			return nil, errors.Wrap(domain.ErrProviderInitFailed, "stripe secret key is empty")
		}
		return &stripeAdapter{
			httpClient:    &http.Client{Timeout: timeout},
			apiBase:       strings.TrimSuffix(apiBase, "/"),
			secretKey:     conn.ClientSecret,
			webhookSecret: conn.WebhookSecret,
			tolerance:     tolerance,
			now:           time.Now,
			logger:        logger.With("adapter", "stripe", "connection_id", conn.ID.String()),
		}, nil
	}
}

func (a *stripeAdapter) Provider() domain.Provider {
	return domain.ProviderStripe
}

// stripePaymentIntent is the subset of the payment intent object the engine
// reads.
type stripePaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
}

type stripeRefund struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentIntent string `json:"payment_intent"`
}

func (a *stripeAdapter) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.CreateIntentResult, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("metadata[intent_id]", req.IntentID.String())
	form.Set("metadata[order_id]", req.OrderID.String())
	form.Set("automatic_payment_methods[enabled]", "true")

	var intent stripePaymentIntent
	if err := a.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}

	return &domain.CreateIntentResult{
		ProviderIntentID: intent.ID,
		ClientSecret:     intent.ClientSecret,
	}, nil
}

func (a *stripeAdapter) ParseWebhook(ctx context.Context, header http.Header, body []byte) (*domain.NormalizedEvent, error) {
	if err := a.verifySignature(header.Get("Stripe-Signature"), body); err != nil {
		return nil, err
	}

	var event struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Created int64  `json:"created"`
		Data    struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "stripe webhook payload: %v", err)
	}
	occurredAt := time.Unix(event.Created, 0).UTC()

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed",
		"payment_intent.canceled", "payment_intent.processing":
		var intent stripePaymentIntent
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "stripe payment intent object: %v", err)
		}
		status := mapStripeIntentStatus(intent.Status)
		if event.Type == "payment_intent.payment_failed" {
			// The object status after a failed attempt is
			// requires_payment_method, the event type is authoritative.
			status = domain.EventStatusFailed
		}
		return &domain.NormalizedEvent{
			ProviderEventID:  event.ID,
			Kind:             domain.EventKindPayment,
			ProviderIntentID: intent.ID,
			RawStatus:        intent.Status,
			Status:           status,
			Amount:           intent.Amount,
			Currency:         strings.ToUpper(intent.Currency),
			Metadata:         event.Data.Object,
			OccurredAt:       occurredAt,
		}, nil
	case "refund.created", "refund.updated", "charge.refund.updated":
		var refund stripeRefund
		if err := json.Unmarshal(event.Data.Object, &refund); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "stripe refund object: %v", err)
		}
		return &domain.NormalizedEvent{
			ProviderEventID:  event.ID,
			Kind:             domain.EventKindRefund,
			ProviderIntentID: refund.PaymentIntent,
			ProviderRefundID: refund.ID,
			RawStatus:        refund.Status,
			Status:           mapStripeRefundStatus(refund.Status),
			Amount:           refund.Amount,
			Currency:         strings.ToUpper(refund.Currency),
			Metadata:         event.Data.Object,
			OccurredAt:       occurredAt,
		}, nil
	default:
		a.logger.Debug("ignoring stripe webhook event", "event_type", event.Type, "event_id", event.ID)
		return nil, nil
	}
}

// verifySignature checks the Stripe-Signature header against an HMAC-SHA256
// of "<timestamp>.<raw body>" keyed with the endpoint signing secret.
func (a *stripeAdapter) verifySignature(header string, body []byte) error {
	if header == "" {
		return errors.Wrap(domain.ErrWebhookSignatureInvalid, "missing stripe signature header")
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return errors.Wrap(domain.ErrWebhookSignatureInvalid, "malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return errors.Wrap(domain.ErrWebhookSignatureInvalid, "signature header has no timestamp or v1 signature")
	}

	age := a.now().Sub(time.Unix(timestamp, 0))
	if age > a.tolerance || age < -a.tolerance {
		return errors.Wrapf(domain.ErrWebhookSignatureInvalid, "signature timestamp outside tolerance (age %s)", age)
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return errors.Wrap(domain.ErrWebhookSignatureInvalid, "no matching v1 signature")
}

func (a *stripeAdapter) QueryIntentStatus(ctx context.Context, providerIntentID string) (*domain.StatusResult, error) {
	var intent stripePaymentIntent
	if err := a.do(ctx, http.MethodGet, "/v1/payment_intents/"+providerIntentID, nil, &intent); err != nil {
		return nil, err
	}
	return &domain.StatusResult{
		Status:    mapStripeIntentStatus(intent.Status),
		RawStatus: intent.Status,
		Amount:    intent.Amount,
		Currency:  strings.ToUpper(intent.Currency),
	}, nil
}

func (a *stripeAdapter) Refund(ctx context.Context, providerIntentID string, amount int64, currency string) (*domain.RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", providerIntentID)
	form.Set("amount", strconv.FormatInt(amount, 10))

	var refund stripeRefund
	if err := a.do(ctx, http.MethodPost, "/v1/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &domain.RefundResult{
		ProviderRefundID: refund.ID,
		Status:           mapStripeRefundStatus(refund.Status),
	}, nil
}

func (a *stripeAdapter) QueryRefundStatus(ctx context.Context, providerRefundID string) (*domain.StatusResult, error) {
	var refund stripeRefund
	if err := a.do(ctx, http.MethodGet, "/v1/refunds/"+providerRefundID, nil, &refund); err != nil {
		return nil, err
	}
	return &domain.StatusResult{
		Status:    mapStripeRefundStatus(refund.Status),
		RawStatus: refund.Status,
		Amount:    refund.Amount,
		Currency:  strings.ToUpper(refund.Currency),
	}, nil
}

// do sends one form-encoded request to the Stripe API and decodes the JSON
// response into out.
func (a *stripeAdapter) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, a.apiBase+path, reqBody)
	if err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "stripe request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "stripe call %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "stripe response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Type    string `json:"type"`
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return errors.Wrapf(errors.ErrUnprocessable, "stripe api error (%s/%s): %s", apiErr.Error.Type, apiErr.Error.Code, apiErr.Error.Message)
		}
		return errors.Wrapf(errors.ErrUnprocessable, "stripe api status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(errors.ErrUnprocessable, "stripe response decode: %v", err)
	}
	return nil
}

func mapStripeIntentStatus(status string) domain.EventStatus {
	switch status {
	case "succeeded":
		return domain.EventStatusPaid
	case "canceled":
		return domain.EventStatusCanceled
	default:
		// requires_payment_method, requires_confirmation, requires_action
		// and processing are all still in flight.
		return domain.EventStatusPending
	}
}

func mapStripeRefundStatus(status string) domain.EventStatus {
	switch status {
	case "succeeded":
		return domain.EventStatusSucceeded
	case "failed":
		return domain.EventStatusFailed
	case "canceled":
		return domain.EventStatusCanceled
	default:
		return domain.EventStatusPending
	}
}
