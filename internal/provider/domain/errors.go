package domain

import (
	"github.com/allisson/payments/internal/errors"
)

var (
	// ErrWebhookSignatureInvalid means the webhook payload failed signature
	// verification. Handlers must answer 400, never 401 or 403.
	ErrWebhookSignatureInvalid = errors.New("webhook signature verification failed")
	// ErrConnectionNotFound means no usable provider connection exists for
	// the store and provider.
	ErrConnectionNotFound = errors.Wrap(errors.ErrNotFound, "provider connection not found")
	// ErrProviderInitFailed means the adapter could not authenticate with
	// the PSP using the stored credentials.
	ErrProviderInitFailed = errors.Wrap(errors.ErrUnprocessable, "provider client initialization failed")
	// ErrUnsupportedProvider means the requested provider is not implemented.
	ErrUnsupportedProvider = errors.Wrap(errors.ErrInvalidInput, "unsupported payment provider")
)
