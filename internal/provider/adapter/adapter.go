// Package adapter implements the PSP integrations. Each adapter translates
// between the canonical payment model and one provider's API and webhook
// format.
package adapter

import (
	"context"
	"net/http"
	"sync"

	"github.com/allisson/payments/internal/provider/domain"
)

// Adapter is the provider-facing port. Implementations must be safe for
// concurrent use.
//
// ParseWebhook verifies the delivery signature before parsing and returns
// domain.ErrWebhookSignatureInvalid when verification fails. Event types the
// engine does not care about yield (nil, nil).
type Adapter interface {
	Provider() domain.Provider
	CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.CreateIntentResult, error)
	ParseWebhook(ctx context.Context, header http.Header, body []byte) (*domain.NormalizedEvent, error)
	QueryIntentStatus(ctx context.Context, providerIntentID string) (*domain.StatusResult, error)
	Refund(ctx context.Context, providerIntentID string, amount int64, currency string) (*domain.RefundResult, error)
	QueryRefundStatus(ctx context.Context, providerRefundID string) (*domain.StatusResult, error)
}

// Factory builds an adapter bound to one store's provider connection.
type Factory func(ctx context.Context, conn domain.Connection) (Adapter, error)

// Registry resolves adapters per connection. Adapters are cached by
// connection id because PayPal clients hold an access token worth reusing.
type Registry struct {
	mu        sync.Mutex
	factories map[domain.Provider]Factory
	adapters  map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[domain.Provider]Factory),
		adapters:  make(map[string]Adapter),
	}
}

// Register installs the factory for a provider, replacing any previous one.
func (r *Registry) Register(provider domain.Provider, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = factory
}

// Adapter returns the adapter for the connection, building it on first use.
func (r *Registry) Adapter(ctx context.Context, conn domain.Connection) (Adapter, error) {
	r.mu.Lock()
	if a, ok := r.adapters[conn.ID.String()]; ok {
		r.mu.Unlock()
		return a, nil
	}
	factory, ok := r.factories[conn.Provider]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}

	// Built outside the lock, adapter construction may hit the network.
	a, err := factory(ctx, conn)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.adapters[conn.ID.String()]; ok {
		return cached, nil
	}
	r.adapters[conn.ID.String()] = a
	return a, nil
}
