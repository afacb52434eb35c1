package domain

import (
	"time"

	"github.com/google/uuid"

	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// AppliedEvent records one provider event that has been applied to an intent
// or refund. The unique (provider, provider_event_id) pair makes replayed
// webhook deliveries no-ops.
type AppliedEvent struct {
	ID              uuid.UUID
	Provider        providerDomain.Provider
	ProviderEventID string
	Kind            providerDomain.EventKind
	Actor           string
	Payload         []byte
	CreatedAt       time.Time
}

// ActorSystem marks events applied by the reconciliation sweep.
const ActorSystem = "system"

// WebhookActor derives the audit actor for a webhook-driven sync from the
// provider's delivery id, so the trail names the exact delivery that caused
// the transition.
func WebhookActor(providerEventID string) string {
	return "webhook:" + providerEventID
}
