package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/payments/internal/outbox/domain"
)

// Router dispatches events to a publisher registered for their event type.
// An event with no registered publisher fails, which keeps it pending and
// visible as backlog instead of silently dropping it.
type Router struct {
	routes map[domain.EventType]Publisher
	logger *slog.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		routes: make(map[domain.EventType]Publisher),
		logger: logger,
	}
}

// Register binds a publisher to an event type, replacing any previous binding.
func (r *Router) Register(eventType domain.EventType, publisher Publisher) {
	r.routes[eventType] = publisher
}

// Publish routes the event to its registered publisher.
func (r *Router) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	publisher, ok := r.routes[event.EventType]
	if !ok {
		if r.logger != nil {
			r.logger.Warn("no publisher registered for event type",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", string(event.EventType)),
			)
		}
		return fmt.Errorf("no publisher registered for event type %q", event.EventType)
	}

	return publisher.Publish(ctx, event)
}
