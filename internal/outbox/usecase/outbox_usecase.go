// Package usecase implements the outbox worker: it drains pending events and
// hands them to a publisher inside a transaction.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/allisson/payments/internal/database"
	"github.com/allisson/payments/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// Publisher delivers outbox events to their downstream sink. A returned error
// leaves the event pending for the next batch (until MaxRetries).
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Result summarizes one processed batch.
type Result struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) (Result, error)
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxEventRepository
	publisher  Publisher
	logger     *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	publisher Publisher,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Start starts the outbox event processing loop
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox event processor",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox event processor")
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.ProcessEvents(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process events", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEvents drains one batch of pending events inside a transaction. The
// SKIP LOCKED read keeps concurrent workers off each other's batches.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) (Result, error) {
	var result Result

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Info("processing events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if err := uc.publisher.Publish(ctx, event); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to publish event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", string(event.EventType)),
						slog.Any("error", err),
					)
				}

				result.Failed++
				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			result.Processed++
			now := time.Now()
			event.Status = domain.OutboxEventStatusPublished
			event.PublishedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

// LogPublisher publishes events to the structured log. It stands in for a
// message broker in deployments that tail logs instead of consuming a queue.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{
		logger: logger,
	}
}

// Publish emits the event as one structured log record.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return err
	}

	if p.logger != nil {
		p.logger.Info("outbox event published",
			slog.String("event_id", event.ID.String()),
			slog.String("aggregate_id", event.AggregateID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.Any("payload", payload),
		)
	}

	return nil
}
