package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// PostgreSQLAppliedEventRepository implements AppliedEvent persistence for
// PostgreSQL databases.
type PostgreSQLAppliedEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAppliedEventRepository creates a new PostgreSQL AppliedEvent
// repository instance.
func NewPostgreSQLAppliedEventRepository(db *sql.DB) *PostgreSQLAppliedEventRepository {
	return &PostgreSQLAppliedEventRepository{db: db}
}

// Create inserts an applied event. The unique (provider, provider_event_id)
// index turns a concurrent duplicate into ErrConflict so the enclosing
// transaction rolls back.
func (p *PostgreSQLAppliedEventRepository) Create(ctx context.Context, event *paymentDomain.AppliedEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO payment_events (id, provider, provider_event_id, kind, actor, payload, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.Kind,
		event.Actor,
		event.Payload,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "provider event already applied")
		}
		return apperrors.Wrap(err, "failed to create applied event")
	}
	return nil
}

// Exists reports whether the provider event was already applied.
func (p *PostgreSQLAppliedEventRepository) Exists(
	ctx context.Context,
	provider providerDomain.Provider,
	providerEventID string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM payment_events
				  WHERE provider = $1 AND provider_event_id = $2
			  )`

	var exists bool
	err := querier.QueryRowContext(ctx, query, provider, providerEventID).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check applied event")
	}
	return exists, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if apperrors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
