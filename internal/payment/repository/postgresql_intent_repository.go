// Package repository implements payment persistence. Status changes go
// through conditional updates keyed on the current status, so a lost race
// surfaces as a conflict instead of a silent overwrite.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// PostgreSQLIntentRepository implements PaymentIntent persistence for
// PostgreSQL databases.
type PostgreSQLIntentRepository struct {
	db *sql.DB
}

// NewPostgreSQLIntentRepository creates a new PostgreSQL PaymentIntent
// repository instance.
func NewPostgreSQLIntentRepository(db *sql.DB) *PostgreSQLIntentRepository {
	return &PostgreSQLIntentRepository{db: db}
}

const intentColumns = `id, order_id, store_id, provider, provider_intent_id, status, amount, currency, client_secret, client_url, expires_at, created_at, updated_at`

// Create inserts a new payment intent.
func (p *PostgreSQLIntentRepository) Create(ctx context.Context, intent *paymentDomain.PaymentIntent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO payment_intents (id, order_id, store_id, provider, provider_intent_id, status, amount, currency, client_secret, client_url, expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		intent.ID,
		intent.OrderID,
		intent.StoreID,
		intent.Provider,
		intent.ProviderIntentID,
		intent.Status,
		intent.Amount,
		intent.Currency,
		intent.ClientSecret,
		intent.ClientURL,
		intent.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create payment intent")
	}
	return nil
}

// GetByID retrieves a payment intent by its id.
func (p *PostgreSQLIntentRepository) GetByID(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + intentColumns + `
			  FROM payment_intents
			  WHERE id = $1`

	intent, err := scanIntent(querier.QueryRowContext(ctx, query, intentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrIntentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment intent by id")
	}
	return intent, nil
}

// GetByIDForUpdate retrieves a payment intent and locks its row until the
// surrounding transaction ends. Callers serialize on the intent this way
// before checking refundable headroom.
func (p *PostgreSQLIntentRepository) GetByIDForUpdate(ctx context.Context, intentID uuid.UUID) (*paymentDomain.PaymentIntent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + intentColumns + `
			  FROM payment_intents
			  WHERE id = $1
			  FOR UPDATE`

	intent, err := scanIntent(querier.QueryRowContext(ctx, query, intentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrIntentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment intent for update")
	}
	return intent, nil
}

// GetOpenByOrderID retrieves the order's open intent (created or pending),
// if any. At most one exists per order.
func (p *PostgreSQLIntentRepository) GetOpenByOrderID(ctx context.Context, orderID uuid.UUID) (*paymentDomain.PaymentIntent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + intentColumns + `
			  FROM payment_intents
			  WHERE order_id = $1 AND status IN ($2, $3)
			  ORDER BY created_at DESC
			  LIMIT 1`

	intent, err := scanIntent(querier.QueryRowContext(
		ctx, query, orderID, paymentDomain.IntentStatusCreated, paymentDomain.IntentStatusPending,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrIntentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get open payment intent by order id")
	}
	return intent, nil
}

// ExistsSettledByOrderID reports whether the order already has a paid intent,
// refunds included.
func (p *PostgreSQLIntentRepository) ExistsSettledByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM payment_intents
				  WHERE order_id = $1 AND status IN ($2, $3, $4)
			  )`

	var exists bool
	err := querier.QueryRowContext(
		ctx,
		query,
		orderID,
		paymentDomain.IntentStatusPaid,
		paymentDomain.IntentStatusRefunded,
		paymentDomain.IntentStatusPartiallyRefunded,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check settled intents")
	}
	return exists, nil
}

// GetByProviderIntentID retrieves the intent tied to a provider-side id.
func (p *PostgreSQLIntentRepository) GetByProviderIntentID(
	ctx context.Context,
	provider providerDomain.Provider,
	providerIntentID string,
) (*paymentDomain.PaymentIntent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + intentColumns + `
			  FROM payment_intents
			  WHERE provider = $1 AND provider_intent_id = $2`

	intent, err := scanIntent(querier.QueryRowContext(ctx, query, provider, providerIntentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrIntentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get payment intent by provider id")
	}
	return intent, nil
}

// UpdateStatusIf moves the intent from one status to another. Zero affected
// rows means a concurrent writer changed the status first and the caller must
// roll back.
func (p *PostgreSQLIntentRepository) UpdateStatusIf(
	ctx context.Context,
	intentID uuid.UUID,
	from, to paymentDomain.IntentStatus,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE payment_intents
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, to, intentID, from)
	if err != nil {
		return apperrors.Wrap(err, "failed to update payment intent status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "payment intent status changed concurrently")
	}
	return nil
}

// SetProviderDetails stores what the provider returned at intent creation.
func (p *PostgreSQLIntentRepository) SetProviderDetails(
	ctx context.Context,
	intentID uuid.UUID,
	providerIntentID, clientSecret, clientURL string,
	expiresAt *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE payment_intents
			  SET provider_intent_id = $1, client_secret = $2, client_url = $3, expires_at = $4, updated_at = NOW()
			  WHERE id = $5`

	_, err := querier.ExecContext(ctx, query, providerIntentID, clientSecret, clientURL, expiresAt, intentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set payment intent provider details")
	}
	return nil
}

// ListStalePending retrieves pending intents untouched since the cutoff,
// oldest first. The reconciliation sweep works through these.
func (p *PostgreSQLIntentRepository) ListStalePending(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*paymentDomain.PaymentIntent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + intentColumns + `
			  FROM payment_intents
			  WHERE status = $1 AND updated_at < $2
			  ORDER BY updated_at ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, paymentDomain.IntentStatusPending, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale pending intents")
	}
	defer rows.Close() //nolint:errcheck

	var intents []*paymentDomain.PaymentIntent
	for rows.Next() {
		var intent paymentDomain.PaymentIntent
		err := rows.Scan(
			&intent.ID,
			&intent.OrderID,
			&intent.StoreID,
			&intent.Provider,
			&intent.ProviderIntentID,
			&intent.Status,
			&intent.Amount,
			&intent.Currency,
			&intent.ClientSecret,
			&intent.ClientURL,
			&intent.ExpiresAt,
			&intent.CreatedAt,
			&intent.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan payment intent")
		}
		intents = append(intents, &intent)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate payment intents")
	}

	return intents, nil
}

func scanIntent(row *sql.Row) (*paymentDomain.PaymentIntent, error) {
	var intent paymentDomain.PaymentIntent
	err := row.Scan(
		&intent.ID,
		&intent.OrderID,
		&intent.StoreID,
		&intent.Provider,
		&intent.ProviderIntentID,
		&intent.Status,
		&intent.Amount,
		&intent.Currency,
		&intent.ClientSecret,
		&intent.ClientURL,
		&intent.ExpiresAt,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}
