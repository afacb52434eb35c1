package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
)

// PostgreSQLRefundRepository implements Refund persistence for PostgreSQL
// databases.
type PostgreSQLRefundRepository struct {
	db *sql.DB
}

// NewPostgreSQLRefundRepository creates a new PostgreSQL Refund repository
// instance.
func NewPostgreSQLRefundRepository(db *sql.DB) *PostgreSQLRefundRepository {
	return &PostgreSQLRefundRepository{db: db}
}

const refundColumns = `id, payment_intent_id, provider_refund_id, amount, status, created_at, updated_at`

// Create inserts a new refund.
func (p *PostgreSQLRefundRepository) Create(ctx context.Context, refund *paymentDomain.Refund) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refunds (id, payment_intent_id, provider_refund_id, amount, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		refund.ID,
		refund.PaymentIntentID,
		refund.ProviderRefundID,
		refund.Amount,
		refund.Status,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refund")
	}
	return nil
}

// GetByID retrieves a refund by its id.
func (p *PostgreSQLRefundRepository) GetByID(ctx context.Context, refundID uuid.UUID) (*paymentDomain.Refund, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + refundColumns + `
			  FROM refunds
			  WHERE id = $1`

	refund, err := scanRefund(querier.QueryRowContext(ctx, query, refundID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrRefundNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refund by id")
	}
	return refund, nil
}

// GetByProviderRefundID retrieves the refund tied to a provider-side id.
func (p *PostgreSQLRefundRepository) GetByProviderRefundID(ctx context.Context, providerRefundID string) (*paymentDomain.Refund, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + refundColumns + `
			  FROM refunds
			  WHERE provider_refund_id = $1`

	refund, err := scanRefund(querier.QueryRowContext(ctx, query, providerRefundID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, paymentDomain.ErrRefundNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refund by provider id")
	}
	return refund, nil
}

// SumActiveByIntent sums the amounts of pending and succeeded refunds for an
// intent. The over-refund check counts pending refunds too, otherwise two
// concurrent requests could together exceed the paid amount.
func (p *PostgreSQLRefundRepository) SumActiveByIntent(ctx context.Context, intentID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(SUM(amount), 0)
			  FROM refunds
			  WHERE payment_intent_id = $1 AND status IN ($2, $3)`

	var total int64
	err := querier.QueryRowContext(
		ctx, query, intentID, paymentDomain.RefundStatusPending, paymentDomain.RefundStatusSucceeded,
	).Scan(&total)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sum active refunds")
	}
	return total, nil
}

// SumSucceededByIntent sums the amounts of succeeded refunds for an intent.
func (p *PostgreSQLRefundRepository) SumSucceededByIntent(ctx context.Context, intentID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(SUM(amount), 0)
			  FROM refunds
			  WHERE payment_intent_id = $1 AND status = $2`

	var total int64
	err := querier.QueryRowContext(ctx, query, intentID, paymentDomain.RefundStatusSucceeded).Scan(&total)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to sum succeeded refunds")
	}
	return total, nil
}

// UpdateStatusIf moves the refund from one status to another. Zero affected
// rows means a concurrent writer won.
func (p *PostgreSQLRefundRepository) UpdateStatusIf(
	ctx context.Context,
	refundID uuid.UUID,
	from, to paymentDomain.RefundStatus,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refunds
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, to, refundID, from)
	if err != nil {
		return apperrors.Wrap(err, "failed to update refund status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return apperrors.Wrap(apperrors.ErrConflict, "refund status changed concurrently")
	}
	return nil
}

// ListStalePending retrieves pending refunds untouched since the cutoff,
// oldest first.
func (p *PostgreSQLRefundRepository) ListStalePending(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*paymentDomain.Refund, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + refundColumns + `
			  FROM refunds
			  WHERE status = $1 AND updated_at < $2
			  ORDER BY updated_at ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, paymentDomain.RefundStatusPending, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale pending refunds")
	}
	defer rows.Close() //nolint:errcheck

	var refunds []*paymentDomain.Refund
	for rows.Next() {
		var refund paymentDomain.Refund
		err := rows.Scan(
			&refund.ID,
			&refund.PaymentIntentID,
			&refund.ProviderRefundID,
			&refund.Amount,
			&refund.Status,
			&refund.CreatedAt,
			&refund.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan refund")
		}
		refunds = append(refunds, &refund)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate refunds")
	}

	return refunds, nil
}

func scanRefund(row *sql.Row) (*paymentDomain.Refund, error) {
	var refund paymentDomain.Refund
	err := row.Scan(
		&refund.ID,
		&refund.PaymentIntentID,
		&refund.ProviderRefundID,
		&refund.Amount,
		&refund.Status,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}
