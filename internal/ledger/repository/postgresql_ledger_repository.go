// Package repository implements ledger persistence. The ledger is append
// only: transactions and entries are inserted, never updated or deleted.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	ledgerDomain "github.com/allisson/payments/internal/ledger/domain"
)

// PostgreSQLLedgerRepository implements ledger persistence for PostgreSQL
// databases.
type PostgreSQLLedgerRepository struct {
	db *sql.DB
}

// NewPostgreSQLLedgerRepository creates a new PostgreSQL ledger repository
// instance.
func NewPostgreSQLLedgerRepository(db *sql.DB) *PostgreSQLLedgerRepository {
	return &PostgreSQLLedgerRepository{db: db}
}

// Create inserts a ledger transaction with its entries. Unbalanced
// transactions are rejected before any write.
func (p *PostgreSQLLedgerRepository) Create(ctx context.Context, tx *ledgerDomain.Transaction) error {
	if !tx.Balanced() {
		return ledgerDomain.ErrUnbalancedTransaction
	}

	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO ledger_transactions (id, payment_intent_id, refund_id, kind, created_at)
			  VALUES ($1, $2, $3, $4, NOW())`
	_, err := querier.ExecContext(ctx, query, tx.ID, tx.PaymentIntentID, tx.RefundID, tx.Kind)
	if err != nil {
		return apperrors.Wrap(err, "failed to create ledger transaction")
	}

	entryQuery := `INSERT INTO ledger_entries (id, transaction_id, account, direction, amount, currency, created_at)
				   VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	for _, entry := range tx.Entries {
		_, err := querier.ExecContext(
			ctx,
			entryQuery,
			entry.ID,
			entry.TransactionID,
			entry.Account,
			entry.Direction,
			entry.Amount,
			entry.Currency,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to create ledger entry")
		}
	}

	return nil
}

// ListByPaymentIntent retrieves the transactions booked for a payment intent,
// entries included, oldest first.
func (p *PostgreSQLLedgerRepository) ListByPaymentIntent(
	ctx context.Context,
	intentID uuid.UUID,
) ([]*ledgerDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, payment_intent_id, refund_id, kind, created_at
			  FROM ledger_transactions
			  WHERE payment_intent_id = $1
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, intentID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ledger transactions")
	}
	defer rows.Close() //nolint:errcheck

	var txs []*ledgerDomain.Transaction
	for rows.Next() {
		var tx ledgerDomain.Transaction
		if err := rows.Scan(&tx.ID, &tx.PaymentIntentID, &tx.RefundID, &tx.Kind, &tx.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ledger transaction")
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ledger transactions")
	}

	entryQuery := `SELECT id, transaction_id, account, direction, amount, currency, created_at
				   FROM ledger_entries
				   WHERE transaction_id = $1
				   ORDER BY created_at ASC`
	for _, tx := range txs {
		entryRows, err := querier.QueryContext(ctx, entryQuery, tx.ID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list ledger entries")
		}
		for entryRows.Next() {
			var entry ledgerDomain.Entry
			err := entryRows.Scan(
				&entry.ID,
				&entry.TransactionID,
				&entry.Account,
				&entry.Direction,
				&entry.Amount,
				&entry.Currency,
				&entry.CreatedAt,
			)
			if err != nil {
				entryRows.Close() //nolint:errcheck
				return nil, apperrors.Wrap(err, "failed to scan ledger entry")
			}
			tx.Entries = append(tx.Entries, &entry)
		}
		if err := entryRows.Err(); err != nil {
			entryRows.Close() //nolint:errcheck
			return nil, apperrors.Wrap(err, "failed to iterate ledger entries")
		}
		entryRows.Close() //nolint:errcheck
	}

	return txs, nil
}
