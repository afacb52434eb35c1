// Package repository implements order persistence.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	orderDomain "github.com/allisson/payments/internal/order/domain"
)

// PostgreSQLOrderRepository implements Order persistence for PostgreSQL
// databases.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL Order repository
// instance.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts a new order.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, order *orderDomain.Order) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO orders (id, store_id, total_amount, currency, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		order.ID,
		order.StoreID,
		order.TotalAmount,
		order.Currency,
		order.Status,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

// GetByID retrieves an order by its id.
func (p *PostgreSQLOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*orderDomain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, store_id, total_amount, currency, status, created_at, updated_at
			  FROM orders
			  WHERE id = $1`

	var order orderDomain.Order
	err := querier.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.StoreID,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, orderDomain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order by id")
	}

	return &order, nil
}
