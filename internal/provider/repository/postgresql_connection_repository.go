// Package repository implements provider connection persistence.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/database"
	apperrors "github.com/allisson/payments/internal/errors"
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

// PostgreSQLConnectionRepository implements Connection persistence for
// PostgreSQL databases.
type PostgreSQLConnectionRepository struct {
	db *sql.DB
}

// NewPostgreSQLConnectionRepository creates a new PostgreSQL Connection
// repository instance.
func NewPostgreSQLConnectionRepository(db *sql.DB) *PostgreSQLConnectionRepository {
	return &PostgreSQLConnectionRepository{db: db}
}

const connectionColumns = `id, store_id, provider, status, client_id, client_secret, webhook_secret, created_at, updated_at`

// Create inserts a new provider connection.
func (p *PostgreSQLConnectionRepository) Create(ctx context.Context, conn *providerDomain.Connection) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO provider_connections (id, store_id, provider, status, client_id, client_secret, webhook_secret, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		conn.ID,
		conn.StoreID,
		conn.Provider,
		conn.Status,
		conn.ClientID,
		conn.ClientSecret,
		conn.WebhookSecret,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create provider connection")
	}
	return nil
}

// GetActive retrieves the store's active connection for a specific provider.
func (p *PostgreSQLConnectionRepository) GetActive(
	ctx context.Context,
	storeID uuid.UUID,
	provider providerDomain.Provider,
) (*providerDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + `
			  FROM provider_connections
			  WHERE store_id = $1 AND provider = $2 AND status = $3
			  ORDER BY created_at ASC
			  LIMIT 1`

	conn, err := scanConnection(querier.QueryRowContext(ctx, query, storeID, provider, providerDomain.ConnectionStatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, providerDomain.ErrConnectionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active provider connection")
	}
	return conn, nil
}

// GetFirstActive retrieves the store's oldest active connection regardless of
// provider. Used when intent creation does not name a provider.
func (p *PostgreSQLConnectionRepository) GetFirstActive(
	ctx context.Context,
	storeID uuid.UUID,
) (*providerDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + `
			  FROM provider_connections
			  WHERE store_id = $1 AND status = $2
			  ORDER BY created_at ASC
			  LIMIT 1`

	conn, err := scanConnection(querier.QueryRowContext(ctx, query, storeID, providerDomain.ConnectionStatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, providerDomain.ErrConnectionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get first active provider connection")
	}
	return conn, nil
}

// ListActiveByProvider retrieves every active connection for a provider.
// Webhook ingestion tries each connection's secret until one verifies.
func (p *PostgreSQLConnectionRepository) ListActiveByProvider(
	ctx context.Context,
	provider providerDomain.Provider,
) ([]*providerDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + `
			  FROM provider_connections
			  WHERE provider = $1 AND status = $2
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, provider, providerDomain.ConnectionStatusActive)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active provider connections")
	}
	defer rows.Close() //nolint:errcheck

	var conns []*providerDomain.Connection
	for rows.Next() {
		var conn providerDomain.Connection
		err := rows.Scan(
			&conn.ID,
			&conn.StoreID,
			&conn.Provider,
			&conn.Status,
			&conn.ClientID,
			&conn.ClientSecret,
			&conn.WebhookSecret,
			&conn.CreatedAt,
			&conn.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan provider connection")
		}
		conns = append(conns, &conn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate provider connections")
	}

	return conns, nil
}

func scanConnection(row *sql.Row) (*providerDomain.Connection, error) {
	var conn providerDomain.Connection
	err := row.Scan(
		&conn.ID,
		&conn.StoreID,
		&conn.Provider,
		&conn.Status,
		&conn.ClientID,
		&conn.ClientSecret,
		&conn.WebhookSecret,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}
