package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/payments/internal/errors"
	paymentDomain "github.com/allisson/payments/internal/payment/domain"
)

func newTestRefund() *paymentDomain.Refund {
	now := time.Now().UTC()
	providerRefundID := "re_123"
	return &paymentDomain.Refund{
		ID:               uuid.Must(uuid.NewV7()),
		PaymentIntentID:  uuid.Must(uuid.NewV7()),
		ProviderRefundID: &providerRefundID,
		Amount:           500,
		Status:           paymentDomain.RefundStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func refundRows(refund *paymentDomain.Refund) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "payment_intent_id", "provider_refund_id", "amount", "status", "created_at", "updated_at",
	}).AddRow(
		refund.ID.String(), refund.PaymentIntentID.String(), refund.ProviderRefundID,
		refund.Amount, string(refund.Status), refund.CreatedAt, refund.UpdatedAt,
	)
}

func TestPostgreSQLRefundRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLRefundRepository(db)
	refund := newTestRefund()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refunds`)).
		WithArgs(refund.ID, refund.PaymentIntentID, refund.ProviderRefundID, refund.Amount, refund.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), refund))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRefundRepositoryGetByProviderRefundID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLRefundRepository(db)
		refund := newTestRefund()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE provider_refund_id = $1`)).
			WithArgs("re_123").
			WillReturnRows(refundRows(refund))

		got, err := repo.GetByProviderRefundID(context.Background(), "re_123")
		require.NoError(t, err)
		assert.Equal(t, refund.ID, got.ID)
		assert.Equal(t, refund.Amount, got.Amount)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLRefundRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE provider_refund_id = $1`)).
			WithArgs("re_missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.GetByProviderRefundID(context.Background(), "re_missing")
		assert.ErrorIs(t, err, paymentDomain.ErrRefundNotFound)
	})
}

func TestPostgreSQLRefundRepositorySumActiveByIntent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLRefundRepository(db)
	intentID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(SUM(amount), 0)`)).
		WithArgs(intentID, paymentDomain.RefundStatusPending, paymentDomain.RefundStatusSucceeded).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(1500)))

	total, err := repo.SumActiveByIntent(context.Background(), intentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total)
}

func TestPostgreSQLRefundRepositoryUpdateStatusIf(t *testing.T) {
	t.Run("status moves", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLRefundRepository(db)
		refundID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE refunds`)).
			WithArgs(paymentDomain.RefundStatusSucceeded, refundID, paymentDomain.RefundStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdateStatusIf(context.Background(), refundID, paymentDomain.RefundStatusPending, paymentDomain.RefundStatusSucceeded)
		require.NoError(t, err)
	})

	t.Run("lost race surfaces as conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLRefundRepository(db)
		refundID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE refunds`)).
			WithArgs(paymentDomain.RefundStatusSucceeded, refundID, paymentDomain.RefundStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateStatusIf(context.Background(), refundID, paymentDomain.RefundStatusPending, paymentDomain.RefundStatusSucceeded)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLRefundRepositoryListStalePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLRefundRepository(db)
	refund := newTestRefund()
	cutoff := time.Now().Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1 AND updated_at < $2`)).
		WithArgs(paymentDomain.RefundStatusPending, cutoff, 100).
		WillReturnRows(refundRows(refund))

	refunds, err := repo.ListStalePending(context.Background(), cutoff, 100)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, refund.ID, refunds[0].ID)
}
