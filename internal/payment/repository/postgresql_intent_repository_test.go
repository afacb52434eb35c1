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
	providerDomain "github.com/allisson/payments/internal/provider/domain"
)

func newTestIntent() *paymentDomain.PaymentIntent {
	now := time.Now().UTC()
	providerIntentID := "pi_123"
	return &paymentDomain.PaymentIntent{
		ID:               uuid.Must(uuid.NewV7()),
		OrderID:          uuid.Must(uuid.NewV7()),
		StoreID:          uuid.Must(uuid.NewV7()),
		Provider:         providerDomain.ProviderStripe,
		ProviderIntentID: &providerIntentID,
		Status:           paymentDomain.IntentStatusPending,
		Amount:           4999,
		Currency:         "USD",
		ClientSecret:     "pi_123_secret",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func intentRows(intent *paymentDomain.PaymentIntent) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "store_id", "provider", "provider_intent_id", "status",
		"amount", "currency", "client_secret", "client_url", "expires_at", "created_at", "updated_at",
	}).AddRow(
		intent.ID.String(), intent.OrderID.String(), intent.StoreID.String(), string(intent.Provider),
		intent.ProviderIntentID, string(intent.Status), intent.Amount, intent.Currency,
		intent.ClientSecret, intent.ClientURL, intent.ExpiresAt, intent.CreatedAt, intent.UpdatedAt,
	)
}

func TestPostgreSQLIntentRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLIntentRepository(db)
	intent := newTestIntent()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payment_intents`)).
		WithArgs(intent.ID, intent.OrderID, intent.StoreID, intent.Provider, intent.ProviderIntentID,
			intent.Status, intent.Amount, intent.Currency, intent.ClientSecret, intent.ClientURL, intent.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), intent))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLIntentRepositoryGetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLIntentRepository(db)
		intent := newTestIntent()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM payment_intents`)).
			WithArgs(intent.ID).
			WillReturnRows(intentRows(intent))

		got, err := repo.GetByID(context.Background(), intent.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.ID, got.ID)
		assert.Equal(t, intent.Status, got.Status)
		assert.Equal(t, intent.Amount, got.Amount)
		require.NotNil(t, got.ProviderIntentID)
		assert.Equal(t, "pi_123", *got.ProviderIntentID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLIntentRepository(db)
		intentID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(regexp.QuoteMeta(`FROM payment_intents`)).
			WithArgs(intentID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.GetByID(context.Background(), intentID)
		assert.ErrorIs(t, err, paymentDomain.ErrIntentNotFound)
	})
}

func TestPostgreSQLIntentRepositoryGetByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLIntentRepository(db)
	intent := newTestIntent()

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(intent.ID).
		WillReturnRows(intentRows(intent))

	got, err := repo.GetByIDForUpdate(context.Background(), intent.ID)
	require.NoError(t, err)
	assert.Equal(t, intent.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLIntentRepositoryGetByProviderIntentID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLIntentRepository(db)
	intent := newTestIntent()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE provider = $1 AND provider_intent_id = $2`)).
		WithArgs(providerDomain.ProviderStripe, "pi_123").
		WillReturnRows(intentRows(intent))

	got, err := repo.GetByProviderIntentID(context.Background(), providerDomain.ProviderStripe, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, intent.ID, got.ID)
}

func TestPostgreSQLIntentRepositoryUpdateStatusIf(t *testing.T) {
	t.Run("status moves", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLIntentRepository(db)
		intentID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_intents`)).
			WithArgs(paymentDomain.IntentStatusPaid, intentID, paymentDomain.IntentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdateStatusIf(context.Background(), intentID, paymentDomain.IntentStatusPending, paymentDomain.IntentStatusPaid)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race surfaces as conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLIntentRepository(db)
		intentID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_intents`)).
			WithArgs(paymentDomain.IntentStatusPaid, intentID, paymentDomain.IntentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateStatusIf(context.Background(), intentID, paymentDomain.IntentStatusPending, paymentDomain.IntentStatusPaid)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLIntentRepositoryListStalePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLIntentRepository(db)
	intent := newTestIntent()
	cutoff := time.Now().Add(-30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1 AND updated_at < $2`)).
		WithArgs(paymentDomain.IntentStatusPending, cutoff, 100).
		WillReturnRows(intentRows(intent))

	intents, err := repo.ListStalePending(context.Background(), cutoff, 100)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, intent.ID, intents[0].ID)
}
