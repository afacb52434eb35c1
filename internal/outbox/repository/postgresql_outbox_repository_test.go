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

	"github.com/allisson/payments/internal/outbox/domain"
)

func TestPostgreSQLOutboxEventRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	event, err := domain.NewOutboxEvent(uuid.Must(uuid.NewV7()), domain.EventTypePaymentPaid, map[string]string{"status": "paid"})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO outbox_events`)).
		WithArgs(event.ID, event.AggregateID, event.EventType, event.Payload, event.Status, 0, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepositoryGetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	eventID := uuid.Must(uuid.NewV7())
	aggregateID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "aggregate_id", "event_type", "payload", "status", "retries", "last_error", "published_at", "created_at", "updated_at",
	}).AddRow(eventID.String(), aggregateID.String(), "payment.paid", `{"status":"paid"}`, "pending", 0, nil, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE SKIP LOCKED`)).
		WithArgs(domain.OutboxEventStatusPending, 50).
		WillReturnRows(rows)

	events, err := repo.GetPendingEvents(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventID, events[0].ID)
	assert.Equal(t, aggregateID, events[0].AggregateID)
	assert.Equal(t, domain.EventTypePaymentPaid, events[0].EventType)
	assert.Equal(t, domain.OutboxEventStatusPending, events[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLOutboxEventRepository(db)
	event, err := domain.NewOutboxEvent(uuid.Must(uuid.NewV7()), domain.EventTypeLedgerSync, map[string]string{})
	require.NoError(t, err)
	now := time.Now().UTC()
	event.Status = domain.OutboxEventStatusPublished
	event.PublishedAt = &now

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE outbox_events`)).
		WithArgs(event.Status, event.Retries, event.LastError, event.PublishedAt, event.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}
