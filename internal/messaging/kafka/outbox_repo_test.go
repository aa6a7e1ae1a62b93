package kafka_test

import (
	"context"
	"testing"

	"github.com/SeptianSamdani/leave-management-api/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "leave_request",
		AggregateID:   uuid.NewString(),
		EventType:     "leave_created",
		Topic:         "leave.request.lifecycle.v1",
		Payload:       []byte(`{"leave_id":"abc"}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, kafka.ValidateOutboxEvent(validEvent()))
	})

	t.Run("negative missing id", func(t *testing.T) {
		e := validEvent()
		e.ID = ""
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("negative missing topic", func(t *testing.T) {
		e := validEvent()
		e.Topic = ""
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("negative empty payload", func(t *testing.T) {
		e := validEvent()
		e.Payload = nil
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("negative unknown status", func(t *testing.T) {
		e := validEvent()
		e.Status = "queued"
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success inside transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		e := validEvent()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO outbox_events").
			WithArgs(e.ID, e.RequestID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, e.Status).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.BeginTx(ctx, nil)
		assert.NoError(t, err)

		repo := kafka.NewOutboxRepository(db)
		assert.NoError(t, repo.WithTx(tx).Create(ctx, e))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative invalid event skips the insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		e := validEvent()
		e.Topic = ""

		repo := kafka.NewOutboxRepository(db)
		assert.Error(t, repo.Create(ctx, e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	id := uuid.NewString()
	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(id, kafka.OutboxStatusFailed, "broker unreachable").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := kafka.NewOutboxRepository(db)
	assert.NoError(t, repo.MarkFailed(ctx, id, "broker unreachable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
