package quota_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SeptianSamdani/leave-management-api/internal/quota"
	quotaerrors "github.com/SeptianSamdani/leave-management-api/internal/quota/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestQuotaRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success returns upserted row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rowID := uuid.New()
		mock.ExpectQuery("INSERT INTO leave_quotas").
			WithArgs(sqlmock.AnyArg(), userID, 2026, quota.DefaultAnnualQuota).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "user_id", "year", "total", "used", "remaining"},
			).AddRow(rowID, userID, 2026, 12, 0, 12))

		repo := quota.NewRepository(db)
		q, err := repo.GetOrCreate(ctx, userID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, rowID, q.ID)
		assert.Equal(t, 12, q.Total)
		assert.Equal(t, 12, q.Remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success conflict returns existing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		existingID := uuid.New()
		mock.ExpectQuery("INSERT INTO leave_quotas").
			WithArgs(sqlmock.AnyArg(), userID, 2026, quota.DefaultAnnualQuota).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "user_id", "year", "total", "used", "remaining"},
			).AddRow(existingID, userID, 2026, 12, 4, 8))

		repo := quota.NewRepository(db)
		q, err := repo.GetOrCreate(ctx, userID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, existingID, q.ID)
		assert.Equal(t, 4, q.Used)
		assert.Equal(t, 8, q.Remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuotaRepository_Find(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, user_id, year, total, used, remaining").
			WithArgs(userID, 2026).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "user_id", "year", "total", "used", "remaining"},
			).AddRow(uuid.New(), userID, 2026, 12, 3, 9))

		repo := quota.NewRepository(db)
		q, err := repo.Find(ctx, userID, 2026)

		assert.NoError(t, err)
		assert.Equal(t, 9, q.Remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative no row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, user_id, year, total, used, remaining").
			WithArgs(userID, 2026).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "user_id", "year", "total", "used", "remaining"},
			))

		repo := quota.NewRepository(db)
		_, err = repo.Find(ctx, userID, 2026)

		assert.ErrorIs(t, err, quotaerrors.ErrQuotaNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuotaRepository_Debit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_quotas").
			WithArgs(userID, 2026, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := quota.NewRepository(db)
		ok, err := repo.Debit(ctx, userID, 2026, 5)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative guard rejects overdraft", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		// remaining >= days did not match, zero rows touched.
		mock.ExpectExec("UPDATE leave_quotas").
			WithArgs(userID, 2026, 20).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := quota.NewRepository(db)
		ok, err := repo.Debit(ctx, userID, 2026, 20)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_quotas").
			WithArgs(userID, 2026, 5).
			WillReturnError(errors.New("connection reset"))

		repo := quota.NewRepository(db)
		_, err = repo.Debit(ctx, userID, 2026, 5)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuotaRepository_Restore(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_quotas").
			WithArgs(userID, 2026, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := quota.NewRepository(db)
		err = repo.Restore(ctx, userID, 2026, 5)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE leave_quotas").
			WithArgs(userID, 2026, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := quota.NewRepository(db)
		err = repo.Restore(ctx, userID, 2026, 5)

		assert.ErrorIs(t, err, quotaerrors.ErrQuotaNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
