package quota

import (
	"context"
	"database/sql"
	"errors"

	quotaerrors "github.com/SeptianSamdani/leave-management-api/internal/quota/errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source=quota_repo.go -destination=mock/quota_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// GetOrCreate returns the quota row for (user, year), inserting the
	// default allotment if absent. The upsert is atomic: concurrent
	// first-of-year callers all observe the same single row.
	GetOrCreate(ctx context.Context, userID uuid.UUID, year int) (LeaveQuota, error)
	Find(ctx context.Context, userID uuid.UUID, year int) (LeaveQuota, error)
	// Debit moves days from remaining to used in a single conditional
	// update. Returns false when remaining < days at apply time, which
	// signals a lost race to the caller.
	Debit(ctx context.Context, userID uuid.UUID, year, days int) (bool, error)
	// Restore is the inverse of Debit, clamped so the row never leaves
	// total = used + remaining.
	Restore(ctx context.Context, userID uuid.UUID, year, days int) error
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID, year int) (LeaveQuota, error) {
	// DO UPDATE instead of DO NOTHING so the conflicting caller still
	// gets the existing row back from RETURNING.
	query := `
INSERT INTO leave_quotas (id, user_id, year, total, used, remaining, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $4, NOW(), NOW())
ON CONFLICT (user_id, year) DO UPDATE SET updated_at = NOW()
RETURNING id, user_id, year, total, used, remaining
`

	var q LeaveQuota
	err := r.querier().QueryRowContext(ctx, query, uuid.New(), userID, year, DefaultAnnualQuota).
		Scan(&q.ID, &q.UserID, &q.Year, &q.Total, &q.Used, &q.Remaining)
	if err != nil {
		return LeaveQuota{}, err
	}
	return q, nil
}

func (r *repository) Find(ctx context.Context, userID uuid.UUID, year int) (LeaveQuota, error) {
	query := `
SELECT id, user_id, year, total, used, remaining
FROM leave_quotas
WHERE user_id = $1 AND year = $2
`

	var q LeaveQuota
	err := r.querier().QueryRowContext(ctx, query, userID, year).
		Scan(&q.ID, &q.UserID, &q.Year, &q.Total, &q.Used, &q.Remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return LeaveQuota{}, quotaerrors.ErrQuotaNotFound
	}
	if err != nil {
		return LeaveQuota{}, err
	}
	return q, nil
}

func (r *repository) Debit(ctx context.Context, userID uuid.UUID, year, days int) (bool, error) {
	query := `
UPDATE leave_quotas
SET used = used + $3, remaining = remaining - $3, updated_at = NOW()
WHERE user_id = $1 AND year = $2 AND remaining >= $3
`

	res, err := r.execer().ExecContext(ctx, query, userID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) Restore(ctx context.Context, userID uuid.UUID, year, days int) error {
	query := `
UPDATE leave_quotas
SET used = GREATEST(used - $3, 0), remaining = LEAST(remaining + $3, total), updated_at = NOW()
WHERE user_id = $1 AND year = $2
`

	res, err := r.execer().ExecContext(ctx, query, userID, year, days)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return quotaerrors.ErrQuotaNotFound
	}
	return nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
