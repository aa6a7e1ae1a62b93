package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusCounts is a per-status rollup of leave requests.
type StatusCounts struct {
	Pending  int64
	Approved int64
	Rejected int64
}

// AdminFilter narrows the admin listing. Zero values mean "no filter".
type AdminFilter struct {
	Status    string
	UserID    string
	StartFrom *time.Time
	EndTo     *time.Time
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context, filter AdminFilter) ([]LeaveRequest, error)
	// UpdateDecision writes the approve/reject transition. The update is
	// guarded by status='pending' so a concurrent decision on the same
	// request loses cleanly; false means the guard did not match.
	UpdateDecision(ctx context.Context, l *LeaveRequest) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// HasOverlappingPeriod reports whether any non-rejected request of
	// the user intersects [start, end] inclusive.
	HasOverlappingPeriod(ctx context.Context, userID string, start, end time.Time) (bool, error)
	CountByStatusForYear(ctx context.Context, userID string, year int) (StatusCounts, error)
	CountAllByStatus(ctx context.Context) (int64, StatusCounts, error)
	FindRecent(ctx context.Context, limit int) ([]LeaveRequest, error)
}

// repository reads through gorm and routes lifecycle writes through the
// ambient *sql.Tx so request rows, quota rows and outbox events commit
// or roll back together.
type repository struct {
	gdb *gorm.DB
	db  *sql.DB
	tx  *sql.Tx
}

func NewRepository(gdb *gorm.DB, db *sql.DB) Repository {
	return &repository{gdb: gdb, db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{gdb: r.gdb, db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	query := `
INSERT INTO leave_requests (
	id, user_id, start_date, end_date, total_days, reason, attachment, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
`

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := r.execer().ExecContext(ctx, query,
		l.ID, l.UserID, l.StartDate, l.EndDate, l.TotalDays, l.Reason, l.Attachment, l.Status, l.CreatedAt,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.gdb.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllByUser(ctx context.Context, userID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.gdb.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAll(ctx context.Context, filter AdminFilter) ([]LeaveRequest, error) {
	db := r.gdb.WithContext(ctx).Model(&LeaveRequest{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.StartFrom != nil {
		db = db.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.EndTo != nil {
		db = db.Where("end_date <= ?", *filter.EndTo)
	}

	var leaves []LeaveRequest
	err := db.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) UpdateDecision(ctx context.Context, l *LeaveRequest) (bool, error) {
	query := `
UPDATE leave_requests
SET status = $2, approved_by = $3, approved_at = $4, admin_notes = $5, updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`

	res, err := r.execer().ExecContext(ctx, query,
		l.ID, l.Status, l.ApprovedBy, l.ApprovedAt, l.AdminNotes,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.execer().ExecContext(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.gdb.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status <> ?", StatusRejected).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountByStatusForYear(ctx context.Context, userID string, year int) (StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.gdb.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Where("EXTRACT(YEAR FROM start_date) = ?", year).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}
	return toStatusCounts(rows), nil
}

func (r *repository) CountAllByStatus(ctx context.Context) (int64, StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.gdb.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, StatusCounts{}, err
	}

	counts := toStatusCounts(rows)
	total := counts.Pending + counts.Approved + counts.Rejected
	return total, counts, nil
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.gdb.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&leaves).Error
	return leaves, err
}

func toStatusCounts(rows []struct {
	Status string
	Count  int64
}) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case StatusPending:
			counts.Pending = row.Count
		case StatusApproved:
			counts.Approved = row.Count
		case StatusRejected:
			counts.Rejected = row.Count
		}
	}
	return counts
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
