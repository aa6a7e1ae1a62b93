package quota

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAnnualQuota is the yearly allotment granted when a quota row
// is created lazily or at onboarding.
const DefaultAnnualQuota = 12

// LeaveQuota tracks one user's allotment for one calendar year.
// Invariant: Total = Used + Remaining, all non-negative.
type LeaveQuota struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_quotas_user_year"`
	Year      int       `gorm:"type:int;not null;uniqueIndex:uq_leave_quotas_user_year"`
	Total     int       `gorm:"type:int;not null;default:12"`
	Used      int       `gorm:"type:int;not null;default:0"`
	Remaining int       `gorm:"type:int;not null;default:12"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanAfford reports whether the balance covers days.
func (q LeaveQuota) CanAfford(days int) bool {
	return q.Remaining >= days
}

// Debit returns the quota with days moved from remaining to used. The
// caller must have checked CanAfford; the repository enforces the same
// guard under concurrency.
func (q LeaveQuota) Debit(days int) LeaveQuota {
	q.Used += days
	q.Remaining -= days
	return q
}

// Restore returns the quota with days moved back from used to
// remaining, clamped so the Total = Used + Remaining invariant holds
// even if used would underflow.
func (q LeaveQuota) Restore(days int) LeaveQuota {
	q.Used -= days
	if q.Used < 0 {
		q.Used = 0
	}
	q.Remaining = q.Total - q.Used
	return q
}
