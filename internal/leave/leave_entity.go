package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// LeaveRequest is one employee leave request. TotalDays is computed at
// creation and never changes; approval metadata is written exactly once
// at the approve/reject transition. Cancellation deletes the row, so
// there is no cancelled status.
type LeaveRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_dates"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	TotalDays int       `gorm:"type:int;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Attachment *string `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time
	AdminNotes *string `gorm:"type:varchar(500)"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (l *LeaveRequest) IsPending() bool  { return l.Status == StatusPending }
func (l *LeaveRequest) IsApproved() bool { return l.Status == StatusApproved }
