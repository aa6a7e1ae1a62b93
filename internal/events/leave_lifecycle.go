package events

import "time"

const LeaveLifecycleTopic = "leave.request.lifecycle.v1"

const (
	LeaveCreated   = "leave_created"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveCancelled = "leave_cancelled"
)

// LeaveLifecycleEvent is published for every leave-request state change
// so downstream consumers (payroll, notifications) can react.
type LeaveLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	UserID     string    `json:"user_id"`
	TotalDays  int       `json:"total_days"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
