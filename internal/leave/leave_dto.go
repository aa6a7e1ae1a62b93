package leave

type CreateLeaveRequest struct {
	StartDate string `form:"start_date" json:"start_date" binding:"required"`
	EndDate   string `form:"end_date" json:"end_date" binding:"required"`
	Reason    string `form:"reason" json:"reason" binding:"required,min=10"`
}

type ApproveLeaveRequest struct {
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=500"`
}

type RejectLeaveRequest struct {
	AdminNotes string `json:"admin_notes" binding:"required,max=500"`
}

type AdminListQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type LeaveResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalDays  int     `json:"total_days"`
	Reason     string  `json:"reason"`
	Attachment *string `json:"attachment,omitempty"`
	Status     string  `json:"status"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type QuotaSummary struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type StatusSummary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type StatisticsResponse struct {
	Quota   QuotaSummary  `json:"quota"`
	Summary StatusSummary `json:"leave_summary"`
}

type DashboardResponse struct {
	TotalRequests    int64           `json:"total_requests"`
	PendingRequests  int64           `json:"pending_requests"`
	ApprovedRequests int64           `json:"approved_requests"`
	RejectedRequests int64           `json:"rejected_requests"`
	RecentRequests   []LeaveResponse `json:"recent_requests"`
}
