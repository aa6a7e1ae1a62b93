package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SeptianSamdani/leave-management-api/internal/events"
	leaveerrors "github.com/SeptianSamdani/leave-management-api/internal/leave/errors"
	"github.com/SeptianSamdani/leave-management-api/internal/messaging/kafka"
	"github.com/SeptianSamdani/leave-management-api/internal/quota"
	quotaerrors "github.com/SeptianSamdani/leave-management-api/internal/quota/errors"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/clock"
	"github.com/SeptianSamdani/leave-management-api/internal/shared/contextutil"
	"github.com/SeptianSamdani/leave-management-api/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "leave:dashboard"
	dashboardCacheTTL = 5 * time.Minute
	recentRequests    = 5
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, userID string, req CreateLeaveRequest, attachment *storage.Upload) (LeaveResponse, error)
	GetAllForUser(ctx context.Context, userID string) ([]LeaveResponse, error)
	GetByIDForUser(ctx context.Context, userID, id string) (LeaveResponse, error)
	Cancel(ctx context.Context, userID, id string) error
	Statistics(ctx context.Context, userID string) (StatisticsResponse, error)
	AdminGetAll(ctx context.Context, q AdminListQuery) ([]LeaveResponse, error)
	AdminGetByID(ctx context.Context, id string) (LeaveResponse, error)
	Approve(ctx context.Context, adminID, id string, notes *string) (LeaveResponse, error)
	Reject(ctx context.Context, adminID, id, notes string) (LeaveResponse, error)
	Dashboard(ctx context.Context) (DashboardResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	quotas quota.Repository
	store  storage.Store
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	clk    clock.Clock
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	quotas quota.Repository,
	store storage.Store,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, quotas, store, nil, nil, clk, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	quotas quota.Repository,
	store storage.Store,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		db:     db,
		repo:   repo,
		quotas: quotas,
		store:  store,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		clk:    clk,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, userID string, req CreateLeaveRequest, attachment *storage.Upload) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("user_id", userID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	now := s.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate.Before(today) {
		return LeaveResponse{}, leaveerrors.ErrStartDateInPast
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	quotaTx := s.quotas.WithTx(tx)

	// Quota rows are keyed by the calendar year at submission time, not
	// the year the leave dates fall in.
	q, err := quotaTx.GetOrCreate(ctx, userUUID, now.Year())
	if err != nil {
		s.logger.Error("create leave quota upsert failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	totalDays, err := CountWorkingDays(startDate, endDate)
	if err != nil {
		s.logger.Warn("create leave invalid period", zap.Error(err))
		return LeaveResponse{}, err
	}

	// Affordability is only checked here; the debit happens at approval.
	// Several pending requests can therefore pass against the same
	// balance, and later approvals re-check.
	if !q.CanAfford(totalDays) {
		s.logger.Warn("create leave insufficient quota",
			zap.String("user_id", userID),
			zap.Int("requested_days", totalDays),
			zap.Int("remaining", q.Remaining),
		)
		return LeaveResponse{}, quotaerrors.InsufficientQuota(q.Remaining)
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, userID, startDate, endDate)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("user_id", userID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	// The blob store lives outside the transaction; an orphaned file on
	// a later rollback is reconciled elsewhere, quota and request rows
	// are not allowed to diverge.
	var attachmentRef *string
	if attachment != nil {
		ref, err := s.store.Save(ctx, *attachment)
		if err != nil {
			s.logger.Error("create leave attachment store failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		attachmentRef = &ref
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		UserID:     userUUID,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Attachment: attachmentRef,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveCreated, l, StatusPending); err != nil {
		s.logger.Error("create leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID),
		zap.Int("total_days", totalDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAllForUser(ctx context.Context, userID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByIDForUser(ctx context.Context, userID, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	// Another user's request reads as absent, not forbidden.
	if l.UserID.String() != userID {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, adminID, id string, notes *string) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("admin_id", adminID),
	)

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	quotaTx := s.quotas.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !l.IsPending() {
		s.logger.Warn("approve leave not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	// The debit targets the quota year current at approval time, not
	// the year of the leave dates. A request approved after New Year
	// hits the new year's bucket.
	year := s.clk.Now().Year()
	q, err := quotaTx.Find(ctx, l.UserID, year)
	if err != nil {
		s.logger.Warn("approve leave quota lookup failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	// The balance may have shrunk since creation; re-check before the
	// debit and again, atomically, inside it.
	if !q.CanAfford(l.TotalDays) {
		s.logger.Warn("approve leave insufficient quota",
			zap.String("leave_id", id),
			zap.Int("requested_days", l.TotalDays),
			zap.Int("remaining", q.Remaining),
		)
		return LeaveResponse{}, quotaerrors.InsufficientQuota(q.Remaining)
	}

	debited, err := quotaTx.Debit(ctx, l.UserID, year, l.TotalDays)
	if err != nil {
		s.logger.Error("approve leave debit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !debited {
		remaining := q.Remaining
		if fresh, ferr := quotaTx.Find(ctx, l.UserID, year); ferr == nil {
			remaining = fresh.Remaining
		}
		s.logger.Warn("approve leave lost debit race",
			zap.String("leave_id", id),
			zap.Int("remaining", remaining),
		)
		return LeaveResponse{}, quotaerrors.QuotaExceeded(remaining)
	}

	now := s.clk.Now()
	l.Status = StatusApproved
	l.ApprovedBy = &adminUUID
	l.ApprovedAt = &now
	l.AdminNotes = notes

	updated, err := qtx.UpdateDecision(ctx, l)
	if err != nil {
		s.logger.Error("approve leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !updated {
		// A concurrent decision won; rolling back also undoes the debit.
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveApproved, l, StatusApproved); err != nil {
		s.logger.Error("approve leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("admin_id", adminID),
		zap.Int("debited_days", l.TotalDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, adminID, id, notes string) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("admin_id", adminID),
	)

	notes = strings.TrimSpace(notes)
	if notes == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionNotesRequired
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !l.IsPending() {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	now := s.clk.Now()
	l.Status = StatusRejected
	l.ApprovedBy = &adminUUID
	l.ApprovedAt = &now
	l.AdminNotes = &notes

	updated, err := qtx.UpdateDecision(ctx, l)
	if err != nil {
		s.logger.Error("reject leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !updated {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveRejected, l, StatusRejected); err != nil {
		s.logger.Error("reject leave outbox persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("reject leave success",
		zap.String("leave_id", id),
		zap.String("admin_id", adminID),
	)

	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, userID, id string) error {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("user_id", userID),
	)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return leaveerrors.ErrInvalidUserID
	}
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	quotaTx := s.quotas.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if l.UserID != userUUID {
		return leaveerrors.ErrNotRequestOwner
	}

	// Only approved requests have been debited; pending and rejected
	// ones are deleted with no quota effect. The restore targets the
	// quota year current at cancellation time, matching the approve
	// path.
	if l.IsApproved() {
		if err := quotaTx.Restore(ctx, l.UserID, s.clk.Now().Year(), l.TotalDays); err != nil {
			s.logger.Error("cancel leave quota restore failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return err
		}
	}

	deleted, err := qtx.Delete(ctx, id)
	if err != nil {
		s.logger.Error("cancel leave delete failed", zap.Error(err))
		return err
	}
	if !deleted {
		return leaveerrors.ErrLeaveNotFound
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveCancelled, l, "cancelled"); err != nil {
		s.logger.Error("cancel leave outbox persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed", zap.Error(err))
		return err
	}

	// Best effort: a failed file delete never rolls back a committed
	// cancellation.
	if l.Attachment != nil {
		if err := s.store.Delete(ctx, *l.Attachment); err != nil {
			s.logger.Warn("cancel leave attachment delete failed",
				zap.String("leave_id", id),
				zap.String("attachment", *l.Attachment),
				zap.Error(err),
			)
		}
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("cancel leave success",
		zap.String("leave_id", id),
		zap.String("user_id", userID),
		zap.Bool("quota_restored", l.IsApproved()),
	)

	return nil
}

func (s *service) Statistics(ctx context.Context, userID string) (StatisticsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return StatisticsResponse{}, leaveerrors.ErrInvalidUserID
	}

	year := s.clk.Now().Year()

	summary := QuotaSummary{
		Total:     quota.DefaultAnnualQuota,
		Used:      0,
		Remaining: quota.DefaultAnnualQuota,
	}
	q, err := s.quotas.Find(ctx, userUUID, year)
	switch {
	case err == nil:
		summary = QuotaSummary{Total: q.Total, Used: q.Used, Remaining: q.Remaining}
	case errors.Is(err, quotaerrors.ErrQuotaNotFound):
		// No row yet this year; report the untouched default allotment.
	default:
		return StatisticsResponse{}, err
	}

	counts, err := s.repo.CountByStatusForYear(ctx, userID, year)
	if err != nil {
		return StatisticsResponse{}, err
	}

	return StatisticsResponse{
		Quota: summary,
		Summary: StatusSummary{
			Pending:  counts.Pending,
			Approved: counts.Approved,
			Rejected: counts.Rejected,
		},
	}, nil
}

func (s *service) AdminGetAll(ctx context.Context, q AdminListQuery) ([]LeaveResponse, error) {
	filter := AdminFilter{
		Status: q.Status,
		UserID: q.UserID,
	}
	if q.StartDate != "" {
		d, err := parseDate(q.StartDate)
		if err != nil {
			return nil, err
		}
		filter.StartFrom = &d
	}
	if q.EndDate != "" {
		d, err := parseDate(q.EndDate)
		if err != nil {
			return nil, err
		}
		filter.EndTo = &d
	}

	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) AdminGetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) Dashboard(ctx context.Context) (DashboardResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var resp DashboardResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight collapses concurrent recomputes after invalidation.
	v, err, _ := s.sf.Do(dashboardCacheKey, func() (interface{}, error) {
		total, counts, err := s.repo.CountAllByStatus(ctx)
		if err != nil {
			return nil, err
		}
		recent, err := s.repo.FindRecent(ctx, recentRequests)
		if err != nil {
			return nil, err
		}

		resp := DashboardResponse{
			TotalRequests:    total,
			PendingRequests:  counts.Pending,
			ApprovedRequests: counts.Approved,
			RejectedRequests: counts.Rejected,
			RecentRequests:   mapToListResponse(recent),
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return DashboardResponse{}, err
	}

	return v.(DashboardResponse), nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, eventType string, l *LeaveRequest, status string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		UserID:     l.UserID.String(),
		TotalDays:  l.TotalDays,
		Status:     status,
		OccurredAt: s.clk.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateDashboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Error("invalidate dashboard cache failed",
			zap.String("key", dashboardCacheKey),
			zap.Error(err),
		)
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		UserID:     l.UserID.String(),
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Attachment: l.Attachment,
		Status:     l.Status,
		AdminNotes: l.AdminNotes,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
