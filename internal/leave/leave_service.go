package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"breakly/internal/events"
	leaveerrors "breakly/internal/leave/errors"
	"breakly/internal/messaging/kafka"
	"breakly/internal/rbac"
	"breakly/internal/shared/contextutil"
	"breakly/internal/shared/metrics"
	"breakly/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsInvalidator drops cached dashboard data affected by a change to an
// employee's leaves.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, employeeID string) error
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	ListPending(ctx context.Context, callerID string) ([]LeaveResponse, error)
	Decide(ctx context.Context, callerID string, req DecideLeaveRequest) (LeaveResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	users  user.Repository
	authz  rbac.Service
	outbox kafka.OutboxRepository
	stats  StatsInvalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the lifecycle engine. outbox and stats may be nil.
func NewService(
	db *sql.DB,
	repo Repository,
	users user.Repository,
	authz rbac.Service,
	outbox kafka.OutboxRepository,
	stats StatsInvalidator,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		users:  users,
		authz:  authz,
		outbox: outbox,
		stats:  stats,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Submit(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	leaveType, startDate, endDate, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("submit leave validation failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	employee, err := s.users.WithTx(tx).FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("submit leave employee lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	now := s.now()
	l := &Leave{
		ID:            uuid.NewString(),
		EmployeeID:    employee.ID,
		EmployeeName:  employee.DisplayName,
		EmployeeEmail: employee.Email,
		Type:          leaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		Days:          InclusiveDays(startDate, endDate),
		Reason:        nonEmpty(req.Reason),
		Attachment:    nonEmpty(req.Attachment),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.WithTx(tx).Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	event := events.LeaveSubmittedEvent{
		EventType:  events.EventLeaveSubmitted,
		RequestID:  rid,
		LeaveID:    l.ID,
		EmployeeID: l.EmployeeID,
		LeaveType:  string(l.Type),
		StartDate:  l.StartDate.Format(DateLayout),
		EndDate:    l.EndDate.Format(DateLayout),
		Days:       l.Days,
		OccurredAt: now,
	}
	if err := s.enqueue(ctx, tx, rid, l.ID, event.EventType, event); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateStats(ctx, l.EmployeeID)
	metrics.ObserveLeaveSubmitted(string(l.Type))
	s.logger.Info("submit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID),
		zap.String("employee_id", l.EmployeeID),
		zap.Int("days", l.Days),
	)

	return ToResponse(*l), nil
}

func (s *service) ListForEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, employeeID, 0)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return ToListResponse(leaves), nil
}

func (s *service) ListPending(ctx context.Context, callerID string) ([]LeaveResponse, error) {
	if err := s.requireApprover(ctx, callerID); err != nil {
		return nil, err
	}

	leaves, err := s.repo.FindByStatus(ctx, StatusPending, 0)
	if err != nil {
		s.logger.Error("list pending leaves failed", zap.Error(err))
		return nil, err
	}
	return ToListResponse(leaves), nil
}

// Decide moves a pending leave to approved or rejected. On approval the
// employee's balance bucket is charged in the same transaction as the
// status change.
func (s *service) Decide(ctx context.Context, callerID string, req DecideLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide leave requested",
		zap.String("request_id", rid),
		zap.String("caller_id", callerID),
		zap.String("leave_id", req.LeaveID),
		zap.String("action", req.Action),
	)

	if err := s.requireApprover(ctx, callerID); err != nil {
		return LeaveResponse{}, err
	}
	action, ok := ParseAction(req.Action)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, req.LeaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("decide leave lookup failed", zap.String("leave_id", req.LeaveID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("decide leave conflict",
			zap.String("leave_id", l.ID),
			zap.String("status", string(l.Status)),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided
	}

	now := s.now()
	decision := Decision{
		Status:     action.Status(),
		ApprovedBy: callerID,
		ApprovedAt: now,
	}
	if action == ActionReject {
		decision.RejectionReason = nonEmpty(&req.RejectionReason)
	}

	swapped, err := qtx.CompareAndSetStatus(ctx, l.ID, StatusPending, decision)
	if err != nil {
		s.logger.Error("decide leave update failed", zap.String("leave_id", l.ID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !swapped {
		metrics.ObserveDecideConflict()
		s.logger.Warn("decide leave lost race", zap.String("leave_id", l.ID))
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided
	}

	event := events.LeaveDecidedEvent{
		EventType:  events.EventLeaveDecided,
		RequestID:  rid,
		LeaveID:    l.ID,
		EmployeeID: l.EmployeeID,
		DecidedBy:  callerID,
		Status:     string(decision.Status),
		Days:       l.Days,
		OccurredAt: now,
	}

	if action == ActionApprove {
		bucket := l.Type.Bucket()
		found, err := s.users.WithTx(tx).AdjustBalance(ctx, l.EmployeeID, bucket, -l.Days)
		if err != nil {
			s.logger.Error("decide leave balance update failed",
				zap.String("leave_id", l.ID),
				zap.String("employee_id", l.EmployeeID),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
		if found {
			event.BalanceBucket = string(bucket)
		} else {
			s.logger.Warn("decide leave employee missing, balance untouched",
				zap.String("leave_id", l.ID),
				zap.String("employee_id", l.EmployeeID),
			)
		}
	}

	if err := s.enqueue(ctx, tx, rid, l.ID, event.EventType, event); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	applyDecision(l, decision)
	s.invalidateStats(ctx, l.EmployeeID)
	metrics.ObserveLeaveDecided(string(decision.Status))
	s.logger.Info("decide leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID),
		zap.String("status", string(l.Status)),
		zap.String("decided_by", callerID),
	)

	return ToResponse(*l), nil
}

// requireApprover treats an unknown caller the same as one without the
// approve capability.
func (s *service) requireApprover(ctx context.Context, callerID string) error {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("leave review by unknown caller", zap.String("caller_id", callerID))
			return leaveerrors.ErrForbidden
		}
		s.logger.Error("leave caller lookup failed", zap.String("caller_id", callerID), zap.Error(err))
		return err
	}
	if !s.authz.CanApprove(caller.Role) {
		s.logger.Warn("leave review forbidden",
			zap.String("caller_id", callerID),
			zap.String("role", caller.Role.String()),
		)
		return leaveerrors.ErrForbidden
	}
	return nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, rid, leaveID, eventType string, event any) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: events.AggregateLeave,
		AggregateID:   leaveID,
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("leave outbox persist failed",
			zap.String("leave_id", leaveID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateStats(ctx context.Context, employeeID string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, employeeID); err != nil {
		s.logger.Error("failed to invalidate dashboard stats",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func validateCreateRequest(req CreateLeaveRequest) (Type, time.Time, time.Time, error) {
	leaveType, ok := ParseType(req.Type)
	if !ok {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if endDate.Before(startDate) {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}

	if req.Attachment != nil && len(*req.Attachment) > MaxAttachmentLen {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrAttachmentTooLarge
	}

	return leaveType, startDate, endDate, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func applyDecision(l *Leave, d Decision) {
	approvedBy := d.ApprovedBy
	approvedAt := d.ApprovedAt
	l.Status = d.Status
	l.ApprovedBy = &approvedBy
	l.ApprovedAt = &approvedAt
	l.RejectionReason = d.RejectionReason
	l.UpdatedAt = d.ApprovedAt
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func ToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID,
		EmployeeID:      l.EmployeeID,
		EmployeeName:    l.EmployeeName,
		EmployeeEmail:   l.EmployeeEmail,
		Type:            string(l.Type),
		StartDate:       l.StartDate.Format(DateLayout),
		EndDate:         l.EndDate.Format(DateLayout),
		Days:            l.Days,
		Reason:          l.Reason,
		Attachment:      l.Attachment,
		Status:          string(l.Status),
		ApprovedBy:      l.ApprovedBy,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.ApprovedAt != nil {
		approvedAt := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &approvedAt
	}
	return resp
}

func ToListResponse(leaves []Leave) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, ToResponse(l))
	}
	return out
}
