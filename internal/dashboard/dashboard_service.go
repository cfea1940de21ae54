package dashboard

import (
	"context"
	"errors"

	dashboarderrors "breakly/internal/dashboard/errors"
	"breakly/internal/leave"
	"breakly/internal/rbac"
	"breakly/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentLeavesLimit = 5

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	GetStats(ctx context.Context, userID string) (StatsResponse, error)
}

type service struct {
	users  user.Repository
	leaves leave.Repository
	authz  rbac.Service
	cache  *Cache
	logger *zap.Logger
}

func NewService(
	users user.Repository,
	leaves leave.Repository,
	authz rbac.Service,
	cache *Cache,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	return &service{users: users, leaves: leaves, authz: authz, cache: cache, logger: l}
}

// GetStats reads the balance straight from the user row so it is never
// stale; the leave aggregates may be served from cache.
func (s *service) GetStats(ctx context.Context, userID string) (StatsResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatsResponse{}, dashboarderrors.ErrUserNotFound
		}
		s.logger.Error("dashboard user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return StatsResponse{}, err
	}

	own, err := load(ctx, s.cache, UserStatsKey(userID), func(ctx context.Context) (employeeStats, error) {
		return s.loadEmployeeStats(ctx, userID)
	})
	if err != nil {
		s.logger.Error("dashboard employee stats failed", zap.String("user_id", userID), zap.Error(err))
		return StatsResponse{}, err
	}

	resp := StatsResponse{
		LeaveBalance: user.LeaveBalanceResponse{
			Annual:   u.LeaveBalance.Annual,
			Sick:     u.LeaveBalance.Sick,
			Personal: u.LeaveBalance.Personal,
		},
		RecentLeaves: own.RecentLeaves,
		PendingCount: own.PendingCount,
	}

	if s.authz.CanApprove(u.Role) {
		pending, err := load(ctx, s.cache, PendingApprovalsKey, func(ctx context.Context) (int64, error) {
			return s.leaves.CountByStatus(ctx, leave.StatusPending)
		})
		if err != nil {
			s.logger.Error("dashboard pending approvals failed", zap.Error(err))
			return StatsResponse{}, err
		}
		resp.PendingApprovals = &pending
	}

	return resp, nil
}

func (s *service) loadEmployeeStats(ctx context.Context, userID string) (employeeStats, error) {
	recent, err := s.leaves.FindByEmployee(ctx, userID, recentLeavesLimit)
	if err != nil {
		return employeeStats{}, err
	}
	count, err := s.leaves.CountByEmployeeAndStatus(ctx, userID, leave.StatusPending)
	if err != nil {
		return employeeStats{}, err
	}
	return employeeStats{RecentLeaves: leave.ToListResponse(recent), PendingCount: count}, nil
}
