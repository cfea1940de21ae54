package dashboard

import (
	"breakly/internal/leave"
	"breakly/internal/user"
)

type StatsResponse struct {
	LeaveBalance user.LeaveBalanceResponse `json:"leave_balance"`
	RecentLeaves []leave.LeaveResponse     `json:"recent_leaves"`
	PendingCount int64                     `json:"pending_count"`
	// PendingApprovals is only present for callers who can approve.
	PendingApprovals *int64 `json:"pending_approvals,omitempty"`
}

// employeeStats is the cached per-employee part of StatsResponse.
type employeeStats struct {
	RecentLeaves []leave.LeaveResponse `json:"recent_leaves"`
	PendingCount int64                 `json:"pending_count"`
}
