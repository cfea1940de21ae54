package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"breakly/internal/events"
	"breakly/internal/leave"
	leaveerrors "breakly/internal/leave/errors"
	mock_leave "breakly/internal/leave/mock"
	"breakly/internal/messaging/kafka"
	kafkaMock "breakly/internal/messaging/kafka/mock"
	"breakly/internal/rbac"
	mock_rbac "breakly/internal/rbac/mock"
	"breakly/internal/user"
	mock_user "breakly/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type leaveServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *mock_leave.MockRepository
	users   *mock_user.MockRepository
	authz   *mock_rbac.MockService
	outbox  *kafkaMock.MockOutboxRepository
	stats   *mock_leave.MockStatsInvalidator
	svc     leave.Service
}

func setupLeaveServiceTest(t *testing.T) leaveServiceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deps := leaveServiceDeps{
		sqlMock: sqlMock,
		repo:    mock_leave.NewMockRepository(ctrl),
		users:   mock_user.NewMockRepository(ctrl),
		authz:   mock_rbac.NewMockService(ctrl),
		outbox:  kafkaMock.NewMockOutboxRepository(ctrl),
		stats:   mock_leave.NewMockStatsInvalidator(ctrl),
	}
	deps.svc = leave.NewService(db, deps.repo, deps.users, deps.authz, deps.outbox, deps.stats)

	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo).AnyTimes()
	deps.users.EXPECT().WithTx(gomock.Any()).Return(deps.users).AnyTimes()
	deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox).AnyTimes()
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingLeave(id string, leaveType leave.Type, days int) *leave.Leave {
	return &leave.Leave{
		ID:            id,
		EmployeeID:    "emp-1",
		EmployeeName:  "Ana",
		EmployeeEmail: "ana@example.com",
		Type:          leaveType,
		Days:          days,
		Status:        leave.StatusPending,
	}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	employee := user.NewUser("emp-1", "ana@example.com", "Ana")

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		var created *leave.Leave
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, l *leave.Leave) error {
				created = l
				return nil
			})
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, evt kafka.OutboxEvent) error {
				assert.Equal(t, events.LeaveLifecycleTopic, evt.Topic)
				assert.Equal(t, events.EventLeaveSubmitted, evt.EventType)
				assert.Equal(t, kafka.OutboxStatusPending, evt.Status)

				var payload events.LeaveSubmittedEvent
				assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
				assert.Equal(t, 5, payload.Days)
				assert.Equal(t, "emp-1", payload.EmployeeID)
				return nil
			})
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		reason := "family trip"
		res, err := deps.svc.Submit(ctx, "emp-1", leave.CreateLeaveRequest{
			Type:      "annual",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    &reason,
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, res.Days)
		assert.Equal(t, "pending", res.Status)
		assert.Equal(t, "Ana", res.EmployeeName)
		assert.Equal(t, "ana@example.com", res.EmployeeEmail)
		assert.Equal(t, "2026-03-02", res.StartDate)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, created.ID, res.ID)
		assert.Nil(t, res.ApprovedBy)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success single day counts as one", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		res, err := deps.svc.Submit(ctx, "emp-1", leave.CreateLeaveRequest{
			Type:      "maternity",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-02",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Days)
		assert.Equal(t, "maternity", res.Type)
	})

	t.Run("success stats invalidation error is not fatal", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(errors.New("redis down"))

		_, err := deps.svc.Submit(ctx, "emp-1", leave.CreateLeaveRequest{
			Type: "sick", StartDate: "2026-03-02", EndDate: "2026-03-03",
		})

		assert.NoError(t, err)
	})

	invalid := []struct {
		name string
		req  leave.CreateLeaveRequest
		want error
	}{
		{"unknown type", leave.CreateLeaveRequest{Type: "sabbatical", StartDate: "2026-03-02", EndDate: "2026-03-03"}, leaveerrors.ErrInvalidLeaveType},
		{"bad start date", leave.CreateLeaveRequest{Type: "annual", StartDate: "02/03/2026", EndDate: "2026-03-03"}, leaveerrors.ErrInvalidDateFormat},
		{"bad end date", leave.CreateLeaveRequest{Type: "annual", StartDate: "2026-03-02", EndDate: "2026-02-30"}, leaveerrors.ErrInvalidDateFormat},
		{"end before start", leave.CreateLeaveRequest{Type: "annual", StartDate: "2026-03-05", EndDate: "2026-03-02"}, leaveerrors.ErrInvalidDateRange},
	}
	for _, tc := range invalid {
		t.Run("negative "+tc.name, func(t *testing.T) {
			deps := setupLeaveServiceTest(t)

			_, err := deps.svc.Submit(ctx, "emp-1", tc.req)

			assert.ErrorIs(t, err, tc.want)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("negative attachment too large", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		attachment := strings.Repeat("a", leave.MaxAttachmentLen+1)

		_, err := deps.svc.Submit(ctx, "emp-1", leave.CreateLeaveRequest{
			Type: "annual", StartDate: "2026-03-02", EndDate: "2026-03-03", Attachment: &attachment,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrAttachmentTooLarge)
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.users.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.svc.Submit(ctx, "ghost", leave.CreateLeaveRequest{
			Type: "annual", StartDate: "2026-03-02", EndDate: "2026-03-03",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative outbox failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		_, err := deps.svc.Submit(ctx, "emp-1", leave.CreateLeaveRequest{
			Type: "annual", StartDate: "2026-03-02", EndDate: "2026-03-03",
		})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_ListPending(t *testing.T) {
	ctx := context.Background()
	manager := user.NewUser("mgr-1", "mgr@example.com", "Mia")
	manager.Role = rbac.RoleManager
	employee := user.NewUser("emp-1", "ana@example.com", "Ana")

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.users.EXPECT().FindByID(gomock.Any(), "mgr-1").Return(manager, nil)
		deps.authz.EXPECT().CanApprove(rbac.RoleManager).Return(true)
		deps.repo.EXPECT().FindByStatus(gomock.Any(), leave.StatusPending, 0).Return([]leave.Leave{
			*pendingLeave("l-2", leave.TypeAnnual, 2),
			*pendingLeave("l-1", leave.TypeSick, 1),
		}, nil)

		res, err := deps.svc.ListPending(ctx, "mgr-1")

		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.Equal(t, "l-2", res[0].ID)
	})

	t.Run("negative employee forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.authz.EXPECT().CanApprove(rbac.RoleEmployee).Return(false)

		_, err := deps.svc.ListPending(ctx, "emp-1")

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})

	t.Run("negative unknown caller forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.users.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.svc.ListPending(ctx, "ghost")

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})
}

func TestLeaveService_Decide(t *testing.T) {
	ctx := context.Background()
	manager := user.NewUser("mgr-1", "mgr@example.com", "Mia")
	manager.Role = rbac.RoleManager

	allowManager := func(deps leaveServiceDeps) {
		deps.users.EXPECT().FindByID(gomock.Any(), "mgr-1").Return(manager, nil)
		deps.authz.EXPECT().CanApprove(rbac.RoleManager).Return(true)
	}

	t.Run("success approve charges bucket", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeSick, 3), nil)
		deps.repo.EXPECT().
			CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ leave.Status, d leave.Decision) (bool, error) {
				assert.Equal(t, leave.StatusApproved, d.Status)
				assert.Equal(t, "mgr-1", d.ApprovedBy)
				assert.Nil(t, d.RejectionReason)
				assert.False(t, d.ApprovedAt.IsZero())
				return true, nil
			})
		deps.users.EXPECT().AdjustBalance(gomock.Any(), "emp-1", user.BucketSick, -3).Return(true, nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, evt kafka.OutboxEvent) error {
				var payload events.LeaveDecidedEvent
				assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
				assert.Equal(t, events.EventLeaveDecided, payload.EventType)
				assert.Equal(t, "approved", payload.Status)
				assert.Equal(t, "sick", payload.BalanceBucket)
				return nil
			})
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		res, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "approve"})

		assert.NoError(t, err)
		assert.Equal(t, "approved", res.Status)
		if assert.NotNil(t, res.ApprovedBy) {
			assert.Equal(t, "mgr-1", *res.ApprovedBy)
		}
		assert.NotNil(t, res.ApprovedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success maternity charges personal bucket", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeMaternity, 10), nil)
		deps.repo.EXPECT().CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).Return(true, nil)
		deps.users.EXPECT().AdjustBalance(gomock.Any(), "emp-1", user.BucketPersonal, -10).Return(true, nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "APPROVE"})

		assert.NoError(t, err)
	})

	t.Run("success reject stores reason without balance change", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeAnnual, 2), nil)
		deps.repo.EXPECT().
			CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ leave.Status, d leave.Decision) (bool, error) {
				assert.Equal(t, leave.StatusRejected, d.Status)
				if assert.NotNil(t, d.RejectionReason) {
					assert.Equal(t, "coverage gap", *d.RejectionReason)
				}
				return true, nil
			})
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		res, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{
			LeaveID: "l-1", Action: "reject", RejectionReason: "coverage gap",
		})

		assert.NoError(t, err)
		assert.Equal(t, "rejected", res.Status)
		if assert.NotNil(t, res.RejectionReason) {
			assert.Equal(t, "coverage gap", *res.RejectionReason)
		}
	})

	t.Run("success employee vanished commits without balance change", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeAnnual, 2), nil)
		deps.repo.EXPECT().CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).Return(true, nil)
		deps.users.EXPECT().AdjustBalance(gomock.Any(), "emp-1", user.BucketAnnual, -2).Return(false, nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, evt kafka.OutboxEvent) error {
				var payload events.LeaveDecidedEvent
				assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
				assert.Empty(t, payload.BalanceBucket)
				return nil
			})
		deps.stats.EXPECT().Invalidate(gomock.Any(), "emp-1").Return(nil)

		res, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "approve"})

		assert.NoError(t, err)
		assert.Equal(t, "approved", res.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid action", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "escalate"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidAction)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative employee with invalid action is forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		employee := user.NewUser("emp-1", "ana@example.com", "Ana")
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.authz.EXPECT().CanApprove(rbac.RoleEmployee).Return(false)

		_, err := deps.svc.Decide(ctx, "emp-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "escalate"})

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
	})

	t.Run("negative employee forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		employee := user.NewUser("emp-1", "ana@example.com", "Ana")
		deps.users.EXPECT().FindByID(gomock.Any(), "emp-1").Return(employee, nil)
		deps.authz.EXPECT().CanApprove(rbac.RoleEmployee).Return(false)

		_, err := deps.svc.Decide(ctx, "emp-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "approve"})

		assert.ErrorIs(t, err, leaveerrors.ErrForbidden)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative leave not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindByID(gomock.Any(), "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "ghost", Action: "approve"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, false)
		decided := pendingLeave("l-1", leave.TypeAnnual, 2)
		decided.Status = leave.StatusApproved
		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(decided, nil)

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "reject"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveAlreadyDecided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative lost compare and swap", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeAnnual, 2), nil)
		deps.repo.EXPECT().CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).Return(false, nil)

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "approve"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveAlreadyDecided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative balance update error rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		allowManager(deps)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindByID(gomock.Any(), "l-1").Return(pendingLeave("l-1", leave.TypeAnnual, 2), nil)
		deps.repo.EXPECT().CompareAndSetStatus(gomock.Any(), "l-1", leave.StatusPending, gomock.Any()).Return(true, nil)
		deps.users.EXPECT().AdjustBalance(gomock.Any(), "emp-1", user.BucketAnnual, -2).Return(false, errors.New("deadlock"))

		_, err := deps.svc.Decide(ctx, "mgr-1", leave.DecideLeaveRequest{LeaveID: "l-1", Action: "approve"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestType_Bucket(t *testing.T) {
	assert.Equal(t, user.BucketAnnual, leave.TypeAnnual.Bucket())
	assert.Equal(t, user.BucketSick, leave.TypeSick.Bucket())
	assert.Equal(t, user.BucketPersonal, leave.TypePersonal.Bucket())
	assert.Equal(t, user.BucketPersonal, leave.TypeMaternity.Bucket())
	assert.Equal(t, user.BucketPersonal, leave.TypePaternity.Bucket())
}
