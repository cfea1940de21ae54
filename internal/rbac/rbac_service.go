package rbac

import (
	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

const (
	objectLeave = "leave"
	objectUser  = "user"

	actionApprove    = "approve"
	actionAssignRole = "assign_role"
)

// Service is the single place role capabilities are decided.
//
//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	// CanApprove reports whether role may list pending requests and decide them.
	CanApprove(role Role) bool
	CanAssignRoles(role Role) bool
}

type service struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

func (s *service) CanApprove(role Role) bool {
	return s.enforce(role, objectLeave, actionApprove)
}

func (s *service) CanAssignRoles(role Role) bool {
	return s.enforce(role, objectUser, actionAssignRole)
}

func (s *service) enforce(role Role, obj, act string) bool {
	if !role.Valid() {
		return false
	}

	allowed, err := s.enforcer.Enforce(string(role), obj, act)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", string(role)),
			zap.String("object", obj),
			zap.String("action", act),
			zap.Error(err),
		)
		return false
	}
	return allowed
}
