package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"breakly/internal/identity"
	"breakly/internal/rbac"
	usererrors "breakly/internal/user/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetProfile(ctx context.Context, userID string) (UserResponse, error)
	Register(ctx context.Context, who identity.Identity, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, who identity.Identity) (UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserResponse, error)
	AssignRole(ctx context.Context, actorID, targetID string, req AssignRoleRequest) (UserResponse, error)
}

type service struct {
	repo   Repository
	authz  rbac.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, authz rbac.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:   repo,
		authz:  authz,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) GetProfile(ctx context.Context, userID string) (UserResponse, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) Register(ctx context.Context, who identity.Identity, req RegisterRequest) (UserResponse, error) {
	s.logger.Debug("register user requested", zap.String("user_id", who.ID))

	if who.Email == "" {
		return UserResponse{}, usererrors.ErrEmailRequired
	}

	now := s.now()
	u := NewUser(who.ID, who.Email, firstNonEmpty(req.DisplayName, who.Name, who.Email))
	u.Department = optionalString(req.Department)
	u.PhoneNumber = optionalString(req.PhoneNumber)
	u.LastLogin = &now

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, usererrors.ErrUserAlreadyExists) {
			s.logger.Warn("register user conflict", zap.String("user_id", who.ID))
			return UserResponse{}, err
		}
		s.logger.Error("register user failed", zap.String("user_id", who.ID), zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("register user success", zap.String("user_id", u.ID))
	return mapToResponse(*u), nil
}

// Login records the login time. An identity seen for the first time gets a
// minimal Employee profile.
func (s *service) Login(ctx context.Context, who identity.Identity) (UserResponse, error) {
	s.logger.Debug("login requested", zap.String("user_id", who.ID))

	now := s.now()
	touched, err := s.repo.TouchLastLogin(ctx, who.ID, now)
	if err != nil {
		s.logger.Error("login touch failed", zap.String("user_id", who.ID), zap.Error(err))
		return UserResponse{}, err
	}
	if touched {
		return s.GetProfile(ctx, who.ID)
	}

	if who.Email == "" {
		return UserResponse{}, usererrors.ErrEmailRequired
	}

	stub := NewUser(who.ID, who.Email, firstNonEmpty(who.Name, who.Email))
	stub.LastLogin = &now

	err = s.repo.Create(ctx, stub)
	switch {
	case err == nil:
		s.logger.Info("login created profile", zap.String("user_id", who.ID))
		return mapToResponse(*stub), nil
	case errors.Is(err, usererrors.ErrUserAlreadyExists):
		// A concurrent login created the row first.
		touched, err = s.repo.TouchLastLogin(ctx, who.ID, now)
		if err != nil {
			return UserResponse{}, err
		}
		if !touched {
			// The email belongs to a different account.
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		return s.GetProfile(ctx, who.ID)
	default:
		s.logger.Error("login create profile failed", zap.String("user_id", who.ID), zap.Error(err))
		return UserResponse{}, err
	}
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserResponse, error) {
	update := ProfileUpdate{
		Department:  trimmed(req.Department),
		PhoneNumber: trimmed(req.PhoneNumber),
	}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return UserResponse{}, usererrors.ErrInvalidDisplayName
		}
		update.DisplayName = &name
	}

	found, err := s.repo.UpdateProfile(ctx, userID, update)
	if err != nil {
		s.logger.Error("update profile failed", zap.String("user_id", userID), zap.Error(err))
		return UserResponse{}, err
	}
	if !found {
		return UserResponse{}, usererrors.ErrUserNotFound
	}

	s.logger.Info("update profile success", zap.String("user_id", userID))
	return s.GetProfile(ctx, userID)
}

func (s *service) AssignRole(ctx context.Context, actorID, targetID string, req AssignRoleRequest) (UserResponse, error) {
	s.logger.Debug("assign role requested",
		zap.String("actor_id", actorID),
		zap.String("target_id", targetID),
		zap.String("role", req.Role),
	)

	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrForbidden
		}
		return UserResponse{}, err
	}
	if !s.authz.CanAssignRoles(actor.Role) {
		s.logger.Warn("assign role forbidden",
			zap.String("actor_id", actorID),
			zap.String("actor_role", string(actor.Role)),
		)
		return UserResponse{}, usererrors.ErrForbidden
	}

	role, ok := rbac.ParseRole(req.Role)
	if !ok {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	found, err := s.repo.UpdateRole(ctx, targetID, role)
	if err != nil {
		s.logger.Error("assign role failed", zap.String("target_id", targetID), zap.Error(err))
		return UserResponse{}, err
	}
	if !found {
		return UserResponse{}, usererrors.ErrUserNotFound
	}

	s.logger.Info("assign role success",
		zap.String("actor_id", actorID),
		zap.String("target_id", targetID),
		zap.String("role", string(role)),
	)
	return s.GetProfile(ctx, targetID)
}

func (s *service) findUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		s.logger.Error("find user failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// trimmed keeps nil as "unchanged" and turns blank input into "", which the
// repository stores as NULL like optionalString does on register.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Department:  u.Department,
		PhoneNumber: u.PhoneNumber,
		LeaveBalance: LeaveBalanceResponse{
			Annual:   u.LeaveBalance.Annual,
			Sick:     u.LeaveBalance.Sick,
			Personal: u.LeaveBalance.Personal,
		},
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
	if u.LastLogin != nil {
		v := u.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &v
	}
	return resp
}
