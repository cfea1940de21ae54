package user

import (
	"net/http"

	"breakly/internal/identity"
	"breakly/internal/middleware"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc      Service
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewHandler(service Service, verifier identity.Verifier, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{svc: service, verifier: verifier, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("user request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("user request validation failed", zap.String("path", c.FullPath()), zap.Error(err))
	mapped := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, http.StatusBadRequest, apperror.CodeValidationError, mapped.Message, err.Error())
}

func (h *Handler) GetProfile(c *gin.Context) {
	resp, err := h.svc.GetProfile(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.KeyUserID), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	who, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.svc.Register(ctx, who, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	who, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.svc.Login(ctx, who)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AssignRole(c *gin.Context) {
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.svc.AssignRole(c.Request.Context(), c.GetString(middleware.KeyUserID), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
