package leave

import (
	"net/http"

	"breakly/internal/middleware"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	h.logger.Warn("leave request validation failed", zap.String("path", c.FullPath()), zap.Error(err))
	mapped := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, http.StatusBadRequest, apperror.CodeValidationError, mapped.Message, err.Error())
}

func (h *Handler) Submit(c *gin.Context) {
	employeeID := c.GetString(middleware.KeyUserID)
	h.logger.Debug("http submit leave", zap.String("employee_id", employeeID))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	resp, err := h.service.ListForEmployee(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, response.NewListMeta(len(resp)))
}

func (h *Handler) ListPending(c *gin.Context) {
	resp, err := h.service.ListPending(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, response.NewListMeta(len(resp)))
}

func (h *Handler) Decide(c *gin.Context) {
	callerID := c.GetString(middleware.KeyUserID)

	var req DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}
	h.logger.Debug("http decide leave",
		zap.String("caller_id", callerID),
		zap.String("leave_id", req.LeaveID),
		zap.String("action", req.Action),
	)

	resp, err := h.service.Decide(c.Request.Context(), callerID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
