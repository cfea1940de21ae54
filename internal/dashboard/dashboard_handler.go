package dashboard

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
	l := zap.L().Named("dashboard.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) GetStats(c *gin.Context) {
	resp, err := h.service.GetStats(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("dashboard request failed",
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
			zap.Error(err),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
