package dashboard

import (
	"breakly/internal/identity"
	"breakly/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	verifier identity.Verifier,
	logger *zap.Logger,
) {
	dash := r.Group("/dashboard")
	dash.Use(middleware.Auth(verifier))
	dash.Use(middleware.ContextLogger(logger))
	{
		dash.GET("/stats", middleware.RateLimitByUser(5, 10), handler.GetStats)
	}
}
