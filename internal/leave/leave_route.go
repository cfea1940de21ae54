package leave

import (
	"time"

	"breakly/internal/identity"
	"breakly/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

// RegisterRoutes mounts the leave endpoints. rdb may be nil, which disables
// Idempotency-Key handling on submit.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	verifier identity.Verifier,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.Auth(verifier))
	leaves.Use(middleware.ContextLogger(logger))
	{
		leaves.GET("", middleware.RateLimitByUser(5, 10), handler.ListMine)

		submit := []gin.HandlerFunc{middleware.RateLimitByUser(1, 5)}
		if rdb != nil {
			submit = append(submit, middleware.Idempotency(rdb, idempotencyTTL, logger))
		}
		leaves.POST("", append(submit, handler.Submit)...)

		leaves.GET("/pending", middleware.RateLimitByUser(5, 10), handler.ListPending)
		leaves.PUT("/approve", middleware.RateLimitByUser(2, 5), handler.Decide)
	}
}
