package middleware

import (
	"breakly/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(contextutil.RequestIDKey, rid)
		c.Request = c.Request.WithContext(contextutil.WithRequestID(c.Request.Context(), rid))
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

// ContextLogger attaches a logger scoped to the request id and, when Auth ran
// first, the user id.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if uid := c.GetString(KeyUserID); uid != "" {
			ctx = contextutil.WithUserID(ctx, uid)
		}
		ctx = contextutil.WithLogger(ctx, logger.With(contextutil.Fields(ctx)...))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
