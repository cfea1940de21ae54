package user

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
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitByIP(1, 5))
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}

	profile := r.Group("/user")
	profile.Use(middleware.Auth(verifier))
	profile.Use(middleware.ContextLogger(logger))
	{
		profile.GET("", middleware.RateLimitByUser(5, 10), handler.GetProfile)
		profile.PUT("", middleware.RateLimitByUser(1, 5), handler.UpdateProfile)
	}

	users := r.Group("/users")
	users.Use(middleware.Auth(verifier))
	users.Use(middleware.ContextLogger(logger))
	{
		users.PUT("/:id/role", middleware.RateLimitByUser(0.5, 2), handler.AssignRole)
	}
}
