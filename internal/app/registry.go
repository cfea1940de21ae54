package app

import (
	"database/sql"

	"breakly/internal/config"
	"breakly/internal/dashboard"
	"breakly/internal/identity"
	"breakly/internal/leave"
	"breakly/internal/messaging/kafka"
	"breakly/internal/rbac"
	"breakly/internal/rbac/infra"
	"breakly/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- Authorization & identity ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	verifier := identity.NewJWTVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Leeway())

	// --- Services ---
	statsCache := dashboard.NewCache(rdb, cfg.Dashboard.CacheTTL(), logger)
	userService := user.NewService(userRepo, rbacService, logger)
	leaveService := leave.NewService(db, leaveRepo, userRepo, rbacService, outboxRepo, statsCache, logger)
	dashboardService := dashboard.NewService(userRepo, leaveRepo, rbacService, statsCache, logger)

	// --- Handlers ---
	userHandler := user.NewHandler(userService, verifier, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		user.RegisterRoutes(api, userHandler, verifier, logger)
		leave.RegisterRoutes(api, leaveHandler, verifier, rdb, logger)
		dashboard.RegisterRoutes(api, dashboardHandler, verifier, logger)
	}

	return nil
}
