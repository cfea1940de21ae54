package app

import (
	"net/http"
	"slices"
	"time"

	"breakly/internal/config"
	"breakly/internal/middleware"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/metrics"
	"breakly/internal/shared/response"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const ReadyMessage = "Breakly API - Ready!"

// NewRouter builds the engine with the cross-cutting middleware and the
// unauthenticated endpoints; feature routes are added by registerModules.
func NewRouter(logger *zap.Logger, cfg config.HTTP) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(middleware.RequestID())
	r.Use(metrics.Middleware())
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, apperror.CodeNotFound, "Route not found", nil)
	})

	r.GET("/api", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"message": ReadyMessage}, nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			middleware.HeaderIdempotencyKey, middleware.HeaderRequestID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderReplayed},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
