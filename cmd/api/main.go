package main

import (
	"context"
	"log"

	"breakly/internal/app"
	"breakly/internal/bootstrap"
	"breakly/internal/config"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, sync := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File})
	defer sync()
	zap.ReplaceGlobals(zl)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	apperror.Init()

	handler, cleanup, err := app.BuildApp(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	bootstrap.StartHTTPServer(
		handler,
		bootstrap.ServerConfig{
			Port:         cfg.HTTP.Port,
			ReadTimeout:  cfg.HTTP.ReadTimeout(),
			WriteTimeout: cfg.HTTP.WriteTimeout(),
			IdleTimeout:  cfg.HTTP.IdleTimeout(),
		},
		bootstrap.NewStdoutAuditLogger(zl),
	)
}
