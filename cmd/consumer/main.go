package main

import (
	"log"

	"breakly/internal/app"
	"breakly/internal/config"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/logger"

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

	apperror.Init()

	if err := app.RunConsumer(cfg, zl); err != nil {
		zl.Fatal("run consumer failed", zap.Error(err))
	}
}
