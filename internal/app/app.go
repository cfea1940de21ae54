package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"breakly/internal/config"
	"breakly/internal/leave"
	"breakly/internal/messaging/kafka"
	"breakly/internal/shared/connection"
	"breakly/internal/shared/tracing"
	"breakly/internal/user"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{&user.User{}, &leave.Leave{}, &kafka.OutboxEvent{}}
}

func connectDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(connection.DBOptions{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxRetries:      cfg.DB.MaxRetries,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime(),
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := gormDB.AutoMigrate(Models()...); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("database schema migrated")
	}
	return gormDB, sqlDB, nil
}

// BuildApp connects the infrastructure and returns the HTTP handler plus a
// cleanup that releases it.
func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	gormDB, sqlDB, err := connectDatabase(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.DB.Driver))

	rdb, err := connection.ConnectRedisWithRetry(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.MaxRetries, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	logger.Info("redis connection established", zap.String("addr", cfg.Redis.Addr))

	shutdownTracing, err := tracing.Init(ctx, logger, cfg.Tracing.Endpoint, cfg.App.Name, cfg.App.Env)
	if err != nil {
		_ = rdb.Close()
		_ = sqlDB.Close()
		return nil, nil, err
	}

	router := NewRouter(logger, cfg.HTTP)
	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, logger); err != nil {
		_ = shutdownTracing(ctx)
		_ = rdb.Close()
		_ = sqlDB.Close()
		return nil, nil, err
	}

	var handler http.Handler = router
	if cfg.Tracing.Endpoint != "" {
		handler = otelhttp.NewHandler(router, cfg.App.Name)
	}

	cleanup := func() {
		err := errors.Join(
			shutdownTracing(context.Background()),
			rdb.Close(),
			sqlDB.Close(),
		)
		if err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	return handler, cleanup, nil
}
