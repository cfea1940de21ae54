package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"breakly/internal/shared/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	userStatsKeyPrefix  = "dashboard:stats:"
	PendingApprovalsKey = "dashboard:pending_approvals"
)

func UserStatsKey(userID string) string {
	return userStatsKeyPrefix + userID
}

// GenerationKey holds the counter Invalidate bumps for a cached aggregate.
func GenerationKey(key string) string {
	return key + ":gen"
}

// EntryKey is where an aggregate computed under generation gen is stored.
// Entries of older generations are never read again and age out with the ttl.
func EntryKey(key string, gen int64) string {
	return fmt.Sprintf("%s:v%d", key, gen)
}

// Cache is a read-through redis cache for dashboard aggregates. A nil client
// or a non-positive ttl turns it into a pass-through.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) *Cache {
	l := zap.L().Named("dashboard.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.cache")
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: l}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Invalidate moves the employee's stats and the shared pending approvals
// count to a new generation, so loads that started before the change can
// no longer publish what they read.
func (c *Cache) Invalidate(ctx context.Context, employeeID string) error {
	if !c.enabled() {
		return nil
	}
	return errors.Join(
		c.rdb.Incr(ctx, GenerationKey(UserStatsKey(employeeID))).Err(),
		c.rdb.Incr(ctx, GenerationKey(PendingApprovalsKey)).Err(),
	)
}

func (c *Cache) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.rdb.Get(ctx, GenerationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// load returns the cached value of key's current generation, or runs fn once
// per entry across concurrent callers and caches its result.
func load[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return fn(ctx)
	}

	gen, err := c.generation(ctx, key)
	if err != nil {
		c.logger.Warn("dashboard cache generation read failed", zap.String("key", key), zap.Error(err))
		metrics.ObserveDashboardCache("error")
		return fn(ctx)
	}
	key = EntryKey(key, gen)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.ObserveDashboardCache("hit")
			return cached, nil
		}
		c.logger.Warn("dashboard cache entry unreadable", zap.String("key", key))
		metrics.ObserveDashboardCache("error")
	case errors.Is(err, redis.Nil):
		metrics.ObserveDashboardCache("miss")
	default:
		c.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		metrics.ObserveDashboardCache("error")
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := fn(ctx)
		if err != nil {
			return fresh, err
		}
		payload, err := json.Marshal(fresh)
		if err == nil {
			err = c.rdb.Set(ctx, key, payload, c.ttl).Err()
		}
		if err != nil {
			c.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
