package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuskit/campuskit-backend/internal/platform/envutil"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
)

// NewRedisClient connects to redis when REDIS_ADDR is set. The prediction
// cache degrades to database reads without it, so an unreachable redis is a
// warning, not a startup failure.
func NewRedisClient(log *logger.Logger) *redis.Client {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Info("REDIS_ADDR not set, prediction cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, prediction cache disabled", "addr", addr, "error", err)
		return nil
	}
	log.Info("Connected to Redis", "addr", addr)
	return client
}
