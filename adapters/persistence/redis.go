package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/config"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

// NewRedisClient connects to Redis. A failed ping is logged but not fatal:
// the cache is optional and reads fall through to Postgres.
func NewRedisClient(cfg config.Config, log logger.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		ReadTimeout:  cfg.Redis.OpTimeout,
		WriteTimeout: cfg.Redis.OpTimeout,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis connection failed, application will continue without cache", zap.Error(err))
		return rdb
	}

	log.Info("Connect Redis successfully.")
	return rdb
}
