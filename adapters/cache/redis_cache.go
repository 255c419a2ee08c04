package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/application/service"
	"github.com/khoahotran/program-catalog/pkg/logger"
	"github.com/khoahotran/program-catalog/pkg/metrics"
)

const (
	defaultTTL       = 5 * time.Minute
	maxTTL           = time.Hour
	defaultOpTimeout = 300 * time.Millisecond
	scanBatch        = 500
)

type redisCache struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker[any]
	opTimeout time.Duration
	logger    logger.Logger
}

// NewRedisCache returns a cache-aside store backed by Redis. Every call is
// bounded by opTimeout and guarded by a circuit breaker; backend failures
// are logged and read as misses.
func NewRedisCache(client *redis.Client, opTimeout time.Duration, log logger.Logger) service.Cache {
	return newRedisCache(client, opTimeout, log)
}

func newRedisCache(client *redis.Client, opTimeout time.Duration, log logger.Logger) *redisCache {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	l := log.With(zap.String("component", "redis_cache"))
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("Cache circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &redisCache{client: client, breaker: cb, opTimeout: opTimeout, logger: l}
}

func (c *redisCache) do(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) bool {
	ns := namespace(key)
	res, err := c.do(ctx, func(ctx context.Context) (any, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CacheErrors.WithLabelValues("get").Inc()
			c.logger.Warn("Cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(ns).Inc()
		return false
	}

	if err := json.Unmarshal(res.([]byte), dest); err != nil {
		metrics.CacheErrors.WithLabelValues("decode").Inc()
		metrics.CacheMisses.WithLabelValues(ns).Inc()
		c.logger.Warn("Corrupt cache entry, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	metrics.CacheHits.WithLabelValues(ns).Inc()
	return true
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl > maxTTL {
		ttl = maxTTL
	}
	payload, err := json.Marshal(value)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("encode").Inc()
		c.logger.Warn("Cannot serialize cache value, skipping", zap.String("key", key), zap.Error(err))
		return
	}
	_, err = c.do(ctx, func(ctx context.Context) (any, error) {
		return nil, c.client.Set(ctx, key, payload, ttl).Err()
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		c.logger.Warn("Cache set failed, skipping", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_, err := c.do(ctx, func(ctx context.Context) (any, error) {
		return c.client.Del(ctx, keys...).Result()
	})
	if err != nil {
		metrics.CacheErrors.WithLabelValues("del").Inc()
		c.logger.Warn("Cache delete failed, skipping", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *redisCache) InvalidatePrefix(ctx context.Context, prefix string) int {
	pattern := escapeGlob(prefix) + "*"
	removed := 0
	var cursor uint64

	for {
		var keys []string
		res, err := c.do(ctx, func(ctx context.Context) (any, error) {
			var next uint64
			var err error
			keys, next, err = c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
			return next, err
		})
		if err != nil {
			metrics.CacheErrors.WithLabelValues("scan").Inc()
			c.logger.Warn("Cache scan failed during invalidation", zap.String("prefix", prefix), zap.Error(err))
			break
		}
		cursor = res.(uint64)

		if len(keys) > 0 {
			n, err := c.do(ctx, func(ctx context.Context) (any, error) {
				return c.client.Del(ctx, keys...).Result()
			})
			if err != nil {
				metrics.CacheErrors.WithLabelValues("del").Inc()
				c.logger.Warn("Cache delete failed during invalidation", zap.String("prefix", prefix), zap.Error(err))
				break
			}
			removed += int(n.(int64))
		}

		if cursor == 0 {
			break
		}
	}

	if removed > 0 {
		metrics.CacheInvalidations.WithLabelValues(prefix).Add(float64(removed))
		c.logger.Debug("Cleared cache keys", zap.String("prefix", prefix), zap.Int("count", removed))
	}
	return removed
}

// BreakerState exposes the breaker for health reporting.
func (c *redisCache) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
