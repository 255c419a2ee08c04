package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"

	"github.com/khoahotran/program-catalog/pkg/logger"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisCache_UnavailableBackendDegrades(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	c := newRedisCache(client, 100*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	var out map[string]string
	assert.False(t, c.Get(ctx, "programs:list:abc", &out))
	assert.Nil(t, out)

	assert.NotPanics(t, func() {
		c.Set(ctx, "programs:list:abc", map[string]string{"a": "b"}, time.Minute)
	})
	assert.Equal(t, 0, c.InvalidatePrefix(ctx, "programs:"))
}

func TestRedisCache_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	c := newRedisCache(client, 50*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	var out string
	for i := 0; i < 6; i++ {
		c.Get(ctx, "program:1", &out)
	}
	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())

	// Open breaker short-circuits and still reads as a miss.
	start := time.Now()
	assert.False(t, c.Get(ctx, "program:1", &out))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRedisCache_UnserializableValueIsDropped(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	c := newRedisCache(client, 50*time.Millisecond, logger.NewNopLogger())

	assert.NotPanics(t, func() {
		c.Set(context.Background(), "program:1", make(chan int), time.Minute)
	})
	// Encoding failed before any backend call, so the breaker saw nothing.
	assert.Equal(t, gobreaker.StateClosed, c.BreakerState())
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `programs:\*`, escapeGlob("programs:*"))
	assert.Equal(t, `a\?b\[c\]`, escapeGlob("a?b[c]"))
	assert.Equal(t, "programs:list:", escapeGlob("programs:list:"))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "programs", namespace("programs:list:123"))
	assert.Equal(t, "program", namespace("program:7"))
	assert.Equal(t, "plain", namespace("plain"))
}
