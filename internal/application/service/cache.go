package service

import (
	"context"
	"time"
)

// Cache is a best-effort key/value store. Implementations never return
// errors: an unavailable or corrupt cache reads as a miss and writes are
// dropped.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	// InvalidatePrefix removes every key starting with prefix and returns
	// how many were removed.
	InvalidatePrefix(ctx context.Context, prefix string) int
}
