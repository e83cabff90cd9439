package repository

import (
	"context"
	"time"
)

// Cache is a best-effort byte store. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically adds one to the integer stored at key and returns it.
	Incr(ctx context.Context, key string) (int64, error)
}
