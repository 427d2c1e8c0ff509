package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer so the implementation can be
// swapped (Redis, in-memory) without touching services.
type Cache interface {
	// Get loads the value stored at key into dest.
	// found is false on a cache miss, in which case dest is untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern (e.g. "book:list:*")
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error

	// SetNX stores value only when key does not exist yet.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDelete removes key only while it still holds value.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}
