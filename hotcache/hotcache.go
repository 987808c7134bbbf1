package hotcache

import (
	"context"
	"errors"
	"time"
)

// A HotCache represents a cache that is hot (meaning that it is used often)
//
// The relay uses one for its inbound rate limits, a redis implementation is provided
type HotCache[T any] interface {
	// Get a value from the cache
	Get(ctx context.Context, key string) (*T, error)

	// Delete a value from the cache
	Delete(ctx context.Context, key string) error

	// Set a value in the cache
	Set(ctx context.Context, key string, value *T, expiry time.Duration) error

	// Increment a value in the cache
	Increment(ctx context.Context, key string, value int64) error

	// Increment by one a value in the cache
	//
	// This can be faster than Increment(ctx, key, 1)
	IncrementOne(ctx context.Context, key string) error

	// Increments key by one and gives it expiry if it has none, returning the
	// new value and its remaining time to live. Must be atomic per key
	IncrementWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, time.Duration, error)

	// Checks if a value exists in the cache
	Exists(ctx context.Context, key string) (bool, error)

	// Checks the expiry of a value in the cache
	Expiry(ctx context.Context, key string) (time.Duration, error)
}

var ErrHotCacheDataNotFound = errors.New("hot cache data not found")
