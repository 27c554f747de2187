// Package cache keeps downloaded inputs so repeated runs over the same
// remote GeoJSON or CSV skip the network.
//
// Only raw input bytes are stored. Solved layouts are never cached; every
// run solves from scratch.
//
// Two implementations are provided: [FileCache] for the CLI and
// [NullCache] when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored data and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// URLKey is the cache key of a downloaded URL.
func URLKey(url string) string {
	return hashKey("http", url)
}
