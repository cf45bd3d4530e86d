// Package cache provides small byte-oriented key/value stores.
//
// octowire uses a [Cache] as its optional ETag store: the GitHub request
// pipeline remembers the validator of each successful GET so that a later
// conditional request (or a restarted event subscription) can send
// If-None-Match. Response bodies are never cached.
//
// Implementations:
//   - [FileCache]: one file per key under a directory, for the CLI
//   - [RedisCache]: shared store for several watchers on different hosts
//   - [NullCache]: stores nothing
//
// [Scoped] prefixes keys so several clients (for example different tokens or
// GitHub Enterprise hosts) can share one backend without colliding.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
