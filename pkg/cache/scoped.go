package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache with a key prefix for isolation between clients that
// share a backend.
//
// Example usage:
//
//	// ETags fetched with one token must not leak to another
//	store := cache.NewScoped(redisCache, "token:"+cache.Hash([]byte(token))[:12]+":")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache that prepends prefix to every key.
// A nil inner cache is replaced with a NullCache.
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the wrapped cache.
func (s *Scoped) Close() error {
	return s.inner.Close()
}

// Prefix returns the key prefix.
func (s *Scoped) Prefix() string { return s.prefix }

var _ Cache = (*Scoped)(nil)
