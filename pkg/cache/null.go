package cache

import (
	"context"
	"time"
)

// NullCache is a no-op cache that never stores anything.
// It is the ETag store used when none is configured.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always returns a cache miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Clear(context.Context) error          { return nil }
func (NullCache) Close() error                         { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
