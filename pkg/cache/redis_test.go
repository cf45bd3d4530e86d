package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Requires a reachable Redis; set OCTOWIRE_REDIS_ADDR=localhost:6379.
func TestRedisCacheIntegration(t *testing.T) {
	addr := os.Getenv("OCTOWIRE_REDIS_ADDR")
	if addr == "" {
		t.Skip("OCTOWIRE_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "octowire-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "etag", []byte(`"abc"`), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, hit, err := c.Get(ctx, "etag")
	if err != nil || !hit || string(got) != `"abc"` {
		t.Fatalf("Get() = %q, %v, %v", got, hit, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "etag"); hit {
		t.Error("Get() after Clear() should miss")
	}
}

func TestNewRedisCacheFromClientDefaultPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(nil, "")
	if c.prefix != DefaultRedisPrefix {
		t.Errorf("prefix = %q, want %q", c.prefix, DefaultRedisPrefix)
	}
}
