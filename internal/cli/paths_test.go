package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestETagDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"default", "", filepath.Join("/tmp/xdg", appName, "etags")},
		{"configured", "/srv/etags", "/srv/etags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.ETag.Dir = tt.dir
			got, err := etagDir(cfg)
			if err != nil {
				t.Fatalf("etagDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("etagDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewETagStore(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tests := []struct {
		name    string
		backend string
		noCache bool
		wantErr bool
	}{
		{"none", config.BackendNone, false, false},
		{"file", config.BackendFile, false, false},
		{"no-cache wins", config.BackendRedis, true, false},
		{"unreachable redis", config.BackendRedis, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.ETag.Backend = tt.backend
			cfg.Redis.Addr = "127.0.0.1:1"

			c := New(&bytes.Buffer{}, LogInfo)
			c.noCache = tt.noCache
			store, err := c.newETagStore(context.Background(), cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newETagStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				_ = store.Close()
			}
		})
	}
}

func TestScopeToToken(t *testing.T) {
	ctx := context.Background()
	inner, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	alice := scopeToToken(inner, "alice-token")
	bob := scopeToToken(inner, "bob-token")
	anon := scopeToToken(inner, "")

	key := cache.ETagKey("https://api.github.com/user")
	if err := alice.Set(ctx, key, []byte(`"a"`), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := bob.Get(ctx, key); ok {
		t.Error("an ETag stored for one token must not be visible to another")
	}
	if _, ok, _ := anon.Get(ctx, key); ok {
		t.Error("an ETag stored for a token must not be visible without one")
	}
	if got, ok, _ := alice.Get(ctx, key); !ok || string(got) != `"a"` {
		t.Errorf("alice Get() = %q, %v", got, ok)
	}
	if anon != cache.Cache(inner) {
		t.Error("an empty token should leave the store unscoped")
	}
}
