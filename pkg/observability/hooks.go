// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends to the client library. Consumers register
// hooks at startup to receive events about HTTP calls, ETag store lookups and
// event subscriptions.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every interface on top of a
// prometheus.Registerer and is what the octowire CLI installs when
// metrics are enabled.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetHTTPHooks(hooks)
//	    observability.SetSubscriptionHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.HTTP().OnRequest(ctx, method, host, path)
//	// ... perform request ...
//	observability.HTTP().OnResponse(ctx, method, host, path, status, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the ETag store.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Subscription Hooks
// =============================================================================

// SubscriptionHooks receives events from event subscription loops.
// The name argument is the polled resource, e.g. "repos/octocat/hello-world".
type SubscriptionHooks interface {
	// OnPoll records one poll and its outcome ("ok", "not_modified" or an error code).
	OnPoll(ctx context.Context, name, outcome string)

	// OnEventsDelivered records how many events were handed to the callback.
	OnEventsDelivered(ctx context.Context, name string, count int)

	// OnSubscriptionError records an error forwarded to the error callback.
	OnSubscriptionError(ctx context.Context, name, code string, terminal bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSubscriptionHooks is a no-op implementation of SubscriptionHooks.
type NoopSubscriptionHooks struct{}

func (NoopSubscriptionHooks) OnPoll(context.Context, string, string)                    {}
func (NoopSubscriptionHooks) OnEventsDelivered(context.Context, string, int)            {}
func (NoopSubscriptionHooks) OnSubscriptionError(context.Context, string, string, bool) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	httpHooks         HTTPHooks         = NoopHTTPHooks{}
	cacheHooks        CacheHooks        = NoopCacheHooks{}
	subscriptionHooks SubscriptionHooks = NoopSubscriptionHooks{}
	hooksMu           sync.RWMutex
)

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSubscriptionHooks registers custom subscription hooks.
func SetSubscriptionHooks(h SubscriptionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		subscriptionHooks = h
	}
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Subscription returns the registered subscription hooks.
func Subscription() SubscriptionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return subscriptionHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	httpHooks = NoopHTTPHooks{}
	cacheHooks = NoopCacheHooks{}
	subscriptionHooks = NoopSubscriptionHooks{}
}
