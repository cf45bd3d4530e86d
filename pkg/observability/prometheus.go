package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements HTTPHooks, CacheHooks and SubscriptionHooks by
// recording Prometheus metrics.
type PrometheusHooks struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	cacheBytes   prometheus.Counter
	polls        *prometheus.CounterVec
	delivered    *prometheus.CounterVec
	subErrors    *prometheus.CounterVec
}

// NewPrometheusHooks creates the metric collectors and registers them with reg.
// It panics if a collector with the same name is already registered, matching
// prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_http_requests_total",
			Help: "Total HTTP responses received from the GitHub API",
		}, []string{"method", "host", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "octowire_http_request_duration_seconds",
			Help:    "Duration of GitHub API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_http_errors_total",
			Help: "Requests that failed before a response was received",
		}, []string{"method", "host"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_etag_lookups_total",
			Help: "ETag store lookups by result",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "octowire_etag_bytes_written_total",
			Help: "Bytes written to the ETag store",
		}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_subscription_polls_total",
			Help: "Event subscription polls by outcome",
		}, []string{"name", "outcome"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_subscription_events_total",
			Help: "Events delivered to subscription callbacks",
		}, []string{"name"}),
		subErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octowire_subscription_errors_total",
			Help: "Errors forwarded to subscription error callbacks",
		}, []string{"name", "code", "terminal"}),
	}
	reg.MustRegister(
		h.requests, h.duration, h.httpErrors,
		h.cacheLookups, h.cacheBytes,
		h.polls, h.delivered, h.subErrors,
	)
	return h
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, host, _ string, statusCode int, d time.Duration) {
	h.requests.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	h.duration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, method, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(method, host).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnPoll(_ context.Context, name, outcome string) {
	h.polls.WithLabelValues(name, outcome).Inc()
}

func (h *PrometheusHooks) OnEventsDelivered(_ context.Context, name string, count int) {
	h.delivered.WithLabelValues(name).Add(float64(count))
}

func (h *PrometheusHooks) OnSubscriptionError(_ context.Context, name, code string, terminal bool) {
	h.subErrors.WithLabelValues(name, code, strconv.FormatBool(terminal)).Inc()
}

var (
	_ HTTPHooks         = (*PrometheusHooks)(nil)
	_ CacheHooks        = (*PrometheusHooks)(nil)
	_ SubscriptionHooks = (*PrometheusHooks)(nil)
)
