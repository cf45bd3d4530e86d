package github

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/clock"
	"github.com/matzehuels/octowire/pkg/integrations"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	token      string
	baseURL    string
	timeout    time.Duration
	headers    map[string]string
	clientName string
	apiVersion string
	transport  integrations.Transport
	logger     *log.Logger
	clock      clock.Clock
	etags      cache.Cache
}

func defaultOptions() *options {
	return &options{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
}

// WithToken authenticates every request with "Authorization: token <token>".
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithBaseURL points the client at another host, e.g. GitHub Enterprise
// ("https://ghe.example.com/api/v3"). A trailing slash is dropped.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHeaders adds default headers sent with every request. They override
// the built-in defaults, including User-Agent.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithClientName sets the User-Agent to name. GitHub asks integrators to
// identify themselves this way.
func WithClientName(name string) Option {
	return func(o *options) { o.clientName = name }
}

// WithAPIVersion pins the REST API version via X-GitHub-Api-Version.
func WithAPIVersion(version string) Option {
	return func(o *options) { o.apiVersion = version }
}

// WithTransport replaces the HTTP transport. The client does not take
// ownership of transports supplied this way beyond calling
// CloseIdleConnections on Close when they support it.
func WithTransport(t integrations.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger. By default the client logs nowhere.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used by event subscriptions and the device flow.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithETagStore enables the persistent ETag store. See RequestOptions.UseStoredETag.
func WithETagStore(c cache.Cache) Option {
	return func(o *options) { o.etags = c }
}

func (o *options) finish() {
	if o.transport == nil {
		o.transport = integrations.NewClient()
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	if o.etags == nil {
		o.etags = cache.NewNullCache()
	}
}
