package integrations

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/octowire/pkg/httputil"
	"github.com/matzehuels/octowire/pkg/observability"
)

// Request is a fully resolved outbound HTTP request.
type Request struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration // zero means no per-request timeout
}

// Response is a received HTTP response with its body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests. Implementations must be safe for concurrent use.
// Failures to obtain a response are returned as *TransportError; HTTP error
// statuses are not errors at this layer.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Client is the default Transport backed by net/http.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	maxBody int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit paces outgoing requests to rps requests per second with the
// given burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) { c.maxBody = n }
}

// NewClient creates a Client. Without options it uses [NewHTTPClient] and
// [httputil.DefaultMaxBodySize] with no pacing.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    NewHTTPClient(),
		maxBody: httputil.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs req and reads the full response body.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	parent := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait fails early when the deadline cannot be met.
			terr := classify(parent, req, err)
			if terr.Kind == KindNetwork {
				terr.Kind = KindTimeout
			}
			return nil, terr
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Kind: KindUnexpected, Method: req.Method, URL: req.URL, Cause: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	hooks := observability.HTTP()
	host, path := httpReq.URL.Host, httpReq.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		terr := classify(parent, req, err)
		hooks.OnError(ctx, req.Method, host, path, terr)
		return nil, terr
	}
	defer resp.Body.Close()

	data, err := httputil.ReadLimited(resp.Body, c.maxBody)
	if err != nil {
		terr := classify(parent, req, err)
		hooks.OnError(ctx, req.Method, host, path, terr)
		return nil, terr
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// CloseIdleConnections releases pooled connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

var _ Transport = (*Client)(nil)
