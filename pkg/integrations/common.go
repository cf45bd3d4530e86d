package integrations

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/matzehuels/octowire/pkg/httputil"
)

// Kind classifies why a request produced no response.
type Kind string

const (
	KindNetwork    Kind = "network"    // DNS, connection refused, reset, TLS
	KindTimeout    Kind = "timeout"    // per-request timeout elapsed
	KindCanceled   Kind = "canceled"   // caller's context was cancelled
	KindUnexpected Kind = "unexpected" // anything else, e.g. a malformed URL
)

// TransportError reports a request that did not produce an HTTP response.
type TransportError struct {
	Kind    Kind
	Method  string
	URL     string
	Timeout time.Duration
	Cause   error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("Timeout of %g reached while waiting for %s", e.Timeout.Seconds(), e.URL)
	case KindUnexpected:
		return fmt.Sprintf("Unexpected exception for '%s' with - %v", e.URL, e.Cause)
	default:
		return fmt.Sprintf("Request exception for '%s' with - %v", e.URL, e.Cause)
	}
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Retryable reports whether repeating the request may succeed.
func (e *TransportError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout
}

// IsTransportError reports whether err carries a *TransportError and returns it.
func IsTransportError(err error) (*TransportError, bool) {
	var terr *TransportError
	ok := errors.As(err, &terr)
	return terr, ok
}

// NewHTTPClient creates the *http.Client used by [NewClient]. It carries no
// client-wide timeout; each Request sets its own.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

// classify maps a failure from the limiter, net/http or body read onto a
// TransportError. parent is the caller's context before the per-request
// timeout was applied.
func classify(parent context.Context, req *Request, err error) *TransportError {
	terr := &TransportError{Method: req.Method, URL: req.URL, Timeout: req.Timeout, Cause: err}

	var tooLarge *httputil.ErrBodyTooLarge
	var netErr net.Error
	switch {
	case parent.Err() != nil:
		terr.Kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		terr.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		terr.Kind = KindTimeout
	case errors.As(err, &tooLarge):
		terr.Kind = KindUnexpected
	case errors.Is(err, context.Canceled):
		terr.Kind = KindCanceled
	default:
		terr.Kind = KindNetwork
	}
	return terr
}
