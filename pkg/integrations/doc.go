// Package integrations is the HTTP boundary of octowire.
//
// # Overview
//
// Everything above this package (the GitHub request pipeline, the device
// flow, event subscriptions) talks to the network only through the
// [Transport] interface:
//
//	type Transport interface {
//	    Send(ctx context.Context, req *Request) (*Response, error)
//	}
//
// A [Request] is fully resolved: absolute URL, final headers, encoded body
// and a per-request timeout. A [Response] carries the status, headers and the
// complete body. HTTP error statuses are not errors here; interpreting them
// is the pipeline's job.
//
// # Default Client
//
// [Client] implements Transport on net/http:
//
//	t := integrations.NewClient(
//	    integrations.WithRateLimit(10, 5),          // client-side pacing
//	    integrations.WithMaxBodySize(64 << 20),     // cap body reads
//	)
//
// Requests and responses are reported to [observability.HTTP] hooks.
//
// # Failures
//
// When no response is obtained, Send returns a [*TransportError] whose Kind
// distinguishes network failures, per-request timeouts, caller cancellation
// and unexpected errors such as malformed URLs.
//
// [observability.HTTP]: github.com/matzehuels/octowire/pkg/observability.HTTP
package integrations
