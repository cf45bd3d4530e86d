// Package httputil provides small HTTP helpers shared by the GitHub client,
// the event archive and the CLI.
//
// # Retry
//
// [Backoff] re-runs an operation with exponential backoff, but only for
// errors marked with [Transient]. Everything else is returned immediately:
//
//	b := httputil.Backoff{Attempts: 3, Delay: 200 * time.Millisecond}
//	err := b.Do(ctx, func() error {
//	    return httputil.Transient(insert(ctx, doc))
//	})
//
// The GitHub request pipeline itself never retries; retry policy for event
// subscriptions lives in the subscription loop.
//
// # Bounded reads
//
// [ReadLimited] reads a response body up to a byte cap so a misbehaving
// server cannot exhaust memory. [DefaultMaxBodySize] is generous enough for
// release tarballs.
package httputil
