package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/octowire/pkg/clock"
)

// RetryableError marks a failure as transient. [Backoff.Do] only repeats
// operations whose error wraps one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Transient wraps err in a [RetryableError]. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsTransient reports whether err wraps a [RetryableError].
func IsTransient(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff runs an operation up to Attempts times, doubling Delay after each
// transient failure. The zero value makes a single attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock // nil means clock.Real()
}

// Do calls fn until it succeeds, returns a non-transient error or the
// attempts are used up. The last error is returned unwrapped from its
// RetryableError. A cancelled ctx ends the wait with ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	clk := b.Clock
	if clk == nil {
		clk = clock.Real()
	}
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(delay):
			delay *= 2
		}
	}
	var rerr *RetryableError
	if errors.As(err, &rerr) {
		return rerr.Err
	}
	return err
}
