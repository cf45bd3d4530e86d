// Package clock abstracts wall-clock time so that polling loops can be
// driven deterministically in tests.
//
// Production code takes a [Clock] and defaults to [Real]. Tests use [Fake]
// and move time forward explicitly:
//
//	clk := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop(clk)
//	clk.WaitForTimers(1)
//	clk.Advance(time.Minute)
package clock

import "time"

// Clock is the subset of the time package used by octowire.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
