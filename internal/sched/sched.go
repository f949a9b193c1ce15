// Package sched provides the clock and one-shot wake-ups used by the
// classifier window and the staleness timer. The real implementation is
// backed by the time package; Fake is a manually advanced clock for tests.
package sched

import "time"

// Scheduler reads the monotonic clock and runs functions after a delay.
type Scheduler interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed.
	// Scheduled calls are never cancelled; callers neuter them instead.
	AfterFunc(d time.Duration, f func())
}

// Real is the production scheduler.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc defers to time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
