// Package logic contains the pure press-classification and timer state machines.
// This package has NO external I/O (no GPIO, MQTT, HTTP, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Default timing values.
const (
	DefaultDebounce     = 50 * time.Millisecond
	DefaultTripleWindow = 2 * time.Second
	DefaultStaleAfter   = 7200 * time.Second
)

// Timing holds the opaque durations the core is constructed with.
type Timing struct {
	Debounce     time.Duration
	TripleWindow time.Duration
	StaleAfter   time.Duration
}

// DefaultTiming returns the stock debounce, triple-press window and stale duration.
func DefaultTiming() Timing {
	return Timing{
		Debounce:     DefaultDebounce,
		TripleWindow: DefaultTripleWindow,
		StaleAfter:   DefaultStaleAfter,
	}
}

// ButtonState is the debounced state of the input line.
type ButtonState string

const (
	ButtonReleased ButtonState = "RELEASED"
	ButtonPressed  ButtonState = "PRESSED"
)

// PressEvent is a confirmed press.
type PressEvent struct {
	At time.Time
}

// IntentKind tags an Intent.
type IntentKind string

const (
	IntentFresh IntentKind = "FRESH"
	IntentStale IntentKind = "STALE"
	IntentQuote IntentKind = "QUOTE"
)

// Intent is a classified, dispatch-ready event.
type Intent struct {
	Kind IntentKind
	At   time.Time
	// Quote is only set for IntentQuote.
	Quote string
	// Epoch is the countdown that expired; only set for IntentStale.
	Epoch uint64
}

// Outcome is the feedback reported after a dispatch attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeError   Outcome = "ERROR"
)

// Counts tracks classifier and dispatch totals since startup.
type Counts struct {
	Presses  int
	Ignored  int
	Fresh    int
	Stale    int
	Quotes   int
	Failures int
}

// TimerView is a read-only copy of a staleness timer.
type TimerView struct {
	Active   bool
	Deadline time.Time
}

// Remaining returns the time left until the deadline, or 0 if inactive or past.
func (v TimerView) Remaining(now time.Time) time.Duration {
	if !v.Active {
		return 0
	}
	if d := v.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Stats is a point-in-time view of the core, used by the status layer.
type Stats struct {
	Counts     Counts
	Classifier ClassifierState
	Pending    int
	Timer      TimerView
	LastFresh  time.Time
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
