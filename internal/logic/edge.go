package logic

import (
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// EdgeDetector turns raw line samples into debounced press events.
// Not safe for concurrent use; it is owned by the sampling loop.
type EdgeDetector struct {
	debounce time.Duration
	state    ButtonState

	// A falling edge waiting for confirmation. Only one at a time.
	confirming bool
	edgeAt     time.Time
}

// NewEdgeDetector creates a detector in the released state.
func NewEdgeDetector(debounce time.Duration) *EdgeDetector {
	return &EdgeDetector{
		debounce: debounce,
		state:    ButtonReleased,
	}
}

// Sample processes one reading of the line. pressed is the logical level
// (pull-up wiring: raw low = pressed). A press event is returned once, when
// the line has stayed pressed for the debounce interval.
func (d *EdgeDetector) Sample(pressed bool, now time.Time) fn.Option[PressEvent] {
	if d.state == ButtonPressed {
		if !pressed {
			d.state = ButtonReleased
		}
		return fn.None[PressEvent]()
	}

	if !pressed {
		// Released before confirmation: bounce.
		d.confirming = false
		return fn.None[PressEvent]()
	}

	if !d.confirming {
		d.confirming = true
		d.edgeAt = now
	}

	if now.Sub(d.edgeAt) < d.debounce {
		return fn.None[PressEvent]()
	}

	d.confirming = false
	d.state = ButtonPressed
	return fn.Some(PressEvent{At: now})
}

// State returns the debounced button state.
func (d *EdgeDetector) State() ButtonState {
	return d.state
}

// Confirming reports whether a falling edge is awaiting confirmation.
func (d *EdgeDetector) Confirming() bool {
	return d.confirming
}
