package logic

import (
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ClassifierState is the phase of the current press episode.
type ClassifierState string

const (
	// ClassifierIdle: no presses in play.
	ClassifierIdle ClassifierState = "IDLE"
	// ClassifierPending: one or two presses seen, waiting for the window to
	// rule out a third.
	ClassifierPending ClassifierState = "PENDING"
	// ClassifierResolved: a triple press was emitted; further presses are
	// ignored until the episode window ends.
	ClassifierResolved ClassifierState = "RESOLVED"
)

// TriplePresses is the number of presses that resolves an episode as a triple.
const TriplePresses = 3

// Wake asks the scheduling layer to call OnWindowExpiry(Epoch, ...) at At.
// A newer Wake supersedes every older one.
type Wake struct {
	Epoch uint64
	At    time.Time
}

// Decision is the result of feeding a press to the Classifier.
type Decision struct {
	Intent  fn.Option[Intent]
	Wake    fn.Option[Wake]
	Ignored bool
}

// Classifier decides between single and triple presses.
// Not safe for concurrent use; the caller serialises OnPress and
// OnWindowExpiry behind one mutex.
type Classifier struct {
	window time.Duration

	state    ClassifierState
	presses  []time.Time
	deadline time.Time
	epoch    uint64
}

// NewClassifier creates an idle classifier with the given triple-press window.
func NewClassifier(window time.Duration) *Classifier {
	return &Classifier{
		window: window,
		state:  ClassifierIdle,
	}
}

// OnPress feeds a confirmed press into the current episode.
func (c *Classifier) OnPress(ev PressEvent) Decision {
	var dec Decision
	dec.Intent = fn.None[Intent]()
	dec.Wake = fn.None[Wake]()

	// The episode's wake-up has not been delivered yet but its window is
	// over: settle it before starting a new one.
	if c.state != ClassifierIdle && ev.At.After(c.deadline) {
		if c.state == ClassifierPending {
			dec.Intent = fn.Some(Intent{Kind: IntentFresh, At: c.deadline})
		}
		c.clear()
	}

	switch c.state {
	case ClassifierResolved:
		dec.Ignored = true
		return dec

	case ClassifierIdle:
		c.state = ClassifierPending
		c.deadline = ev.At.Add(c.window)
		c.presses = append(c.presses[:0], ev.At)

	case ClassifierPending:
		c.prune(ev.At)
		c.presses = append(c.presses, ev.At)
	}

	c.epoch++
	dec.Wake = fn.Some(Wake{Epoch: c.epoch, At: c.deadline})

	if len(c.presses) >= TriplePresses {
		c.presses = c.presses[:0]
		c.state = ClassifierResolved
		dec.Intent = fn.Some(Intent{Kind: IntentQuote, At: ev.At})
	}

	return dec
}

// OnWindowExpiry is the time-driven half of the classifier. It only has an
// effect for the epoch of the most recent Wake and once the deadline passed.
func (c *Classifier) OnWindowExpiry(epoch uint64, now time.Time) fn.Option[Intent] {
	if epoch != c.epoch || c.state == ClassifierIdle || now.Before(c.deadline) {
		return fn.None[Intent]()
	}

	pending := c.state == ClassifierPending
	c.clear()
	if !pending {
		return fn.None[Intent]()
	}
	return fn.Some(Intent{Kind: IntentFresh, At: now})
}

// Reset drops any episode in play and neuters outstanding wake-ups.
func (c *Classifier) Reset() {
	c.clear()
}

// State returns the current phase.
func (c *Classifier) State() ClassifierState {
	return c.state
}

// Pending returns the number of presses in the window.
func (c *Classifier) Pending() int {
	return len(c.presses)
}

// Epoch returns the epoch of the latest Wake.
func (c *Classifier) Epoch() uint64 {
	return c.epoch
}

// prune drops presses older than the window relative to now.
func (c *Classifier) prune(now time.Time) {
	kept := c.presses[:0]
	for _, p := range c.presses {
		if now.Sub(p) <= c.window {
			kept = append(kept, p)
		}
	}
	c.presses = kept
}

func (c *Classifier) clear() {
	c.state = ClassifierIdle
	c.presses = c.presses[:0]
	c.deadline = time.Time{}
	c.epoch++
}
