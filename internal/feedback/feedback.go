// Package feedback reports dispatch outcomes to people standing next to the
// button: an LED blink pattern and a console line.
package feedback

import "github.com/sweeney/coffee-button/internal/logic"

// Signaler reports an outcome. Implementations must never block the caller.
type Signaler interface {
	Signal(outcome logic.Outcome)
}

// Multi forwards to every signaler.
type Multi []Signaler

// Signal forwards the outcome.
func (m Multi) Signal(outcome logic.Outcome) {
	for _, s := range m {
		s.Signal(outcome)
	}
}

// Nop discards outcomes.
type Nop struct{}

// Signal does nothing.
func (Nop) Signal(logic.Outcome) {}
