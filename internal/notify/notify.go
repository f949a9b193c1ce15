// Package notify defines the outbound notification collaborator and the
// fixed message texts for each intent.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweeney/coffee-button/internal/logic"
)

// ErrNotDelivered is wrapped by notifiers that could not deliver an intent.
var ErrNotDelivered = errors.New("notification not delivered")

// Notifier delivers an intent. A nil error means the message was delivered;
// the core only asserts freshness on nil.
type Notifier interface {
	Notify(ctx context.Context, intent logic.Intent) error
}

// Default message texts.
const (
	DefaultFresh       = "Move your feet, fresh coffee is on! ☕"
	DefaultStale       = "Help, coffee is cold or gone by now. ❄️☕"
	DefaultQuotePrefix = "☕ Coffee Wisdom: "
)

// Messages maps intents to message text.
type Messages struct {
	Fresh       string
	Stale       string
	QuotePrefix string
}

// DefaultMessages returns the stock texts.
func DefaultMessages() Messages {
	return Messages{
		Fresh:       DefaultFresh,
		Stale:       DefaultStale,
		QuotePrefix: DefaultQuotePrefix,
	}
}

// Text returns the message for an intent.
func (m Messages) Text(intent logic.Intent) (string, error) {
	switch intent.Kind {
	case logic.IntentFresh:
		return m.Fresh, nil
	case logic.IntentStale:
		return m.Stale, nil
	case logic.IntentQuote:
		return m.QuotePrefix + intent.Quote, nil
	default:
		return "", fmt.Errorf("unknown intent %q", intent.Kind)
	}
}

// Fanout delivers to every notifier. It succeeds when at least one
// delivery succeeded.
type Fanout struct {
	Notifiers []Notifier

	// OnPartial, if set, receives the joined errors of a delivery that
	// succeeded on some but not all notifiers.
	OnPartial func(err error)
}

// Notify sends to all notifiers in order.
func (f *Fanout) Notify(ctx context.Context, intent logic.Intent) error {
	if len(f.Notifiers) == 0 {
		return fmt.Errorf("fanout: no notifiers: %w", ErrNotDelivered)
	}

	var errs []error
	for _, n := range f.Notifiers {
		if err := n.Notify(ctx, intent); err != nil {
			errs = append(errs, err)
		}
	}

	switch {
	case len(errs) == 0:
		return nil
	case len(errs) < len(f.Notifiers):
		if f.OnPartial != nil {
			f.OnPartial(errors.Join(errs...))
		}
		return nil
	default:
		return fmt.Errorf("fanout: %w", errors.Join(errs...))
	}
}
