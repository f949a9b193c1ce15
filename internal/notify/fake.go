package notify

import (
	"context"
	"sync"

	"github.com/sweeney/coffee-button/internal/logic"
)

// FakeNotifier records delivered intents for test assertions. Safe for use
// from the dispatch worker and the test goroutine at once.
type FakeNotifier struct {
	mu sync.Mutex

	sent     []logic.Intent
	attempts int

	// fail holds scripted errors, consumed one per Notify call.
	fail []error
	// err, if set, is returned by every call once fail is exhausted.
	err error
}

// NewFakeNotifier creates a FakeNotifier that delivers everything.
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

// Notify records the intent, or returns the next scripted error.
func (f *FakeNotifier) Notify(_ context.Context, intent logic.Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		if err != nil {
			return err
		}
	} else if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, intent)
	return nil
}

// FailNext scripts the results of the next calls; a nil entry delivers.
func (f *FakeNotifier) FailNext(errs ...error) {
	f.mu.Lock()
	f.fail = append(f.fail, errs...)
	f.mu.Unlock()
}

// SetError makes every following call fail with err (nil restores delivery).
func (f *FakeNotifier) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Sent returns a copy of the delivered intents.
func (f *FakeNotifier) Sent() []logic.Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logic.Intent(nil), f.sent...)
}

// Kinds returns the kinds of the delivered intents in order.
func (f *FakeNotifier) Kinds() []logic.IntentKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]logic.IntentKind, len(f.sent))
	for i, in := range f.sent {
		kinds[i] = in.Kind
	}
	return kinds
}

// Attempts returns how many times Notify was called.
func (f *FakeNotifier) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}
