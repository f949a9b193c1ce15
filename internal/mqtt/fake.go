package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
)

// FakePublisher records published events for test assertions.
// Methods are safe to call concurrently; read the fields once the
// goroutines using the fake have stopped.
type FakePublisher struct {
	mu sync.Mutex

	// Intents contains all intents that were delivered.
	Intents []logic.Intent

	// Payloads contains the JSON payloads that were delivered.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// NotifyError, if set, will be returned by Notify.
	NotifyError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Messages supplies the texts for payloads; zero value means defaults.
	Messages notify.Messages

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	nextID int
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Messages: notify.DefaultMessages()}
}

// Notify records the intent.
func (f *FakePublisher) Notify(_ context.Context, intent logic.Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.NotifyError != nil {
		return f.NotifyError
	}

	text, err := f.Messages.Text(intent)
	if err != nil {
		return err
	}

	f.nextID++
	payload, err := FormatPayload(fakeID(f.nextID), intent, text)
	if err != nil {
		return err
	}

	f.Intents = append(f.Intents, intent)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// SystemEventNames returns the Event field of each recorded system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// DeliveredKinds returns the kinds of the delivered intents in order.
func (f *FakePublisher) DeliveredKinds() []logic.IntentKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]logic.IntentKind, len(f.Intents))
	for i, in := range f.Intents {
		kinds[i] = in.Kind
	}
	return kinds
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Intents = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.NotifyError = nil
	f.PublishSystemError = nil
	f.Connected = false
	f.nextID = 0
}

func fakeID(n int) string {
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", n)
}
