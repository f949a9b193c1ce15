package gpio

import (
	"errors"
	"sync"
)

// FakeButton is a test double that returns scripted button values.
type FakeButton struct {
	// Samples contains scripted pressed values to return.
	// Each call to Pressed() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Pressed()
	ReadError error
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples []bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Pressed returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButton) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the button to the beginning of samples.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeLight records every value written to it. Safe for concurrent use since
// blink patterns run on their own goroutine.
type FakeLight struct {
	mu     sync.Mutex
	values []bool
	closed bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// NewFakeLight creates a FakeLight.
func NewFakeLight() *FakeLight {
	return &FakeLight{}
}

// Set records the value.
func (f *FakeLight) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.values = append(f.values, on)
	return nil
}

// Close marks the light as closed.
func (f *FakeLight) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Values returns a copy of everything written so far.
func (f *FakeLight) Values() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.values...)
}

// Closed reports whether Close was called.
func (f *FakeLight) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
