package gpio

import (
	"errors"
	"testing"
)

func TestFakeButtonPressed(t *testing.T) {
	f := NewFakeButton([]bool{false, true, true})

	want := []bool{false, true, true, true} // last sample repeats
	for i, w := range want {
		got, err := f.Pressed()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestFakeButtonNoSamples(t *testing.T) {
	f := NewFakeButton(nil)

	if _, err := f.Pressed(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeButtonError(t *testing.T) {
	f := NewFakeButton([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Pressed()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeButtonClose(t *testing.T) {
	f := NewFakeButton([]bool{true})

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeButtonReset(t *testing.T) {
	f := NewFakeButton([]bool{true, false})

	f.Pressed()
	f.Reset()

	got, _ := f.Pressed()
	if got != true {
		t.Errorf("after reset: expected true, got %v", got)
	}
}

func TestFakeLightRecordsValues(t *testing.T) {
	l := NewFakeLight()
	l.Set(true)
	l.Set(false)
	l.Set(true)

	got := l.Values()
	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestFakeLightError(t *testing.T) {
	l := NewFakeLight()
	l.SetError = errors.New("stuck")

	if err := l.Set(true); err == nil {
		t.Error("expected error")
	}
	if len(l.Values()) != 0 {
		t.Error("failed writes should not be recorded")
	}
}
