package logic

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestTimerStateArm(t *testing.T) {
	var s TimerState
	epoch := s.Arm(t0, time.Hour)

	if !s.Active {
		t.Error("expected active after Arm")
	}
	if epoch != s.Epoch {
		t.Errorf("Arm returned epoch %d, state has %d", epoch, s.Epoch)
	}
	if !s.Deadline.Equal(t0.Add(time.Hour)) {
		t.Errorf("unexpected deadline %v", s.Deadline)
	}
}

func TestTimerStateExpire(t *testing.T) {
	var s TimerState
	epoch := s.Arm(t0, time.Hour)

	if s.Expire(epoch, t0.Add(59*time.Minute)) {
		t.Error("must not fire before deadline")
	}
	if !s.Expire(epoch, t0.Add(time.Hour)) {
		t.Error("should fire at deadline")
	}
	if s.Active {
		t.Error("firing deactivates the timer")
	}
	if s.Expire(epoch, t0.Add(2*time.Hour)) {
		t.Error("must fire at most once per arm")
	}
}

func TestTimerStateResetSupersedes(t *testing.T) {
	var s TimerState
	first := s.Arm(t0, time.Hour)
	second := s.Arm(t0.Add(10*time.Minute), time.Hour)

	if s.Expire(first, t0.Add(time.Hour)) {
		t.Error("wait from the first arm must be a no-op")
	}
	if !s.Active {
		t.Error("stale wait must not deactivate the live timer")
	}
	if !s.Expire(second, t0.Add(70*time.Minute)) {
		t.Error("live wait should fire at the reset deadline")
	}
}

func TestTimerStateCancel(t *testing.T) {
	var s TimerState
	epoch := s.Arm(t0, time.Hour)
	s.Cancel()

	if s.Active {
		t.Error("expected inactive after Cancel")
	}
	if s.Expire(epoch, t0.Add(time.Hour)) {
		t.Error("cancelled timer must not fire")
	}
}

func TestTimerViewRemaining(t *testing.T) {
	v := TimerView{Active: true, Deadline: t0.Add(time.Hour)}
	if got := v.Remaining(t0.Add(15 * time.Minute)); got != 45*time.Minute {
		t.Errorf("Remaining: got %v, want 45m", got)
	}
	if got := v.Remaining(t0.Add(2 * time.Hour)); got != 0 {
		t.Errorf("Remaining past deadline: got %v, want 0", got)
	}
	v.Active = false
	if got := v.Remaining(t0); got != 0 {
		t.Errorf("Remaining inactive: got %v, want 0", got)
	}
}

// TestTimerStateRapidResets checks that however many resets happen, only the
// wait bound to the last one can fire, and only at its deadline.
func TestTimerStateRapidResets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		after := time.Duration(rapid.Int64Range(int64(time.Second), int64(3*time.Hour)).Draw(t, "after"))
		n := rapid.IntRange(1, 50).Draw(t, "resets")

		var s TimerState
		var epochs []uint64
		now := t0
		for i := 0; i < n; i++ {
			now = now.Add(time.Duration(rapid.Int64Range(0, int64(after)-1).Draw(t, "gap")))
			epochs = append(epochs, s.Arm(now, after))
		}
		last := now.Add(after)

		fired := 0
		for _, e := range epochs {
			if s.Expire(e, last) {
				fired++
			}
		}
		if fired != 1 {
			t.Fatalf("expected exactly one firing, got %d", fired)
		}
	})
}
