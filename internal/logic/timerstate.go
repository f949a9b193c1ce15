package logic

import "time"

// TimerState is the shared record of a staleness countdown. Every Arm bumps
// Epoch so a wait scheduled under an older epoch can tell it was superseded.
type TimerState struct {
	Epoch    uint64
	Deadline time.Time
	Active   bool
}

// Arm starts or restarts the countdown and returns the epoch the caller's
// wait must be bound to.
func (s *TimerState) Arm(now time.Time, after time.Duration) uint64 {
	s.Epoch++
	s.Deadline = now.Add(after)
	s.Active = true
	return s.Epoch
}

// Cancel deactivates the countdown without firing.
func (s *TimerState) Cancel() {
	s.Epoch++
	s.Active = false
}

// Expire is called by a waking wait. It reports whether the wait should fire
// and, if so, deactivates the countdown so nothing else fires for it.
func (s *TimerState) Expire(epoch uint64, now time.Time) bool {
	if !s.Active || epoch != s.Epoch || now.Before(s.Deadline) {
		return false
	}
	s.Active = false
	return true
}

// View returns a copy suitable for reporting.
func (s *TimerState) View() TimerView {
	return TimerView{Active: s.Active, Deadline: s.Deadline}
}
