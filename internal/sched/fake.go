package sched

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock. Scheduled functions run synchronously
// inside Advance, in deadline order, with Now() set to their deadline.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []fakeCall
}

type fakeCall struct {
	at  time.Time
	seq int
	f   func()
}

// NewFake creates a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake time.
func (s *Fake) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc records f to run once the clock reaches Now()+d.
func (s *Fake) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending = append(s.pending, fakeCall{at: s.now.Add(d), seq: s.seq, f: f})
}

// Advance moves the clock forward by d, running every function that falls
// due on the way. Functions scheduled by those functions also run if they
// fall due before the new time.
func (s *Fake) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo moves the clock to target (never backwards).
func (s *Fake) AdvanceTo(target time.Time) {
	for {
		s.mu.Lock()
		sort.Slice(s.pending, func(i, j int) bool {
			if s.pending[i].at.Equal(s.pending[j].at) {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].at.Before(s.pending[j].at)
		})
		if len(s.pending) == 0 || s.pending[0].at.After(target) {
			if target.After(s.now) {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		if next.at.After(s.now) {
			s.now = next.at
		}
		s.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of scheduled functions that have not run.
func (s *Fake) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
