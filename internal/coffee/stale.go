package coffee

import (
	"sync"
	"time"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/sched"
)

// StaleTimer is the freshness countdown. Every StartOrReset schedules one
// wait bound to a new epoch; older waits wake up, see the epoch moved on,
// and exit without effect.
type StaleTimer struct {
	after   time.Duration
	sched   sched.Scheduler
	onStale func(epoch uint64, at time.Time)

	mu    sync.Mutex
	state logic.TimerState
}

// NewStaleTimer creates an inactive timer. onStale runs on the scheduler's
// goroutine when a countdown expires, with the epoch of that countdown.
func NewStaleTimer(after time.Duration, s sched.Scheduler, onStale func(epoch uint64, at time.Time)) *StaleTimer {
	return &StaleTimer{
		after:   after,
		sched:   s,
		onStale: onStale,
	}
}

// StartOrReset arms the countdown for after from now.
func (t *StaleTimer) StartOrReset() {
	t.mu.Lock()
	epoch := t.state.Arm(t.sched.Now(), t.after)
	t.mu.Unlock()

	t.sched.AfterFunc(t.after, func() { t.wake(epoch) })
}

// Cancel deactivates the countdown without firing.
func (t *StaleTimer) Cancel() {
	t.mu.Lock()
	t.state.Cancel()
	t.mu.Unlock()
}

// Current reports whether epoch is still the latest countdown, i.e. nothing
// restarted or cancelled the timer since it was armed under epoch.
func (t *StaleTimer) Current(epoch uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Epoch == epoch
}

// State returns the current countdown.
func (t *StaleTimer) State() logic.TimerView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.View()
}

func (t *StaleTimer) wake(epoch uint64) {
	now := t.sched.Now()

	t.mu.Lock()
	fire := t.state.Expire(epoch, now)
	t.mu.Unlock()

	if fire {
		t.onStale(epoch, now)
	}
}
