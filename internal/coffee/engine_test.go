package coffee

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
	"github.com/sweeney/coffee-button/internal/quotes"
	"github.com/sweeney/coffee-button/internal/sched"
)

var start = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

type signals struct {
	mu  sync.Mutex
	got []logic.Outcome
}

func (s *signals) Signal(o logic.Outcome) {
	s.mu.Lock()
	s.got = append(s.got, o)
	s.mu.Unlock()
}

func (s *signals) all() []logic.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logic.Outcome(nil), s.got...)
}

type harness struct {
	s   *sched.Fake
	n   *notify.FakeNotifier
	sig *signals
	e   *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		s:   sched.NewFake(start),
		n:   notify.NewFakeNotifier(),
		sig: &signals{},
	}
	h.e = New(Config{Timing: logic.DefaultTiming()}, h.s, h.n, h.sig, quotes.New([]string{"Humanity runs on coffee."}))
	return h
}

// at moves the fake clock to start+off.
func (h *harness) at(off time.Duration) {
	h.s.AdvanceTo(start.Add(off))
}

// pressAt delivers a confirmed press at start+off.
func (h *harness) pressAt(off time.Duration) {
	h.at(off)
	h.e.onPress(logic.PressEvent{At: h.s.Now()})
}

// drain dispatches every queued intent on the calling goroutine, the intent
// queue first and then the expired countdown.
func (h *harness) drain() int {
	n := 0
	for {
		select {
		case in := <-h.e.intents:
			h.e.dispatch(context.Background(), in)
			n++
			continue
		default:
		}
		select {
		case in := <-h.e.staleDue:
			h.e.dispatch(context.Background(), in)
			n++
		default:
			return n
		}
	}
}

// holdingNotifier blocks the first Fresh after hold is set until release
// is closed.
type holdingNotifier struct {
	notify.Notifier
	hold    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (n *holdingNotifier) Notify(ctx context.Context, in logic.Intent) error {
	if in.Kind == logic.IntentFresh && n.hold.CompareAndSwap(true, false) {
		close(n.entered)
		<-n.release
	}
	return n.Notifier.Notify(ctx, in)
}

// freshAt dispatches a Fresh intent at start+off.
func (h *harness) freshAt(off time.Duration) {
	h.at(off)
	h.e.dispatch(context.Background(), logic.Intent{Kind: logic.IntentFresh, At: h.s.Now()})
}

func TestTriplePressScenario(t *testing.T) {
	h := newHarness(t)

	h.pressAt(0)
	h.pressAt(500 * time.Millisecond)
	h.pressAt(1000 * time.Millisecond)

	require.Equal(t, 1, h.drain(), "triple resolves on the third press")
	sent := h.n.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, logic.IntentQuote, sent[0].Kind)
	assert.Equal(t, start.Add(time.Second), sent[0].At)
	assert.Equal(t, "Humanity runs on coffee.", sent[0].Quote)

	h.at(time.Minute)
	assert.Equal(t, 0, h.drain(), "no single after a triple")
	assert.False(t, h.e.Stats().Timer.Active, "a quote does not arm the timer")
	assert.Equal(t, 1, h.e.Counts().Quotes)
}

func TestSinglePressScenario(t *testing.T) {
	h := newHarness(t)

	h.pressAt(0)
	h.at(2*time.Second - time.Millisecond)
	assert.Equal(t, 0, h.drain())

	h.at(2 * time.Second)
	require.Equal(t, 1, h.drain())
	sent := h.n.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, logic.IntentFresh, sent[0].Kind)
	assert.Equal(t, start.Add(2*time.Second), sent[0].At)

	stats := h.e.Stats()
	assert.True(t, stats.Timer.Active)
	assert.Equal(t, start.Add(2*time.Second+logic.DefaultStaleAfter), stats.Timer.Deadline)
	assert.Equal(t, start.Add(2*time.Second), stats.LastFresh)
	assert.Equal(t, []logic.Outcome{logic.OutcomeSuccess}, h.sig.all())
}

func TestSecondPressDoesNotDoubleFire(t *testing.T) {
	h := newHarness(t)

	h.pressAt(0)
	h.pressAt(1500 * time.Millisecond)
	h.at(10 * time.Second)

	assert.Equal(t, 1, h.drain(), "one pending episode yields one single")
	assert.Equal(t, []logic.IntentKind{logic.IntentFresh}, h.n.Kinds())
}

func TestFourthPressIgnored(t *testing.T) {
	h := newHarness(t)

	h.pressAt(0)
	h.pressAt(200 * time.Millisecond)
	h.pressAt(400 * time.Millisecond)
	h.pressAt(600 * time.Millisecond)
	h.at(10 * time.Second)
	h.drain()

	assert.Equal(t, []logic.IntentKind{logic.IntentQuote}, h.n.Kinds())
	c := h.e.Counts()
	assert.Equal(t, 4, c.Presses)
	assert.Equal(t, 1, c.Ignored)
}

func TestStaleFiresFromLastReset(t *testing.T) {
	h := newHarness(t)

	h.freshAt(0)
	h.freshAt(100 * time.Second)

	h.at(7200 * time.Second)
	assert.Equal(t, 0, h.drain(), "first deadline is superseded")

	h.at(7300*time.Second - time.Millisecond)
	assert.Equal(t, 0, h.drain())

	h.at(7300 * time.Second)
	require.Equal(t, 1, h.drain())
	sent := h.n.Sent()
	last := sent[len(sent)-1]
	assert.Equal(t, logic.IntentStale, last.Kind)
	assert.Equal(t, start.Add(7300*time.Second), last.At)

	h.at(48 * time.Hour)
	assert.Equal(t, 0, h.drain(), "stale fires once")
	assert.False(t, h.e.Stats().Timer.Active)
}

func TestRapidResetsFireOnce(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 25; i++ {
		h.freshAt(time.Duration(i) * time.Second)
	}
	assert.Equal(t, 25, h.s.Pending(), "superseded waits stay scheduled")

	h.at(72 * time.Hour)
	h.drain()

	kinds := h.n.Kinds()
	stale := 0
	for _, k := range kinds {
		if k == logic.IntentStale {
			stale++
		}
	}
	assert.Equal(t, 1, stale)
	assert.Equal(t, 1, h.e.Counts().Stale)
}

func TestResetBeforeFinalDeadlineNeverFires(t *testing.T) {
	h := newHarness(t)

	h.freshAt(0)
	h.freshAt(time.Hour)
	h.at(2 * time.Hour)
	h.e.Close()

	h.at(72 * time.Hour)
	assert.Equal(t, 0, h.drain())
	assert.Equal(t, 0, h.e.Counts().Stale)
}

func TestFailedFreshDoesNotArmTimer(t *testing.T) {
	h := newHarness(t)
	h.n.FailNext(errors.New("network down"))

	h.pressAt(0)
	h.at(2 * time.Second)
	require.Equal(t, 1, h.drain())

	stats := h.e.Stats()
	assert.False(t, stats.Timer.Active)
	assert.True(t, stats.LastFresh.IsZero())
	assert.Equal(t, 1, stats.Counts.Failures)
	assert.Equal(t, 0, stats.Counts.Fresh)
	assert.Equal(t, []logic.Outcome{logic.OutcomeError}, h.sig.all())
}

func TestFailedFreshLeavesRunningTimerAlone(t *testing.T) {
	h := newHarness(t)

	h.freshAt(0)
	before := h.e.Stats().Timer

	h.n.FailNext(errors.New("network down"))
	h.freshAt(100 * time.Second)
	assert.Equal(t, before, h.e.Stats().Timer)

	h.at(7200 * time.Second)
	require.Equal(t, 1, h.drain())
	assert.Equal(t, []logic.IntentKind{logic.IntentFresh, logic.IntentStale}, h.n.Kinds())
}

func TestFailedStaleIsNotRetried(t *testing.T) {
	h := newHarness(t)

	h.freshAt(0)
	h.n.FailNext(errors.New("network down"))
	h.at(7200 * time.Second)
	require.Equal(t, 1, h.drain())

	h.at(72 * time.Hour)
	assert.Equal(t, 0, h.drain())
	assert.Equal(t, 2, h.n.Attempts())
	assert.Equal(t, []logic.Outcome{logic.OutcomeSuccess, logic.OutcomeError}, h.sig.all())
}

func TestCloseNeutersPendingEpisode(t *testing.T) {
	h := newHarness(t)

	h.pressAt(0)
	h.e.Close()
	h.at(time.Minute)

	assert.Equal(t, 0, h.drain())
	assert.Equal(t, logic.ClassifierIdle, h.e.Stats().Classifier)
}

func TestQueueFullDrops(t *testing.T) {
	s := sched.NewFake(start)
	n := notify.NewFakeNotifier()
	e := New(Config{Timing: logic.DefaultTiming(), QueueSize: 1}, s, n, nil, nil)

	e.enqueue(logic.Intent{Kind: logic.IntentFresh})
	e.enqueue(logic.Intent{Kind: logic.IntentQuote})
	e.enqueue(logic.Intent{Kind: logic.IntentFresh})

	assert.Len(t, e.intents, 1)
}

func TestStaleSurvivesFullQueue(t *testing.T) {
	h := newHarness(t)
	h.e = New(Config{Timing: logic.DefaultTiming(), QueueSize: 1}, h.s, h.n, h.sig, nil)

	h.freshAt(0)
	h.e.enqueue(logic.Intent{Kind: logic.IntentQuote, At: h.s.Now()})
	require.Len(t, h.e.intents, 1)

	h.at(logic.DefaultStaleAfter)
	require.Equal(t, 2, h.drain())
	assert.Equal(t, []logic.IntentKind{logic.IntentFresh, logic.IntentQuote, logic.IntentStale}, h.n.Kinds())
	assert.Equal(t, 1, h.e.Counts().Stale)
}

func TestStaleDroppedWhenFreshLandsAfterExpiry(t *testing.T) {
	h := newHarness(t)

	h.freshAt(0)
	h.at(logic.DefaultStaleAfter)
	require.Len(t, h.e.staleDue, 1)

	// A Fresh that was still in flight at the deadline lands afterwards.
	h.e.dispatch(context.Background(), logic.Intent{Kind: logic.IntentFresh, At: h.s.Now()})

	assert.Equal(t, 1, h.drain())
	assert.Equal(t, []logic.IntentKind{logic.IntentFresh, logic.IntentFresh}, h.n.Kinds())
	assert.Equal(t, 0, h.e.Counts().Stale)
	timer := h.e.Stats().Timer
	assert.True(t, timer.Active)
	assert.Equal(t, start.Add(2*logic.DefaultStaleAfter), timer.Deadline)
}

func TestStaleWaitsBehindSlowFresh(t *testing.T) {
	h := newHarness(t)
	hn := &holdingNotifier{
		Notifier: h.n,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	h.e = New(Config{Timing: logic.DefaultTiming()}, h.s, hn, h.sig, nil)

	h.freshAt(0)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.e.Run(ctx) }()

	hn.hold.Store(true)
	h.at(logic.DefaultStaleAfter - time.Second)
	h.e.enqueue(logic.Intent{Kind: logic.IntentFresh, At: h.s.Now()})
	select {
	case <-hn.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Fresh never reached the notifier")
	}

	// The deadline passes while the Fresh is still being delivered.
	h.at(logic.DefaultStaleAfter)
	close(hn.release)

	require.Eventually(t, func() bool {
		return h.e.Counts().Fresh == 2 && len(h.e.staleDue) == 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, []logic.IntentKind{logic.IntentFresh, logic.IntentFresh}, h.n.Kinds())
	assert.Equal(t, 0, h.e.Counts().Stale)
	assert.Equal(t, start.Add(2*logic.DefaultStaleAfter), h.e.Stats().Timer.Deadline, "restarted when the Fresh landed")
}

func TestSampleDrivesClassifier(t *testing.T) {
	h := newHarness(t)

	// Hold the button for a second: one press only.
	for i := 0; i < 100; i++ {
		h.e.Sample(true, h.s.Now())
		h.s.Advance(10 * time.Millisecond)
	}
	h.e.Sample(false, h.s.Now())
	assert.Equal(t, logic.ButtonReleased, h.e.ButtonState())

	h.s.Advance(5 * time.Second)
	require.Equal(t, 1, h.drain())
	assert.Equal(t, []logic.IntentKind{logic.IntentFresh}, h.n.Kinds())
	assert.Equal(t, 1, h.e.Counts().Presses)
}

func TestRunDispatchesOnWorker(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.e.Run(ctx) }()

	h.pressAt(0)
	h.pressAt(100 * time.Millisecond)
	h.pressAt(200 * time.Millisecond)

	require.Eventually(t, func() bool {
		return len(h.n.Sent()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
