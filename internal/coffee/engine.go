// Package coffee wires the press classifier and the staleness timer to the
// notification and feedback collaborators.
package coffee

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sweeney/coffee-button/internal/feedback"
	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
	"github.com/sweeney/coffee-button/internal/sched"
)

// DefaultQueueSize bounds the number of intents waiting for the dispatcher.
const DefaultQueueSize = 16

// QuoteSource supplies the text for a triple press.
type QuoteSource interface {
	Random() string
}

// Config configures an Engine.
type Config struct {
	Timing    logic.Timing
	QueueSize int
}

// Engine owns the core state machines. Sample is called from the polling
// loop; Run delivers intents on a single worker goroutine.
type Engine struct {
	sched    sched.Scheduler
	notifier notify.Notifier
	signaler feedback.Signaler
	quotes   QuoteSource

	// Only touched by the polling loop.
	edge *logic.EdgeDetector

	mu         sync.Mutex
	classifier *logic.Classifier
	counts     logic.Counts
	lastFresh  time.Time

	stale   *StaleTimer
	intents chan logic.Intent
	// Expired countdowns get their own slot so a full intent queue
	// never loses one.
	staleDue chan logic.Intent
}

// New creates an Engine.
func New(cfg Config, s sched.Scheduler, n notify.Notifier, sig feedback.Signaler, q QuoteSource) *Engine {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if sig == nil {
		sig = feedback.Nop{}
	}

	e := &Engine{
		sched:      s,
		notifier:   n,
		signaler:   sig,
		quotes:     q,
		edge:       logic.NewEdgeDetector(cfg.Timing.Debounce),
		classifier: logic.NewClassifier(cfg.Timing.TripleWindow),
		intents:    make(chan logic.Intent, cfg.QueueSize),
		staleDue:   make(chan logic.Intent, 1),
	}
	e.stale = NewStaleTimer(cfg.Timing.StaleAfter, s, e.onStale)
	return e
}

// Sample feeds one reading of the button taken at now.
func (e *Engine) Sample(pressed bool, now time.Time) {
	e.edge.Sample(pressed, now).WhenSome(e.onPress)
}

// ButtonState returns the debounced button state. Call from the polling loop.
func (e *Engine) ButtonState() logic.ButtonState {
	return e.edge.State()
}

func (e *Engine) onPress(ev logic.PressEvent) {
	e.mu.Lock()
	dec := e.classifier.OnPress(ev)
	e.counts.Presses++
	if dec.Ignored {
		e.counts.Ignored++
	}
	pending := e.classifier.Pending()
	e.mu.Unlock()

	log.Printf("press: %d in window", pending)

	dec.Wake.WhenSome(func(w logic.Wake) {
		e.sched.AfterFunc(w.At.Sub(e.sched.Now()), func() { e.windowExpired(w.Epoch) })
	})
	dec.Intent.WhenSome(e.enqueue)
}

func (e *Engine) windowExpired(epoch uint64) {
	now := e.sched.Now()

	e.mu.Lock()
	intent := e.classifier.OnWindowExpiry(epoch, now)
	e.mu.Unlock()

	intent.WhenSome(e.enqueue)
}

// onStale hands an expired countdown to the dispatcher. The slot holds one
// intent; a newer expiry replaces an undelivered older one.
func (e *Engine) onStale(epoch uint64, at time.Time) {
	intent := logic.Intent{Kind: logic.IntentStale, At: at, Epoch: epoch}
	log.Printf("intent: %s", intent.Kind)
	for {
		select {
		case e.staleDue <- intent:
			return
		default:
		}
		select {
		case old := <-e.staleDue:
			log.Printf("dispatch: replacing undelivered %s", old.Kind)
		default:
		}
	}
}

// enqueue hands an intent to the dispatcher without blocking.
func (e *Engine) enqueue(intent logic.Intent) {
	if intent.Kind == logic.IntentQuote && e.quotes != nil {
		intent.Quote = e.quotes.Random()
	}

	log.Printf("intent: %s", intent.Kind)
	select {
	case e.intents <- intent:
	default:
		log.Printf("dispatch: queue full, dropping %s", intent.Kind)
	}
}

// Run delivers queued intents until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case intent := <-e.intents:
			e.dispatch(ctx, intent)
		case intent := <-e.staleDue:
			e.dispatch(ctx, intent)
		}
	}
}

// dispatch delivers one intent. Freshness is only asserted after a
// confirmed delivery.
func (e *Engine) dispatch(ctx context.Context, intent logic.Intent) {
	// A Fresh delivered after the countdown expired restarted it; the
	// coffee is no longer stale.
	if intent.Kind == logic.IntentStale && !e.stale.Current(intent.Epoch) {
		log.Printf("dispatch: %s superseded, dropping", intent.Kind)
		return
	}

	if err := e.notifier.Notify(ctx, intent); err != nil {
		log.Printf("dispatch: %s failed: %v", intent.Kind, err)
		e.mu.Lock()
		e.counts.Failures++
		e.mu.Unlock()
		e.signaler.Signal(logic.OutcomeError)
		return
	}

	log.Printf("dispatch: %s sent", intent.Kind)
	e.mu.Lock()
	switch intent.Kind {
	case logic.IntentFresh:
		e.counts.Fresh++
		e.lastFresh = e.sched.Now()
	case logic.IntentStale:
		e.counts.Stale++
	case logic.IntentQuote:
		e.counts.Quotes++
	}
	e.mu.Unlock()

	if intent.Kind == logic.IntentFresh {
		e.stale.StartOrReset()
	}
	e.signaler.Signal(logic.OutcomeSuccess)
}

// Close drops any press episode in play and cancels the staleness timer.
// Outstanding wake-ups become no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	e.classifier.Reset()
	e.mu.Unlock()
	e.stale.Cancel()
}

// Stats returns a point-in-time view of the core.
func (e *Engine) Stats() logic.Stats {
	e.mu.Lock()
	s := logic.Stats{
		Counts:     e.counts,
		Classifier: e.classifier.State(),
		Pending:    e.classifier.Pending(),
		LastFresh:  e.lastFresh,
	}
	e.mu.Unlock()
	s.Timer = e.stale.State()
	return s
}

// Counts returns the totals since startup.
func (e *Engine) Counts() logic.Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts
}
