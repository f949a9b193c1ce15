package feedback

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/coffee-button/internal/gpio"
	"github.com/sweeney/coffee-button/internal/logic"
)

// Pattern is a blink sequence. Each flash turns the LED to Flash for On,
// then back to Rest for Off.
type Pattern struct {
	Flashes int
	Flash   bool
	Rest    bool
	On      time.Duration
	Off     time.Duration
}

// Stock patterns. The LED rests off once the daemon is ready.
var (
	// Success dips the LED three times.
	PatternSuccess = Pattern{Flashes: 3, Flash: false, Rest: true, On: 200 * time.Millisecond, Off: 200 * time.Millisecond}
	// Error blinks ten times.
	PatternError = Pattern{Flashes: 10, Flash: true, Rest: false, On: 100 * time.Millisecond, Off: 100 * time.Millisecond}
	// Fatal blinks rapidly twenty times.
	PatternFatal = Pattern{Flashes: 20, Flash: true, Rest: false, On: 50 * time.Millisecond, Off: 50 * time.Millisecond}
)

// LED plays blink patterns on a Light from its own goroutine. Signal drops
// outcomes that arrive while a pattern is already playing.
type LED struct {
	light    gpio.Light
	patterns map[logic.Outcome]Pattern
	queue    chan logic.Outcome
}

// NewLED creates an LED signaler with the stock patterns.
func NewLED(light gpio.Light) *LED {
	return &LED{
		light: light,
		patterns: map[logic.Outcome]Pattern{
			logic.OutcomeSuccess: PatternSuccess,
			logic.OutcomeError:   PatternError,
		},
		queue: make(chan logic.Outcome, 1),
	}
}

// SetPattern overrides the pattern for an outcome. Call before Run.
func (l *LED) SetPattern(outcome logic.Outcome, p Pattern) {
	l.patterns[outcome] = p
}

// Signal queues an outcome without blocking.
func (l *LED) Signal(outcome logic.Outcome) {
	select {
	case l.queue <- outcome:
	default:
		log.Printf("led: busy, dropping %s signal", outcome)
	}
}

// Steady sets the LED to a constant level (on during startup, off when ready).
func (l *LED) Steady(on bool) {
	if err := l.light.Set(on); err != nil {
		log.Printf("led: %v", err)
	}
}

// Run plays queued patterns until ctx is cancelled.
func (l *LED) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case outcome := <-l.queue:
			p, ok := l.patterns[outcome]
			if !ok {
				continue
			}
			l.Play(ctx, p)
		}
	}
}

// Play blinks a pattern synchronously. It stops early if ctx is cancelled.
func (l *LED) Play(ctx context.Context, p Pattern) {
	for i := 0; i < p.Flashes; i++ {
		if !l.step(ctx, p.Flash, p.On) || !l.step(ctx, p.Rest, p.Off) {
			return
		}
	}
}

func (l *LED) step(ctx context.Context, on bool, d time.Duration) bool {
	if err := l.light.Set(on); err != nil {
		log.Printf("led: %v", err)
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
