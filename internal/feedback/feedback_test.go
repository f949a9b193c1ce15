package feedback

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/coffee-button/internal/gpio"
	"github.com/sweeney/coffee-button/internal/logic"
)

type recorder struct{ got []logic.Outcome }

func (r *recorder) Signal(o logic.Outcome) { r.got = append(r.got, o) }

func TestMultiForwards(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b, Nop{}}.Signal(logic.OutcomeError)

	assert.Equal(t, []logic.Outcome{logic.OutcomeError}, a.got)
	assert.Equal(t, []logic.Outcome{logic.OutcomeError}, b.got)
}

func TestConsoleSignal(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.now = func() time.Time { return time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC) }

	c.Signal(logic.OutcomeSuccess)
	c.Signal(logic.OutcomeError)

	assert.Equal(t, "09:30:00 ✔ notification sent\n09:30:00 ✖ notification failed\n", buf.String())
}

func TestLEDPlayPattern(t *testing.T) {
	light := gpio.NewFakeLight()
	led := NewLED(light)

	led.Play(context.Background(), Pattern{Flashes: 2, Flash: false, Rest: true, On: time.Millisecond, Off: time.Millisecond})

	assert.Equal(t, []bool{false, true, false, true}, light.Values())
}

func TestLEDRunPlaysQueuedSignal(t *testing.T) {
	light := gpio.NewFakeLight()
	led := NewLED(light)
	led.SetPattern(logic.OutcomeError, Pattern{Flashes: 3, Flash: true, Rest: false, On: time.Millisecond, Off: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go led.Run(ctx)

	led.Signal(logic.OutcomeError)

	require.Eventually(t, func() bool {
		return len(light.Values()) == 6
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{true, false, true, false, true, false}, light.Values())
}

func TestLEDSignalNeverBlocks(t *testing.T) {
	led := NewLED(gpio.NewFakeLight())

	// Nobody is running the LED: the queue fills and the rest are dropped.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			led.Signal(logic.OutcomeSuccess)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Signal blocked")
	}
}

func TestLEDPlayStopsOnCancel(t *testing.T) {
	light := gpio.NewFakeLight()
	led := NewLED(light)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	led.Play(ctx, PatternFatal)

	assert.Len(t, light.Values(), 1)
}

func TestLEDSteady(t *testing.T) {
	light := gpio.NewFakeLight()
	led := NewLED(light)
	led.Steady(true)
	led.Steady(false)
	assert.Equal(t, []bool{true, false}, light.Values())
}
