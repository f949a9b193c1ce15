package feedback

import (
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sweeney/coffee-button/internal/logic"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Console prints one coloured line per outcome.
type Console struct {
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a console signaler writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

// Signal writes the outcome line.
func (c *Console) Signal(outcome logic.Outcome) {
	ts := c.now().Format("15:04:05")
	switch outcome {
	case logic.OutcomeSuccess:
		successColor.Fprintf(c.w, "%s ✔ notification sent\n", ts)
	case logic.OutcomeError:
		errorColor.Fprintf(c.w, "%s ✖ notification failed\n", ts)
	}
}
