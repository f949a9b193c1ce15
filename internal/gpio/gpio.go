// Package gpio provides the button input and LED output lines with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Button reads the push button line.
type Button interface {
	// Pressed returns the logical state of the button.
	// The line is wired with a pull-up, so raw low (0) = pressed.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Light drives the status LED.
type Light interface {
	// Set turns the LED on or off.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Defaults (BCM numbering).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 15
	DefaultPinLED    = 25
)
