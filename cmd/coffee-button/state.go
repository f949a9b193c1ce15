package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/coffee-button/internal/gpio"
	"github.com/sweeney/coffee-button/internal/logic"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the current button state and exit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		button, err := gpio.NewRealButton(cfg.GPIOChip, cfg.PinButton)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer button.Close()
		return printState(cmd.OutOrStdout(), button)
	},
}

func printState(w io.Writer, button gpio.Button) error {
	pressed, err := button.Pressed()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	_, err = fmt.Fprintf(w, "Button: %s\n", stateString(pressed))
	return err
}

func stateString(pressed bool) logic.ButtonState {
	if pressed {
		return logic.ButtonPressed
	}
	return logic.ButtonReleased
}
