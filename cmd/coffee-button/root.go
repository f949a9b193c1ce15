package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sweeney/coffee-button/internal/config"
)

// Set by the linker at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "coffee-button",
	Short:         "Announce fresh coffee from a GPIO push button.",
	Long:          `Press once when a fresh pot is on. Press three times for coffee wisdom. The daemon reports cold coffee on its own.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stateCmd)

	d := config.Default()
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default .coffee-button.yaml in ., $HOME or /etc/coffee-button)")
	f.Duration("poll", d.Poll, "Button polling interval")
	f.Duration("debounce", d.Debounce, "Debounce duration")
	f.Duration("triple-window", d.TripleWindow, "Window in which three presses count as a triple press")
	f.Duration("stale-after", d.StaleAfter, "Time after a fresh pot until the coffee is reported stale")
	f.Duration("heartbeat", d.Heartbeat, "Heartbeat interval (0 to disable)")
	f.Int("queue-size", d.QueueSize, "Maximum notifications waiting for delivery")
	f.String("gpio-chip", d.GPIOChip, "GPIO character device")
	f.Int("pin-button", d.PinButton, "BCM pin number for the button")
	f.Int("pin-led", d.PinLED, "BCM pin number for the status LED (-1 to disable)")
	f.String("notifier", d.Notifier, "Where notifications go: mqtt, slack or both")
	f.String("broker", d.Broker, "MQTT broker address")
	f.String("client-id", d.ClientID, "MQTT client id")
	f.String("slack-token", d.SlackToken, "Slack bot token")
	f.String("slack-channel", d.SlackChannel, "Slack channel")
	f.String("slack-username", d.SlackUsername, "Slack display name")
	f.String("slack-icon", d.SlackIcon, "Slack icon emoji")
	f.String("slack-api-url", d.SlackAPIURL, "Slack Web API base URL override")
	f.String("quotes-file", d.QuotesFile, "YAML file with a quotes list (empty for the built-in list)")
	f.String("message-fresh", d.MessageFresh, "Fresh coffee message")
	f.String("message-stale", d.MessageStale, "Stale coffee message")
	f.String("message-quote-prefix", d.MessageQuotePrefix, "Prefix for coffee wisdom messages")
	f.String("http", d.HTTP, "HTTP status address (empty to disable)")
	f.Bool("console", d.Console, "Print a coloured line for every notification")

	if err := viper.BindPFlags(f); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}
}

// initConfig points viper at the config file and environment.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".coffee-button")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.AddConfigPath("/etc/coffee-button")
	}

	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())
}

// loadConfig merges defaults, file, env and flags and validates the result.
func loadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config.Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return config.Load(viper.GetViper())
}
