// Package config holds the daemon configuration resolved from flags,
// environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sweeney/coffee-button/internal/gpio"
	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix is prepended to every environment variable (COFFEE_POLL, ...).
const EnvPrefix = "COFFEE"

// Notifier backends.
const (
	NotifierMQTT  = "mqtt"
	NotifierSlack = "slack"
	NotifierBoth  = "both"
)

// Config is the resolved daemon configuration.
type Config struct {
	Poll         time.Duration `mapstructure:"poll"`
	Debounce     time.Duration `mapstructure:"debounce"`
	TripleWindow time.Duration `mapstructure:"triple-window"`
	StaleAfter   time.Duration `mapstructure:"stale-after"`
	Heartbeat    time.Duration `mapstructure:"heartbeat"`
	QueueSize    int           `mapstructure:"queue-size"`

	GPIOChip  string `mapstructure:"gpio-chip"`
	PinButton int    `mapstructure:"pin-button"`
	PinLED    int    `mapstructure:"pin-led"`

	Notifier string `mapstructure:"notifier"`
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client-id"`

	SlackToken    string `mapstructure:"slack-token"`
	SlackChannel  string `mapstructure:"slack-channel"`
	SlackUsername string `mapstructure:"slack-username"`
	SlackIcon     string `mapstructure:"slack-icon"`
	SlackAPIURL   string `mapstructure:"slack-api-url"`

	QuotesFile         string `mapstructure:"quotes-file"`
	MessageFresh       string `mapstructure:"message-fresh"`
	MessageStale       string `mapstructure:"message-stale"`
	MessageQuotePrefix string `mapstructure:"message-quote-prefix"`

	HTTP    string `mapstructure:"http"`
	Console bool   `mapstructure:"console"`
}

// Default returns the stock configuration.
func Default() Config {
	m := notify.DefaultMessages()
	return Config{
		Poll:         10 * time.Millisecond,
		Debounce:     logic.DefaultDebounce,
		TripleWindow: logic.DefaultTripleWindow,
		StaleAfter:   logic.DefaultStaleAfter,
		Heartbeat:    15 * time.Minute,
		QueueSize:    16,

		GPIOChip:  gpio.DefaultChip,
		PinButton: gpio.DefaultPinButton,
		PinLED:    gpio.DefaultPinLED,

		Notifier: NotifierMQTT,
		Broker:   "tcp://192.168.1.200:1883",
		ClientID: "coffee-button",

		SlackChannel:  "coffee",
		SlackUsername: "Coffee Bot",
		SlackIcon:     ":coffee:",

		MessageFresh:       m.Fresh,
		MessageStale:       m.Stale,
		MessageQuotePrefix: m.QuotePrefix,

		HTTP:    ":80",
		Console: true,
	}
}

// SetDefaults registers every key of Default with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("poll", d.Poll)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("triple-window", d.TripleWindow)
	v.SetDefault("stale-after", d.StaleAfter)
	v.SetDefault("heartbeat", d.Heartbeat)
	v.SetDefault("queue-size", d.QueueSize)
	v.SetDefault("gpio-chip", d.GPIOChip)
	v.SetDefault("pin-button", d.PinButton)
	v.SetDefault("pin-led", d.PinLED)
	v.SetDefault("notifier", d.Notifier)
	v.SetDefault("broker", d.Broker)
	v.SetDefault("client-id", d.ClientID)
	v.SetDefault("slack-token", d.SlackToken)
	v.SetDefault("slack-channel", d.SlackChannel)
	v.SetDefault("slack-username", d.SlackUsername)
	v.SetDefault("slack-icon", d.SlackIcon)
	v.SetDefault("slack-api-url", d.SlackAPIURL)
	v.SetDefault("quotes-file", d.QuotesFile)
	v.SetDefault("message-fresh", d.MessageFresh)
	v.SetDefault("message-stale", d.MessageStale)
	v.SetDefault("message-quote-prefix", d.MessageQuotePrefix)
	v.SetDefault("http", d.HTTP)
	v.SetDefault("console", d.Console)
}

// BindEnv makes v read COFFEE_* environment variables, with dashes in key
// names mapped to underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Poll <= 0:
		return fmt.Errorf("%w: poll must be positive, got %s", ErrInvalid, c.Poll)
	case c.Debounce < 0:
		return fmt.Errorf("%w: debounce must not be negative, got %s", ErrInvalid, c.Debounce)
	case c.TripleWindow <= 0:
		return fmt.Errorf("%w: triple-window must be positive, got %s", ErrInvalid, c.TripleWindow)
	case c.StaleAfter <= 0:
		return fmt.Errorf("%w: stale-after must be positive, got %s", ErrInvalid, c.StaleAfter)
	case c.Heartbeat < 0:
		return fmt.Errorf("%w: heartbeat must not be negative, got %s", ErrInvalid, c.Heartbeat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue-size must be positive, got %d", ErrInvalid, c.QueueSize)
	case c.PinButton < 0:
		return fmt.Errorf("%w: pin-button must not be negative, got %d", ErrInvalid, c.PinButton)
	case c.PinLED >= 0 && c.PinLED == c.PinButton:
		return fmt.Errorf("%w: pin-led and pin-button are both %d", ErrInvalid, c.PinButton)
	}

	switch c.Notifier {
	case NotifierMQTT, NotifierSlack, NotifierBoth:
	default:
		return fmt.Errorf("%w: notifier must be mqtt, slack or both, got %q", ErrInvalid, c.Notifier)
	}
	if c.UsesMQTT() && c.Broker == "" {
		return fmt.Errorf("%w: broker is required for the mqtt notifier", ErrInvalid)
	}
	if c.UsesSlack() {
		if c.SlackToken == "" {
			return fmt.Errorf("%w: slack-token is required for the slack notifier", ErrInvalid)
		}
		if c.SlackChannel == "" {
			return fmt.Errorf("%w: slack-channel is required for the slack notifier", ErrInvalid)
		}
	}
	return nil
}

// UsesMQTT reports whether intents are delivered over MQTT.
func (c Config) UsesMQTT() bool {
	return c.Notifier == NotifierMQTT || c.Notifier == NotifierBoth
}

// UsesSlack reports whether intents are delivered to Slack.
func (c Config) UsesSlack() bool {
	return c.Notifier == NotifierSlack || c.Notifier == NotifierBoth
}

// LEDEnabled reports whether an LED pin is configured.
func (c Config) LEDEnabled() bool {
	return c.PinLED >= 0
}

// Timing returns the core durations.
func (c Config) Timing() logic.Timing {
	return logic.Timing{
		Debounce:     c.Debounce,
		TripleWindow: c.TripleWindow,
		StaleAfter:   c.StaleAfter,
	}
}

// Messages returns the configured message texts.
func (c Config) Messages() notify.Messages {
	return notify.Messages{
		Fresh:       c.MessageFresh,
		Stale:       c.MessageStale,
		QuotePrefix: c.MessageQuotePrefix,
	}
}

// Rows returns key/value pairs for display. Secrets are masked.
func (c Config) Rows() [][]string {
	token := ""
	if c.SlackToken != "" {
		token = "********"
	}
	return [][]string{
		{"poll", c.Poll.String()},
		{"debounce", c.Debounce.String()},
		{"triple-window", c.TripleWindow.String()},
		{"stale-after", c.StaleAfter.String()},
		{"heartbeat", c.Heartbeat.String()},
		{"queue-size", fmt.Sprint(c.QueueSize)},
		{"gpio-chip", c.GPIOChip},
		{"pin-button", fmt.Sprint(c.PinButton)},
		{"pin-led", fmt.Sprint(c.PinLED)},
		{"notifier", c.Notifier},
		{"broker", c.Broker},
		{"client-id", c.ClientID},
		{"slack-token", token},
		{"slack-channel", c.SlackChannel},
		{"slack-username", c.SlackUsername},
		{"slack-icon", c.SlackIcon},
		{"slack-api-url", c.SlackAPIURL},
		{"quotes-file", c.QuotesFile},
		{"message-fresh", c.MessageFresh},
		{"message-stale", c.MessageStale},
		{"message-quote-prefix", c.MessageQuotePrefix},
		{"http", c.HTTP},
		{"console", fmt.Sprint(c.Console)},
	}
}
