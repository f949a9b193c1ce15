// Package slack delivers intents as messages to a Slack channel.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
)

// Config holds the bot settings.
type Config struct {
	Token    string
	Channel  string
	Username string
	Icon     string
	// APIURL overrides the Slack Web API base URL (must end in "/").
	APIURL  string
	Timeout time.Duration
}

// Notifier posts messages with chat.postMessage.
type Notifier struct {
	client   *slack.Client
	cfg      Config
	messages notify.Messages
}

// New creates a Slack notifier.
func New(cfg Config, messages notify.Messages) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client:   slack.New(cfg.Token, opts...),
		cfg:      cfg,
		messages: messages,
	}
}

// Notify posts the message for intent.
func (n *Notifier) Notify(ctx context.Context, intent logic.Intent) error {
	text, err := n.messages.Text(intent)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if n.cfg.Username != "" {
		opts = append(opts, slack.MsgOptionUsername(n.cfg.Username))
	}
	if n.cfg.Icon != "" {
		opts = append(opts, slack.MsgOptionIconEmoji(n.cfg.Icon))
	}

	if _, _, err := n.client.PostMessageContext(ctx, n.cfg.Channel, opts...); err != nil {
		return fmt.Errorf("slack: post message: %w: %w", notify.ErrNotDelivered, err)
	}
	return nil
}
