// Package mqtt delivers coffee notifications and system events over MQTT.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/notify"
)

// Topic is the MQTT topic for coffee notifications.
const Topic = "coffee/button/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "coffee/button/system"

// Publisher delivers intents and system events.
type Publisher interface {
	notify.Notifier

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a notification.
type Payload struct {
	Coffee CoffeePayload `json:"coffee"`
}

// CoffeePayload contains the notification details.
type CoffeePayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Message   string `json:"message"`
	Quote     string `json:"quote,omitempty"`
}

// FormatPayload creates the JSON payload for an intent.
func FormatPayload(id string, intent logic.Intent, message string) ([]byte, error) {
	payload := Payload{
		Coffee: CoffeePayload{
			ID:        id,
			Timestamp: intent.At.UTC().Format(time.RFC3339),
			Event:     string(intent.Kind),
			Message:   message,
			Quote:     intent.Quote,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is registered as the LWT and published retained by the
// broker when the connection drops uncleanly.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{
		System: SystemPayloadInner{Event: "OFFLINE", Reason: "LWT"},
	})
	return data
}
