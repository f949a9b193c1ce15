package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Button        string       `json:"button"`
	Classifier    string       `json:"classifier"`
	PendingPress  int          `json:"pending_presses"`
	Coffee        CoffeeJSON   `json:"coffee"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// CoffeeJSON reports the freshness countdown.
type CoffeeJSON struct {
	Fresh            bool   `json:"fresh"`
	LastFresh        string `json:"last_fresh,omitempty"`
	StaleAt          string `json:"stale_at,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the counters.
type CountsJSON struct {
	Presses  int `json:"presses"`
	Ignored  int `json:"ignored"`
	Fresh    int `json:"fresh"`
	Stale    int `json:"stale"`
	Quotes   int `json:"quotes"`
	Failures int `json:"failures"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs         int64  `json:"poll_ms"`
	DebounceMs     int64  `json:"debounce_ms"`
	TripleWindowMs int64  `json:"triple_window_ms"`
	StaleAfterS    int64  `json:"stale_after_s"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Notifier       string `json:"notifier"`
	Broker         string `json:"broker"`
	HTTPPort       string `json:"http_port"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	stats := snap.Stats
	c := stats.Counts

	coffee := CoffeeJSON{
		Fresh:     stats.Timer.Active,
		LastFresh: formatTime(stats.LastFresh),
	}
	if stats.Timer.Active {
		coffee.StaleAt = formatTime(stats.Timer.Deadline)
		coffee.RemainingSeconds = int64(stats.Timer.Remaining(snap.Now).Truncate(time.Second).Seconds())
	}

	return StatusInner{
		Button:        orUnknown(string(snap.Button)),
		Classifier:    orUnknown(string(stats.Classifier)),
		PendingPress:  stats.Pending,
		Coffee:        coffee,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:  c.Presses,
			Ignored:  c.Ignored,
			Fresh:    c.Fresh,
			Stale:    c.Stale,
			Quotes:   c.Quotes,
			Failures: c.Failures,
		},
		Config: ConfigJSON{
			PollMs:         snap.Config.PollMs,
			DebounceMs:     snap.Config.DebounceMs,
			TripleWindowMs: snap.Config.TripleWindowMs,
			StaleAfterS:    snap.Config.StaleAfterS,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Notifier:       snap.Config.Notifier,
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
