package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/coffee-button/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"duration": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"utc": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Coffee Button</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.fresh { color: green; font-weight: bold; }
.stale { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Coffee Button</h1>

<h2>Coffee</h2>
<table>
<tr><th>Status</th><td id="coffee" class="{{if .Stats.Timer.Active}}fresh{{else}}stale{{end}}">{{if .Stats.Timer.Active}}fresh{{else}}cold or gone{{end}}</td></tr>
<tr><th>Last fresh pot</th><td>{{utc .Stats.LastFresh}}</td></tr>
{{if .Stats.Timer.Active}}<tr><th>Stale in</th><td>{{duration .Remaining}}</td></tr>{{end}}
</table>

<h2>Button</h2>
<table>
<tr><th>Line</th><td id="button">{{orUnknown (printf "%s" .Button)}}</td></tr>
<tr><th>Classifier</th><td>{{orUnknown (printf "%s" .Stats.Classifier)}}</td></tr>
<tr><th>Presses in window</th><td>{{.Stats.Pending}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Notifier</th><td>{{.Config.Notifier}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Stats.Counts.Presses}}</td></tr>
<tr><th>Ignored</th><td>{{.Stats.Counts.Ignored}}</td></tr>
<tr><th>Fresh</th><td>{{.Stats.Counts.Fresh}}</td></tr>
<tr><th>Stale</th><td>{{.Stats.Counts.Stale}}</td></tr>
<tr><th>Quotes</th><td>{{.Stats.Counts.Quotes}}</td></tr>
<tr><th>Failures</th><td>{{.Stats.Counts.Failures}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{duration .Uptime}}</td></tr>
<tr><th>Started</th><td>{{utc .StartTime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Triple window</th><td>{{.Config.TripleWindowMs}}ms</td></tr>
<tr><th>Stale after</th><td>{{.Config.StaleAfterS}}s</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot methods need evaluating before the template sees them.
	data := struct {
		status.Snapshot
		Uptime    time.Duration
		Remaining time.Duration
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		Remaining: snap.Stats.Timer.Remaining(snap.Now),
	}
	return indexTmpl.Execute(w, data)
}
