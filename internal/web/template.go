package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/dial-player/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Dial Player</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.muted { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Dial Player</h1>

<h2>Playback</h2>
<table>
<tr><th>Ready</th><td>{{if .Player.Ready}}yes{{else}}no library{{end}}</td></tr>
<tr><th>Folder</th><td id="folder">{{.Player.Folder}} / {{.Player.FolderCount}}</td></tr>
<tr><th>Track</th><td id="track">{{.Player.Track}}</td></tr>
<tr><th>Volume</th><td id="volume">{{.Player.Volume}}</td></tr>
<tr><th>Mute</th><td class="{{if .Player.Muted}}muted{{end}}">{{if .Player.Muted}}muted{{else}}off{{end}}</td></tr>
</table>

<h2>Encoders</h2>
<table>
{{range .Player.Knobs}}<tr><th>{{.Name}}</th><td>position {{.Position}}{{if .Pressed}} <span class="pressed">pressed</span>{{end}}</td></tr>
{{end}}<tr><th>Read errors</th><td>{{.ReadErrors}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Tracks started</th><td>{{.Player.Counts.Tracks}}</td></tr>
<tr><th>Folder changes</th><td>{{.Player.Counts.FolderChanges}}</td></tr>
<tr><th>Volume up</th><td>{{.Player.Counts.VolumeUp}}</td></tr>
<tr><th>Volume down</th><td>{{.Player.Counts.VolumeDown}}</td></tr>
<tr><th>Mutes</th><td>{{.Player.Counts.Mutes}}</td></tr>
<tr><th>Player status</th><td>{{.Player.Counts.PlayerStatus}}</td></tr>
<tr><th>Command errors</th><td>{{.Player.Counts.CommandErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Resolution</th><td>{{.Config.Resolution}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
