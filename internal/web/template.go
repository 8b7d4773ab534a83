package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/board-sim/internal/frame"
	"github.com/sweeney/board-sim/internal/status"
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
	"bit": func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04:05")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Board Simulator</title>
<style>
body { font-family: monospace; max-width: 760px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.console { background: #111; color: #ddd; padding: 0.5em; height: 12em; overflow-y: scroll; white-space: pre; }
.statusbar { border-top: 1px solid #888; padding: 4px 0; }
</style>
</head>
<body>
<h1>Board Simulator</h1>

<h2>Board</h2>
<table>
<tr><th>Motion (PIR)</th><td class="{{if .Board.Motion}}on{{else}}off{{end}}">{{bit .Board.Motion}}</td></tr>
<tr><th>Light blocked (LDR)</th><td class="{{if .Board.LightBlocked}}on{{else}}off{{end}}">{{bit .Board.LightBlocked}}</td></tr>
<tr><th>Temperature</th><td>{{printf "%.2f" .Board.Temperature}} °C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.2f" .Board.Humidity}} %</td></tr>
<tr><th>Ultra-bright LED</th><td class="{{if .Board.UltraLED}}on{{else}}off{{end}}">{{bit .Board.UltraLED}}{{if .Board.ManualStop}} (stopped manually){{end}}</td></tr>
<tr><th>LEDs</th><td>{{.LEDs}}</td></tr>
<tr><th>Buzzer</th><td class="{{if .Board.Buzzer}}on{{else}}off{{end}}">{{bit .Board.Buzzer}}</td></tr>
<tr><th>ID</th><td>{{.Board.ID}}</td></tr>
<tr><th>Frame</th><td>{{.Frame}}</td></tr>
</table>

<h2>Sender</h2>
<table>
<tr><th>Sending</th><td class="{{if .Board.SendingActive}}on{{else}}off{{end}}">{{if .Board.SendingActive}}active{{else}}paused{{end}}</td></tr>
<tr><th>Status</th><td>{{.SenderStatus}}{{if .SenderError}} ({{.SenderError}}){{end}}</td></tr>
<tr><th>Frames sent</th><td>{{.Sent}}</td></tr>
<tr><th>Events dropped</th><td>{{.Dropped}}</td></tr>
<tr><th>Port</th><td>{{.Config.Port}} @ {{.Config.Baud}}</td></tr>
<tr><th>Period</th><td>{{.Config.PeriodMs}}ms</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}} {{.Config.Topic}})</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<h2>Data</h2>
<div class="console">{{range .Data}}[{{clock .Time}}] {{.Text}}
{{end}}</div>

<h2>Events</h2>
<div class="console">{{range .Events}}[{{clock .Time}}] {{.Text}}
{{end}}</div>

<p class="statusbar">{{.StatusBar}}</p>
<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime time.Duration
		LEDs   string
		Frame  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		LEDs:     frame.LEDBits(snap.Board.LEDs),
		Frame:    frame.Line(snap.Board),
	}
	indexTmpl.Execute(w, data)
}
