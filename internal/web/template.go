package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-monitor/internal/status"
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
	"buttonState": func(last string) string {
		switch last {
		case "PRESS":
			return "PRESSED"
		case "RELEASE":
			return "RELEASED"
		}
		return "IDLE"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Button Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.idle { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Button Monitor<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Button</h2>
<table>
<tr><th>State</th><td id="btn-state" class="{{if .Pressed}}pressed{{else if .LastEvent}}released{{else}}idle{{end}}">{{buttonState (printf "%s" .LastEvent)}}</td></tr>
<tr><th>Last event</th><td id="btn-last">{{if .LastEventTime.IsZero}}none yet{{else}}{{.LastEventTime.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Edge Counts</h2>
<table>
<tr><th>Presses</th><td id="count-press">{{.Counts.Presses}}</td></tr>
<tr><th>Releases</th><td id="count-release">{{.Counts.Releases}}</td></tr>
<tr><th>Suppressed (bounce)</th><td>{{.Counts.Suppressed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip / Pin</th><td>{{.Config.Chip}} / {{.Config.Pin}}</td></tr>
<tr><th>Mode</th><td>{{.Config.Mode}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var stateEl = document.getElementById("btn-state");
  var lastEl = document.getElementById("btn-last");
  var pressEl = document.getElementById("count-press");
  var releaseEl = document.getElementById("count-release");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/events");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "disconnected");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(e) {
      try {
        var msg = JSON.parse(e.data);
        if (msg.event === "PRESS") {
          stateEl.textContent = "PRESSED";
          stateEl.className = "pressed";
          pressEl.textContent = parseInt(pressEl.textContent, 10) + 1;
        } else if (msg.event === "RELEASE") {
          stateEl.textContent = "RELEASED";
          stateEl.className = "released";
          releaseEl.textContent = parseInt(releaseEl.textContent, 10) + 1;
        }
        lastEl.textContent = msg.timestamp;
      } catch (err) {}
    };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
