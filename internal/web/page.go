package web

import (
	"fmt"
	"html/template"
	"strings"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"color": classColor,
	"price": func(p float64) string { return fmt.Sprintf("%.2f", p) },
	"lower": strings.ToLower,
}).Parse(pageHTML))

const pageHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>TickerWatch</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 760px; margin: 2rem auto; color: #1f2328; }
.msg { background: #fff8c5; border: 1px solid #d4a72c; padding: .5rem .75rem; margin-bottom: 1rem; }
.row { display: flex; align-items: center; gap: 1rem; border-bottom: 1px solid #d0d7de; padding: .75rem 0; }
.sym { width: 12rem; }
.sym small { display: block; color: #656d76; }
.badge { color: #fff; padding: .1rem .5rem; border-radius: 1rem; font-size: .8rem; }
.state { color: #656d76; font-size: .85rem; }
.err { color: #cf222e; font-size: .85rem; }
details { flex: 1; }
</style>
</head>
<body>
<h1>Watchlist</h1>
{{if .Message}}<div class="msg" id="msg">{{.Message}} <button data-clear>dismiss</button></div>{{end}}
<form id="add">
  <input name="symbol" placeholder="AAPL" maxlength="5" autocomplete="off" required>
  <button type="submit">Add</button>
  <button type="button" data-refresh>Refresh</button>
</form>
{{range .Entries}}
<div class="row" id="row-{{lower .Symbol}}">
  <div class="sym"><strong>{{.Symbol}}</strong><small>{{.DisplayName}}</small></div>
  {{if .Classification}}
  <svg width="160" height="40" viewBox="0 0 160 40"><path d="{{.Sparkline}}" fill="none" stroke="{{color .Classification}}" stroke-width="1.5"/></svg>
  <div>{{price .Price}}</div>
  <span class="badge" style="background: {{color .Classification}}">{{.Classification}}</span>
  <details>
    <summary>Why?</summary>
    <ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>
    <p>{{.StrategyHint}}</p>
    <p class="state">Volatility percentile: {{.Volatility}}</p>
  </details>
  {{else}}
  <div class="state">{{if eq .State "FAILED"}}Unavailable{{else}}Loading...{{end}}</div>
  <div style="flex: 1"></div>
  {{end}}
  {{if .LastError}}<div class="err">{{.LastError}}</div>{{end}}
  <button data-remove="{{.Symbol}}">Remove</button>
</div>
{{else}}
<p>Your watchlist is empty. Add a ticker symbol to get started.</p>
{{end}}
<script>
const reload = () => location.reload();
document.getElementById("add").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const symbol = new FormData(ev.target).get("symbol");
  await fetch("/api/watchlist", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({symbol})});
  reload();
});
document.querySelectorAll("[data-remove]").forEach(b => b.addEventListener("click", async () => {
  await fetch("/api/watchlist/" + encodeURIComponent(b.dataset.remove), {method: "DELETE"});
  reload();
}));
document.querySelectorAll("[data-clear]").forEach(b => b.addEventListener("click", async () => {
  await fetch("/api/message", {method: "DELETE"});
  reload();
}));
document.querySelector("[data-refresh]").addEventListener("click", async () => {
  await fetch("/api/refresh", {method: "POST"});
  reload();
});
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
let first = true;
ws.onmessage = () => { if (first) { first = false; return; } reload(); };
</script>
</body>
</html>
`
