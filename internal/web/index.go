package web

// indexHTML is the whole dashboard; keeping it in the binary means there
// is nothing to deploy next to the executable.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>RelayScope</title>
<style>
  body { background: #0d1117; color: #c9d1d9; font-family: "SF Mono", Consolas, monospace; margin: 0; padding: 1.5rem; }
  h1 { color: #58a6ff; font-size: 1.2rem; letter-spacing: .2em; }
  .bar { display: flex; gap: 1.5rem; align-items: center; margin-bottom: 1rem; }
  .badge { padding: .15rem .6rem; border-radius: 4px; font-size: .8rem; }
  .up { background: #1f6f43; color: #fff; }
  .down { background: #8e2c35; color: #fff; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 1.5rem; }
  caption { text-align: left; color: #8b949e; padding: .4rem 0; text-transform: uppercase; font-size: .75rem; letter-spacing: .15em; }
  th, td { border-bottom: 1px solid #21262d; padding: .35rem .6rem; text-align: left; font-size: .85rem; }
  th { color: #8b949e; font-weight: normal; }
  td.num { text-align: right; }
  .dim { color: #484f58; }
</style>
</head>
<body>
<div class="bar">
  <h1>RELAYSCOPE</h1>
  <span>online: <b id="online">0</b></span>
  <span id="relay" class="badge down">relay: unknown</span>
</div>

<table>
  <caption>Live user traffic</caption>
  <thead><tr><th>Address</th><th>Country</th><th>Speed</th><th>Total</th><th>Last seen</th></tr></thead>
  <tbody id="sessions"><tr><td colspan="5" class="dim">waiting for traffic...</td></tr></tbody>
</table>

<table>
  <caption>Geographical distribution</caption>
  <thead><tr><th>Country</th><th>Active users</th><th>Total</th></tr></thead>
  <tbody id="countries"></tbody>
</table>

<script>
function fmtBytes(v) {
  const units = ["B", "KB", "MB", "GB"];
  for (const u of units) { if (v < 1024) return v.toFixed(1) + " " + u; v /= 1024; }
  return v.toFixed(1) + " TB";
}

function render(snap) {
  document.getElementById("online").textContent = snap.online;
  const sessions = document.getElementById("sessions");
  if (!snap.sessions || snap.sessions.length === 0) {
    sessions.innerHTML = '<tr><td colspan="5" class="dim">waiting for traffic...</td></tr>';
  } else {
    sessions.innerHTML = snap.sessions.map(s =>
      "<tr><td>" + s.address + "</td><td>" + s.country + "</td><td>" + s.speed +
      "</td><td>" + s.total + "</td><td class=\"dim\">" + s.last_seen_seconds_ago + "s ago</td></tr>"
    ).join("");
  }
  const countries = document.getElementById("countries");
  const rows = Object.entries(snap.countries || {}).sort((a, b) => b[1].total_bytes - a[1].total_bytes);
  countries.innerHTML = rows.map(([name, c]) =>
    "<tr><td>" + name + "</td><td>" + c.active_count + "</td><td>" + fmtBytes(c.total_bytes) + "</td></tr>"
  ).join("");
}

function connect() {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = ev => render(JSON.parse(ev.data));
  ws.onclose = () => setTimeout(connect, 2000);
}
connect();

async function pollStatus() {
  try {
    const st = await (await fetch("/api/v1/status")).json();
    const badge = document.getElementById("relay");
    badge.textContent = "relay: " + (st.relay_running ? "running" : "down");
    badge.className = "badge " + (st.relay_running ? "up" : "down");
  } catch (e) { /* server restarting */ }
}
pollStatus();
setInterval(pollStatus, 10000);
</script>
</body>
</html>
`
