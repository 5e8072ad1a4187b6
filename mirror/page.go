package mirror

const viewerPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>donut</title>
<style>
  body { background: #000; color: #ddd; margin: 0; display: flex; justify-content: center; }
  pre { font: 14px/1 monospace; margin: 2em; }
  #status { position: fixed; bottom: 4px; right: 8px; font: 11px monospace; color: #666; }
</style>
</head>
<body>
<pre id="frame"></pre>
<div id="status">connecting</div>
<script>
  const pre = document.getElementById("frame");
  const status = document.getElementById("status");
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    pre.textContent = msg.rows.join("\n");
    status.textContent = "frame " + msg.frame + " " + msg.width + "x" + msg.height;
  };
  ws.onclose = () => { status.textContent = "disconnected"; };
</script>
</body>
</html>
`
