package web

import "net/http"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Hangtimer</title>
    <style>
        body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .clock { font-size: 72px; font-variant-numeric: tabular-nums; text-align: center; }
        .label { font-size: 24px; text-align: center; color: #555; }
        .work { color: #c0392b; } .rest, .setrest { color: #27ae60; } .prepare { color: #2980b9; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; }
        button:hover { background: #0056b3; }
        select { padding: 8px; margin: 5px; }
    </style>
</head>
<body>
    <h1 id="title">Hangtimer</h1>
    <div class="label" id="label">-</div>
    <div class="clock" id="clock">0:00</div>
    <div class="info" id="status">Connecting...</div>
    <div>
        <button onclick="send('prev')">Prev</button>
        <button onclick="send('toggle')">Start / Pause</button>
        <button onclick="send('next')">Next</button>
        <button onclick="send('reset')">Reset</button>
    </div>
    <div style="margin-top: 20px;">
        <select id="presets"></select>
        <button onclick="selectPreset()">Load preset</button>
    </div>
    <script>
        let ws;
        function fmt(s) {
            s = Math.max(0, Math.ceil(s));
            const m = Math.floor(s / 60);
            return m + ':' + String(s % 60).padStart(2, '0');
        }
        function render(snap) {
            const seg = snap.segment || {label: '-', kind: '', seconds: 0};
            const label = document.getElementById('label');
            label.textContent = seg.label;
            label.className = 'label ' + seg.kind;
            document.getElementById('clock').textContent = fmt(seg.seconds - snap.elapsedInSegment);
            const left = snap.totalSeconds - snap.accumulatedBeforeSegment - snap.elapsedInSegment;
            document.getElementById('status').textContent =
                snap.state + ' | segment ' + (snap.segmentIndex + 1) + '/' + snap.segmentCount + ' | ' + fmt(left) + ' left';
        }
        async function refresh() {
            const res = await fetch('/api/v1/state');
            const data = await res.json();
            document.getElementById('title').textContent = data.title;
            render(data.snapshot);
        }
        async function send(action) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({action}));
                return;
            }
            await fetch('/api/v1/control/' + action, {method: 'POST'});
            refresh();
        }
        async function loadPresets() {
            const res = await fetch('/api/v1/presets');
            const presets = await res.json();
            const sel = document.getElementById('presets');
            sel.innerHTML = '';
            for (const p of presets) {
                const opt = document.createElement('option');
                opt.value = p.id;
                opt.textContent = p.name;
                sel.appendChild(opt);
            }
        }
        async function selectPreset() {
            const id = document.getElementById('presets').value;
            await fetch('/api/v1/presets/' + encodeURIComponent(id) + '/select', {method: 'POST'});
            refresh();
        }
        function connect() {
            ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/v1/ws');
            ws.onmessage = (msg) => {
                const u = JSON.parse(msg.data);
                if (u.type === 'snapshot') render(u.snapshot);
            };
            ws.onclose = () => setTimeout(connect, 1000);
        }
        refresh();
        loadPresets();
        connect();
    </script>
</body>
</html>
`
