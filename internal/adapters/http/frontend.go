package http

import (
	"net/http"
)

// frontendHTML is the embedded HTML for the coordinate transformation
// frontend. Mobile-first, responsive design with pure CSS.
const frontendHTML = `<!DOCTYPE html>
<html lang="de">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Meridian - Koordinatentransformation</title>
    <style>
        :root {
            --primary: #2563eb;
            --primary-dark: #1d4ed8;
            --error: #dc2626;
            --bg: #f8fafc;
            --card: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
            --radius: 8px;
        }

        * { box-sizing: border-box; margin: 0; padding: 0; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
        }

        .container { max-width: 720px; margin: 0 auto; padding: 1rem; }

        header { text-align: center; padding: 1.5rem 0; border-bottom: 1px solid var(--border); margin-bottom: 1.5rem; }
        header h1 { font-size: 1.5rem; font-weight: 600; }
        header p { color: var(--text-muted); font-size: 0.9rem; }

        .card { background: var(--card); border: 1px solid var(--border); border-radius: var(--radius); padding: 1rem; margin-bottom: 1rem; }

        .row { display: grid; grid-template-columns: 1fr 1fr; gap: 0.75rem; margin-bottom: 0.75rem; }
        @media (max-width: 480px) { .row { grid-template-columns: 1fr; } }

        label { display: block; font-size: 0.8rem; color: var(--text-muted); margin-bottom: 0.25rem; }
        input { width: 100%; padding: 0.6rem; border: 1px solid var(--border); border-radius: var(--radius); font-size: 1rem; }

        button { width: 100%; padding: 0.75rem; border: none; border-radius: var(--radius); background: var(--primary); color: #fff; font-size: 1rem; cursor: pointer; }
        button:hover { background: var(--primary-dark); }

        pre { background: var(--bg); padding: 0.75rem; border-radius: var(--radius); overflow-x: auto; font-size: 0.85rem; }
        .error { color: var(--error); }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Meridian</h1>
            <p>Koordinaten zwischen Referenzsystemen umrechnen</p>
        </header>

        <form class="card" id="form">
            <div class="row">
                <div><label for="from">Quellsystem</label><input id="from" value="EPSG:31466"></div>
                <div><label for="to">Zielsystem</label><input id="to" value="EPSG:4326"></div>
            </div>
            <div class="row">
                <div><label for="x">X / Rechtswert</label><input id="x" value="5650000" inputmode="decimal"></div>
                <div><label for="y">Y / Hochwert</label><input id="y" value="2583000" inputmode="decimal"></div>
            </div>
            <button type="submit">Umrechnen</button>
        </form>

        <div class="card" id="result" hidden><pre id="output"></pre></div>
    </div>

    <script>
        document.getElementById('form').addEventListener('submit', async (e) => {
            e.preventDefault();
            const params = new URLSearchParams();
            for (const id of ['from', 'to', 'x', 'y']) {
                params.set(id, document.getElementById(id).value.trim().replace(',', '.'));
            }
            const out = document.getElementById('output');
            document.getElementById('result').hidden = false;
            try {
                const res = await fetch('/api/v1/transform?' + params.toString());
                const body = await res.json();
                out.className = res.ok ? '' : 'error';
                out.textContent = res.ok ? body.coordinate.join(', ') : body.message;
            } catch (err) {
                out.className = 'error';
                out.textContent = 'Anfrage fehlgeschlagen: ' + err;
            }
        });
    </script>
</body>
</html>`

// handleFrontend serves the coordinate transformation frontend.
func (s *Server) handleFrontend(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(frontendHTML))
}
