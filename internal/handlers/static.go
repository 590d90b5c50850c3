package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dharmalab/dilaget/internal/storage"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>dilaget</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 3rem auto; }
input { width: 100%; padding: 0.5rem; }
button { margin-top: 0.5rem; padding: 0.5rem 1rem; }
#links a { display: block; margin-top: 0.5rem; }
.err { color: #b00; }
</style>
</head>
<body>
<h1>dilaget</h1>
<p>Paste a UV3 viewer URL to download the page at maximum resolution.</p>
<input id="url" placeholder="https://dia.dila.edu.tw/uv3/index.html?id=Tv01p0300#?cv=309">
<button onclick="start()">Download</button>
<p id="status"></p>
<div id="links"></div>
<script>
async function start() {
  const status = document.getElementById('status');
  status.className = '';
  status.textContent = 'Downloading...';
  const resp = await fetch('/api/download', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({url: document.getElementById('url').value})
  });
  if (!resp.ok) {
    status.className = 'err';
    status.textContent = await resp.text();
    return;
  }
  const job = await resp.json();
  status.textContent = job.width + 'x' + job.height + ' (' + job.source + ')';
  const a = document.createElement('a');
  a.href = job.download_url;
  a.textContent = job.download_url;
  document.getElementById('links').prepend(a);
}
</script>
</body>
</html>
`

// HandleIndex serves the download form.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexHTML)); err != nil {
		slog.Error("Unable to write index page", "err", err)
	}
}

// HandleFile serves one generated download. Only the names serve mode
// itself generates are reachable; anything else is rejected.
func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]

	// Prevent directory traversal attacks
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(name, storage.GeneratedPrefix) || !strings.HasSuffix(name, ".jpg") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.downloadsDir, name))
}
