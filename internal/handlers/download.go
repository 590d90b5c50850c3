package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/dharmalab/dilaget/internal/dila"
	"github.com/dharmalab/dilaget/internal/models"
	"github.com/dharmalab/dilaget/internal/storage"
)

type downloadRequest struct {
	URL string `json:"url"`
}

// HandleDownload runs the download pipeline for a viewer URL (POST) or
// lists completed jobs (GET).
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.startDownload(w, r)
	case http.MethodGet:
		h.writeJSON(w, h.jobStore.GetAll())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) startDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		h.writeError(w, "Missing url", http.StatusBadRequest)
		return
	}

	id, err := dila.ParseViewerURL(rawURL)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Unique generated name so concurrent users never collide.
	jobID := xid.New().String()
	filename := storage.GeneratedPrefix + jobID + ".jpg"
	outPath := filepath.Join(h.downloadsDir, filename)

	slog.Info("serve download requested", "url", rawURL, "page", id.String(), "filename", filename)
	result, err := h.pageService.Download(r.Context(), id, outPath)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	job := &models.DownloadJob{
		ID:          jobID,
		SourceURL:   rawURL,
		Filename:    filename,
		DownloadURL: "/downloads/" + filename,
		Width:       result.Width,
		Height:      result.Height,
		Source:      string(result.Source),
		CreatedAt:   time.Now(),
	}
	h.jobStore.Set(jobID, job)
	h.writeJSON(w, job)
}
