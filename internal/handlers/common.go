package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dharmalab/dilaget/internal/dila"
	"github.com/dharmalab/dilaget/internal/iiif"
	"github.com/dharmalab/dilaget/internal/pages"
	"github.com/dharmalab/dilaget/internal/storage"
)

type Handler struct {
	jobStore     *storage.JobStore
	pageService  *pages.Service
	downloadsDir string
}

func New(pageService *pages.Service, downloadsDir string) *Handler {
	return &Handler{
		jobStore:     storage.New(),
		pageService:  pageService,
		downloadsDir: downloadsDir,
	}
}

// JobStore exposes the store so the janitor can drop expired jobs.
func (h *Handler) JobStore() *storage.JobStore {
	return h.jobStore
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// statusFor maps pipeline errors to HTTP codes: bad input is the caller's
// fault, everything upstream is a bad gateway.
func statusFor(err error) int {
	var parseErr *dila.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest
	}
	var manifestErr *iiif.ManifestError
	if errors.As(err, &manifestErr) {
		return http.StatusBadGateway
	}
	var descriptorErr *iiif.DescriptorError
	if errors.As(err, &descriptorErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
