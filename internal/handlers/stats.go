package handlers

import (
	"net/http"

	"ragbuilder/internal/contextutil"
	"ragbuilder/internal/storage"
)

// StatsHandler handles HTTP requests for manifest statistics.
type StatsHandler struct {
	manifest storage.ManifestStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(manifest storage.ManifestStore) *StatsHandler {
	return &StatsHandler{manifest: manifest}
}

// ServeHTTP returns document and chunk totals from the manifest.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	totals, err := h.manifest.Totals(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read manifest totals", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read stats")
		return
	}

	if err := writeJSON(w, http.StatusOK, totals); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
