package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ragbuilder/internal/chunker"
	"ragbuilder/internal/contextutil"
	"ragbuilder/internal/exporter"
	"ragbuilder/internal/pipeline"
)

// IngestHandler handles HTTP requests for folder ingestion.
type IngestHandler struct {
	pipeline *pipeline.Pipeline
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(p *pipeline.Pipeline) *IngestHandler {
	return &IngestHandler{pipeline: p}
}

// IngestRequest represents the HTTP request payload for ingestion.
type IngestRequest struct {
	Folder     string `json:"folder"`
	Section    string `json:"section"`
	SlugPrefix string `json:"slug_prefix"`
	ChunkSize  int    `json:"chunk_size"`
	Overlap    int    `json:"overlap"`
	Embeddings bool   `json:"embeddings"`
	Output     string `json:"output"`
}

// IngestResponse represents the HTTP response payload for ingestion.
type IngestResponse struct {
	Stats  pipeline.RunStats `json:"stats"`
	Output string            `json:"output,omitempty"`
}

// ServeHTTP runs a folder ingest and reports run statistics. When an
// output path is given, the records are also written to disk as JSONL
// or CSV.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Folder == "" {
		writeError(w, http.StatusBadRequest, "folder is required")
		return
	}

	result, err := h.pipeline.IngestFolder(ctx, req.Folder, pipeline.Options{
		ChunkSize:  req.ChunkSize,
		Overlap:    req.Overlap,
		Section:    req.Section,
		SlugPrefix: req.SlugPrefix,
		Embeddings: req.Embeddings,
	})
	if err != nil {
		if errors.Is(err, chunker.ErrInvalidOptions) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.ErrorContext(ctx, "ingest failed", "folder", req.Folder, "error", err)
		writeError(w, http.StatusInternalServerError, "Ingest failed")
		return
	}

	resp := IngestResponse{Stats: result.Stats}
	if req.Output != "" {
		if err := exporter.Save(req.Output, result.Records); err != nil {
			logger.ErrorContext(ctx, "failed to write output", "path", req.Output, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to write output file")
			return
		}
		resp.Output = req.Output
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
