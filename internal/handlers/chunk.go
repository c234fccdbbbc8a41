package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ragbuilder/internal/chunker"
	"ragbuilder/internal/contextutil"
)

// ChunkHandler handles HTTP requests for ad-hoc text chunking.
type ChunkHandler struct {
	engine *chunker.Engine
}

// NewChunkHandler creates a new ChunkHandler.
func NewChunkHandler(engine *chunker.Engine) *ChunkHandler {
	return &ChunkHandler{engine: engine}
}

// ChunkRequest represents the HTTP request payload for chunking.
type ChunkRequest struct {
	Text      string `json:"text"`
	Slug      string `json:"slug"`
	Section   string `json:"section"`
	ChunkSize int    `json:"chunk_size"`
	Overlap   int    `json:"overlap"`
}

// ChunkResponse represents the HTTP response payload for chunking.
type ChunkResponse struct {
	Chunks []chunker.Chunk `json:"chunks"`
	Count  int             `json:"count"`
}

// ServeHTTP chunks the submitted text and returns the chunk records.
// Unclampable parameters (negative sizes) yield 422; malformed JSON
// yields 400.
func (h *ChunkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Slug == "" {
		req.Slug = "adhoc"
	}
	if req.Section == "" {
		req.Section = "Main"
	}

	meta := chunker.Metadata{
		Title:   req.Slug,
		Slug:    req.Slug,
		Section: req.Section,
	}
	chunks, err := h.engine.Chunk(req.Text, meta, chunker.Options{
		ChunkSize: req.ChunkSize,
		Overlap:   req.Overlap,
	})
	if err != nil {
		if errors.Is(err, chunker.ErrInvalidOptions) {
			logger.WarnContext(ctx, "invalid chunk options", "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.ErrorContext(ctx, "chunking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to chunk text")
		return
	}

	resp := ChunkResponse{
		Chunks: chunks,
		Count:  len(chunks),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
