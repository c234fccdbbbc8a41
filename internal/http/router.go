// Package http wires the API routes and middleware.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragbuilder/internal/chunker"
	"ragbuilder/internal/handlers"
	"ragbuilder/internal/pipeline"
	"ragbuilder/internal/storage"
	"ragbuilder/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         *chunker.Engine
	Pipeline       *pipeline.Pipeline
	Manifest       storage.ManifestStore
	VectorStore    vectorstore.VectorStore // may be nil
	CollectionName string
}

// NewRouter creates the API router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	chunkHandler := handlers.NewChunkHandler(deps.Engine)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline)
	statsHandler := handlers.NewStatsHandler(deps.Manifest)
	healthHandler := handlers.NewHealthHandler(deps.Manifest, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chunk", chunkHandler)
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
