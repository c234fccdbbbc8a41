// Package cli implements the ragbuilder command line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ragbuilder/internal/chunker"
	"ragbuilder/internal/config"
	"ragbuilder/internal/llm"
	"ragbuilder/internal/loader"
	"ragbuilder/internal/pipeline"
	"ragbuilder/internal/storage"
	"ragbuilder/internal/tokenizer"
	"ragbuilder/internal/vectorstore"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ragbuilder",
	Short: "Chunk documents into token-bounded, overlapping pieces for RAG ingestion",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogger(cfg)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// resolveChunkParams returns the chunk size and overlap to use, falling
// back to the configured defaults for flags the user did not set. Overlap
// needs the Changed check because zero is a valid explicit value.
func resolveChunkParams(cmd *cobra.Command, size, overlap int) (int, int) {
	if !cmd.Flags().Changed("chunk-size") {
		size = cfg.ChunkSize
	}
	if !cmd.Flags().Changed("overlap") {
		overlap = cfg.Overlap
	}
	return size, overlap
}

// newEngine builds the chunking engine, logging when only the heuristic
// token counter is available.
func newEngine() *chunker.Engine {
	tok, fallback := tokenizer.New()
	if fallback {
		slog.Warn("precise tokenizer unavailable, using heuristic token counts with a reduced budget")
	}
	return chunker.New(tok)
}

// newLoader builds a document loader carrying the configured metadata
// defaults.
func newLoader() *loader.Loader {
	return loader.New(chunker.Metadata{
		Jurisdiction: cfg.Jurisdiction,
		DocType:      cfg.DocType,
		Version:      cfg.DocVersion,
		Owner:        cfg.Owner,
	})
}

// appDeps is the wired application: engine, pipeline, manifest, and the
// optional vector store. Close releases the manifest database.
type appDeps struct {
	Engine   *chunker.Engine
	Pipeline *pipeline.Pipeline
	Manifest storage.ManifestStore
	Vectors  vectorstore.VectorStore // nil when no Qdrant URL is configured
	db       *sql.DB
}

func (d *appDeps) Close() error {
	return d.db.Close()
}

// buildDeps wires the application from configuration. The manifest database
// is always opened and migrated; the embedder is attached only when
// embeddings is true, and the vector store only when a Qdrant URL is
// configured. The caller closes the returned deps.
func buildDeps(embeddings bool) (*appDeps, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate manifest database: %w", err)
	}
	manifest := storage.NewManifestRepo(db)

	var vectors vectorstore.VectorStore
	if cfg.QdrantURL != "" {
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to vector store: %w", err)
		}
		vectors = store
	}

	var embedder llm.Embedder
	if embeddings {
		embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
		if vectors != nil {
			if err := vectors.EnsureCollection(context.Background(), cfg.QdrantCollection, cfg.VectorSize); err != nil {
				db.Close()
				return nil, fmt.Errorf("ensure collection: %w", err)
			}
		}
	}

	engine := newEngine()
	p := pipeline.New(newLoader(), engine, manifest, embedder, vectors, cfg.QdrantCollection)
	return &appDeps{
		Engine:   engine,
		Pipeline: p,
		Manifest: manifest,
		Vectors:  vectors,
		db:       db,
	}, nil
}
