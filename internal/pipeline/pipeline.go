// Package pipeline orchestrates batch ingestion: scan a corpus folder, load
// and chunk each document, optionally embed and push chunks to the vector
// store, and collect export records plus run statistics.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ragbuilder/internal/chunker"
	"ragbuilder/internal/contextutil"
	"ragbuilder/internal/exporter"
	"ragbuilder/internal/llm"
	"ragbuilder/internal/loader"
	"ragbuilder/internal/storage"
	"ragbuilder/internal/vectorstore"
)

// Options configures one ingest run. Chunking parameters are passed through
// to the engine, which applies its own clamping.
type Options struct {
	ChunkSize  int
	Overlap    int
	Section    string // section override for all documents; front-matter wins
	Slug       string // slug override (single-file ingest only)
	SlugPrefix string // prefix applied to derived slugs (folder ingest)
	Embeddings bool   // embed chunks and, when a store is configured, upsert them

	sectionFallback string // folder mode: file stem, used when nothing else names a section
}

// Result is the output of a folder ingest: export-ready records and run
// statistics.
type Result struct {
	Records []exporter.Record
	Stats   RunStats
}

// Pipeline wires the loader and engine to the optional embedder, vector
// store, and manifest. The zero dependencies (nil embedder, store,
// manifest) degrade gracefully: chunk-and-export only.
type Pipeline struct {
	loader     *loader.Loader
	engine     *chunker.Engine
	manifest   storage.ManifestStore
	embedder   llm.Embedder
	vectors    vectorstore.VectorStore
	collection string
	logger     *slog.Logger
}

// New creates a pipeline. manifest, embedder, and vectors may be nil.
func New(
	ld *loader.Loader,
	engine *chunker.Engine,
	manifest storage.ManifestStore,
	embedder llm.Embedder,
	vectors vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		loader:     ld,
		engine:     engine,
		manifest:   manifest,
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		logger:     slog.Default(),
	}
}

// IngestFile loads, chunks, and optionally embeds a single document. The
// manifest is consulted (and updated) when configured; an unchanged hash
// returns nil records with no error.
func (p *Pipeline) IngestFile(ctx context.Context, absPath, relPath string, opts Options) ([]exporter.Record, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", absPath, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(raw))

	var existing *storage.DocumentRecord
	if p.manifest != nil {
		existing, err = p.manifest.GetByPath(ctx, relPath)
		if err != nil && err != storage.ErrNotFound {
			return nil, fmt.Errorf("check manifest: %w", err)
		}
		if existing != nil && existing.Hash == hash {
			logger.DebugContext(ctx, "skipping unchanged file", "rel_path", relPath, "hash", hash)
			return nil, nil
		}
	}

	doc, err := p.loader.Load(absPath)
	if err != nil {
		return nil, err
	}

	meta := doc.Meta
	if opts.Slug != "" {
		meta.Slug = opts.Slug
	} else if opts.SlugPrefix != "" {
		meta.Slug = opts.SlugPrefix + "-" + meta.Slug
	}
	if meta.Section == "" {
		meta.Section = opts.Section
	}
	if meta.Section == "" {
		meta.Section = opts.sectionFallback
	}
	if meta.Section == "" {
		meta.Section = "Main"
	}

	chunks, err := p.engine.Chunk(doc.Text, meta, chunker.Options{
		ChunkSize: opts.ChunkSize,
		Overlap:   opts.Overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", relPath, err)
	}
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "rel_path", relPath)
		return nil, nil
	}

	records := exporter.NewRecords(chunks)

	if opts.Embeddings && p.embedder != nil {
		if existing != nil && p.vectors != nil {
			if err := p.deleteStalePoints(ctx, existing); err != nil {
				return nil, err
			}
		}
		if err := p.embedRecords(ctx, records); err != nil {
			return nil, err
		}
	}

	if p.manifest != nil {
		id := uuid.New().String()
		if existing != nil {
			id = existing.ID
		}
		rec := &storage.DocumentRecord{
			ID:         id,
			Slug:       meta.Slug,
			RelPath:    relPath,
			Section:    meta.Section,
			Hash:       hash,
			ChunkCount: len(chunks),
		}
		if err := p.manifest.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("update manifest: %w", err)
		}
	}

	logger.InfoContext(ctx, "ingested document",
		"rel_path", relPath, "slug", meta.Slug, "chunks", len(chunks))
	return records, nil
}

// pointNamespace scopes the UUIDs derived from chunk ids. Deriving point
// IDs instead of generating them keeps re-ingestion idempotent: the same
// chunk id always maps to the same point, so upserts overwrite.
var pointNamespace = uuid.MustParse("9f1c2d64-52e7-4a38-b1d0-4c8e7a0f6b21")

// pointID maps a chunk id to its stable vector store point id.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

// deleteStalePoints removes the points a previous run stored for the
// document. The ids are rebuilt from the manifest record, so a run that
// changes the slug, section, or chunk count leaves nothing behind.
func (p *Pipeline) deleteStalePoints(ctx context.Context, doc *storage.DocumentRecord) error {
	ids := make([]string, doc.ChunkCount)
	for i := range ids {
		ids[i] = pointID(chunker.ChunkID(doc.Slug, doc.Section, i+1))
	}
	if err := p.vectors.Delete(ctx, p.collection, ids); err != nil {
		return fmt.Errorf("delete stale points: %w", err)
	}
	return nil
}

// embedRecords attaches embeddings to the records and, when a vector store
// is configured, upserts them into the collection.
func (p *Pipeline) embedRecords(ctx context.Context, records []exporter.Record) error {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}
	if err := exporter.AttachEmbeddings(records, vectors); err != nil {
		return err
	}

	if p.vectors == nil {
		return nil
	}

	points := make([]vectorstore.Point, len(records))
	for i, rec := range records {
		points[i] = vectorstore.Point{
			ID:  pointID(rec.ID),
			Vec: rec.Embedding,
			Meta: map[string]any{
				"chunk_id":    rec.ID,
				"text":        rec.Text,
				"token_count": rec.TokenCount,
				"slug":        rec.Metadata.Slug,
				"section":     rec.Metadata.Section,
				"chunk_index": rec.Metadata.ChunkIndex,
				"title":       rec.Metadata.Title,
				"doc_type":    rec.Metadata.DocType,
				"updated":     rec.Metadata.Updated,
			},
		}
	}
	if err := p.vectors.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// IngestFolder scans folder and ingests every supported file. Per-file
// errors are logged and counted but do not stop the run. The returned
// records cover processed files only; files skipped by the manifest hash
// check are excluded (incremental export).
func (p *Pipeline) IngestFolder(ctx context.Context, folder string, opts Options) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanFolder(ctx, folder, p.loader.CanLoad)
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	logger.InfoContext(ctx, "starting ingest", "folder", folder, "files", len(files))

	result := &Result{}
	var tokenCounts []int
	clamped, err := chunker.Options{ChunkSize: opts.ChunkSize, Overlap: opts.Overlap}.Clamped()
	if err != nil {
		return nil, err
	}
	budget := clamped.ChunkSize

	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fileOpts := opts
		fileOpts.Slug = "" // per-file slugs derive from filenames in folder mode
		base := filepath.Base(file.RelPath)
		fileOpts.sectionFallback = strings.TrimSuffix(base, filepath.Ext(base))
		records, err := p.IngestFile(ctx, file.AbsPath, file.RelPath, fileOpts)
		if err != nil {
			result.Stats.DocsFailed++
			logger.ErrorContext(ctx, "failed to ingest file", "rel_path", file.RelPath, "error", err)
			continue
		}
		if records == nil {
			result.Stats.DocsSkipped++
			continue
		}

		result.Stats.DocsProcessed++
		result.Stats.Chunks += len(records)
		for _, rec := range records {
			tokenCounts = append(tokenCounts, rec.TokenCount)
			if rec.TokenCount > budget {
				result.Stats.OversizedChunks++
			}
		}
		result.Records = append(result.Records, records...)
	}

	result.Stats.TokenStats = computeTokenStats(tokenCounts)
	logger.InfoContext(ctx, "ingest completed",
		"processed", result.Stats.DocsProcessed,
		"skipped", result.Stats.DocsSkipped,
		"failed", result.Stats.DocsFailed,
		"chunks", result.Stats.Chunks)
	return result, nil
}
