package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_manifest_store.go -package=mocks ragbuilder/internal/storage ManifestStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DocumentRecord is one manifest row: the identity and content hash of a
// processed source file.
type DocumentRecord struct {
	ID         string // UUID
	Slug       string
	RelPath    string // relative path from the corpus root
	Section    string
	Hash       string // SHA-256 hex of the raw file content
	ChunkCount int
	UpdatedAt  time.Time
}

// Totals summarizes the manifest for the stats endpoint.
type Totals struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// ManifestStore defines manifest operations used by the ingest pipeline.
type ManifestStore interface {
	// GetByPath returns the record for a relative path, or ErrNotFound.
	GetByPath(ctx context.Context, relPath string) (*DocumentRecord, error)
	// Upsert inserts or replaces the record keyed by rel_path.
	Upsert(ctx context.Context, rec *DocumentRecord) error
	// Totals returns manifest-wide document and chunk counts.
	Totals(ctx context.Context) (*Totals, error)
}

// ManifestRepo implements ManifestStore on SQLite.
type ManifestRepo struct {
	db *sql.DB
}

// NewManifestRepo creates a ManifestRepo.
func NewManifestRepo(db *sql.DB) *ManifestRepo {
	return &ManifestRepo{db: db}
}

// GetByPath returns the record for a relative path, or ErrNotFound.
func (r *ManifestRepo) GetByPath(ctx context.Context, relPath string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, slug, rel_path, section, hash, chunk_count, updated_at FROM documents WHERE rel_path = ?",
		relPath,
	).Scan(&rec.ID, &rec.Slug, &rec.RelPath, &rec.Section, &rec.Hash, &rec.ChunkCount, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or replaces the record keyed by rel_path.
func (r *ManifestRepo) Upsert(ctx context.Context, rec *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, slug, rel_path, section, hash, chunk_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(rel_path) DO UPDATE SET
			slug = excluded.slug,
			section = excluded.section,
			hash = excluded.hash,
			chunk_count = excluded.chunk_count,
			updated_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.Slug, rec.RelPath, rec.Section, rec.Hash, rec.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Totals returns manifest-wide document and chunk counts.
func (r *ManifestRepo) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(chunk_count), 0) FROM documents",
	).Scan(&t.Documents, &t.Chunks)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	return &t, nil
}
