// Package exporter serializes chunk records to JSONL and CSV. Records may
// optionally carry an embedding vector attached by the caller; the exporter
// never computes embeddings itself.
package exporter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ragbuilder/internal/chunker"
)

// Record is one serialized output row: a chunk plus an optional embedding.
type Record struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Metadata   chunker.Metadata `json:"metadata"`
	TokenCount int              `json:"token_count"`
	Embedding  []float32        `json:"embedding,omitempty"`
}

// NewRecords converts engine output into export records.
func NewRecords(chunks []chunker.Chunk) []Record {
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = Record{
			ID:         c.ID,
			Text:       c.Text,
			Metadata:   c.Metadata,
			TokenCount: c.TokenCount,
		}
	}
	return records
}

// AttachEmbeddings sets one vector per record, in order.
func AttachEmbeddings(records []Record, vectors [][]float32) error {
	if len(vectors) != len(records) {
		return fmt.Errorf("embedding count mismatch: %d records, %d vectors", len(records), len(vectors))
	}
	for i := range records {
		records[i].Embedding = vectors[i]
	}
	return nil
}

// WriteJSONL writes one JSON object per line. HTML escaping is off so chunk
// text round-trips readably.
func WriteJSONL(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Save writes records to path, selecting CSV for a .csv suffix and JSONL
// otherwise. Parent directories are created as needed.
func Save(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return WriteCSV(f, records)
	}
	return WriteJSONL(f, records)
}
