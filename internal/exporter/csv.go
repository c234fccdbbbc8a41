package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvHeader is the stable column order for CSV export: identity first, then
// flattened metadata.
var csvHeader = []string{
	"id", "text", "token_count",
	"title", "slug", "section", "jurisdiction", "doc_type", "version",
	"effective_date", "review_date", "owner", "source_url", "tags",
	"source_format", "chunk_index", "updated",
}

// WriteCSV writes records with flattened metadata columns for easy viewing
// in spreadsheet tools. Embeddings are omitted; they are not useful in
// tabular form. Tags are joined with semicolons.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		m := rec.Metadata
		row := []string{
			rec.ID,
			rec.Text,
			strconv.Itoa(rec.TokenCount),
			m.Title,
			m.Slug,
			m.Section,
			m.Jurisdiction,
			m.DocType,
			m.Version,
			m.EffectiveDate,
			m.ReviewDate,
			m.Owner,
			m.SourceURL,
			strings.Join(m.Tags, ";"),
			m.SourceFormat,
			strconv.Itoa(m.ChunkIndex),
			m.Updated,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
