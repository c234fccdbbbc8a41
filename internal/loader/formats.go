package loader

import (
	"fmt"

	tabula "github.com/tsawler/tabula"
	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/xlsx"
)

// loadPDF extracts text from a PDF with tabula's fluent extractor.
// Extraction warnings are non-fatal; the text that was recovered is used.
func (l *Loader) loadPDF(path string) (*Document, error) {
	text, _, err := tabula.Open(path).Text()
	if err != nil {
		return nil, fmt.Errorf("extract pdf %s: %w", path, err)
	}
	return &Document{
		Text: CleanText(text),
		Meta: l.baseMeta(path, "pdf"),
	}, nil
}

// loadDOCX extracts paragraph and table text from a Word document, mapping
// core document properties into the metadata record.
func (l *Loader) loadDOCX(path string) (*Document, error) {
	r, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer func() {
		_ = r.Close()
	}()

	text, err := r.Text()
	if err != nil {
		return nil, fmt.Errorf("extract docx %s: %w", path, err)
	}

	meta := l.baseMeta(path, "docx")
	if props := r.Metadata(); props.Title != "" {
		meta.Title = props.Title
	}

	return &Document{
		Text: CleanText(text),
		Meta: meta,
	}, nil
}

// loadXLSX extracts all worksheet text from a workbook, one block per sheet
// with pipe-separated cells.
func (l *Loader) loadXLSX(path string) (*Document, error) {
	r, err := xlsx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		_ = r.Close()
	}()

	text, err := r.TextWithOptions(xlsx.ExtractOptions{
		Delimiter: " | ",
	})
	if err != nil {
		return nil, fmt.Errorf("extract workbook %s: %w", path, err)
	}

	return &Document{
		Text: CleanText(text),
		Meta: l.baseMeta(path, "excel"),
	}, nil
}
