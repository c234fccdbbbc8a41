// Package loader normalizes raw document files into (plain text, metadata)
// pairs for the chunking engine. Markdown and plain text are handled
// natively; PDF, DOCX, and XLSX extraction is delegated to tabula.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"ragbuilder/internal/chunker"
)

// ErrUnsupportedFormat is returned for file extensions the loader does not
// recognize.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is a normalized document: cleaned plain text plus its metadata
// record. Documents are transient; they are consumed once by the engine and
// not retained.
type Document struct {
	Text string
	Meta chunker.Metadata
}

// Loader extracts text and metadata from supported document files.
type Loader struct {
	defaults chunker.Metadata
}

// New creates a loader. The defaults record supplies jurisdiction, doc type,
// version, and owner for documents whose front-matter omits them.
func New(defaults chunker.Metadata) *Loader {
	return &Loader{defaults: defaults}
}

// CanLoad reports whether the file extension is supported.
func (l *Loader) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".pdf", ".docx", ".xlsx", ".xls":
		return true
	}
	return false
}

// Load extracts a normalized document from the file at path. The slug
// defaults to the file basename without extension; front-matter values (for
// markdown) override both defaults and extractor metadata.
func (l *Loader) Load(path string) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".md":
		return l.loadMarkdown(path)
	case ".txt":
		return l.loadText(path)
	case ".pdf":
		return l.loadPDF(path)
	case ".docx":
		return l.loadDOCX(path)
	case ".xlsx", ".xls":
		return l.loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// baseMeta builds the metadata record for a file from the loader defaults.
func (l *Loader) baseMeta(path, format string) chunker.Metadata {
	m := l.defaults.Clone()
	m.Slug = slugFromPath(path)
	m.Title = filepath.Base(path)
	m.SourceFormat = format
	return m
}

// slugFromPath derives a slug from the file basename without its extension.
func slugFromPath(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// loadText reads a plain text file. Files that are not valid UTF-8 are
// decoded as Latin-1, mirroring the usual fallback for legacy exports.
func (l *Loader) loadText(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Document{
		Text: CleanText(decodeText(raw)),
		Meta: l.baseMeta(path, "txt"),
	}, nil
}

// decodeText returns raw as a string, decoding as Latin-1 when the bytes are
// not valid UTF-8.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

var (
	pageMarker   = regexp.MustCompile(`--- Page \d+ ---`)
	sheetMarker  = regexp.MustCompile(`(?m)^=== .+? ===$`)
	bulletGlyph  = regexp.MustCompile(`(?m)^[ \t]*[•*][ \t]+`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	blankLineRun = regexp.MustCompile(`\n[ \t]*\n[\s]*`)
)

// CleanText normalizes extracted text: whitespace runs collapse to single
// spaces, page and sheet markers are removed, bullet glyphs are unified, and
// paragraph breaks are preserved as exactly one blank line so the engine can
// treat them as unit boundaries.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageMarker.ReplaceAllString(text, "")
	text = sheetMarker.ReplaceAllString(text, "")
	text = bulletGlyph.ReplaceAllString(text, "• ")
	text = spaceRun.ReplaceAllString(text, " ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
