package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragbuilder/internal/chunker"
)

func testLoader() *Loader {
	return New(chunker.Metadata{
		Jurisdiction: "GB",
		DocType:      "guidance",
		Version:      "1.0",
		Owner:        "compliance",
	})
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCanLoad(t *testing.T) {
	l := testLoader()

	tests := []struct {
		path string
		want bool
	}{
		{"doc.md", true},
		{"doc.txt", true},
		{"doc.pdf", true},
		{"doc.docx", true},
		{"doc.xlsx", true},
		{"doc.xls", true},
		{"DOC.MD", true},
		{"doc.html", false},
		{"doc.doc", false},
		{"doc", false},
	}

	for _, tt := range tests {
		if got := l.CanLoad(tt.path); got != tt.want {
			t.Errorf("CanLoad(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := testLoader().Load("report.html")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fair-use-notes.txt",
		[]byte("First line.\r\nSecond line.\r\n\r\nNew paragraph."))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "First line.\nSecond line.\n\nNew paragraph."
	if doc.Text != want {
		t.Errorf("Load() text = %q, want %q", doc.Text, want)
	}
	if doc.Meta.Slug != "fair-use-notes" {
		t.Errorf("slug = %q, want %q", doc.Meta.Slug, "fair-use-notes")
	}
	if doc.Meta.Title != "fair-use-notes.txt" {
		t.Errorf("title = %q, want %q", doc.Meta.Title, "fair-use-notes.txt")
	}
	if doc.Meta.SourceFormat != "txt" {
		t.Errorf("source format = %q, want %q", doc.Meta.SourceFormat, "txt")
	}
	if doc.Meta.Jurisdiction != "GB" || doc.Meta.DocType != "guidance" {
		t.Errorf("defaults not applied: %+v", doc.Meta)
	}
}

func TestLoadTextLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// "café" with a Latin-1 encoded é, which is invalid UTF-8.
	path := writeFile(t, dir, "menu.txt", []byte{'c', 'a', 'f', 0xE9})

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != "café" {
		t.Errorf("Load() text = %q, want %q", doc.Text, "café")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf normalized",
			in:   "a\r\nb",
			want: "a\nb",
		},
		{
			name: "page markers removed",
			in:   "before --- Page 3 --- after",
			want: "before after",
		},
		{
			name: "sheet markers removed",
			in:   "=== Sheet1 ===\ncontent",
			want: "content",
		},
		{
			name: "bullet glyphs unified",
			in:   "* item one\n• item two",
			want: "• item one\n• item two",
		},
		{
			name: "space runs collapsed",
			in:   "too    many\tspaces",
			want: "too many spaces",
		},
		{
			name: "blank line runs collapse to one",
			in:   "para one\n\n\n\n\npara two",
			want: "para one\n\npara two",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n body \n ",
			want: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadMarkdownFrontMatter(t *testing.T) {
	dir := t.TempDir()
	content := `---
title: Acceptable Use Policy
slug: acceptable-use
section: Security
jurisdiction: EU
doc_type: policy
version: "2.1"
effective_date: "2026-01-01"
owner: legal
tags:
  - security
  - policy
---
# Scope

This policy applies to all users.
`
	path := writeFile(t, dir, "aup.md", []byte(content))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	m := doc.Meta
	if m.Title != "Acceptable Use Policy" {
		t.Errorf("title = %q", m.Title)
	}
	if m.Slug != "acceptable-use" {
		t.Errorf("slug = %q, want front-matter override", m.Slug)
	}
	if m.Section != "Security" || m.Jurisdiction != "EU" || m.DocType != "policy" {
		t.Errorf("front-matter not applied: %+v", m)
	}
	if m.Version != "2.1" || m.EffectiveDate != "2026-01-01" || m.Owner != "legal" {
		t.Errorf("front-matter not applied: %+v", m)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "security" {
		t.Errorf("tags = %v", m.Tags)
	}
	if m.SourceFormat != "markdown" {
		t.Errorf("source format = %q", m.SourceFormat)
	}

	if strings.Contains(doc.Text, "---") || strings.Contains(doc.Text, "#") {
		t.Errorf("text still contains markup: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Scope") || !strings.Contains(doc.Text, "This policy applies to all users.") {
		t.Errorf("text missing body content: %q", doc.Text)
	}
}

func TestLoadMarkdownWithoutFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme-notes.md", []byte("Plain body text here."))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Meta.Slug != "readme-notes" {
		t.Errorf("slug = %q, want filename fallback", doc.Meta.Slug)
	}
	if doc.Meta.Jurisdiction != "GB" {
		t.Errorf("defaults not applied: %+v", doc.Meta)
	}
	if doc.Text != "Plain body text here." {
		t.Errorf("text = %q", doc.Text)
	}
}

func TestLoadMarkdownMalformedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.md", []byte("---\n{{{not yaml\n---\nbody"))

	if _, err := testLoader().Load(path); err == nil {
		t.Fatal("Load() error = nil, want front-matter parse error")
	}
}

func TestLoadMarkdownUnrecognizedKeysIgnored(t *testing.T) {
	dir := t.TempDir()
	content := "---\ntitle: Known\ncustom_field: whatever\n---\nBody.\n"
	path := writeFile(t, dir, "extra.md", []byte(content))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Meta.Title != "Known" {
		t.Errorf("title = %q", doc.Meta.Title)
	}
}

func TestLoadMarkdownStructures(t *testing.T) {
	dir := t.TempDir()
	content := `# Heading

Intro paragraph
wrapped across lines.

- first item
- second item

| Name | Limit |
|------|-------|
| Gold | 500   |
`
	path := writeFile(t, dir, "structures.md", []byte(content))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.Contains(doc.Text, "Intro paragraph wrapped across lines.") {
		t.Errorf("soft line break not joined: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "- first item") || !strings.Contains(doc.Text, "- second item") {
		t.Errorf("list items missing: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Name | Limit") || !strings.Contains(doc.Text, "Gold | 500") {
		t.Errorf("table rows not flattened: %q", doc.Text)
	}
}

func TestLoadMarkdownCodeBlocks(t *testing.T) {
	dir := t.TempDir()
	content := "Setup steps below.\n\n```\ncurl -X POST /api/chunk\necho done\n```\n\n    indented block line\n"
	path := writeFile(t, dir, "code.md", []byte(content))

	doc, err := testLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.Contains(doc.Text, "curl -X POST /api/chunk") || !strings.Contains(doc.Text, "echo done") {
		t.Errorf("fenced code lines missing: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "indented block line") {
		t.Errorf("indented code line missing: %q", doc.Text)
	}
}
