package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"ragbuilder/internal/chunker"
)

// mdParser is shared across loads; goldmark parsers are safe for concurrent
// use.
var mdParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// loadMarkdown reads a markdown file, splits off any YAML front-matter, and
// extracts the body as plain text.
func (l *Loader) loadMarkdown(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	meta := l.baseMeta(path, "markdown")
	fm, body, err := splitFrontMatter(decodeText(raw))
	if err != nil {
		return nil, fmt.Errorf("parse front-matter in %s: %w", path, err)
	}
	applyFrontMatter(&meta, fm)

	return &Document{
		Text: CleanText(markdownText([]byte(body))),
		Meta: meta,
	}, nil
}

// frontMatter is the recognized subset of YAML front-matter keys.
// Unrecognized keys are ignored.
type frontMatter struct {
	Title         string   `yaml:"title"`
	Slug          string   `yaml:"slug"`
	Section       string   `yaml:"section"`
	Jurisdiction  string   `yaml:"jurisdiction"`
	DocType       string   `yaml:"doc_type"`
	Version       string   `yaml:"version"`
	EffectiveDate string   `yaml:"effective_date"`
	ReviewDate    string   `yaml:"review_date"`
	Owner         string   `yaml:"owner"`
	SourceURL     string   `yaml:"source_url"`
	Tags          []string `yaml:"tags"`
}

// splitFrontMatter separates a leading "---" fenced YAML block from the
// document body. Documents without a block come back unchanged with a nil
// front-matter.
func splitFrontMatter(md string) (*frontMatter, string, error) {
	if !strings.HasPrefix(md, "---") {
		return nil, md, nil
	}
	parts := strings.SplitN(md, "---", 3)
	if len(parts) < 3 {
		return nil, md, nil
	}
	var fm frontMatter
	if strings.TrimSpace(parts[1]) != "" {
		if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
			return nil, "", fmt.Errorf("invalid YAML: %w", err)
		}
	}
	return &fm, strings.TrimLeft(parts[2], "\n"), nil
}

// applyFrontMatter overlays non-empty front-matter values onto the metadata
// record.
func applyFrontMatter(meta *chunker.Metadata, fm *frontMatter) {
	if fm == nil {
		return
	}
	if fm.Title != "" {
		meta.Title = fm.Title
	}
	if fm.Slug != "" {
		meta.Slug = fm.Slug
	}
	if fm.Section != "" {
		meta.Section = fm.Section
	}
	if fm.Jurisdiction != "" {
		meta.Jurisdiction = fm.Jurisdiction
	}
	if fm.DocType != "" {
		meta.DocType = fm.DocType
	}
	if fm.Version != "" {
		meta.Version = fm.Version
	}
	if fm.EffectiveDate != "" {
		meta.EffectiveDate = fm.EffectiveDate
	}
	if fm.ReviewDate != "" {
		meta.ReviewDate = fm.ReviewDate
	}
	if fm.Owner != "" {
		meta.Owner = fm.Owner
	}
	if fm.SourceURL != "" {
		meta.SourceURL = fm.SourceURL
	}
	if len(fm.Tags) > 0 {
		meta.Tags = append([]string(nil), fm.Tags...)
	}
}

// markdownText extracts plain text from a markdown body by walking the
// goldmark AST. Headings and paragraphs become lines separated by blank
// lines, list items keep a bullet marker, and table rows are joined with
// pipe separators.
func markdownText(body []byte) string {
	doc := mdParser.Parser().Parse(text.NewReader(body))

	var out strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			return ast.WalkContinue, nil

		case *ast.ListItem:
			out.WriteString("\n- ")
			return ast.WalkContinue, nil

		case *ast.Text:
			out.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				out.WriteString(" ")
			}
			return ast.WalkContinue, nil

		case *ast.String:
			out.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeBlock:
			writeLines(&out, node.Lines(), body)
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			writeLines(&out, node.Lines(), body)
			return ast.WalkSkipChildren, nil

		case *extast.TableRow, *extast.TableHeader:
			out.WriteString("\n")
			out.WriteString(tableRowText(n, body))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out.String()
}

// writeLines appends raw source line segments.
func writeLines(out *strings.Builder, lines *text.Segments, body []byte) {
	if out.Len() > 0 {
		out.WriteString("\n\n")
	}
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out.Write(seg.Value(body))
	}
}

// tableRowText renders a table row as "cell | cell | cell".
func tableRowText(row ast.Node, body []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, strings.TrimSpace(nodeText(cell, body)))
	}
	return strings.Join(cells, " | ")
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, body []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(body))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
