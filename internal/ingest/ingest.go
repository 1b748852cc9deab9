// Package ingest extracts a structured content tree from document files.
//
// Supported formats:
//   - .docx       — Microsoft Word (archive/zip → word/document.xml)
//   - .html/.htm  — HTML (heading/paragraph walk)
//   - .md         — Markdown (ATX heading detection)
//   - .txt        — plain text (blank-line paragraph splitting)
//
// PDF guides are expected to arrive pre-converted to one of the above; the
// scraping side of the system owns that conversion.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"specdoc/internal/content"
)

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
)

// Config configures the ingestion pipeline.
type Config struct {
	// MaxFileSize is the largest file accepted (default 32 MB).
	MaxFileSize int64 `yaml:"max_file_size"`

	// Logger for debug messages.
	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 32 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline is the document ingestion engine.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", filepath.Ext(path))
	}
}

// Extract parses a document into a content tree.
func (p *Pipeline) Extract(ctx context.Context, path string) (*content.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}
	p.cfg.Logger.Debug("ingesting document", "path", path, "format", format)

	var doc *content.Document
	switch format {
	case FormatDocx:
		doc, err = extractDocx(path)
	case FormatHTML:
		doc, err = extractHTML(path)
	case FormatMD:
		doc, err = extractMarkdown(path)
	case FormatTXT:
		doc, err = extractText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest %s (%s): %w", path, format, err)
	}
	return doc, nil
}

// sectionBuilder accumulates flat heading/body lines into a section list.
type sectionBuilder struct {
	doc     content.Document
	current int // index into doc.Sections, -1 before any section exists
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{current: -1}
}

func (b *sectionBuilder) heading(text string, level int) {
	if b.doc.Title == "" {
		b.doc.Title = text
	}
	b.doc.Sections = append(b.doc.Sections, content.Section{Heading: text, Level: level})
	b.current = len(b.doc.Sections) - 1
}

func (b *sectionBuilder) line(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.current < 0 {
		b.doc.Sections = append(b.doc.Sections, content.Section{Level: 1})
		b.current = len(b.doc.Sections) - 1
	}
	sec := &b.doc.Sections[b.current]
	sec.Content = append(sec.Content, text)
}

func (b *sectionBuilder) build() *content.Document {
	doc := b.doc
	return &doc
}
