package markdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/pbaille/mdpress/internal/domain"
)

// Document is a parsed article file
type Document struct {
	Path    string
	Meta    *domain.Article
	Body    []byte
	HTML    string
	RawMeta Meta
}

// Renderer converts Markdown documents to HTML.
// A single instance is safe to reuse.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a goldmark renderer with GFM tables and raw HTML passthrough
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts a Markdown body to HTML
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Parse extracts the header and renders the body.
// A missing required field fails with a *domain.MetadataError.
func (r *Renderer) Parse(source []byte) (*Document, error) {
	meta, body, err := SplitMeta(source)
	if err != nil {
		return nil, err
	}

	article, err := ToArticle(meta)
	if err != nil {
		return nil, err
	}

	rendered, err := r.Render(body)
	if err != nil {
		return nil, err
	}

	return &Document{
		Meta:    article,
		Body:    body,
		HTML:    rendered,
		RawMeta: meta,
	}, nil
}

// ParseFile reads and parses the document at path
func (r *Renderer) ParseFile(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("article %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read article: %w", err)
	}

	doc, err := r.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}
