// Package render turns page markdown into HTML with highlighted code blocks
// and extracts the table of contents from the result.
package render

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used for code blocks.
const DefaultStyle = "github"

// Document is a rendered page.
type Document struct {
	HTML string
	TOC  []Heading
}

// Renderer converts markdown to HTML. Raw HTML in the source is omitted.
type Renderer struct {
	md    goldmark.Markdown
	style string
}

// RendererOption configures the renderer.
type RendererOption func(*Renderer)

// WithStyle sets the chroma style name used for code highlighting.
func WithStyle(style string) RendererOption {
	return func(r *Renderer) {
		r.style = style
	}
}

// NewRenderer creates a renderer with GitHub flavored markdown and chroma highlighting.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{style: DefaultStyle}
	for _, opt := range opts {
		opt(r)
	}

	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(r.style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
			&externalLinks{},
		),
	)
	return r
}

// Render converts source to HTML and annotates its headings.
func (r *Renderer) Render(source string) (*Document, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	annotated, toc, err := AnnotateHeadings(buf.String())
	if err != nil {
		return nil, err
	}

	return &Document{HTML: annotated, TOC: toc}, nil
}

// CSS returns the stylesheet matching the classes emitted for code blocks.
func (r *Renderer) CSS() (string, error) {
	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(r.style)); err != nil {
		return "", fmt.Errorf("write highlight css: %w", err)
	}
	return buf.String(), nil
}

// externalLinks opens absolute links in a new tab.
type externalLinks struct{}

func (e *externalLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&externalLinkTransformer{}, 100),
	))
}

type externalLinkTransformer struct{}

func (t *externalLinkTransformer) Transform(node *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok && isExternal(string(link.Destination)) {
			link.SetAttributeString("target", []byte("_blank"))
			link.SetAttributeString("rel", []byte("noopener noreferrer"))
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest string) bool {
	return strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://")
}
