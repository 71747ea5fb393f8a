// Package importer turns web pages into wiki markdown.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

const (
	// DefaultSelector picks the part of the page that is converted.
	DefaultSelector = "body"

	defaultTimeout = 30 * time.Second
	maxBodySize    = 10 << 20
)

// Document is an imported page.
type Document struct {
	Title       string
	Description string
	Markdown    string
}

// Importer downloads and converts HTML pages.
type Importer struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Importer) {
		i.httpClient = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = l
	}
}

// New creates an importer.
func New(opts ...Option) *Importer {
	i := &Importer{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Fetch downloads url and converts the element matched by selector to markdown.
func (i *Importer) Fetch(ctx context.Context, url, selector string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	i.logger.DebugContext(ctx, "Fetching page to import", "url", url, "selector", selector)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: %w", url, apperrors.NewHTTPError(resp.StatusCode, string(body)))
	}

	return Convert(string(body), selector)
}

// Convert turns the element matched by selector in page into markdown.
func Convert(page, selector string) (*Document, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	if selector == "" {
		selector = DefaultSelector
	}
	node := findBySelector(doc, selector)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSelectorNotFound, selector)
	}

	markdown, err := htmltomarkdown.ConvertNode(node)
	if err != nil {
		return nil, fmt.Errorf("convert HTML to markdown: %w", err)
	}

	title := strings.TrimSpace(textOf(findBySelector(doc, "title")))
	if title == "" {
		title = strings.TrimSpace(textOf(findBySelector(node, "h1")))
	}

	return &Document{
		Title:       title,
		Description: metaContent(doc, "description"),
		Markdown:    strings.TrimSpace(string(markdown)) + "\n",
	}, nil
}

// findBySelector supports "#id", ".class" and tag selectors and returns the
// first match in document order.
func findBySelector(root *html.Node, selector string) *html.Node {
	var match func(*html.Node) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		match = func(n *html.Node) bool { return attr(n, "id") == id }
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		match = func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		tag := strings.ToLower(selector)
		match = func(n *html.Node) bool { return n.Data == tag }
	}
	return find(root, match)
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func metaContent(doc *html.Node, name string) string {
	meta := find(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == name
	})
	if meta == nil {
		return ""
	}
	return strings.TrimSpace(attr(meta, "content"))
}
