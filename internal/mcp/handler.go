// Package mcp exposes wiki operations as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/version"
	"github.com/fclairamb/wikisync/internal/wiki"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// ServerName is announced to MCP clients.
const ServerName = "wikisync"

// KeyRequest names a page.
type KeyRequest struct {
	Key string `json:"key"`
}

// SearchRequest is the input of search_pages.
type SearchRequest struct {
	Query string `json:"query"`
}

// CreateRequest is the input of create_page.
type CreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateRequest is the input of update_page.
type UpdateRequest struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// PageSummary is one entry of list_pages.
type PageSummary struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// PageResponse is a full page.
type PageResponse struct {
	ID      string           `json:"id"`
	Key     string           `json:"key"`
	Title   string           `json:"title"`
	Content string           `json:"content"`
	TOC     []render.Heading `json:"toc,omitempty"`
}

// Tools serializes tool calls over one wiki session.
type Tools struct {
	mu      sync.Mutex
	session *wiki.Session
}

// NewTools creates the tool handlers.
func NewTools(session *wiki.Session) *Tools {
	return &Tools{session: session}
}

// NewServer creates an MCP server with the wiki tools registered.
func NewServer(session *wiki.Session) *server.MCPServer {
	tools := NewTools(session)

	s := server.NewMCPServer(
		ServerName,
		version.Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List every wiki page with its key and title"),
	), mcp.NewTypedToolHandler(tools.ListPages))

	s.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Get the markdown content and table of contents of a wiki page"),
		mcp.WithString("key", mcp.Required(), mcp.Description("The page key, e.g. 'getting-started'")),
	), mcp.NewTypedToolHandler(tools.GetPage))

	s.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search page titles and content (case-insensitive, at least 3 characters)"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
	), mcp.NewTypedToolHandler(tools.SearchPages))

	s.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a wiki page; the key is derived from the title"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Display title of the new page")),
		mcp.WithString("content", mcp.Description("Markdown body; a placeholder is used when empty")),
	), mcp.NewTypedToolHandler(tools.CreatePage))

	s.AddTool(mcp.NewTool("update_page",
		mcp.WithDescription("Replace the markdown content of a wiki page"),
		mcp.WithString("key", mcp.Required(), mcp.Description("The page key")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The new markdown content")),
	), mcp.NewTypedToolHandler(tools.UpdatePage))

	s.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Delete a wiki page"),
		mcp.WithString("key", mcp.Required(), mcp.Description("The page key")),
	), mcp.NewTypedToolHandler(tools.DeletePage))

	return s
}

// ListPages reloads and lists every page.
func (t *Tools) ListPages(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.session.LoadAll(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list pages: %v", err)), nil
	}

	pages := t.session.Cache().Pages()
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, PageSummary{Key: p.Key, Title: p.Title})
	}
	return jsonResult(out)
}

// GetPage opens a page and returns it.
func (t *Tools) GetPage(ctx context.Context, _ mcp.CallToolRequest, args KeyRequest) (*mcp.CallToolResult, error) {
	if args.Key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.session.Navigate(ctx, args.Key); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get page: %v", err)), nil
	}
	return jsonResult(t.currentPage())
}

// SearchPages searches the index, loading it first when empty.
func (t *Tools) SearchPages(ctx context.Context, _ mcp.CallToolRequest, args SearchRequest) (*mcp.CallToolResult, error) {
	if len([]rune(args.Query)) < content.MinQueryLength {
		return mcp.NewToolResultError(fmt.Sprintf("query must be at least %d characters", content.MinQueryLength)), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session.Cache().Len() == 0 {
		if err := t.session.LoadAll(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load pages: %v", err)), nil
		}
	}

	results := t.session.Search(args.Query)
	if results == nil {
		results = []content.Result{}
	}
	return jsonResult(results)
}

// CreatePage creates a page and returns it.
func (t *Tools) CreatePage(ctx context.Context, _ mcp.CallToolRequest, args CreateRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	var created *wikiapi.Page
	if args.Content == "" {
		created, err = t.session.Create(ctx, args.Title)
	} else {
		created, err = t.session.CreateWithContent(ctx, args.Title, args.Content)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create page: %v", err)), nil
	}
	if created == nil {
		return mcp.NewToolResultError("title is required"), nil
	}
	return jsonResult(t.currentPage())
}

// UpdatePage opens a page and saves new content for it.
func (t *Tools) UpdatePage(ctx context.Context, _ mcp.CallToolRequest, args UpdateRequest) (*mcp.CallToolResult, error) {
	if args.Key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.session.Navigate(ctx, args.Key); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get page: %v", err)), nil
	}
	if _, err := t.session.Save(ctx, args.Content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save page: %v", err)), nil
	}
	return jsonResult(t.currentPage())
}

// DeletePage deletes a page.
func (t *Tools) DeletePage(ctx context.Context, _ mcp.CallToolRequest, args KeyRequest) (*mcp.CallToolResult, error) {
	if args.Key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Cache().Has(args.Key) {
		if err := t.session.LoadAll(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load pages: %v", err)), nil
		}
	}

	pending, err := t.session.RequestDelete(args.Key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete page: %v", err)), nil
	}
	if err := t.session.ConfirmDelete(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete page: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s (%s)", pending.Key, pending.Title)), nil
}

func (t *Tools) currentPage() PageResponse {
	view := t.session.View()
	page, _ := t.session.Cache().Get(t.session.Current())
	return PageResponse{
		ID:      page.ID.String(),
		Key:     page.Key,
		Title:   page.Title,
		Content: page.Content,
		TOC:     view.TOC,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
