package wikiapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

const pagesPath = "/api/wiki-pages"

// ListPages retrieves every page, in the order the server returns them.
func (c *Client) ListPages(ctx context.Context) ([]Page, error) {
	c.logger.DebugContext(ctx, "Listing pages")

	before := time.Now()

	var pages []Page
	if err := c.doJSON(ctx, http.MethodGet, pagesPath, nil, &pages); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	c.logger.DebugContext(ctx, "Pages listed", "count", len(pages), "time_spent_ms", time.Since(before).Milliseconds())
	return pages, nil
}

// GetPageByKey retrieves a page by its key.
// A 404 answer is reported as apperrors.ErrPageNotFound.
func (c *Client) GetPageByKey(ctx context.Context, key string) (*Page, error) {
	if key == "" {
		return nil, apperrors.ErrPageKeyRequired
	}

	ctx = WithPageKey(ctx, key)
	c.logger.DebugContext(ctx, "Fetching page", slog.String("key", key))

	var page Page
	path := pagesPath + "/key/" + url.PathEscape(key)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		if apperrors.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("get page %s: %w: %w", key, apperrors.ErrPageNotFound, err)
		}
		return nil, fmt.Errorf("get page %s: %w", key, err)
	}
	return &page, nil
}

// CreatePage creates a page and returns the record the server stored.
func (c *Client) CreatePage(ctx context.Context, input PageInput) (*Page, error) {
	ctx = WithPageKey(ctx, input.Key)
	c.logger.DebugContext(ctx, "Creating page", slog.String("key", input.Key), slog.String("title", input.Title))

	var page Page
	if err := c.doJSON(ctx, http.MethodPost, pagesPath, input, &page); err != nil {
		return nil, fmt.Errorf("create page %s: %w", input.Key, err)
	}
	return &page, nil
}

// UpdatePage replaces the key, title and content of the page with the given id.
// The returned record is authoritative and may differ from the input.
func (c *Client) UpdatePage(ctx context.Context, id PageID, input PageInput) (*Page, error) {
	ctx = WithPageKey(ctx, input.Key)
	c.logger.DebugContext(ctx, "Updating page", slog.String("id", id.String()), "size", len(input.Content))

	var page Page
	path := pagesPath + "/" + url.PathEscape(id.String())
	if err := c.doJSON(ctx, http.MethodPut, path, input, &page); err != nil {
		return nil, fmt.Errorf("update page %s: %w", id, err)
	}
	if page.Key == "" && page.ID == "" {
		return nil, fmt.Errorf("update page %s: %w", id, apperrors.ErrEmptyResponse)
	}
	return &page, nil
}

// DeletePage deletes the page with the given id.
func (c *Client) DeletePage(ctx context.Context, id PageID) error {
	c.logger.DebugContext(ctx, "Deleting page", slog.String("id", id.String()))

	path := pagesPath + "/" + url.PathEscape(id.String())
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	return nil
}
