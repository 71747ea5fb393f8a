// Package content holds the in-memory page cache and the search index derived from it.
package content

import (
	"sync"

	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// Cache maps page keys to the last fetched page record.
// It keeps the order in which keys were first listed and rebuilds its
// search index whenever its contents change.
type Cache struct {
	mu    sync.RWMutex
	pages map[string]wikiapi.Page
	order []string
	index *Index
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		pages: make(map[string]wikiapi.Page),
		index: &Index{},
	}
}

// Replace drops every cached page and stores the given list.
// When the list repeats a key, the last record wins and the first position is kept.
func (c *Cache) Replace(pages []wikiapi.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pages = make(map[string]wikiapi.Page, len(pages))
	c.order = make([]string, 0, len(pages))
	for i := range pages {
		page := pages[i]
		if _, seen := c.pages[page.Key]; !seen {
			c.order = append(c.order, page.Key)
		}
		c.pages[page.Key] = page
	}

	c.rebuildLocked()
}

// Put replaces the entry for page.Key wholesale.
func (c *Cache) Put(page wikiapi.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seen := c.pages[page.Key]; !seen {
		c.order = append(c.order, page.Key)
	}
	c.pages[page.Key] = page

	c.rebuildLocked()
}

// Get returns the cached record for key.
func (c *Cache) Get(key string) (wikiapi.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	page, ok := c.pages[key]
	return page, ok
}

// Has reports whether key is cached.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns the cached keys in list order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// First returns the first listed key.
func (c *Cache) First() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.order) == 0 {
		return "", false
	}
	return c.order[0], true
}

// Pages returns the cached records in list order.
func (c *Cache) Pages() []wikiapi.Page {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pages := make([]wikiapi.Page, 0, len(c.order))
	for _, key := range c.order {
		pages = append(pages, c.pages[key])
	}
	return pages
}

// Len returns the number of cached pages.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.order)
}

// Search runs query against the current index.
func (c *Cache) Search(query string) []Result {
	c.mu.RLock()
	index := c.index
	c.mu.RUnlock()

	return index.Search(query)
}

// rebuildLocked rebuilds the search index. Callers must hold the write lock.
func (c *Cache) rebuildLocked() {
	pages := make([]wikiapi.Page, 0, len(c.order))
	for _, key := range c.order {
		pages = append(pages, c.pages[key])
	}
	c.index = BuildIndex(pages)
}
