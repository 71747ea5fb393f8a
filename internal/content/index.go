package content

import (
	"strings"
	"unicode/utf8"

	"github.com/fclairamb/wikisync/internal/wikiapi"
)

const (
	// MinQueryLength is the shortest query that triggers a search.
	MinQueryLength = 3

	// minKeywordLength is the length a token must exceed to become a keyword.
	minKeywordLength = 3
)

// Entry is the searchable form of one page.
type Entry struct {
	Key      string
	Title    string
	Content  string // lowercase
	Keywords []string
}

// Result is a page matching a search query.
type Result struct {
	Key   string
	Title string
}

// Index is an immutable search index. A new one is built on every cache change.
type Index struct {
	entries []Entry
}

// BuildIndex derives an index from pages, keeping their order.
func BuildIndex(pages []wikiapi.Page) *Index {
	entries := make([]Entry, 0, len(pages))
	for i := range pages {
		text := strings.ToLower(pages[i].Content)
		entries = append(entries, Entry{
			Key:      pages[i].Key,
			Title:    pages[i].Title,
			Content:  text,
			Keywords: keywords(text),
		})
	}
	return &Index{entries: entries}
}

// keywords splits text on whitespace and keeps tokens longer than minKeywordLength.
func keywords(text string) []string {
	var out []string
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) > minKeywordLength {
			out = append(out, word)
		}
	}
	return out
}

// Len returns the number of indexed pages.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns every page whose title, content or keywords contain query,
// case-insensitively. Queries shorter than MinQueryLength match nothing.
// Results keep index order.
func (ix *Index) Search(query string) []Result {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}

	needle := strings.ToLower(query)

	var results []Result
	for i := range ix.entries {
		entry := &ix.entries[i]
		if entry.matches(needle) {
			results = append(results, Result{Key: entry.Key, Title: entry.Title})
		}
	}
	return results
}

func (e *Entry) matches(needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) || strings.Contains(e.Content, needle) {
		return true
	}
	for _, keyword := range e.Keywords {
		if strings.Contains(keyword, needle) {
			return true
		}
	}
	return false
}
