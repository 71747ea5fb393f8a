package wiki

import (
	"time"

	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/debounce"
)

// DefaultSearchDelay is how long search input must stay quiet before a search runs.
const DefaultSearchDelay = 300 * time.Millisecond

// SearchBox runs a search once typing pauses.
type SearchBox struct {
	debouncer *debounce.Debouncer[string]
}

// NewSearchBox creates a search box over s. onResults receives the query and
// its results on a timer goroutine.
func NewSearchBox(s *Session, delay time.Duration, onResults func(query string, results []content.Result)) *SearchBox {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchBox{
		debouncer: debounce.New(delay, func(query string) {
			onResults(query, s.Search(query))
		}),
	}
}

// Input records the current text of the search box.
func (b *SearchBox) Input(query string) {
	b.debouncer.Trigger(query)
}

// Close drops any pending search.
func (b *SearchBox) Close() {
	b.debouncer.Stop()
}
