package wiki

import (
	"context"
	"fmt"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// Start loads every page and opens the initial one: the stored fragment when
// it names a loaded page, the first page otherwise.
func (s *Session) Start(ctx context.Context) error {
	if err := s.LoadAll(ctx); err != nil {
		return err
	}

	key := s.location.Fragment()
	if key == "" || !s.cache.Has(key) {
		first, ok := s.cache.First()
		if !ok {
			s.logger.WarnContext(ctx, "Wiki has no pages")
			s.notify(ctx, notification{LevelInfo, s.messages.NoPages})
			return apperrors.ErrNoPages
		}
		key = first
	}

	return s.Navigate(ctx, key)
}

// LoadAll replaces the content cache with the full page list and rebuilds the search index.
func (s *Session) LoadAll(ctx context.Context) error {
	pages, err := s.store.ListPages(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load page list", "error", err)
		s.notify(ctx, notification{LevelError, s.messages.LoadListFailed})
		return fmt.Errorf("load pages: %w", err)
	}

	s.cache.Replace(pages)
	s.logger.DebugContext(ctx, "Loaded pages", "count", s.cache.Len())
	return nil
}

// Navigate fetches key and displays it. On failure the view shows the
// not-found state while the current key and fragment stay as they were.
// A response overtaken by a newer navigation is dropped with ErrStaleResponse.
func (s *Session) Navigate(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	s.mu.Lock()
	s.navSeq++
	seq := s.navSeq
	s.mu.Unlock()

	page, err := s.store.GetPageByKey(wikiapi.WithPageKey(ctx, key), key)

	s.mu.Lock()
	if seq != s.navSeq {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarding stale page response", "key", key)
		return fmt.Errorf("navigate to %s: %w", key, apperrors.ErrStaleResponse)
	}

	if err != nil {
		s.view = s.notFoundView()
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to load page", "key", key, "error", err)
		s.notify(ctx, notification{LevelError, fmt.Sprintf(s.messages.LoadPageFailed, key)})
		return fmt.Errorf("navigate to %s: %w", key, err)
	}

	s.cache.Put(*page)
	s.showLocked(ctx, *page)
	if s.current != key && s.edit != nil {
		s.edit = nil
		s.editMode = false
	}
	s.current = key
	s.setFragmentLocked(ctx, key)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Navigated", "key", key, "title", page.Title)
	return nil
}

// FollowLink navigates when href is a fragment link to a cached page. It
// reports false for links the caller should handle itself.
func (s *Session) FollowLink(ctx context.Context, href string) (bool, error) {
	key, ok := render.FragmentTarget(href)
	if !ok || !s.cache.Has(key) {
		return false, nil
	}
	return true, s.Navigate(ctx, key)
}

// Heading marks the table of contents entry id as selected. The current key
// and fragment are not affected.
func (s *Session) Heading(id string) (render.Heading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.view.TOC {
		if h.ID == id {
			s.view.Active = id
			return h, true
		}
	}
	return render.Heading{}, false
}

// Highlight marks the entry selected by scroll positions as active, or clears
// the marker when no heading qualifies. It returns the active id.
func (s *Session) Highlight(boxes []render.Box, threshold float64) string {
	active, _ := render.ActiveHeading(boxes, threshold)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Active = active
	return active
}

// Search looks up query in the search index.
func (s *Session) Search(query string) []content.Result {
	return s.cache.Search(query)
}
