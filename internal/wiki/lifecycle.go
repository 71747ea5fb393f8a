package wiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// PendingDeletion is the page a confirmation is pending for.
type PendingDeletion struct {
	ID    wikiapi.PageID
	Key   string
	Title string
}

// PageKey derives a page key from a display name: lowercase, with whitespace
// runs turned into single hyphens.
func PageKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Create creates a page named name with a placeholder body, reloads the page
// list and opens the new page. Blank names are ignored without any request.
func (s *Session) Create(ctx context.Context, name string) (*wikiapi.Page, error) {
	title := strings.TrimSpace(name)
	if title == "" {
		return nil, nil //nolint:nilnil // blank names are silently ignored
	}
	return s.CreateWithContent(ctx, title, s.messages.NewPageContent(title))
}

// CreateWithContent is Create with a caller supplied body.
func (s *Session) CreateWithContent(ctx context.Context, name, body string) (*wikiapi.Page, error) {
	title := strings.TrimSpace(name)
	if title == "" {
		return nil, nil //nolint:nilnil // blank names are silently ignored
	}
	key := PageKey(title)

	created, err := s.store.CreatePage(wikiapi.WithPageKey(ctx, key), wikiapi.PageInput{
		Key:     key,
		Title:   title,
		Content: body,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create page", "key", key, "error", err)
		s.notify(ctx, notification{LevelError, failureReason(err, s.messages.CreateStatus)})
		return nil, fmt.Errorf("create %s: %w", key, err)
	}

	s.logger.InfoContext(ctx, "Created page", "key", created.Key, "id", created.ID.String())
	s.notify(ctx, notification{LevelSuccess, fmt.Sprintf(s.messages.CreateSucceeded, created.Title)})

	if err := s.LoadAll(ctx); err != nil {
		return created, err
	}

	target := created.Key
	if target == "" {
		target = key
	}
	if err := s.Navigate(ctx, target); err != nil {
		return created, err
	}
	return created, nil
}

// RequestDelete records key as pending deletion and returns what the
// confirmation should name.
func (s *Session) RequestDelete(key string) (PendingDeletion, error) {
	page, ok := s.cache.Get(key)
	if !ok {
		return PendingDeletion{}, fmt.Errorf("delete %s: %w", key, apperrors.ErrPageNotCached)
	}

	pending := PendingDeletion{ID: page.ID, Key: page.Key, Title: page.Title}

	s.mu.Lock()
	s.pending = &pending
	s.mu.Unlock()

	return pending, nil
}

// Pending returns the deletion awaiting confirmation, if any.
func (s *Session) Pending() (PendingDeletion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return PendingDeletion{}, false
	}
	return *s.pending, true
}

// CancelDelete dismisses the pending deletion.
func (s *Session) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// ConfirmDelete deletes the pending page. The pending deletion is cleared
// whatever the outcome. On success the page list is reloaded once and, when
// the deleted page was displayed, the first remaining page is opened.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending == nil {
		return apperrors.ErrNoPendingDeletion
	}

	err := s.store.DeletePage(wikiapi.WithPageKey(ctx, pending.Key), pending.ID)

	s.mu.Lock()
	if s.pending == pending {
		s.pending = nil
	}
	wasCurrent := s.current == pending.Key
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete page", "key", pending.Key, "id", pending.ID.String(), "error", err)
		s.notify(ctx, notification{LevelError, failureReason(err, s.messages.DeleteStatus)})
		return fmt.Errorf("delete %s: %w", pending.Key, err)
	}

	s.logger.InfoContext(ctx, "Deleted page", "key", pending.Key, "id", pending.ID.String())
	s.notify(ctx, notification{LevelSuccess, fmt.Sprintf(s.messages.DeleteSucceeded, pending.Title)})

	if err := s.LoadAll(ctx); err != nil {
		return err
	}
	if !wasCurrent {
		return nil
	}

	s.mu.Lock()
	if s.edit != nil && s.edit.key == pending.Key {
		s.edit = nil
		s.editMode = false
	}
	s.mu.Unlock()

	first, ok := s.cache.First()
	if !ok {
		s.mu.Lock()
		s.current = ""
		s.view = View{}
		s.setFragmentLocked(ctx, "")
		s.mu.Unlock()
		return nil
	}
	return s.Navigate(ctx, first)
}
