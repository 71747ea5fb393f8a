package wiki

import (
	"context"
	"fmt"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// editState is the draft of the page being edited. Offsets count runes.
type editState struct {
	key      string
	draft    []rune
	selStart int
	selEnd   int
}

// EditMode reports whether the editing surface is shown.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// Editing reports whether an edit session is open.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edit != nil
}

// ToggleEditMode opens an edit session when none is shown and closes it
// otherwise. It returns the new mode.
func (s *Session) ToggleEditMode() (bool, error) {
	if s.EditMode() {
		s.CancelEdit()
		return false, nil
	}
	if _, err := s.BeginEdit(); err != nil {
		return false, err
	}
	return true, nil
}

// BeginEdit opens an edit session on the current page, seeded from the cache.
func (s *Session) BeginEdit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return "", apperrors.ErrNoCurrentPage
	}
	page, ok := s.cache.Get(s.current)
	if !ok {
		return "", fmt.Errorf("edit %s: %w", s.current, apperrors.ErrPageNotCached)
	}

	draft := []rune(page.Content)
	s.edit = &editState{key: s.current, draft: draft, selStart: len(draft), selEnd: len(draft)}
	s.editMode = true
	return page.Content, nil
}

// CancelEdit closes the edit session, discarding the draft.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
	s.editMode = false
}

// Draft returns the text of the open edit session.
func (s *Session) Draft() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return "", apperrors.ErrNoEditSession
	}
	return string(s.edit.draft), nil
}

// UpdateDraft replaces the draft text and moves the cursor to its end.
func (s *Session) UpdateDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return apperrors.ErrNoEditSession
	}
	s.edit.draft = []rune(text)
	s.edit.selStart = len(s.edit.draft)
	s.edit.selEnd = s.edit.selStart
	return nil
}

// SetSelection selects the runes in [start, end) of the draft. Out of range
// offsets are clamped.
func (s *Session) SetSelection(start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return apperrors.ErrNoEditSession
	}
	n := len(s.edit.draft)
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	s.edit.selStart, s.edit.selEnd = start, end
	return nil
}

// Selection returns the selected range of the draft.
func (s *Session) Selection() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return 0, 0, apperrors.ErrNoEditSession
	}
	return s.edit.selStart, s.edit.selEnd, nil
}

// InsertMarkdown wraps the selection with before and after and collapses the
// selection to just past the wrapped text. It returns the new draft.
func (s *Session) InsertMarkdown(before, after string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return "", apperrors.ErrNoEditSession
	}
	return s.insertLocked(before, after), nil
}

func (s *Session) insertLocked(before, after string) string {
	e := s.edit
	selected := e.draft[e.selStart:e.selEnd]
	b, a := []rune(before), []rune(after)

	out := make([]rune, 0, len(e.draft)+len(b)+len(a))
	out = append(out, e.draft[:e.selStart]...)
	out = append(out, b...)
	out = append(out, selected...)
	out = append(out, a...)
	out = append(out, e.draft[e.selEnd:]...)

	cursor := e.selStart + len(b) + len(selected)
	e.draft = out
	e.selStart, e.selEnd = cursor, cursor
	return string(out)
}

// SaveInFlight reports whether a save request is outstanding.
func (s *Session) SaveInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// SaveDraft saves the text of the open edit session.
func (s *Session) SaveDraft(ctx context.Context) (*wikiapi.Page, error) {
	draft, err := s.Draft()
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, draft)
}

// Save sends draft as the new content of the current page. The server's
// answer replaces the cache entry and closes the edit session. On failure the
// cache and view are unchanged and the session stays open with draft in it.
func (s *Session) Save(ctx context.Context, draft string) (*wikiapi.Page, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, apperrors.ErrSaveInProgress
	}
	key := s.current
	if key == "" {
		s.mu.Unlock()
		return nil, apperrors.ErrNoCurrentPage
	}
	page, ok := s.cache.Get(key)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("save %s: %w", key, apperrors.ErrPageNotCached)
	}
	s.saving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	s.logger.DebugContext(ctx, "Saving page", "key", key, "id", page.ID.String())
	s.notify(ctx, notification{LevelInfo, s.messages.Saving})

	updated, err := s.store.UpdatePage(wikiapi.WithPageKey(ctx, key), page.ID, wikiapi.PageInput{
		Key:     page.Key,
		Title:   page.Title,
		Content: draft,
	})
	if err != nil {
		s.mu.Lock()
		if s.edit != nil && s.edit.key == key {
			s.edit.draft = []rune(draft)
			s.edit.selStart = min(s.edit.selStart, len(s.edit.draft))
			s.edit.selEnd = min(s.edit.selEnd, len(s.edit.draft))
		}
		s.mu.Unlock()

		s.logger.ErrorContext(ctx, "Failed to save page", "key", key, "error", err)
		reason := failureReason(err, s.messages.SaveStatus)
		s.notify(ctx, notification{LevelError, fmt.Sprintf(s.messages.SaveFailed, reason)})
		return nil, fmt.Errorf("save %s: %w", key, err)
	}

	if updated.Key != key {
		s.logger.WarnContext(ctx, "Server answered with another key, keeping the saved one",
			"key", key, "returned_key", updated.Key)
		updated.Key = key
	}

	s.mu.Lock()
	s.cache.Put(*updated)
	if s.current == key {
		s.showLocked(ctx, *updated)
	}
	if s.edit != nil && s.edit.key == key {
		s.edit = nil
		s.editMode = false
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Saved page", "key", key, "id", updated.ID.String())
	s.notify(ctx, notification{LevelSuccess, s.messages.SaveSucceeded})
	return updated, nil
}

// failureReason prefers the message the server sent, then a status based
// message, then the error itself.
func failureReason(err error, statusFormat string) string {
	if msg := apperrors.ServerMessage(err); msg != "" {
		return msg
	}
	if code := apperrors.StatusCode(err); code != 0 {
		return fmt.Sprintf(statusFormat, code)
	}
	return err.Error()
}
