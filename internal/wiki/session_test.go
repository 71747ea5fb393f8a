package wiki

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

var errTransport = errors.New("connection refused")

func newTestSession(t *testing.T, store *fakeStore, opts ...Option) (*Session, *recordingNotifier, *MemoryLocation) {
	t.Helper()

	notifier := &recordingNotifier{}
	location := NewMemoryLocation("")
	opts = append([]Option{WithNotifier(notifier), WithLocation(location)}, opts...)
	return NewSession(store, opts...), notifier, location
}

func TestSession_NavigateIntro(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	s, _, location := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, s.LoadAll(ctx))
	require.NoError(t, s.Navigate(ctx, "intro"))

	view := s.View()
	assert.Equal(t, "Intro", view.Title)
	assert.Equal(t, "Home > Intro", view.Breadcrumb)
	assert.False(t, view.NotFound)
	assert.Contains(t, view.HTML, "<h1>Intro</h1>")
	assert.Equal(t, "intro", location.Fragment())
	assert.Equal(t, "intro", s.Current())
}

func TestSession_NavigateMissingKeepsState(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	s, notifier, location := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, "intro"))

	err := s.Navigate(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrPageNotFound)

	view := s.View()
	assert.True(t, view.NotFound)
	assert.Equal(t, "Page Not Found", view.Title)
	assert.Equal(t, "Home > Page Not Found", view.Breadcrumb)
	assert.Equal(t, "intro", s.Current())
	assert.Equal(t, "intro", location.Fragment())

	level, _ := notifier.last()
	assert.Equal(t, LevelError, level)
}

func TestSession_NavigateTransportFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	s, _, location := newTestSession(t, store, WithMessages(Portuguese))
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, "intro"))
	store.getErr = errTransport

	err := s.Navigate(ctx, "intro")
	require.ErrorIs(t, err, errTransport)
	assert.Equal(t, "intro", s.Current())
	assert.Equal(t, "intro", location.Fragment())
	assert.Equal(t, "Página Não Encontrada", s.View().Title)
	assert.Equal(t, "Home > Página Não Encontrada", s.View().Breadcrumb)
}

func TestSession_NavigateEmptyKeyIsNoop(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	s, _, _ := newTestSession(t, store)

	require.NoError(t, s.Navigate(context.Background(), ""))
	assert.Zero(t, store.total())
}

func TestSession_LoadAllKeysMatch(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "intro", "Intro", "# Intro"),
		newPage("2", "setup", "Setup", "Install things"),
	)
	s, _, _ := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, s.LoadAll(ctx))
	for _, key := range s.Cache().Keys() {
		got, ok := s.Cache().Get(key)
		require.True(t, ok)
		assert.Equal(t, key, got.Key)
	}

	store.pages = store.pages[:1]
	require.NoError(t, s.LoadAll(ctx))
	assert.Equal(t, []string{"intro"}, s.Cache().Keys())
}

func TestSession_LoadAllFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	s, notifier, _ := newTestSession(t, store)
	ctx := context.Background()

	require.NoError(t, s.LoadAll(ctx))
	store.listErr = errTransport

	require.ErrorIs(t, s.LoadAll(ctx), errTransport)
	assert.Equal(t, []string{"intro"}, s.Cache().Keys())
	_, msg := notifier.last()
	assert.Equal(t, English.LoadListFailed, msg)
}

func TestSession_Start(t *testing.T) {
	t.Parallel()

	pages := []wikiapi.Page{
		newPage("1", "intro", "Intro", "# Intro"),
		newPage("2", "setup", "Setup", "# Setup"),
	}

	t.Run("fragment", func(t *testing.T) {
		t.Parallel()
		s, _, location := newTestSession(t, newFakeStore(pages...))
		require.NoError(t, location.SetFragment("setup"))
		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, "setup", s.Current())
	})

	t.Run("unknown fragment", func(t *testing.T) {
		t.Parallel()
		s, _, location := newTestSession(t, newFakeStore(pages...))
		require.NoError(t, location.SetFragment("gone"))
		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, "intro", s.Current())
		assert.Equal(t, "intro", location.Fragment())
	})

	t.Run("no pages", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newTestSession(t, newFakeStore())
		require.ErrorIs(t, s.Start(context.Background()), apperrors.ErrNoPages)
		assert.Empty(t, s.Current())
	})
}

func TestSession_StaleNavigationDiscarded(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "slow", "Slow", "# Slow"),
		newPage("2", "fast", "Fast", "# Fast"),
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	store.getHook = func(key string) {
		if key == "slow" {
			close(entered)
			<-release
		}
	}
	s, _, location := newTestSession(t, store)
	ctx := context.Background()

	slowErr := make(chan error, 1)
	go func() { slowErr <- s.Navigate(ctx, "slow") }()

	<-entered
	require.NoError(t, s.Navigate(ctx, "fast"))
	close(release)

	require.ErrorIs(t, <-slowErr, apperrors.ErrStaleResponse)
	assert.Equal(t, "fast", s.Current())
	assert.Equal(t, "Fast", s.View().Title)
	assert.Equal(t, "fast", location.Fragment())
}

func TestSession_FollowLink(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "intro", "Intro", "See [setup](#setup)"),
		newPage("2", "setup", "Setup", "# Setup"),
	)
	s, _, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	handled, err := s.FollowLink(ctx, "#setup")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "setup", s.Current())

	handled, err = s.FollowLink(ctx, "#unknown")
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = s.FollowLink(ctx, "https://example.com/#setup")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, "setup", s.Current())
}

func TestSession_HeadingSelection(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "guide", "Guide", "# Guide\n\n## Install\n\n### Linux\n\n## Usage\n"))
	s, _, location := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	view := s.View()
	require.Len(t, view.TOC, 3)
	assert.Equal(t, render.Heading{ID: "heading-1", Text: "Linux", Level: 3}, view.TOC[1])

	h, ok := s.Heading("heading-2")
	require.True(t, ok)
	assert.Equal(t, "Usage", h.Text)
	assert.Equal(t, "heading-2", s.View().Active)
	assert.Equal(t, "guide", s.Current())
	assert.Equal(t, "guide", location.Fragment())

	_, ok = s.Heading("heading-9")
	assert.False(t, ok)

	active := s.Highlight([]render.Box{{ID: "heading-0", Top: 20, Bottom: 40}}, render.DefaultScrollThreshold)
	assert.Equal(t, "heading-0", active)
	assert.Empty(t, s.Highlight(nil, render.DefaultScrollThreshold))
}

type failingRenderer struct{}

func (failingRenderer) Render(string) (*render.Document, error) {
	return nil, errors.New("renderer unavailable")
}

func TestSession_RenderFailureShowsRawContent(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "a <b> c"))
	s, _, _ := newTestSession(t, store, WithRenderer(failingRenderer{}))

	require.NoError(t, s.Start(context.Background()))
	view := s.View()
	assert.Equal(t, "<pre>a &lt;b&gt; c</pre>", view.HTML)
	assert.Empty(t, view.TOC)
	assert.Equal(t, "Intro", view.Title)
}

func TestSession_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	store.normalize = func(s string) string { return strings.TrimSpace(s) + "\n" }
	s, notifier, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	draft, err := s.BeginEdit()
	require.NoError(t, err)
	assert.Equal(t, "# Intro", draft)

	saved, err := s.Save(ctx, "# Intro\n\nMore text.   ")
	require.NoError(t, err)

	got, ok := s.Cache().Get(s.Current())
	require.True(t, ok)
	assert.Equal(t, *saved, got)
	assert.Equal(t, "# Intro\n\nMore text.\n", got.Content)
	assert.Equal(t, got.Content, s.View().Markdown)
	assert.False(t, s.Editing())
	assert.False(t, s.EditMode())
	assert.False(t, s.SaveInFlight())

	assert.Contains(t, notifier.all(), English.Saving)
	level, msg := notifier.last()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, English.SaveSucceeded, msg)
}

func TestSession_SaveKeepsCacheKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty key":   "",
		"renamed key": "intro-2",
	}

	for name, answered := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore(
				newPage("1", "intro", "Intro", "# Intro"),
				newPage("2", "setup", "Setup", "# Setup"),
			)
			store.answerKey = func(string) string { return answered }
			s, _, _ := newTestSession(t, store)
			ctx := context.Background()
			require.NoError(t, s.Start(ctx))

			saved, err := s.Save(ctx, "# Intro\n\nUpdated.")
			require.NoError(t, err)
			assert.Equal(t, "intro", saved.Key)

			got, ok := s.Cache().Get("intro")
			require.True(t, ok)
			assert.Equal(t, "# Intro\n\nUpdated.", got.Content)
			assert.False(t, s.Cache().Has(answered))
			assert.Equal(t, []string{"intro", "setup"}, s.Cache().Keys())
			assert.Equal(t, "intro", s.View().Key)
		})
	}
}

func TestSession_SaveFailureKeepsState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"server message", &apperrors.APIError{StatusCode: 409, Message: "key taken"}, "Error while saving: key taken"},
		{"status fallback", apperrors.NewHTTPError(500, "oops"), "Error while saving: Error while saving! Status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
			s, notifier, _ := newTestSession(t, store)
			ctx := context.Background()
			require.NoError(t, s.Start(ctx))
			_, err := s.BeginEdit()
			require.NoError(t, err)

			store.updateErr = tt.err
			_, err = s.Save(ctx, "new body")
			require.ErrorIs(t, err, tt.err)

			got, _ := s.Cache().Get("intro")
			assert.Equal(t, "# Intro", got.Content)
			assert.Equal(t, "# Intro", s.View().Markdown)
			assert.True(t, s.Editing())
			draft, err := s.Draft()
			require.NoError(t, err)
			assert.Equal(t, "new body", draft)
			assert.False(t, s.SaveInFlight())

			_, msg := notifier.last()
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestSession_SaveRejectsReentry(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	entered := make(chan struct{})
	release := make(chan struct{})
	store.updateHook = func() {
		close(entered)
		<-release
	}
	s, _, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	first := make(chan error, 1)
	go func() {
		_, err := s.Save(ctx, "one")
		first <- err
	}()

	<-entered
	assert.True(t, s.SaveInFlight())
	_, err := s.Save(ctx, "two")
	require.ErrorIs(t, err, apperrors.ErrSaveInProgress)

	close(release)
	require.NoError(t, <-first)
	assert.False(t, s.SaveInFlight())
	assert.Equal(t, 1, store.count("update"))
}

func TestSession_SaveWithoutCurrentPage(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, newFakeStore())
	_, err := s.Save(context.Background(), "text")
	require.ErrorIs(t, err, apperrors.ErrNoCurrentPage)

	_, err = s.SaveDraft(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoEditSession)
}

func TestSession_EditSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "intro", "Intro", "hello world"),
		newPage("2", "setup", "Setup", "# Setup"),
	)
	s, _, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	on, err := s.ToggleEditMode()
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, s.SetSelection(6, 11))
	out, err := s.InsertMarkdown("**", "**")
	require.NoError(t, err)
	assert.Equal(t, "hello **world**", out)

	start, end, err := s.Selection()
	require.NoError(t, err)
	assert.Equal(t, 13, start)
	assert.Equal(t, 13, end)

	require.NoError(t, s.SetSelection(-4, 99))
	start, end, _ = s.Selection()
	assert.Equal(t, 0, start)
	assert.Equal(t, len("hello **world**"), end)

	saved, err := s.SaveDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello **world**", saved.Content)
	assert.False(t, s.Editing())

	_, err = s.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, s.Navigate(ctx, "setup"))
	assert.False(t, s.Editing())

	_, err = s.InsertMarkdown("a", "b")
	require.ErrorIs(t, err, apperrors.ErrNoEditSession)

	on, err = s.ToggleEditMode()
	require.NoError(t, err)
	require.True(t, on)
	on, err = s.ToggleEditMode()
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.Editing())
}

func TestSession_CreateWhitespaceSendsNothing(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	s, notifier, _ := newTestSession(t, store)

	created, err := s.Create(context.Background(), "  \t ")
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Zero(t, store.total())
	_, msg := notifier.last()
	assert.Empty(t, msg)
}

func TestSession_Create(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	s, notifier, location := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	created, err := s.Create(ctx, "  My   New Page ")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "my-new-page", created.Key)
	assert.Equal(t, "My   New Page", created.Title)
	assert.Equal(t, "# My   New Page\n\nWrite the initial content of your new page here.", created.Content)
	assert.Equal(t, 2, store.count("list"))
	assert.Equal(t, "my-new-page", s.Current())
	assert.Equal(t, "my-new-page", location.Fragment())
	assert.True(t, s.Cache().Has("my-new-page"))

	assert.Contains(t, notifier.notes, `Page "My   New Page" created!`)
}

func TestSession_CreateFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro"))
	store.createErr = &apperrors.APIError{StatusCode: 409, Message: "A page with this key already exists"}
	s, notifier, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	_, err := s.Create(ctx, "Intro")
	require.Error(t, err)
	assert.Equal(t, 1, store.count("list"))
	assert.Equal(t, "intro", s.Current())

	_, msg := notifier.last()
	assert.Equal(t, "A page with this key already exists", msg)

	store.createErr = apperrors.NewHTTPError(502, "")
	_, err = s.Create(ctx, "Other")
	require.Error(t, err)
	_, msg = notifier.last()
	assert.Equal(t, "Error while creating the page! Status: 502", msg)
}

func TestPageKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Getting Started":    "getting-started",
		"  Spaced\tOut\n  ": "spaced-out",
		"API":                "api",
	}
	for in, want := range tests {
		assert.Equal(t, want, PageKey(in), in)
	}
}

func TestSession_DeleteScenario(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "intro", "Intro", "# Intro"),
		newPage("7", "old", "Old Page", "# Old"),
	)
	s, notifier, location := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.LoadAll(ctx))
	require.NoError(t, s.Navigate(ctx, "old"))

	pending, err := s.RequestDelete("old")
	require.NoError(t, err)
	assert.Equal(t, PendingDeletion{ID: "7", Key: "old", Title: "Old Page"}, pending)

	listsBefore := store.count("list")
	require.NoError(t, s.ConfirmDelete(ctx))

	_, ok := s.Pending()
	assert.False(t, ok)
	assert.Equal(t, listsBefore+1, store.count("list"))
	assert.False(t, s.Cache().Has("old"))
	assert.Equal(t, "intro", s.Current())
	assert.Equal(t, "intro", location.Fragment())
	assert.Contains(t, notifier.notes, `Page "Old Page" deleted!`)
}

func TestSession_DeleteLastPage(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("7", "old", "Old Page", "# Old"))
	s, _, location := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	_, err := s.RequestDelete("old")
	require.NoError(t, err)
	require.NoError(t, s.ConfirmDelete(ctx))

	assert.Empty(t, s.Current())
	assert.Empty(t, location.Fragment())
	assert.Equal(t, View{}, s.View())
}

func TestSession_DeleteFailureClearsPending(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("7", "old", "Old Page", "# Old"))
	store.deleteErr = apperrors.NewHTTPError(500, "")
	s, notifier, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.LoadAll(ctx))

	_, err := s.RequestDelete("old")
	require.NoError(t, err)

	require.Error(t, s.ConfirmDelete(ctx))
	_, ok := s.Pending()
	assert.False(t, ok)
	assert.Equal(t, 1, store.count("list"))
	assert.True(t, s.Cache().Has("old"))

	_, msg := notifier.last()
	assert.Equal(t, "Error while deleting the page! Status: 500", msg)
}

func TestSession_CancelDelete(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("7", "old", "Old Page", "# Old"))
	s, _, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.LoadAll(ctx))

	_, err := s.RequestDelete("old")
	require.NoError(t, err)
	s.CancelDelete()

	require.ErrorIs(t, s.ConfirmDelete(ctx), apperrors.ErrNoPendingDeletion)
	assert.Zero(t, store.count("delete"))

	_, err = s.RequestDelete("unknown")
	require.ErrorIs(t, err, apperrors.ErrPageNotCached)
}

func TestSession_ExportPage(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "# Intro\n\nBody"))
	s, notifier, _ := newTestSession(t, store)

	_, err := s.ExportPage()
	require.ErrorIs(t, err, apperrors.ErrNoCurrentPage)

	require.NoError(t, s.Start(context.Background()))
	total := store.total()

	export, err := s.ExportPage()
	require.NoError(t, err)
	assert.Equal(t, Export{Filename: "intro.md", Content: "# Intro\n\nBody"}, export)
	assert.Equal(t, total, store.total())

	s.NotifyExported(context.Background(), export)
	level, msg := notifier.last()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, English.ExportSucceeded, msg)
}

func TestSession_ExportPageRejectsPathKeys(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "../escaped", "Escaped", "pwn"))
	s, _, _ := newTestSession(t, store)
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, "../escaped", s.Current())

	_, err := s.ExportPage()
	require.ErrorIs(t, err, apperrors.ErrInvalidExportKey)
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"intro":         true,
		"release-notes": true,
		"..":            false,
		".":             false,
		"":              false,
		"../escaped":    false,
		"notes/../../x": false,
		`windows\path`:  false,
		"/etc/passwd":   false,
	}

	for key, valid := range tests {
		name, err := ExportFilename(key)
		if valid {
			require.NoError(t, err, key)
			assert.Equal(t, key+".md", name)
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrInvalidExportKey, key)
	}
}

func TestSession_UploadImage(t *testing.T) {
	t.Parallel()

	store := newFakeStore(newPage("1", "intro", "Intro", "text"))
	store.uploadURL = "https://img.example.com/cat.png"
	s, notifier, _ := newTestSession(t, store)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	_, err := s.BeginEdit()
	require.NoError(t, err)
	require.NoError(t, s.SetSelection(0, 0))

	url, err := s.UploadImage(ctx, "cat.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/cat.png", url)

	draft, err := s.Draft()
	require.NoError(t, err)
	assert.Equal(t, "\n![Image description](https://img.example.com/cat.png)\ntext", draft)

	level, msg := notifier.last()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, English.UploadSucceeded, msg)

	store.uploadErr = apperrors.NewHTTPError(413, "")
	_, err = s.UploadImage(ctx, "big.png", strings.NewReader("png"))
	require.Error(t, err)
	_, msg = notifier.last()
	assert.Equal(t, English.UploadFailed, msg)
}

func TestSearchBox_Debounces(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		newPage("1", "animals", "Animals", "cats are great"),
		newPage("2", "plants", "Plants", "ferns"),
	)
	s, _, _ := newTestSession(t, store)
	require.NoError(t, s.LoadAll(context.Background()))

	type run struct {
		query   string
		results []content.Result
	}
	runs := make(chan run, 4)
	box := NewSearchBox(s, 30*time.Millisecond, func(q string, r []content.Result) {
		runs <- run{q, r}
	})
	defer box.Close()

	box.Input("c")
	box.Input("ca")
	box.Input("cat")

	select {
	case got := <-runs:
		assert.Equal(t, "cat", got.query)
		assert.Equal(t, []content.Result{{Key: "animals", Title: "Animals"}}, got.results)
	case <-time.After(time.Second):
		t.Fatal("search never ran")
	}

	select {
	case got := <-runs:
		t.Fatalf("unexpected extra search for %q", got.query)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestMessagesFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Portuguese, MessagesFor("pt-BR"))
	assert.Equal(t, Portuguese, MessagesFor("PT"))
	assert.Equal(t, English, MessagesFor(""))
	assert.Equal(t, English, MessagesFor("fr"))
	assert.Equal(t, "# Nova\n\nEscreva aqui o conteúdo inicial da sua nova página.", Portuguese.NewPageContent("Nova"))
}
