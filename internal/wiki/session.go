// Package wiki holds the client session: the content cache, navigation state,
// edit session and page lifecycle operations over a remote page store.
package wiki

import (
	"context"
	"html"
	"io"
	"log/slog"
	"sync"

	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// PageStore is the remote page API the session drives.
type PageStore interface {
	ListPages(ctx context.Context) ([]wikiapi.Page, error)
	GetPageByKey(ctx context.Context, key string) (*wikiapi.Page, error)
	CreatePage(ctx context.Context, input wikiapi.PageInput) (*wikiapi.Page, error)
	UpdatePage(ctx context.Context, id wikiapi.PageID, input wikiapi.PageInput) (*wikiapi.Page, error)
	DeletePage(ctx context.Context, id wikiapi.PageID) error
	UploadImage(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Renderer turns page markdown into displayable HTML and a table of contents.
type Renderer interface {
	Render(source string) (*render.Document, error)
}

// View is what a presentation layer displays for the current state.
type View struct {
	Key        string
	Title      string
	Breadcrumb string
	Markdown   string
	HTML       string
	TOC        []render.Heading
	Active     string
	NotFound   bool
}

// Session is the state of one wiki client.
type Session struct {
	store    PageStore
	cache    *content.Cache
	renderer Renderer
	notifier Notifier
	location Location
	messages Messages
	logger   *slog.Logger

	mu       sync.Mutex
	current  string
	view     View
	navSeq   uint64
	editMode bool
	edit     *editState
	saving   bool
	pending  *PendingDeletion
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLocation sets the fragment the session starts from and writes to.
func WithLocation(l Location) Option {
	return func(s *Session) {
		s.location = l
	}
}

// WithMessages sets the message set.
func WithMessages(m Messages) Option {
	return func(s *Session) {
		s.messages = m
	}
}

// WithRenderer sets a custom renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// NewSession creates a session over store.
func NewSession(store PageStore, opts ...Option) *Session {
	s := &Session{
		store:    store,
		cache:    content.NewCache(),
		renderer: render.NewRenderer(),
		location: NewMemoryLocation(""),
		messages: English,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}

	return s
}

// Cache returns the content cache.
func (s *Session) Cache() *content.Cache {
	return s.cache
}

// Messages returns the message set in use.
func (s *Session) Messages() Messages {
	return s.messages
}

// Current returns the key of the displayed page, empty before the first navigation.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// View returns a copy of what is displayed.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.view
	view.TOC = append([]render.Heading(nil), s.view.TOC...)
	return view
}

// showLocked replaces the view with page. Must be called with s.mu held.
func (s *Session) showLocked(ctx context.Context, page wikiapi.Page) {
	view := View{
		Key:        page.Key,
		Title:      page.Title,
		Breadcrumb: s.messages.Breadcrumb(page.Title),
		Markdown:   page.Content,
	}

	doc, err := s.renderer.Render(page.Content)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to render page, showing raw content", "key", page.Key, "error", err)
		view.HTML = "<pre>" + html.EscapeString(page.Content) + "</pre>"
	} else {
		view.HTML = doc.HTML
		view.TOC = doc.TOC
	}

	s.view = view
}

func (s *Session) notFoundView() View {
	return View{
		Title:      s.messages.NotFoundTitle,
		Breadcrumb: s.messages.Breadcrumb(s.messages.NotFoundTitle),
		HTML:       "<p>" + html.EscapeString(s.messages.NotFoundBody) + "</p>",
		NotFound:   true,
	}
}

func (s *Session) setFragmentLocked(ctx context.Context, key string) {
	if err := s.location.SetFragment(key); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist location", "key", key, "error", err)
	}
}
