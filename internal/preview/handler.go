package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/content"
	"github.com/fclairamb/wikisync/internal/render"
	"github.com/fclairamb/wikisync/internal/version"
	"github.com/fclairamb/wikisync/internal/wiki"
)

// StyleSheet provides the CSS for highlighted code blocks.
type StyleSheet interface {
	CSS() (string, error)
}

// pageData feeds the HTML templates.
type pageData struct {
	SiteTitle  string
	Heading    string
	Breadcrumb string
	Current    string
	Query      string
	Empty      string
	HTML       template.HTML
	NotFound   bool
	Pages      []content.Result
	TOC        []render.Heading
	Results    []content.Result
}

// Handler serves the preview pages.
type Handler struct {
	session   *wiki.Session
	styles    StyleSheet
	title     string
	logger    *slog.Logger
	templates map[string]*template.Template

	// mu keeps navigation and the view read after it together.
	mu sync.Mutex
}

// NewHandler creates a preview handler over session.
func NewHandler(session *wiki.Session, styles StyleSheet, title string, logger *slog.Logger) *Handler {
	return &Handler{
		session:   session,
		styles:    styles,
		title:     title,
		logger:    logger,
		templates: parseTemplates(),
	}
}

// HandleIndex lists every page, reloading the list first.
func (h *Handler) HandleIndex(writer http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(writer, req)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.LoadAll(req.Context()); err != nil {
		http.Error(writer, h.session.Messages().LoadListFailed, http.StatusBadGateway)
		return
	}

	h.render(writer, req, "index", pageData{
		Empty:   h.session.Messages().NoPages,
		Current: h.session.Current(),
	}, http.StatusOK)
}

// HandlePage renders the page named by the key path value.
func (h *Handler) HandlePage(writer http.ResponseWriter, req *http.Request) {
	key := req.PathValue("key")

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := req.Context()
	if h.session.Cache().Len() == 0 {
		if err := h.session.LoadAll(ctx); err != nil {
			http.Error(writer, h.session.Messages().LoadListFailed, http.StatusBadGateway)
			return
		}
	}

	status := http.StatusOK
	if err := h.session.Navigate(ctx, key); err != nil {
		status = http.StatusBadGateway
		if errors.Is(err, apperrors.ErrPageNotFound) {
			status = http.StatusNotFound
		}
	}

	view := h.session.View()
	data := pageData{
		Heading:    view.Title,
		Breadcrumb: view.Breadcrumb,
		Current:    view.Key,
		HTML:       template.HTML(view.HTML), //nolint:gosec // raw HTML is omitted by the markdown renderer
		NotFound:   status != http.StatusOK,
		TOC:        view.TOC,
	}
	if data.NotFound {
		data.Heading = h.session.Messages().NotFoundTitle
		data.Empty = h.session.Messages().NotFoundBody
		data.Breadcrumb = ""
		data.TOC = nil
	}

	h.render(writer, req, "page", data, status)
}

// HandleSearch lists the pages matching the q parameter.
func (h *Handler) HandleSearch(writer http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session.Cache().Len() == 0 {
		if err := h.session.LoadAll(req.Context()); err != nil {
			http.Error(writer, h.session.Messages().LoadListFailed, http.StatusBadGateway)
			return
		}
	}

	h.render(writer, req, "search", pageData{
		Heading: query,
		Query:   query,
		Current: h.session.Current(),
		Results: h.session.Search(query),
	}, http.StatusOK)
}

// HandleCSS serves the code highlighting stylesheet.
func (h *Handler) HandleCSS(writer http.ResponseWriter, req *http.Request) {
	css, err := h.styles.CSS()
	if err != nil {
		h.logger.ErrorContext(req.Context(), "failed to build stylesheet", "error", err)
		http.Error(writer, "stylesheet unavailable", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/css; charset=utf-8")
	if _, err := writer.Write([]byte(css)); err != nil {
		h.logger.DebugContext(req.Context(), "failed to write stylesheet", "error", err)
	}
}

// HandleVersion handles the /api/version endpoint.
func (h *Handler) HandleVersion(writer http.ResponseWriter, req *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(version.Info()); err != nil {
		h.logger.ErrorContext(req.Context(), "failed to encode version response", "error", err)
	}
}

// HandleHealth handles the /health endpoint for health checks.
func (h *Handler) HandleHealth(writer http.ResponseWriter, req *http.Request) {
	response := map[string]any{
		"status": "ok",
		"pages":  h.session.Cache().Len(),
	}

	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(response); err != nil {
		h.logger.ErrorContext(req.Context(), "failed to encode health response", "error", err)
	}
}

func (h *Handler) render(writer http.ResponseWriter, req *http.Request, name string, data pageData, status int) {
	data.SiteTitle = h.title
	for _, p := range h.session.Cache().Pages() {
		data.Pages = append(data.Pages, content.Result{Key: p.Key, Title: p.Title})
	}

	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(req.Context(), "failed to render template", "template", name, "error", err)
		http.Error(writer, "render failed", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	if _, err := buf.WriteTo(writer); err != nil {
		h.logger.DebugContext(req.Context(), "failed to write response", "error", err)
	}
}
