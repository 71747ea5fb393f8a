// Package wikiapitest provides an in-memory wiki API server for tests.
package wikiapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// Server is an in-memory implementation of the wiki REST API.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	pages  []wikiapi.Page
	nextID int
	calls  map[string]int
}

// NewServer starts a server holding pages. Close it when done.
func NewServer(pages ...wikiapi.Page) *Server {
	s := &Server{
		pages:  append([]wikiapi.Page(nil), pages...),
		nextID: 1000,
		calls:  map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/wiki-pages", s.list)
	mux.HandleFunc("GET /api/wiki-pages/key/{key}", s.get)
	mux.HandleFunc("POST /api/wiki-pages", s.create)
	mux.HandleFunc("PUT /api/wiki-pages/{id}", s.update)
	mux.HandleFunc("DELETE /api/wiki-pages/{id}", s.delete)
	mux.HandleFunc("POST /api/images/upload", s.upload)

	s.Server = httptest.NewServer(mux)
	return s
}

// APIClient returns an API client for the server.
func (s *Server) APIClient() *wikiapi.Client {
	return wikiapi.NewClient(wikiapi.WithBaseURL(s.URL), wikiapi.WithRateInterval(0))
}

// Calls returns how many requests hit an operation: list, get, create, update, delete or upload.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Pages returns the stored pages.
func (s *Server) Pages() []wikiapi.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wikiapi.Page(nil), s.pages...)
}

func (s *Server) count(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.count("list")
	writeJSON(w, http.StatusOK, s.Pages())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.count("get")
	key := r.PathValue("key")
	for _, p := range s.Pages() {
		if p.Key == key {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "page not found: " + key})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.count("create")
	var input wikiapi.PageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pages {
		if p.Key == input.Key {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "key already exists: " + input.Key})
			return
		}
	}
	s.nextID++
	page := wikiapi.Page{ID: wikiapi.PageID(strconv.Itoa(s.nextID)), Key: input.Key, Title: input.Title, Content: input.Content}
	s.pages = append(s.pages, page)
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	s.count("update")
	id := wikiapi.PageID(r.PathValue("id"))
	var input wikiapi.PageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pages {
		if p.ID == id {
			s.pages[i] = wikiapi.Page{ID: id, Key: input.Key, Title: input.Title, Content: input.Content}
			writeJSON(w, http.StatusOK, s.pages[i])
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.count("delete")
	id := wikiapi.PageID(r.PathValue("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pages {
		if p.ID == id {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	s.count("upload")
	_, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(s.URL + "/images/" + header.Filename))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
