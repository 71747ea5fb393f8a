package wiki

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// fakeStore is an in-memory PageStore that counts calls.
type fakeStore struct {
	mu     sync.Mutex
	pages  []wikiapi.Page
	nextID int

	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	uploadErr error
	uploadURL string

	// normalize rewrites content on update, like a server that reformats.
	normalize func(string) string
	// getHook runs before GetPageByKey answers.
	getHook func(key string)
	// updateHook runs before UpdatePage answers.
	updateHook func()
	// answerKey rewrites the key of the record UpdatePage returns.
	answerKey func(string) string

	calls map[string]int
}

func newFakeStore(pages ...wikiapi.Page) *fakeStore {
	return &fakeStore{pages: pages, nextID: 100, calls: map[string]int{}}
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeStore) ListPages(_ context.Context) ([]wikiapi.Page, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]wikiapi.Page(nil), f.pages...), nil
}

func (f *fakeStore) GetPageByKey(_ context.Context, key string) (*wikiapi.Page, error) {
	f.record("get")
	if f.getHook != nil {
		f.getHook(key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, p := range f.pages {
		if p.Key == key {
			page := p
			return &page, nil
		}
	}
	return nil, fmt.Errorf("get page %s: %w: %w", key, apperrors.ErrPageNotFound, apperrors.NewHTTPError(404, ""))
}

func (f *fakeStore) CreatePage(_ context.Context, input wikiapi.PageInput) (*wikiapi.Page, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	page := wikiapi.Page{ID: wikiapi.PageID(strconv.Itoa(f.nextID)), Key: input.Key, Title: input.Title, Content: input.Content}
	f.pages = append(f.pages, page)
	return &page, nil
}

func (f *fakeStore) UpdatePage(_ context.Context, id wikiapi.PageID, input wikiapi.PageInput) (*wikiapi.Page, error) {
	f.record("update")
	if f.updateHook != nil {
		f.updateHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i, p := range f.pages {
		if p.ID == id {
			body := input.Content
			if f.normalize != nil {
				body = f.normalize(body)
			}
			f.pages[i] = wikiapi.Page{ID: id, Key: input.Key, Title: input.Title, Content: body}
			page := f.pages[i]
			if f.answerKey != nil {
				page.Key = f.answerKey(page.Key)
			}
			return &page, nil
		}
	}
	return nil, apperrors.NewHTTPError(404, "")
}

func (f *fakeStore) DeletePage(_ context.Context, id wikiapi.PageID) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, p := range f.pages {
		if p.ID == id {
			f.pages = append(f.pages[:i], f.pages[i+1:]...)
			return nil
		}
	}
	return apperrors.NewHTTPError(404, "")
}

func (f *fakeStore) UploadImage(_ context.Context, _ string, image io.Reader) (string, error) {
	f.record("upload")
	if _, err := io.Copy(io.Discard, image); err != nil {
		return "", err
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

// recordingNotifier keeps every notification.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []string
	kinds []Level
}

func (n *recordingNotifier) Notify(_ context.Context, level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, message)
	n.kinds = append(n.kinds, level)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes...)
}

func (n *recordingNotifier) last() (Level, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return "", ""
	}
	return n.kinds[len(n.kinds)-1], n.notes[len(n.notes)-1]
}

func newPage(id, key, title, body string) wikiapi.Page {
	return wikiapi.Page{ID: wikiapi.PageID(id), Key: key, Title: title, Content: body}
}
