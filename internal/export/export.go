// Package export persists wiki pages as markdown files in a git-backed directory.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/fclairamb/wikisync/internal/apperrors"
	"github.com/fclairamb/wikisync/internal/store"
	"github.com/fclairamb/wikisync/internal/wiki"
	"github.com/fclairamb/wikisync/internal/wikiapi"
)

// Exporter writes pages into a store.
type Exporter struct {
	store  store.Store
	commit bool
	push   bool
	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithCommit records every export as a commit.
func WithCommit(commit bool) Option {
	return func(e *Exporter) {
		e.commit = commit
	}
}

// WithPush pushes after each commit.
func WithPush(push bool) Option {
	return func(e *Exporter) {
		e.push = push
	}
}

// NewExporter creates an exporter over st.
func NewExporter(st store.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes an export run.
type Result struct {
	Written   []string
	Unchanged []string
	Removed   []string
	// Skipped lists the keys of pages that cannot be stored as a file.
	Skipped   []string
	Committed bool
	Pushed    bool
}

type fileChange struct {
	name    string
	content []byte // nil means delete
}

// Write stores one exported page.
func (e *Exporter) Write(ctx context.Context, page wiki.Export) (*Result, error) {
	key := strings.TrimSuffix(page.Filename, ".md")
	if name, err := wiki.ExportFilename(key); err != nil || name != page.Filename {
		return nil, fmt.Errorf("export %q: %w", page.Filename, apperrors.ErrInvalidExportKey)
	}
	changes := []fileChange{{name: page.Filename, content: []byte(page.Content)}}

	result, err := e.apply(ctx, changes, "Export "+key)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "Exported page", "file", page.Filename, "committed", result.Committed)
	return result, nil
}

// Mirror writes every page and removes markdown files of pages that no longer exist.
func (e *Exporter) Mirror(ctx context.Context, pages []wikiapi.Page) (*Result, error) {
	existing, err := e.store.List(ctx, ".")
	if err != nil {
		return nil, fmt.Errorf("list export directory: %w", err)
	}

	changes := make([]fileChange, 0, len(pages))
	keep := make(map[string]bool, len(pages))
	var skipped []string
	for _, p := range pages {
		name, err := wiki.ExportFilename(p.Key)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping page with unusable key", "key", p.Key, "error", err)
			skipped = append(skipped, p.Key)
			continue
		}
		keep[name] = true
		changes = append(changes, fileChange{name: name, content: []byte(p.Content)})
	}

	for _, f := range existing {
		name := path.Base(f.Path)
		if f.IsDir || !strings.HasSuffix(name, ".md") || keep[name] {
			continue
		}
		changes = append(changes, fileChange{name: name})
	}

	result, err := e.apply(ctx, changes, fmt.Sprintf("Mirror %d pages", len(pages)-len(skipped)))
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	e.logger.InfoContext(ctx, "Mirrored wiki",
		"written", len(result.Written), "unchanged", len(result.Unchanged),
		"removed", len(result.Removed), "skipped", len(skipped), "committed", result.Committed)
	return result, nil
}

func (e *Exporter) apply(ctx context.Context, changes []fileChange, message string) (*Result, error) {
	if e.commit && e.push {
		if err := e.store.Pull(ctx); err != nil {
			return nil, fmt.Errorf("pull: %w", err)
		}
	}

	result := &Result{}
	pending := changes[:0:0]
	for _, c := range changes {
		if c.content == nil {
			result.Removed = append(result.Removed, c.name)
			pending = append(pending, c)
			continue
		}

		same, err := e.unchanged(ctx, c)
		if err != nil {
			return nil, err
		}
		if same {
			result.Unchanged = append(result.Unchanged, c.name)
			// Staged anyway so an untracked copy gets committed.
			if e.commit {
				pending = append(pending, c)
			}
			continue
		}
		result.Written = append(result.Written, c.name)
		pending = append(pending, c)
	}
	changes = pending

	if !e.commit {
		for _, c := range changes {
			var err error
			if c.content == nil {
				err = e.store.Delete(ctx, c.name)
			} else {
				err = e.store.Write(ctx, c.name, c.content)
			}
			if err != nil {
				return nil, fmt.Errorf("export %s: %w", c.name, err)
			}
		}
		return result, nil
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	for _, c := range changes {
		if c.content == nil {
			err = tx.Delete(c.name)
		} else {
			err = tx.Write(c.name, c.content)
		}
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("stage %s: %w", c.name, err)
		}
	}
	if err := tx.Commit(message); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	result.Committed = true

	if !e.push {
		return result, nil
	}
	if err := e.store.Push(ctx); err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	result.Pushed = true
	return result, nil
}

// unchanged reports whether the stored file already holds the content of c.
func (e *Exporter) unchanged(ctx context.Context, c fileChange) (bool, error) {
	exists, err := e.store.Exists(ctx, c.name)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", c.name, err)
	}
	if !exists {
		return false, nil
	}

	current, err := e.store.Read(ctx, c.name)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", c.name, err)
	}
	return bytes.Equal(current, c.content), nil
}
