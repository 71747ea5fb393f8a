package wiki

import (
	"context"
	"fmt"
	"strings"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

// Export is a page serialized for download.
type Export struct {
	Filename string
	Content  string
}

// ExportFilename returns <key>.md. Keys that are empty, "." or "..", or that
// contain a path separator are rejected.
func ExportFilename(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("export %q: %w", key, apperrors.ErrInvalidExportKey)
	}
	return key + ".md", nil
}

// ExportPage returns the cached markdown of the current page as <key>.md.
func (s *Session) ExportPage() (Export, error) {
	key := s.Current()
	if key == "" {
		return Export{}, apperrors.ErrNoCurrentPage
	}

	page, ok := s.cache.Get(key)
	if !ok {
		return Export{}, fmt.Errorf("export %s: %w", key, apperrors.ErrPageNotCached)
	}

	filename, err := ExportFilename(key)
	if err != nil {
		return Export{}, err
	}

	return Export{Filename: filename, Content: page.Content}, nil
}

// NotifyExported reports a completed export.
func (s *Session) NotifyExported(ctx context.Context, page Export) {
	s.logger.InfoContext(ctx, "Exported page", "file", page.Filename)
	s.notify(ctx, notification{LevelSuccess, s.messages.ExportSucceeded})
}
