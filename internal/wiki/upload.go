package wiki

import (
	"context"
	"fmt"
	"io"
)

// UploadImage stores an image and returns its URL. When an edit session is
// open, an image reference is inserted at the cursor.
func (s *Session) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	s.notify(ctx, notification{LevelInfo, s.messages.Uploading})

	url, err := s.store.UploadImage(ctx, filename, image)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upload image", "filename", filename, "error", err)
		s.notify(ctx, notification{LevelError, s.messages.UploadFailed})
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	s.mu.Lock()
	if s.edit != nil {
		s.insertLocked("", s.messages.ImageMarkdown(url))
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Uploaded image", "filename", filename, "url", url)
	s.notify(ctx, notification{LevelSuccess, s.messages.UploadSucceeded})
	return url, nil
}
