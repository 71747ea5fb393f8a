package wikiapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

const (
	imagesUploadPath = "/api/images/upload"
	imageFormField   = "image"
)

// UploadImage sends an image as a multipart form and returns the URL the server stored it at.
func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile(imageFormField, filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	c.logger.DebugContext(ctx, "Uploading image", "filename", filename, "size", buf.Len())

	body, err := c.do(ctx, http.MethodPost, imagesUploadPath, &buf, form.FormDataContentType())
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", filename, err)
	}

	url := strings.TrimSpace(string(body))
	if url == "" {
		return "", fmt.Errorf("upload image %s: %w", filename, apperrors.ErrEmptyUploadURL)
	}
	return url, nil
}
