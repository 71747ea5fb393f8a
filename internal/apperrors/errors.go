// Package apperrors provides common static errors used throughout the application.
package apperrors

import (
	"errors"
	"fmt"
)

// HTTPError represents an HTTP error with a status code.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(statusCode int, body string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Body: body}
}

// APIError is a non-success response whose body carried a structured message.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not come from a response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// ServerMessage returns the message supplied by the server in an error body, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Common static errors used throughout the application.
var (
	// ErrPageKeyRequired is returned when a page key is required but not provided.
	ErrPageKeyRequired = errors.New("page key required")

	// ErrPageNotFound is returned when the remote store has no page for a key.
	ErrPageNotFound = errors.New("page not found")

	// ErrPageNotCached is returned when an operation needs a page that is not in the content cache.
	ErrPageNotCached = errors.New("page not in cache")

	// ErrNoPages is returned when the remote store has no pages to start from.
	ErrNoPages = errors.New("wiki has no pages")

	// ErrNoCurrentPage is returned when an operation needs a current page and none is displayed.
	ErrNoCurrentPage = errors.New("no current page")

	// ErrNoEditSession is returned when a draft operation is attempted without an open edit session.
	ErrNoEditSession = errors.New("no edit session open")

	// ErrSaveInProgress is returned when a save is requested while another one is in flight.
	ErrSaveInProgress = errors.New("save already in progress")

	// ErrNoPendingDeletion is returned when a deletion is confirmed without being requested first.
	ErrNoPendingDeletion = errors.New("no deletion pending")

	// ErrStaleResponse is returned when a response arrived after a newer navigation superseded it.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrEmptyResponse is returned when the API answers a mutation with an empty body.
	ErrEmptyResponse = errors.New("empty response body")

	// ErrEmptyUploadURL is returned when the image upload endpoint answers with an empty body.
	ErrEmptyUploadURL = errors.New("upload returned no URL")

	// ErrRemoteNotConfigured is returned when a git remote operation is attempted but no remote is configured.
	ErrRemoteNotConfigured = errors.New("no remote configured")

	// ErrRemoteNotConfiguredSetURL is returned when push/test is attempted without WIKI_GIT_URL set.
	ErrRemoteNotConfiguredSetURL = errors.New("remote not configured (set WIKI_GIT_URL)")

	// ErrHTTPSPasswordRequired is returned when HTTPS git URL is used without WIKI_GIT_PASS.
	ErrHTTPSPasswordRequired = errors.New("WIKI_GIT_PASS required for HTTPS URLs")

	// ErrEmptyInput is returned when an empty input is provided.
	ErrEmptyInput = errors.New("empty input")

	// ErrSelectorNotFound is returned when an import selector matches nothing.
	ErrSelectorNotFound = errors.New("selector matched no element")

	// ErrHeadingNotFound is returned when a table of contents id does not exist on the current page.
	ErrHeadingNotFound = errors.New("heading not found")

	// ErrUnknownCommand is returned when the shell does not know a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDeletionCanceled is returned when the user declines a delete confirmation.
	ErrDeletionCanceled = errors.New("deletion canceled")

	// ErrInvalidExportKey is returned when a page key cannot be used as a file name.
	ErrInvalidExportKey = errors.New("page key is not a valid file name")

	// ErrPathOutsideStore is returned when a store path leaves the store directory.
	ErrPathOutsideStore = errors.New("path outside store directory")
)
