package wikiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fclairamb/wikisync/internal/apperrors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// pageKeyKey is the context key for storing the page key a request targets.
	pageKeyKey contextKey = "pageKey"
)

// WithPageKey returns a new context with the page key stored.
func WithPageKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, pageKeyKey, key)
}

// PageKeyFromContext extracts the page key from context, returns empty string if not set.
func PageKeyFromContext(ctx context.Context) string {
	if v := ctx.Value(pageKeyKey); v != nil {
		if key, ok := v.(string); ok {
			return key
		}
	}
	return ""
}

const (
	// DefaultBaseURL is the wiki API base URL used when none is configured.
	DefaultBaseURL = "https://wiki-api.ddns.net"

	// HTTP client configuration.
	httpTimeout = 30 * time.Second // Timeout for HTTP requests

	// DefaultRateInterval spaces out requests (~5 requests/second).
	DefaultRateInterval = 200 * time.Millisecond

	// HTTP status codes.
	httpStatusBadRequest = 400 // First status code indicating an error

	contentTypeJSON = "application/json"
)

// Client is a wiki API client with rate limiting.
// Requests are never retried: a failure is reported to the caller as is.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	logger      *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = l
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(client *Client) {
		client.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRateInterval sets the minimum spacing between requests. Zero disables throttling.
func WithRateInterval(interval time.Duration) ClientOption {
	return func(client *Client) {
		if interval <= 0 {
			client.rateLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		client.rateLimiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a new wiki API client.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: httpTimeout},
		rateLimiter: rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		baseURL:     DefaultBaseURL,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the API base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON performs a request with an optional JSON body and decodes a JSON result.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	respBody, err := c.do(ctx, method, path, bodyReader, contentTypeJSON)
	if err != nil {
		return err
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// do performs an HTTP request with rate limiting and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeJSON+", text/plain")

	logArgs := []any{"method", method, "path", path}
	if key := PageKeyFromContext(ctx); key != "" {
		logArgs = append(logArgs, "page_key", key)
	}
	c.logger.DebugContext(ctx, "API request", logArgs...)
	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.WarnContext(ctx, "failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	respLogArgs := append(logArgs, "status", resp.StatusCode, "duration", time.Since(startTime))
	c.logger.DebugContext(ctx, "API response", respLogArgs...)

	if resp.StatusCode >= httpStatusBadRequest {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decodeError turns a non-success response into an error, preferring the server's message.
func decodeError(statusCode int, body []byte) error {
	errResp := apperrors.APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		return apperrors.NewHTTPError(statusCode, strings.TrimSpace(string(body)))
	}
	return &errResp
}
