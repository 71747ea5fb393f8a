package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fclairamb/wikisync/internal/version"
	"github.com/fclairamb/wikisync/internal/wiki"
)

const (
	// HTTP server timeouts.
	readHeaderTimeout = 10 * time.Second // Timeout for reading request headers
	shutdownTimeout   = 30 * time.Second // Timeout for graceful shutdown
)

// Server represents the preview HTTP server.
type Server struct {
	handler    *Handler
	httpServer *http.Server
	config     *ServerConfig
	logger     *slog.Logger
	session    *wiki.Session
}

// NewServer creates a new preview server.
func NewServer(cfg *ServerConfig, session *wiki.Session, styles StyleSheet, logger *slog.Logger) *Server {
	cfg = cfg.WithDefaults()
	handler := NewHandler(session, styles, cfg.Title, logger)

	return &Server{
		handler: handler,
		config:  cfg,
		logger:  logger,
		session: session,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           loggingMiddleware(Routes(handler), logger),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Routes registers the preview endpoints.
func Routes(handler *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HandleHealth)
	mux.HandleFunc("GET /api/version", handler.HandleVersion)
	mux.HandleFunc("GET /static/chroma.css", handler.HandleCSS)
	mux.HandleFunc("GET /search", handler.HandleSearch)
	mux.HandleFunc("GET /pages/{key}", handler.HandlePage)
	mux.HandleFunc("GET /", handler.HandleIndex)
	return mux
}

// Start starts the HTTP server. This method blocks until the server is stopped.
func (s *Server) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting preview server",
		"port", s.config.Port,
		"version", version.Version,
		"commit", version.Commit,
		"build_time", version.GitTime)

	// An unreachable API is reported per request, not at startup.
	if err := s.session.LoadAll(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial page load failed", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	return nil
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// loggingMiddleware logs all HTTP requests.
func loggingMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, req)

		logger.DebugContext(req.Context(), "http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", wrapped.statusCode,
			"remote_addr", req.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
