package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/observability"
	"github.com/aretw0/autograde/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second

	// maxBodyBytes caps submission payloads; outputs and environments are small.
	maxBodyBytes = 1 << 20

	allComplete = "All exercises complete"
)

// Server exposes a session manager over plain-text HTTP routes.
type Server struct {
	router      *chi.Mux
	manager     *session.Manager
	metrics     *observability.Metrics
	logger      *slog.Logger
	corsOrigins []string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables the metrics middleware and the /metrics route.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithCORSOrigins sets the allowed CORS origins. Defaults to "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// NewServer creates and configures the HTTP surface.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		manager:     manager,
		logger:      logging.NewNop(),
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.routes()
	return s
}

// routes registers all HTTP routes on the router.
func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Post("/sessions", s.handleCreateSession)

	s.router.Route("/{session}", func(r chi.Router) {
		r.Get("/start", s.handleStart)
		r.Get("/current", s.handleCurrent)
		r.Get("/reset", s.handleReset)
		r.Post("/reset", s.handleReset)
		r.Get("/status", s.handleStatus)
		r.Get("/hint", s.handleHint)
		r.Post("/submit", s.handleSubmit)
		r.Delete("/", s.handleDelete)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.manager.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusCreated, id)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	msg, err := s.manager.StartMessage(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, msg)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	idx, err := s.manager.Current(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprint(idx))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	idx, err := s.manager.Reset(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprint(idx))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, text, err := s.manager.Status(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			s.logger.Error("status response encode failed", "err", err)
		}
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	hint, err := s.manager.Hint(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, hint)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	state, err := decodeSubmission(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("Invalid submission: %v", err))
		s.logger.Warn("submit: invalid body", "err", err)
		return
	}

	res, err := s.manager.Submit(r.Context(), sessionID(r), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, res.Text)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), sessionID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *domain.RejectionError
	switch {
	case errors.As(err, &rej):
		writeText(w, http.StatusBadRequest, rej.Reason)
	case errors.Is(err, domain.ErrExerciseNotFound):
		writeText(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAllComplete):
		msg := s.manager.EndMessage()
		if msg == "" {
			msg = allComplete
		}
		writeText(w, http.StatusConflict, msg)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeText(w, http.StatusInternalServerError, "internal error")
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "session")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
