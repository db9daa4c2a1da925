// Package api exposes the relay over HTTP. POST /extract and POST /execute
// accept the same JSON events as the Lambda functions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"redshift-ddl/internal/domain"
	"redshift-ddl/internal/handler"
	"redshift-ddl/internal/middleware"
)

// maxEventBytes bounds request bodies; events only carry a connection and a list of names.
const maxEventBytes = 1 << 20

// Config holds the parameters needed to build the HTTP handler.
type Config struct {
	Extractor handler.Extractor
	Replayer  handler.Replayer
	RateLimit middleware.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter builds the invoke server's http.Handler. The rate limiter's
// cleanup loop runs until ctx is done.
func NewRouter(ctx context.Context, cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{
		extractor: cfg.Extractor,
		replayer:  cfg.Replayer,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.health)
	r.Group(func(r chi.Router) {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
		}
		r.Post("/extract", s.extract)
		r.Post("/execute", s.execute)
	})
	return r
}

type server struct {
	extractor handler.Extractor
	replayer  handler.Replayer
	logger    *slog.Logger
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) extract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.writeError(w, r, domain.ErrValidation("extraction is not configured (DDL_BUCKET is unset)"))
		return
	}
	var event handler.ExtractEvent
	if !s.decode(w, r, &event) {
		return
	}
	if err := event.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.extractor.Extract(r.Context(), event.Connection.Descriptor(), event.Schemas)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) execute(w http.ResponseWriter, r *http.Request) {
	var event handler.ExecuteEvent
	if !s.decode(w, r, &event) {
		return
	}
	if err := event.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	marker, err := s.replayer.Execute(r.Context(), event.Connection.Descriptor(), event.DDLURIs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty request body")
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":      "invalid request body: " + err.Error(),
			"code":       "PARSE_ERROR",
			"request_id": middleware.RequestIDFromContext(r.Context()),
		})
		return false
	}
	return true
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := handler.Classify(err)
	requestID := domain.InvocationIDFromContext(r.Context())
	s.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path, "request_id", requestID, "code", code, "error", err)
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"code":       code,
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
