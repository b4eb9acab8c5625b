// Package server exposes the artifact service over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/studykit/studykit/internal/artifact"
	"github.com/studykit/studykit/internal/keypool"
	"github.com/studykit/studykit/internal/mindmap"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	artifacts *artifact.Service
	pool      *keypool.Pool
	mindmaps  *mindmap.Parser
	logger    *slog.Logger
}

// New builds the server. The pool is only consulted for its status
// endpoint; all generation goes through the artifact service.
func New(artifacts *artifact.Service, pool *keypool.Pool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		artifacts: artifacts,
		pool:      pool,
		mindmaps:  mindmap.NewParser(),
		logger:    logger,
	}
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/summary", s.handleSummary)
		r.Post("/flashcards", s.handleFlashcards)
		r.Post("/mindmap", s.handleMindmap)
		r.Post("/chat", s.handleChat)
		r.Get("/keys/status", s.handleKeyStatus)
		r.Delete("/documents/{fingerprint}", s.handleInvalidate)
	})

	return r
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pool.Status())
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")
	if fingerprint == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("fingerprint is required"))
		return
	}
	s.artifacts.InvalidateFingerprint(fingerprint)
	w.WriteHeader(http.StatusNoContent)
}
