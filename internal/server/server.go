// Package server provides the Kensa HTTP API: the core keyword, similarity and
// grade operations plus the resume upload endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kensa/internal/analysis"
	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/grading"
	"github.com/hyperjump/kensa/internal/keyword"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/similarity"
	"go.uber.org/zap"
)

// Services are the immutable, process-wide components the handlers use.
// They are constructed once at startup and shared by all requests.
type Services struct {
	Keywords  *keyword.Extractor
	Scorer    *similarity.Scorer
	Grader    *grading.Grader
	Extractor *extract.Extractor
	Profiles  *analysis.ProfileParser
	Comparer  *analysis.Comparer
	// Status holds the static part of GET /api/v1/status.
	Status models.StatusResponse
	// VectorDB is the word-vector database path, if any, for disk usage reporting.
	VectorDB string
}

// Server is the HTTP server for the Kensa API.
type Server struct {
	svc       *Services
	config    *config.ServerConfig
	maxUpload int64
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given services.
func NewServer(svc *Services, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:       svc,
		config:    cfg,
		maxUpload: cfg.MaxUploadBytes(),
		logger:    logger,
	}
}

// Handler returns the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler())
	if timeout := s.config.RequestTimeout(); timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/parse", s.handleParse)
	r.Post("/rank", s.handleRank)
	r.Post("/compare", s.handleCompare)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/extract", s.handleExtract)
		r.Post("/similarity", s.handleSimilarity)
		r.Post("/grade", s.handleGrade)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
