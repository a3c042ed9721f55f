// Package api provides the HTTP API server and handlers for Scriptorium.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scriptoriumapp/scriptorium-server/internal/backup"
	"github.com/scriptoriumapp/scriptorium-server/internal/http/response"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata"
	"github.com/scriptoriumapp/scriptorium-server/internal/ratelimit"
	"github.com/scriptoriumapp/scriptorium-server/internal/service"
	"github.com/scriptoriumapp/scriptorium-server/internal/sse"
	"github.com/scriptoriumapp/scriptorium-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
//
// Most routes are registered through huma for typed inputs and OpenAPI
// metadata; the SSE stream, the raw CSV download, and the catalog routes
// (which need the client address) stay plain chi handlers.
type Server struct {
	books         *service.BookService
	collections   *service.CollectionService
	backups       *backup.Service
	searcher      *metadata.Searcher
	validator     *validation.Validator
	searchLimiter *ratelimit.KeyedRateLimiter
	sseHandler    *sse.Handler
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	version       string
}

// Options bundles the server's dependencies.
type Options struct {
	Books         *service.BookService
	Collections   *service.CollectionService
	Backups       *backup.Service
	Searcher      *metadata.Searcher
	Validator     *validation.Validator
	SearchLimiter *ratelimit.KeyedRateLimiter
	SSEHandler    *sse.Handler
	Logger        *slog.Logger
	Version       string
	CORSOrigins   []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()

	s := &Server{
		books:         opts.Books,
		collections:   opts.Collections,
		backups:       opts.Backups,
		searcher:      opts.Searcher,
		validator:     opts.Validator,
		searchLimiter: opts.SearchLimiter,
		sseHandler:    opts.SSEHandler,
		router:        router,
		logger:        opts.Logger,
		version:       opts.Version,
	}

	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("Scriptorium API", opts.Version)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerBookRoutes()
	s.registerCollectionRoutes()
	s.registerBackupRoutes()

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/backup/export/download", s.handleBackupDownload)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", s.handleCatalogSearch)
			r.Get("/duplicate", s.handleDuplicateCheck)
		})

		r.Get("/events", s.sseHandler.ServeHTTP)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": s.version,
	}, s.logger)
}
