// Package api provides the HTTP API server and handlers for the PromptDeck application.
package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/promptdeck/promptdeck-server/internal/audit"
	"github.com/promptdeck/promptdeck-server/internal/backup"
	"github.com/promptdeck/promptdeck-server/internal/lifecycle"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/ratelimit"
	"github.com/promptdeck/promptdeck-server/internal/search"
	"github.com/promptdeck/promptdeck-server/internal/service"
	"github.com/promptdeck/promptdeck-server/internal/sse"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Prompt  *service.PromptService
	Tag     *service.TagService
	Deleter *lifecycle.Deleter
	Backup  *backup.Service
	Audit   *audit.Recorder
	Search  *search.SearchIndex
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       *store.Store
	services    *Services
	sseHandler  *sse.Handler
	router      *chi.Mux
	api         huma.API
	rateLimiter *ratelimit.KeyedRateLimiter
	logger      *logger.Logger
	appVersion  string
}

// NewServer creates a new HTTP server with all routes configured.
// The rate limiter may be nil to disable request rate limiting.
func NewServer(st *store.Store, services *Services, sseHandler *sse.Handler, limiter *ratelimit.KeyedRateLimiter, appVersion string, log *logger.Logger) *Server {
	s := &Server{
		store:       st,
		services:    services,
		sseHandler:  sseHandler,
		router:      chi.NewRouter(),
		rateLimiter: limiter,
		logger:      log,
		appVersion:  appVersion,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("PromptDeck API", appVersion)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerPromptRoutes()
	s.registerTagRoutes()
	s.registerVersionRoutes()
	s.registerSearchRoutes()
	s.registerAdminRoutes()

	// The event stream bypasses huma; SSE needs direct access to the
	// response writer for flushing.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events/stream", s.sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if s.rateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
	}
}
