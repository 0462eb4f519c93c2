// Package api provides the HTTP API server and handlers for the NoteBook catalog.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/macontouch/notebook/internal/ratelimit"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
)

// Config holds server options that do not come from services.
type Config struct {
	CORSOrigins []string
	Version     string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	sseManager    *sse.Manager
	sseHandler    *sse.Handler
	router        *chi.Mux
	api           huma.API
	clientLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseManager *sse.Manager, cfg Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:         st,
		services:      services,
		sseManager:    sseManager,
		router:        router,
		clientLimiter: ratelimit.New(ClientRate, ClientBurst),
		logger:        logger,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.setupMiddleware(cfg)

	version := cfg.Version
	if version == "" {
		version = "1.0.0"
	}
	humaConfig := huma.DefaultConfig("NoteBook API", version)
	humaConfig.Info.Description = "Catalog of named entries with inline images, categories and remote sync."
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.clientLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(cfg Config) {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RateLimitMiddleware(s.clientLimiter, s.logger))
	s.router.Use(middleware.RequestSize(MaxBodySize))
	s.router.Use(markRawPath)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerEntryRoutes()
	s.registerCategoryRoutes()
	s.registerSyncRoutes()
	s.registerProfileRoutes()
	s.registerSearchRoutes()

	// Binary and streaming routes bypass huma.
	s.router.Get("/api/v1/entries/{name}/image", s.handleEntryImage)
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
