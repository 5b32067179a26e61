// Package server exposes the task engine, type registries, and plugin
// manager over a JSON REST API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/config"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/internal/engine"
	"github.com/me/godp/internal/plugin"
	"github.com/me/godp/internal/store"
)

// Server is the GoDP REST API server.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.ServerConfig
	startTime  time.Time
	engine     *engine.Engine
	datasets   *dataset.Registry
	algorithms *algorithm.Registry
	plugins    *plugin.Manager // optional; plugin endpoints 404 without it
	stager     *dataset.Stager
	archive    store.Store // optional; history endpoints 404 without it
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithPluginManager enables the /plugins endpoints.
func WithPluginManager(m *plugin.Manager) Option {
	return func(s *Server) {
		s.plugins = m
	}
}

// WithArchive enables the /tasks history listing backed by the given store.
func WithArchive(st store.Store) Option {
	return func(s *Server) {
		s.archive = st
	}
}

// WithStager overrides the dataset source stager (used by tests).
func WithStager(st *dataset.Stager) Option {
	return func(s *Server) {
		s.stager = st
	}
}

// New creates a Server with all routes registered.
func New(cfg config.ServerConfig, eng *engine.Engine, datasets *dataset.Registry, algorithms *algorithm.Registry, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger.With("component", "server"),
		config:     cfg,
		startTime:  time.Now(),
		engine:     eng,
		datasets:   datasets,
		algorithms: algorithms,
		stager:     dataset.NewStager(logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(tagRequests)
	r.Use(logRequests(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Tasks
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleSubmitTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTask)
				r.Get("/status", s.handleGetTaskStatus)
				r.Get("/result", s.handleGetTaskResult)
				r.Delete("/", s.handleCancelTask)
			})
		})

		// Registered dataset and algorithm types
		r.Get("/types", s.handleListTypes)

		// Script plugins
		r.Route("/plugins", func(r chi.Router) {
			r.Get("/", s.handleListPlugins)
			r.Post("/", s.handleLoadPlugin)
			r.Delete("/{name}", s.handleUnloadPlugin)
		})
	})
}
