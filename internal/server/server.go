// Package server provides the HTTP API for inspecting results and triggering runs.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/internal/pipeline"
	"github.com/hyperjump/kensho/internal/storage"
	"go.uber.org/zap"
)

// RunController starts runs and reports their progress.
type RunController interface {
	Trigger() bool
	Status() pipeline.RunStatus
}

// Server is the HTTP server for the kensho API.
type Server struct {
	store  storage.ResultStore
	runner RunController // optional; nil disables POST /api/v1/runs
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(store storage.ResultStore, runner RunController, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:  store,
		runner: runner,
		config: cfg,
		logger: logger,
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/results", s.handleListResults)
		r.Get("/results/{id}", s.handleGetResult)
		r.Post("/runs", s.handleTriggerRun)
		r.Get("/runs/last", s.handleLastRun)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
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
