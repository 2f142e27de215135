// Package server implements the lineage HTTP API.
//
// Routes:
//
//	GET    /healthz
//	GET    /metrics
//	POST   /v1/layouts                      record → layout
//	GET    /v1/layouts/{entityID}           last layout for an entity
//	GET    /v1/layouts/{entityID}/render    render a stored layout
//	POST   /v1/render                       record → artifact
//	POST   /v1/sessions                     start a selection session
//	GET    /v1/sessions/{id}
//	PUT    /v1/sessions/{id}/selection      select a node
//	DELETE /v1/sessions/{id}/selection      close the detail panel
//	POST   /v1/joins                        frequently joined tables
//	POST   /v1/info                         entity detail panel
//
// Errors are JSON objects {"code": ..., "message": ...}; the status code is
// derived from the error code.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/directory"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/session"
	"github.com/matzehuels/lineage/pkg/store"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 8 << 20
)

// Config holds the server's dependencies. Runner and Store are required;
// everything else has a usable zero value.
type Config struct {
	Runner     *pipeline.Runner
	Store      store.Store
	Sessions   session.Store
	SessionTTL time.Duration
	Directory  directory.Directory

	// Layout is applied to every layout request (grid units).
	Layout pipeline.Options

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
}

// New creates a server, filling in defaults for optional dependencies.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Directory == nil {
		cfg.Directory = directory.NewStatic(nil, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{cfg: cfg, logger: cfg.Logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		requestID,
		s.observe,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleCreateLayout)
			r.Get("/{entityID}", s.handleGetLayout)
			r.Get("/{entityID}/render", s.handleRenderStored)
		})
		r.Post("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Put("/{id}/selection", s.handleSelect)
			r.Delete("/{id}/selection", s.handleCloseSelection)
		})

		r.Post("/joins", s.handleJoins)
		r.Post("/info", s.handleInfo)
	})

	return r
}

// Serve listens on addr and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
