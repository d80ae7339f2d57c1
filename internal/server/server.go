// Package server implements the revgraph HTTP API.
//
// # Endpoints
//
//	GET  /healthz            liveness probe
//	POST /api/v1/layout      lay out a revision log sent in the request body
//	GET  /api/v1/graph       layout JSON of the served repository
//	GET  /api/v1/graph.txt   text rendering of the served repository
//
// Errors are reported as JSON objects with a machine-readable code, a
// message and the request id:
//
//	{"code":"OUT_OF_ORDER","message":"revision log is not in child-first order","request_id":"..."}
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/revgraph/pkg/pipeline"
)

const (
	// DefaultMaxRevisions caps the revisions accepted or served per request.
	DefaultMaxRevisions = 5000

	// maxBodyBytes bounds POST bodies.
	maxBodyBytes = 16 << 20

	shutdownTimeout = 10 * time.Second
)

// Options configures the API.
type Options struct {
	// Repo is the repository served by /api/v1/graph. Empty disables it.
	Repo string

	// Defaults supplies the query and render settings for /api/v1/graph;
	// request parameters override them.
	Defaults pipeline.Options

	// MaxRevisions caps request sizes and graph limits.
	MaxRevisions int

	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server that loads repository history through runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxRevisions <= 0 {
		opts.MaxRevisions = DefaultMaxRevisions
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, opts: opts, logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.txt", s.handleGraphText)
	})
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "repo", s.opts.Repo)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
