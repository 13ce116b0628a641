// Package server serves the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/etnz/findash"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	// AllowedOrigins are the CORS origins allowed to call the API.
	AllowedOrigins []string
	// Generator produces the datasets of POST /api/dataset/regenerate.
	Generator findash.Generator
	// Sinks persist datasets created through the API, in order.
	Sinks []findash.Sink
	// KeepAlive is the period of SSE comments keeping idle connections open.
	KeepAlive time.Duration
}

// DefaultKeepAlive is the default period of SSE keep-alive comments.
const DefaultKeepAlive = 15 * time.Second

// ShutdownTimeout bounds the graceful shutdown of Run.
const ShutdownTimeout = 5 * time.Second

// Server is the dashboard HTTP server.
type Server struct {
	store   *findash.Store
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New creates a server for the dashboard of store.
func New(store *findash.Store, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = DefaultKeepAlive
	}
	s := &Server{store: store, opts: opts, logger: logger}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag"},
	})
	s.handler = c.Handler(s.router())
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handlePage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/report", s.handleReport).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", s.handleDashboard).Methods("GET")
	api.HandleFunc("/kpis", s.handleKPIs).Methods("GET")
	api.HandleFunc("/charts/{id}.svg", s.handleChartSVG).Methods("GET")
	api.HandleFunc("/charts/{id}", s.handleChart).Methods("GET")
	api.HandleFunc("/table", s.handleTable).Methods("GET")
	api.HandleFunc("/dataset.csv", s.handleDatasetCSV).Methods("GET")
	api.HandleFunc("/dataset.csv", s.handleUploadCSV).Methods("PUT")
	api.HandleFunc("/dataset.xlsx", s.handleDatasetXLSX).Methods("GET")
	api.HandleFunc("/dataset/regenerate", s.handleRegenerate).Methods("POST")
	api.HandleFunc("/options", s.handleOptions).Methods("POST")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
//
// Request contexts derive from ctx, so that long lived event streams end
// with it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving dashboard", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("dashboard server stopped")
	return nil
}
