// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the checker, the text extractor, and the report
// history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdiddy/copycheck/internal/convert"
	"github.com/pdiddy/copycheck/internal/store"
	"github.com/pdiddy/copycheck/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Checker evaluates a target against a corpus.
type Checker interface {
	Evaluate(ctx context.Context, target string, corpus []types.CorpusDocument) types.CheckResult
}

// ReportStore persists and retrieves check reports.
type ReportStore interface {
	Save(ctx context.Context, label string, result types.CheckResult) (types.Report, error)
	Get(ctx context.Context, id string) (types.Report, error)
	List(ctx context.Context, opts store.ListOptions) ([]types.Report, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg       types.ServerConfig
	checker   Checker
	extractor *convert.Dispatcher
	reports   ReportStore
	log       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithReports enables the report history endpoints and saving on check.
func WithReports(rs ReportStore) Option {
	return func(s *Server) { s.reports = rs }
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server.
func New(cfg types.ServerConfig, checker Checker, extractor *convert.Dispatcher, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		checker:   checker,
		extractor: extractor,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxUploadBytes <= 0 {
		s.cfg.MaxUploadBytes = types.DefaultServerConfig().MaxUploadBytes
	}
	return s
}

// Routes returns the router with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}))
	}
	if s.cfg.WriteTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.WriteTimeout))
	}

	r.Get("/", s.handleRoot)
	r.Post("/plagiarism/check", s.handleCheck)
	r.Post("/ocr/extract", s.handleExtract)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.handleListReports)
		r.Get("/{id}", s.handleGetReport)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Routes(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout + time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting http server", "addr", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
