//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package server exposes the pipeline over HTTP and runs it on a schedule.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/metrics"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/pkg/version"
)

// Config holds server settings.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string

	// Schedule is the interval between scheduled runs (0 = none).
	Schedule time.Duration

	// HistoryLimit caps the runs returned by the history endpoint.
	HistoryLimit int
}

// Server serves the trigger, inspection and metrics endpoints.
type Server struct {
	trigger      *Trigger
	open         Opener
	metrics      *metrics.Metrics
	cfg          Config
	historyLimit int
	router       *mux.Router
}

// New creates a server. m may be nil.
func New(trigger *Trigger, open Opener, m *metrics.Metrics, cfg Config) *Server {
	s := &Server{
		trigger:      trigger,
		open:         open,
		metrics:      m,
		cfg:          cfg,
		historyLimit: max(1, cfg.HistoryLimit),
		router:       mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(logRequests)

	// Routes stay on the root router so a method mismatch answers 405.
	s.router.HandleFunc("/api/etl/run", s.handleRun).Methods(http.MethodGet, http.MethodPost)
	s.router.HandleFunc("/api/etl/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/etl/history", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/api/debug/olap-contents", s.contents(s.open.OpenOLAP, schema.Analytical())).Methods(http.MethodGet)
	s.router.HandleFunc("/api/debug/oltp-contents", s.contents(s.open.OpenOLTP, schema.TransactionalEntities())).Methods(http.MethodGet)

	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, version.Info()+"\nVisit /api/etl/run to run OLTP -> ETL -> OLAP.\n")
	}).Methods(http.MethodGet)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

// Serve runs the HTTP server, and the scheduler when configured, until ctx
// is cancelled or either fails.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info().
			Str("listen", s.cfg.Listen).
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	if s.cfg.Schedule > 0 {
		g.Go(func() error {
			return s.schedule(gctx, s.cfg.Schedule)
		})
	}

	return g.Wait()
}

// schedule runs the pipeline every interval until ctx is done. The first
// run waits one full interval.
func (s *Server) schedule(ctx context.Context, interval time.Duration) error {
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()

	_, err := sched.Every(interval).WaitForSchedule().Do(func() {
		s.scheduledRun(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule runs: %w", err)
	}

	logging.Info().
		Dur("interval", interval).
		Msg("Scheduled runs enabled")

	sched.StartAsync()
	<-ctx.Done()
	sched.Stop()
	return nil
}

func (s *Server) scheduledRun(ctx context.Context) {
	res, err := s.trigger.Run(ctx)
	if errors.Is(err, ErrBusy) {
		logging.Info().Msg("Scheduled run skipped, a run is in progress")
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled run could not start")
		return
	}
	logging.Info().
		Str("run_id", res.RunID.String()).
		Str("state", string(res.State)).
		Msg("Scheduled run finished")
}
