//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/metrics"
	"github.com/pgEdge/pgedge-careetl/internal/server"
)

var (
	serveListen   string
	serveSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP trigger and run on a schedule",
	Long: `Start an HTTP server exposing:

  /api/etl/run                run the pipeline (text log; ?format=json for JSON)
  /api/etl/status             current or last run state
  /api/etl/history            recent runs
  /api/debug/oltp-contents    OLTP table counts
  /api/debug/olap-contents    OLAP table counts
  /metrics                    Prometheus metrics

With --schedule the pipeline also runs at a fixed interval.

Example:
  pgedge-careetl serve --listen :8080 --schedule 1h`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"HTTP listen address (default: :8080)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "",
		"run interval, e.g. 30m or 6h (default: no scheduled runs)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if serveListen != "" {
		cfg.Serve.Listen = serveListen
	}
	if serveSchedule != "" {
		cfg.Serve.Schedule = serveSchedule
	}

	// Validate configuration
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	interval, err := cfg.ScheduleInterval()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	m := metrics.New()
	open := opener()
	trigger := server.NewTrigger(open,
		damageOption(),
		etl.WithMetrics(m))

	srv := server.New(trigger, open, m, server.Config{
		Listen:       cfg.Serve.Listen,
		Schedule:     interval,
		HistoryLimit: cfg.Serve.HistoryLimit,
	})

	if err := srv.Serve(ctx); err != nil {
		return err
	}
	logging.Info().Msg("Server stopped")
	return nil
}
