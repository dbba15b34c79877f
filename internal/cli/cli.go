//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-careetl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/config"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	oltpDriver string
	oltpConn   string
	olapDriver string
	olapConn   string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-careetl",
		Short: "Full-refresh ETL from a care-services OLTP database to an OLAP store",
		Long: `pgedge-careetl rebuilds an analytical (OLAP) database from a
care-services transactional (OLTP) database. Every run clears the
analytical tables, then loads the dimensions and the facts in
dependency order.

PostgreSQL, MySQL and SQLite are supported on either side.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-careetl.yaml)")
	rootCmd.PersistentFlags().StringVar(&oltpDriver, "oltp-driver", "",
		"OLTP database driver (postgres, mysql, sqlite)")
	rootCmd.PersistentFlags().StringVar(&oltpConn, "oltp", "",
		"OLTP connection string")
	rootCmd.PersistentFlags().StringVar(&olapDriver, "olap-driver", "",
		"OLAP database driver (postgres, mysql, sqlite)")
	rootCmd.PersistentFlags().StringVar(&olapConn, "olap", "",
		"OLAP connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (console, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(entitiesCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if oltpDriver != "" {
		cfg.OLTP.Driver = oltpDriver
	}
	if oltpConn != "" {
		cfg.OLTP.Connection = oltpConn
	}
	if olapDriver != "" {
		cfg.OLAP.Driver = olapDriver
	}
	if olapConn != "" {
		cfg.OLAP.Connection = olapConn
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
