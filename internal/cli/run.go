//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
)

var runNoHistory bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full refresh of the OLAP database",
	Long: `Clear every analytical table and reload it from the OLTP database.
The run log is printed to stdout. The command exits non-zero when a
dimension or fact fails to load; tables loaded before the failure keep
their rows.

Example:
  pgedge-careetl run --oltp "postgres://.../care" --olap "postgres://.../care_olap"`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false,
		"do not record the run in the OLAP run history table")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	oltp, olap, err := openBoth(ctx)
	if err != nil {
		return err
	}
	defer oltp.Close()
	defer olap.Close()

	p := etl.New(oltp, olap, damageOption())
	res := p.Run(ctx)

	out := cmd.OutOrStdout()
	for _, line := range res.Log {
		fmt.Fprintln(out, line)
	}

	if !runNoHistory {
		saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer saveCancel()
		if err := olap.SaveRun(saveCtx, res.Record()); err != nil {
			logging.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	if !res.Succeeded() {
		return fmt.Errorf("ETL process failed at %s: %w", res.FailedStage, res.Err)
	}
	return nil
}
