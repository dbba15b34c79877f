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
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

var statusRuns int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table counts and recent runs",
	Long: `Print the row count of every OLTP and OLAP table, followed by the
most recent pipeline runs from the OLAP run history.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5,
		"number of recent runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	oltp, olap, err := openBoth(ctx)
	if err != nil {
		return err
	}
	defer oltp.Close()
	defer olap.Close()

	out := cmd.OutOrStdout()
	printCounts(ctx, out, "OLTP", oltp, schema.TransactionalEntities())
	printCounts(ctx, out, "OLAP", olap, schema.Analytical())

	runs, err := olap.RecentRuns(ctx, statusRuns)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}
	fmt.Fprintln(out, "Recent runs:")
	if len(runs) == 0 {
		fmt.Fprintln(out, "  none")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range runs {
		detail := fmt.Sprintf("%d rows", r.RowsLoaded)
		if r.FailedStage != "" {
			detail = "failed at " + r.FailedStage
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.State,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), detail)
	}
	return tw.Flush()
}

func printCounts(ctx context.Context, out io.Writer, title string, s store.Store, entities []*schema.Entity) {
	fmt.Fprintf(out, "%s tables:\n", title)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entities {
		n, err := s.Count(ctx, e)
		if err != nil {
			logging.Debug().Err(err).Str("entity", e.Name).Msg("Count failed")
			fmt.Fprintf(tw, "  %s\t%s\terror\n", e.Name, e.Table)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", e.Name, e.Table, n)
	}
	tw.Flush()
	fmt.Fprintln(out)
}
