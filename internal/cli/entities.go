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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the transactional and analytical entities",
	Long: `List every entity known to the pipeline, in load order, with its
table, source entity and key. Synthetic entities are generated rather
than copied from the OLTP database.`,
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ENTITY\tKIND\tTABLE\tSOURCE\tKEY\tNOTE")
		for _, e := range schema.All() {
			source := e.Source
			if source == "" {
				source = "-"
			}
			note := ""
			if e.Synthetic {
				note = "synthetic"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Table, source, e.Key, note)
		}
		tw.Flush()
	},
}
