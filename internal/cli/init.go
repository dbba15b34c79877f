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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/seed"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

var (
	initDropExisting bool
	initNoSeed       bool
	initScale        int
	initSeed         uint64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the OLTP and OLAP schemas and seed the OLTP database",
	Long: `Create the transactional schema in the OLTP database and the
analytical schema (plus the run history table) in the OLAP database.
If the OLTP database has no employees, it is populated with generated
care-services data.

Example:
  pgedge-careetl init --oltp "postgres://.../care" --olap "postgres://.../care_olap"
  pgedge-careetl init --oltp-driver sqlite --oltp care.db --olap-driver sqlite --olap olap.db --scale 5`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schemas before initialization")
	initCmd.Flags().BoolVar(&initNoSeed, "no-seed", false,
		"do not generate OLTP data")
	initCmd.Flags().IntVar(&initScale, "scale", 0,
		"multiplier for generated row counts (default: 1)")
	initCmd.Flags().Uint64Var(&initSeed, "seed", 0,
		"random seed for generated data (0 = random)")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}
	if initNoSeed {
		cfg.Init.Seed = false
	}
	if initScale > 0 {
		cfg.Init.Scale = initScale
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	ctx := context.Background()
	oltp, olap, err := openBoth(ctx)
	if err != nil {
		return err
	}
	defer oltp.Close()
	defer olap.Close()

	if err := createSchema(ctx, oltp, "OLTP", schema.TransactionalEntities()); err != nil {
		return err
	}
	if err := createSchema(ctx, olap, "OLAP", schema.Analytical()); err != nil {
		return err
	}

	if !cfg.Init.Seed {
		logging.Info().Msg("Seeding disabled")
		return nil
	}

	seeded, err := seed.SeedIfEmpty(ctx, oltp, seed.Config{
		Scale: cfg.Init.Scale,
		Seed:  initSeed,
	})
	if err != nil {
		return fmt.Errorf("failed to seed OLTP database: %w", err)
	}

	logging.Info().
		Bool("seeded", seeded).
		Msg("Database initialization complete")

	return nil
}

func createSchema(ctx context.Context, s store.Store, name string, entities []*schema.Entity) error {
	if cfg.Init.DropExisting {
		logging.Info().
			Str("database", name).
			Msg("Dropping existing schema")
		if err := s.DropSchema(ctx, entities); err != nil {
			return fmt.Errorf("failed to drop %s schema: %w", name, err)
		}
	}

	logging.Info().
		Str("database", name).
		Int("tables", len(entities)).
		Msg("Creating schema")
	if err := s.CreateSchema(ctx, entities); err != nil {
		return fmt.Errorf("failed to create %s schema: %w", name, err)
	}
	return nil
}
