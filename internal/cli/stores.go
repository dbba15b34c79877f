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

	"github.com/pgEdge/pgedge-careetl/internal/config"
	"github.com/pgEdge/pgedge-careetl/internal/db"
	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/server"
	"github.com/pgEdge/pgedge-careetl/internal/store"
	"github.com/pgEdge/pgedge-careetl/internal/store/sqlstore"
)

// openStore connects to the database described by dc.
func openStore(ctx context.Context, dc config.DatabaseConfig) (store.Store, error) {
	dialect, err := schema.ParseDialect(dc.Driver)
	if err != nil {
		return nil, err
	}
	if dialect == schema.Postgres {
		s, err := db.Open(ctx, dc.Connection)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sqlstore.Open(ctx, dialect, dc.Connection)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openBoth connects to the OLTP and OLAP databases.
func openBoth(ctx context.Context) (oltp, olap store.Store, err error) {
	oltp, err = openStore(ctx, cfg.OLTP)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to OLTP database: %w", err)
	}
	olap, err = openStore(ctx, cfg.OLAP)
	if err != nil {
		oltp.Close()
		return nil, nil, fmt.Errorf("failed to connect to OLAP database: %w", err)
	}
	return oltp, olap, nil
}

func opener() server.Opener {
	return server.OpenerFuncs{
		OLTP: func(ctx context.Context) (store.Store, error) { return openStore(ctx, cfg.OLTP) },
		OLAP: func(ctx context.Context) (store.Store, error) { return openStore(ctx, cfg.OLAP) },
	}
}

// damageOption builds a fresh damage generator for every pipeline, so a
// configured seed yields the same reports on each run.
func damageOption() etl.Option {
	return etl.WithDamageConfig(etl.DamageConfig{
		MinCost:     cfg.Damage.MinCost,
		MaxCost:     cfg.Damage.MaxCost,
		MaxAgeDays:  cfg.Damage.MaxAgeDays,
		Description: cfg.Damage.Description,
	}, cfg.Damage.Seed)
}
