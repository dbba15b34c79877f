//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides the PostgreSQL store for pgedge-careetl.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/pkg/version"
)

// ParseConfig parses a connection string and applies the pool settings
// used for pipeline runs. A run is sequential, so the pool stays small.
// Connections report the program name unless the string sets
// application_name.
func ParseConfig(connString string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = version.Name
	}

	return config, nil
}

// Connect establishes a connection pool to the PostgreSQL database.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	cc := config.ConnConfig
	logging.Debug().
		Str("host", cc.Host).
		Uint16("port", cc.Port).
		Str("database", cc.Database).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cc.Database, err)
	}

	logging.Info().
		Str("driver", "postgres").
		Str("host", cc.Host).
		Str("database", cc.Database).
		Msg("Connected to database")

	return pool, nil
}

// Open connects to PostgreSQL and returns a store over the pool.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return NewStore(pool), nil
}
