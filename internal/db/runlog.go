//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

func (s *Store) createRunLog(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema.CreateRunLogSQL(schema.Postgres)); err != nil {
		return fmt.Errorf("failed to create run log table: %w", err)
	}
	return nil
}

func (s *Store) dropRunLog(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", schema.RunLogTable))
	return err
}

// SaveRun records a pipeline run.
func (s *Store) SaveRun(ctx context.Context, rec store.RunRecord) error {
	_, err := s.pool.Exec(ctx, store.SaveRunSQL(schema.Postgres), store.RunRecordArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}

	logging.Debug().
		Str("run_id", rec.ID).
		Str("state", rec.State).
		Msg("Saved run record")

	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	return query(ctx, s, store.RecentRunsSQL(schema.Postgres), store.ScanRunRecord, limit)
}

// RunLogExists checks if the run log table exists.
func (s *Store) RunLogExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, schema.RunLogTable).Scan(&exists)
	return exists, err
}
