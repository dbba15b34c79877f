//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateSchema creates the entity tables, referenced entities first.
func (s *Store) CreateSchema(ctx context.Context, entities []*schema.Entity) error {
	stmts, err := schema.CreateSQL(schema.Postgres, entities)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if store.HoldsRunLog(entities) {
		if err := s.createRunLog(ctx); err != nil {
			return err
		}
	}

	logging.Debug().
		Int("tables", len(stmts)).
		Msg("Schema created")

	return nil
}

// DropSchema drops the entity tables in reverse order.
func (s *Store) DropSchema(ctx context.Context, entities []*schema.Entity) error {
	for _, stmt := range schema.DropSQL(entities) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	if store.HoldsRunLog(entities) {
		return s.dropRunLog(ctx)
	}
	return nil
}

// Insert writes a single row.
func (s *Store) Insert(ctx context.Context, e *schema.Entity, row schema.Row) error {
	values, err := e.Values(row)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, schema.InsertSQL(schema.Postgres, e), values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", e.Table, err)
	}
	return nil
}

// DeleteAll removes every row of an entity.
func (s *Store) DeleteAll(ctx context.Context, e *schema.Entity) error {
	if _, err := s.pool.Exec(ctx, schema.DeleteSQL(e)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", e.Table, err)
	}
	return nil
}

// Count returns the number of rows of an entity.
func (s *Store) Count(ctx context.Context, e *schema.Entity) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, schema.CountSQL(e)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", e.Table, err)
	}
	return n, nil
}

func query[T any](ctx context.Context, s *Store, q string, scan func(store.RowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()
	return store.Collect(rows, scan)
}

// Employees returns all employees.
func (s *Store) Employees(ctx context.Context) ([]store.Employee, error) {
	return query(ctx, s, schema.SelectSQL(schema.Employee), store.ScanEmployee)
}

// Clients returns all clients.
func (s *Store) Clients(ctx context.Context) ([]store.Client, error) {
	return query(ctx, s, schema.SelectSQL(schema.Client), store.ScanClient)
}

// ServiceTypes returns all service types.
func (s *Store) ServiceTypes(ctx context.Context) ([]store.ServiceType, error) {
	return query(ctx, s, schema.SelectSQL(schema.ServiceType), store.ScanServiceType)
}

// Assets returns all assets.
func (s *Store) Assets(ctx context.Context) ([]store.Asset, error) {
	return query(ctx, s, schema.SelectSQL(schema.Asset), store.ScanAsset)
}

// Renters returns all renters.
func (s *Store) Renters(ctx context.Context) ([]store.Renter, error) {
	return query(ctx, s, schema.SelectSQL(schema.Renter), store.ScanRenter)
}

// Payments returns all payments.
func (s *Store) Payments(ctx context.Context) ([]store.Payment, error) {
	return query(ctx, s, schema.SelectSQL(schema.Payment), store.ScanPayment)
}

// Shifts returns all shifts.
func (s *Store) Shifts(ctx context.Context) ([]store.Shift, error) {
	return query(ctx, s, schema.SelectSQL(schema.Shift), store.ScanShift)
}

// Services returns all services.
func (s *Store) Services(ctx context.Context) ([]store.Service, error) {
	return query(ctx, s, schema.SelectSQL(schema.Service), store.ScanService)
}

// AssetRentals returns rentals joined with their asset.
func (s *Store) AssetRentals(ctx context.Context) ([]store.AssetRental, error) {
	return query(ctx, s, store.AssetRentalsSQL, store.ScanAssetRental)
}
