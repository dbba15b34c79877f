//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlstore implements store.Store over database/sql for MySQL
// and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// Store is a database/sql backed store.
type Store struct {
	db      *sql.DB
	dialect schema.Dialect
}

var _ store.Store = (*Store)(nil)

// Open connects to a MySQL or SQLite database and verifies the connection.
func Open(ctx context.Context, dialect schema.Dialect, dsn string) (*Store, error) {
	var (
		driver string
		err    error
	)
	switch dialect {
	case schema.MySQL:
		driver = "mysql"
		dsn, err = mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
	case schema.SQLite:
		driver = "sqlite"
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("sqlstore does not support driver %s", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	if dialect == schema.SQLite {
		// A single connection keeps in-memory databases shared and
		// serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	logging.Info().
		Str("driver", string(dialect)).
		Msg("Connected to database")

	return New(db, dialect), nil
}

// New wraps an open database handle.
func New(db *sql.DB, dialect schema.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// mysqlDSN forces time parsing so DATE and DATETIME columns scan into
// time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// sqliteDSN enables foreign keys and a parseable time format unless the
// caller already set query parameters.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() schema.Dialect {
	return s.dialect
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSchema creates the entity tables in the given order.
func (s *Store) CreateSchema(ctx context.Context, entities []*schema.Entity) error {
	stmts, err := schema.CreateSQL(s.dialect, entities)
	if err != nil {
		return err
	}
	if store.HoldsRunLog(entities) {
		stmts = append(stmts, schema.CreateRunLogSQL(s.dialect))
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the entity tables in reverse order.
func (s *Store) DropSchema(ctx context.Context, entities []*schema.Entity) error {
	stmts := schema.DropSQL(entities)
	if store.HoldsRunLog(entities) {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+schema.RunLogTable)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

// Insert writes a single row.
func (s *Store) Insert(ctx context.Context, e *schema.Entity, row schema.Row) error {
	values, err := e.Values(row)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, schema.InsertSQL(s.dialect, e), values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", e.Table, err)
	}
	return nil
}

// DeleteAll removes every row of an entity.
func (s *Store) DeleteAll(ctx context.Context, e *schema.Entity) error {
	if _, err := s.db.ExecContext(ctx, schema.DeleteSQL(e)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", e.Table, err)
	}
	return nil
}

// Count returns the number of rows of an entity.
func (s *Store) Count(ctx context.Context, e *schema.Entity) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, schema.CountSQL(e)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", e.Table, err)
	}
	return n, nil
}

// SaveRun records a pipeline run.
func (s *Store) SaveRun(ctx context.Context, rec store.RunRecord) error {
	if _, err := s.db.ExecContext(ctx, store.SaveRunSQL(s.dialect), store.RunRecordArgs(rec)...); err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	return query(ctx, s, store.RecentRunsSQL(s.dialect), store.ScanRunRecord, limit)
}

func query[T any](ctx context.Context, s *Store, q string, scan func(store.RowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
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
