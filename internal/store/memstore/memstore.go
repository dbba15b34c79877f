//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package memstore provides an in-memory store.Store. It enforces primary
// key uniqueness and foreign keys like the SQL backends do, and supports
// injecting failures per entity for tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

var (
	// ErrDuplicateKey is returned when a row's key already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForeignKey is returned when a reference cannot be satisfied.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

type table struct {
	rows map[int64]schema.Row
}

type insertFault struct {
	match func(schema.Row) bool
	err   error
}

// Store is an in-memory store. The zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
	runs   []store.RunRecord
	closed bool

	insertFaults map[string]insertFault
	deleteFaults map[string]error
	readFaults   map[string]error
}

var _ store.Store = (*Store)(nil)

// New returns an empty store with a table for every registered entity.
func New() *Store {
	s := &Store{
		tables:       make(map[string]*table),
		insertFaults: make(map[string]insertFault),
		deleteFaults: make(map[string]error),
		readFaults:   make(map[string]error),
	}
	for _, e := range schema.All() {
		s.tables[e.Name] = &table{rows: make(map[int64]schema.Row)}
	}
	return s
}

// FailInsert makes inserts into the named entity fail with err. When
// match is non-nil only rows it accepts fail.
func (s *Store) FailInsert(entity string, match func(schema.Row) bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertFaults[entity] = insertFault{match: match, err: err}
}

// FailDelete makes DeleteAll on the named entity fail with err.
func (s *Store) FailDelete(entity string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteFaults[entity] = err
}

// FailRead makes full-snapshot reads of the named transactional entity
// fail with err.
func (s *Store) FailRead(entity string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readFaults[entity] = err
}

// ClearFaults removes every injected failure.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.insertFaults)
	clear(s.deleteFaults)
	clear(s.readFaults)
}

// Insert adds a row after checking completeness, key uniqueness and
// references.
func (s *Store) Insert(ctx context.Context, e *schema.Entity, row schema.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if f, ok := s.insertFaults[e.Name]; ok && (f.match == nil || f.match(row)) {
		return f.err
	}
	if _, err := e.Values(row); err != nil {
		return err
	}
	t, err := s.table(e)
	if err != nil {
		return err
	}

	dec := store.NewRowDecoder(row)
	key := dec.Int64(e.Key)
	if err := dec.Err(); err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}
	if _, exists := t.rows[key]; exists {
		return fmt.Errorf("%s: %w: %s=%d", e.Name, ErrDuplicateKey, e.Key, key)
	}

	for _, a := range e.Attributes {
		if a.References == "" || row[a.Name] == nil {
			continue
		}
		ref := dec.Int64(a.Name)
		if err := dec.Err(); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		if a.References == e.Name && ref == key {
			continue
		}
		target, ok := s.tables[a.References]
		if !ok {
			return fmt.Errorf("%s: unknown referenced entity %s", e.Name, a.References)
		}
		if _, ok := target.rows[ref]; !ok {
			return fmt.Errorf("%s: %w: %s=%d not found in %s", e.Name, ErrForeignKey, a.Name, ref, a.References)
		}
	}

	t.rows[key] = copyRow(row)
	return nil
}

// DeleteAll removes every row of an entity. It fails while rows of another
// entity still reference it.
func (s *Store) DeleteAll(ctx context.Context, e *schema.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err, ok := s.deleteFaults[e.Name]; ok {
		return err
	}
	t, err := s.table(e)
	if err != nil {
		return err
	}
	if len(t.rows) == 0 {
		return nil
	}

	for _, other := range schema.All() {
		if other.Name == e.Name {
			continue
		}
		for _, a := range other.Attributes {
			if a.References != e.Name {
				continue
			}
			for _, r := range s.tables[other.Name].rows {
				if r[a.Name] != nil {
					return fmt.Errorf("%s: %w: still referenced by %s", e.Name, ErrForeignKey, other.Name)
				}
			}
		}
	}

	clear(t.rows)
	return nil
}

// Count returns the number of rows of an entity.
func (s *Store) Count(_ context.Context, e *schema.Entity) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	t, err := s.table(e)
	if err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}

// Rows returns copies of an entity's rows ordered by key.
func (s *Store) Rows(e *schema.Entity) []schema.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(e)
}

func (s *Store) snapshot(e *schema.Entity) []schema.Row {
	t, ok := s.tables[e.Name]
	if !ok {
		return nil
	}
	keys := make([]int64, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]schema.Row, len(keys))
	for i, k := range keys {
		rows[i] = copyRow(t.rows[k])
	}
	return rows
}

func (s *Store) table(e *schema.Entity) (*table, error) {
	t, ok := s.tables[e.Name]
	if !ok {
		return nil, fmt.Errorf("unknown entity: %s", e.Name)
	}
	return t, nil
}

func copyRow(row schema.Row) schema.Row {
	out := make(schema.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// CreateSchema is a no-op; every table exists from New.
func (s *Store) CreateSchema(context.Context, []*schema.Entity) error {
	return nil
}

// DropSchema empties the given entities, and the run history alongside
// analytical entities.
func (s *Store) DropSchema(_ context.Context, entities []*schema.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		if t, ok := s.tables[e.Name]; ok {
			clear(t.rows)
		}
	}
	if store.HoldsRunLog(entities) {
		s.runs = nil
	}
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SaveRun appends a run record.
func (s *Store) SaveRun(_ context.Context, rec store.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.runs = append(s.runs, rec)
	return nil
}

// RecentRuns returns up to limit records, newest first.
func (s *Store) RecentRuns(_ context.Context, limit int) ([]store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		return nil, nil
	}
	out := make([]store.RunRecord, 0, min(limit, len(s.runs)))
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
