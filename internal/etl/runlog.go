//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

// runLog accumulates the human-readable lines returned to the trigger and
// mirrors each one to the structured logger.
type runLog struct {
	mu     sync.Mutex
	lines  []string
	logger zerolog.Logger
}

func newRunLog(logger zerolog.Logger) *runLog {
	return &runLog{logger: logger}
}

func (l *runLog) append(line string) {
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
}

// info records a progress line.
func (l *runLog) info(entity string, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.append(line)
	ev := l.logger.Info()
	if entity != "" {
		ev = ev.Str("entity", entity)
	}
	ev.Msg(line)
}

// loaded records a loader's success line. Synthetic entities are tagged
// in the structured record.
func (l *runLog) loaded(e *schema.Entity, rows int) {
	line := fmt.Sprintf("%s loaded successfully. %d records inserted.", e.Name, rows)
	l.append(line)
	l.logger.Info().
		Str("entity", e.Name).
		Int("rows", rows).
		Bool("synthetic", e.Synthetic).
		Msg(line)
}

// fail records a failure line.
func (l *runLog) fail(entity string, err error, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.append(line)
	l.logger.Error().
		Str("entity", entity).
		Err(err).
		Msg(line)
}

func (l *runLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
