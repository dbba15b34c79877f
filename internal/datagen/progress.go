//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
)

// ProgressReporter logs seeding progress for one entity every interval
// rows, and a summary when the entity is done.
type ProgressReporter struct {
	entity   string
	total    int64
	rows     int64
	interval int64
	started  time.Time
}

// NewProgressReporter creates a reporter for total rows of entity.
func NewProgressReporter(entity string, total int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		entity:   entity,
		total:    total,
		interval: max(1, interval),
		started:  time.Now(),
	}
}

// Update adds inserted rows and logs when an interval boundary is crossed.
func (p *ProgressReporter) Update(inserted int64) {
	before := p.rows
	p.rows += inserted
	if p.total <= 0 || p.rows/p.interval == before/p.interval {
		return
	}
	logging.Debug().
		Str("entity", p.entity).
		Int64("rows", p.rows).
		Int64("total", p.total).
		Float64("percent", float64(p.rows)/float64(p.total)*100).
		Msg("Seeding")
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.rows
}

// Done logs the entity summary.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("entity", p.entity).
		Int64("rows", p.rows).
		Dur("elapsed", time.Since(p.started)).
		Msg("Entity seeded")
}
