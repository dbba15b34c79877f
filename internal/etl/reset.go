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
	"context"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

// reset clears every analytical entity, referencing entities first. A
// failure to clear one entity is logged and the next one is attempted.
func (p *Pipeline) reset(ctx context.Context, log *runLog) []StageOutcome {
	entities := schema.ResetOrder()
	outcomes := make([]StageOutcome, 0, len(entities))
	for _, e := range entities {
		log.info(e.Name, "Clearing table %s...", e.Name)
		err := p.target.DeleteAll(ctx, e)
		if err != nil {
			log.fail(e.Name, err, "Error clearing %s: %v", e.Name, err)
			p.metrics.ResetError(e.Name)
		}
		outcomes = append(outcomes, StageOutcome{Stage: Resetting, Entity: e.Name, Kind: e.Kind, Err: err})
	}
	log.info("", "All OLAP tables cleared.")
	return outcomes
}
