//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/etl"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("an ETL run is already in progress")

// Opener opens fresh handles on the two stores. Callers close them.
type Opener interface {
	OpenOLTP(ctx context.Context) (store.Store, error)
	OpenOLAP(ctx context.Context) (store.Store, error)
}

// OpenerFuncs adapts two functions to an Opener.
type OpenerFuncs struct {
	OLTP func(ctx context.Context) (store.Store, error)
	OLAP func(ctx context.Context) (store.Store, error)
}

// OpenOLTP calls f.OLTP.
func (f OpenerFuncs) OpenOLTP(ctx context.Context) (store.Store, error) { return f.OLTP(ctx) }

// OpenOLAP calls f.OLAP.
func (f OpenerFuncs) OpenOLAP(ctx context.Context) (store.Store, error) { return f.OLAP(ctx) }

// Status is a snapshot of the trigger.
type Status struct {
	State   etl.State        `json:"state"`
	Running bool             `json:"running"`
	LastRun *store.RunRecord `json:"last_run,omitempty"`
}

// Trigger runs the pipeline at most once at a time, opening the stores
// for each run and recording the outcome in the run history.
type Trigger struct {
	open Opener
	opts []etl.Option

	run sync.Mutex

	mu      sync.RWMutex
	current *etl.Pipeline
	last    *store.RunRecord
}

// NewTrigger creates a trigger. The options are applied to every
// pipeline it builds.
func NewTrigger(open Opener, opts ...etl.Option) *Trigger {
	return &Trigger{open: open, opts: opts}
}

// Run performs one pipeline run. It returns ErrBusy without waiting when a
// run is already in flight. A failed run is not an error: inspect the
// result.
func (t *Trigger) Run(ctx context.Context) (*etl.Result, error) {
	if !t.run.TryLock() {
		return nil, ErrBusy
	}
	defer t.run.Unlock()

	oltp, err := t.open.OpenOLTP(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open OLTP store: %w", err)
	}
	defer oltp.Close()

	olap, err := t.open.OpenOLAP(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open OLAP store: %w", err)
	}
	defer olap.Close()

	p := etl.New(oltp, olap, t.opts...)
	t.mu.Lock()
	t.current = p
	t.mu.Unlock()

	res := p.Run(ctx)
	rec := res.Record()

	t.mu.Lock()
	t.current = nil
	t.last = &rec
	t.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := olap.SaveRun(saveCtx, rec); err != nil {
		logging.Warn().
			Err(err).
			Str("run_id", rec.ID).
			Msg("Failed to record run history")
	}

	return res, nil
}

// Status reports the state of the in-flight run, or of the last one.
func (t *Trigger) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Status{State: etl.Idle, LastRun: t.last}
	if t.current != nil {
		st.State = t.current.State()
		st.Running = true
	} else if t.last != nil {
		st.State = etl.State(t.last.State)
	}
	return st
}
