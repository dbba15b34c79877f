//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl rebuilds the analytical store from the transactional store:
// a reset of every analytical entity followed by the dimension loaders and
// then the fact loaders, run strictly in sequence.
package etl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/metrics"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// State is a run state.
type State string

// Run states. Completed and Failed are terminal.
const (
	Idle              State = "Idle"
	Resetting         State = "Resetting"
	LoadingDimensions State = "LoadingDimensions"
	LoadingFacts      State = "LoadingFacts"
	Completed         State = "Completed"
	Failed            State = "Failed"
)

// StageOutcome is the result of one reset or load step.
type StageOutcome struct {
	Stage  State       `json:"stage"`
	Entity string      `json:"entity"`
	Kind   schema.Kind `json:"kind"`
	Rows   int         `json:"rows"`
	Err    error       `json:"-"`
}

// Result describes a finished run. Log holds every line emitted up to the
// point the run ended.
type Result struct {
	RunID       uuid.UUID
	State       State
	Log         []string
	Stages      []StageOutcome
	FailedStage string
	Err         error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Succeeded reports whether the run completed.
func (r *Result) Succeeded() bool {
	return r.State == Completed
}

// RowsLoaded sums the rows inserted by every loader.
func (r *Result) RowsLoaded() int64 {
	var n int64
	for _, s := range r.Stages {
		n += int64(s.Rows)
	}
	return n
}

// Record converts the result into a run history entry.
func (r *Result) Record() store.RunRecord {
	rec := store.RunRecord{
		ID:          r.RunID.String(),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		State:       string(r.State),
		FailedStage: r.FailedStage,
		RowsLoaded:  r.RowsLoaded(),
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	rec.Log = strings.Join(r.Log, "\n")
	return rec
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDamageGenerator replaces the damage report generator.
func WithDamageGenerator(g DamageGenerator) Option {
	return func(p *Pipeline) { p.damage = g }
}

// WithDamageConfig gives each pipeline its own FakerDamageGenerator. With
// a non-zero seed every run draws the same reports for the same assets.
func WithDamageConfig(cfg DamageConfig, seed uint64) Option {
	return func(p *Pipeline) { p.damage = NewFakerDamageGenerator(cfg, seed) }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline runs full refreshes from a source to a target. Run must not be
// called concurrently; State may be read at any time.
type Pipeline struct {
	source  store.Reader
	target  store.Writer
	damage  DamageGenerator
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.RWMutex
	state State
}

// New creates a pipeline reading from source and writing to target.
func New(source store.Reader, target store.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: source,
		target: target,
		now:    time.Now,
		state:  Idle,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.damage == nil {
		p.damage = NewFakerDamageGenerator(DefaultDamageConfig(), 0)
	}
	return p
}

// State returns the current run state.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run performs one full refresh. Reset failures are logged and tolerated;
// the first dimension or fact loader failure ends the run as Failed,
// leaving rows already written in place.
func (p *Pipeline) Run(ctx context.Context) *Result {
	res := &Result{
		RunID:     uuid.New(),
		StartedAt: p.now(),
	}
	log := newRunLog(logging.ForRun(res.RunID.String()))

	p.setState(Resetting)
	res.Stages = append(res.Stages, p.reset(ctx, log)...)

	p.setState(LoadingDimensions)
	if !p.runLoaders(ctx, LoadingDimensions, p.dimensionLoaders(), log, res) {
		return p.finish(res, log)
	}

	p.setState(LoadingFacts)
	if !p.runLoaders(ctx, LoadingFacts, p.factLoaders(), log, res) {
		return p.finish(res, log)
	}

	p.setState(Completed)
	res.State = Completed
	return p.finish(res, log)
}

// runLoaders runs loaders in order and reports whether all succeeded.
func (p *Pipeline) runLoaders(ctx context.Context, stage State, loaders []loader, log *runLog, res *Result) bool {
	for _, l := range loaders {
		name := l.entity.Name
		log.info(name, "Loading %s...", name)

		rows, err := l.load(ctx, log)
		p.metrics.RowsLoaded(name, rows)
		res.Stages = append(res.Stages, StageOutcome{
			Stage:  stage,
			Entity: name,
			Kind:   l.entity.Kind,
			Rows:   rows,
			Err:    err,
		})

		if err != nil {
			log.fail(name, err, "Error loading %s: %v", name, err)
			p.setState(Failed)
			res.State = Failed
			res.FailedStage = name
			res.Err = &StageError{Stage: stage, Entity: name, Err: err}
			return false
		}
		log.loaded(l.entity, rows)
	}
	return true
}

func (p *Pipeline) finish(res *Result, log *runLog) *Result {
	res.FinishedAt = p.now()
	if res.Succeeded() {
		log.info("", "ETL process completed successfully.")
	} else {
		log.info(res.FailedStage, "ETL process failed at %s.", res.FailedStage)
	}
	res.Log = log.snapshot()

	p.metrics.RunFinished(string(res.State), res.FailedStage, res.FinishedAt.Sub(res.StartedAt), res.FinishedAt)
	logging.Info().
		Str("run_id", res.RunID.String()).
		Str("state", string(res.State)).
		Int64("rows", res.RowsLoaded()).
		Dur("elapsed", res.FinishedAt.Sub(res.StartedAt)).
		Msg("Pipeline run finished")

	return res
}
