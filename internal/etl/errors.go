//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import "fmt"

// StageError is the fatal error that stopped a run.
type StageError struct {
	// Stage is the state the run was in.
	Stage State

	// Entity is the analytical entity whose loader failed.
	Entity string

	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Entity, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
