//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store defines the contracts between the pipeline and its
// transactional and analytical stores, along with the record types read
// from the transactional side.
package store

import (
	"context"
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

// Employee is a transactional employee record.
type Employee struct {
	ID           int64
	Name         string
	Address      string
	JobTitle     string
	EmployeeType string
	SalaryRate   float64
	ReportsTo    *int64
}

// Client is a transactional client record.
type Client struct {
	ID          int64
	Name        string
	Address     string
	ContactInfo string
}

// ServiceType is a catalog entry of billable services.
type ServiceType struct {
	ID                    int64
	Name                  string
	Rate                  float64
	RequiresCertification bool
}

// Asset is a rentable unit.
type Asset struct {
	ID          int64
	Type        string
	Location    string
	MonthlyRent float64
}

// Renter is a resident renting assets.
type Renter struct {
	ID               int64
	Name             string
	EmergencyContact string
	FamilyDoctor     string
}

// Payment is a payroll payment. Any amount may be absent.
type Payment struct {
	ID          int64
	EmployeeID  int64
	PayDate     time.Time
	OverTimePay *float64
	Deductions  *float64
	BasePay     *float64
}

// Shift is a worked shift.
type Shift struct {
	ID         int64
	EmployeeID int64
	StartTime  time.Time
	EndTime    time.Time
	IsOnCall   bool
}

// Service is a single delivered service. It is read as an assignment,
// an invoice and a registration.
type Service struct {
	ID               int64
	ServiceTypeID    int64
	EmployeeID       int64
	ClientID         int64
	ScheduledDate    time.Time
	RegistrationDate time.Time
	TotalAmount      float64
	IsPaid           bool
}

// AssetRental is an AssetRent row joined with its asset's monthly rent.
type AssetRental struct {
	ID          int64
	AssetID     int64
	RenterID    int64
	StartDate   time.Time
	EndDate     *time.Time
	MonthlyRent float64
}

// Reader provides full-snapshot reads of the transactional store.
type Reader interface {
	Employees(ctx context.Context) ([]Employee, error)
	Clients(ctx context.Context) ([]Client, error)
	ServiceTypes(ctx context.Context) ([]ServiceType, error)
	Assets(ctx context.Context) ([]Asset, error)
	Renters(ctx context.Context) ([]Renter, error)
	Payments(ctx context.Context) ([]Payment, error)
	Shifts(ctx context.Context) ([]Shift, error)
	Services(ctx context.Context) ([]Service, error)

	// AssetRentals returns rentals whose asset exists, with the asset's
	// monthly rent.
	AssetRentals(ctx context.Context) ([]AssetRental, error)
}

// Writer inserts, clears and counts entity rows.
type Writer interface {
	Insert(ctx context.Context, e *schema.Entity, row schema.Row) error
	DeleteAll(ctx context.Context, e *schema.Entity) error
	Count(ctx context.Context, e *schema.Entity) (int64, error)
}

// RunRecord is one entry of the run history.
type RunRecord struct {
	ID          string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	State       string    `json:"state"`
	FailedStage string    `json:"failed_stage,omitempty"`
	Error       string    `json:"error,omitempty"`
	RowsLoaded  int64     `json:"rows_loaded"`
	Log         string    `json:"log"`
}

// RunHistory persists run records.
type RunHistory interface {
	SaveRun(ctx context.Context, rec RunRecord) error

	// RecentRuns returns up to limit records, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

// Store is a complete backend usable as either side of the pipeline.
type Store interface {
	Reader
	Writer
	RunHistory

	// CreateSchema creates the tables of the given entities, referenced
	// entities first. The run history table is created alongside
	// analytical entities.
	CreateSchema(ctx context.Context, entities []*schema.Entity) error

	// DropSchema drops the tables of the given entities, and the run
	// history table alongside analytical entities.
	DropSchema(ctx context.Context, entities []*schema.Entity) error

	Close() error
}

// HoldsRunLog reports whether a schema made of entities carries the run
// history table, which is the case for the analytical side.
func HoldsRunLog(entities []*schema.Entity) bool {
	for _, e := range entities {
		if e.Kind != schema.Transactional {
			return true
		}
	}
	return false
}

// Counts returns the row count of each entity keyed by entity name.
func Counts(ctx context.Context, w Writer, entities []*schema.Entity) (map[string]int64, error) {
	counts := make(map[string]int64, len(entities))
	for _, e := range entities {
		n, err := w.Count(ctx, e)
		if err != nil {
			return nil, err
		}
		counts[e.Name] = n
	}
	return counts, nil
}
