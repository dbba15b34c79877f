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
	"fmt"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// loader fills one analytical entity and returns the rows inserted.
type loader struct {
	entity *schema.Entity
	load   func(ctx context.Context, log *runLog) (int, error)
}

// copyAll reads a full source snapshot and inserts one projected row per
// record, stopping at the first failure.
func copyAll[T any](ctx context.Context, w store.Writer, e *schema.Entity,
	read func(context.Context) ([]T, error), project func(T) schema.Row) (int, error) {
	records, err := read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", e.Source, err)
	}
	inserted := 0
	for _, rec := range records {
		row := project(rec)
		if err := w.Insert(ctx, e, row); err != nil {
			return inserted, fmt.Errorf("failed to insert %s %s=%v: %w", e.Name, e.Key, row[e.Key], err)
		}
		inserted++
	}
	return inserted, nil
}

func (p *Pipeline) dimensionLoaders() []loader {
	return []loader{
		{schema.DimEmployee, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.DimEmployee, p.source.Employees, dimEmployeeRow)
		}},
		{schema.DimClient, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.DimClient, p.source.Clients, dimClientRow)
		}},
		{schema.DimService, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.DimService, p.source.ServiceTypes, dimServiceRow)
		}},
		{schema.DimAsset, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.DimAsset, p.source.Assets, dimAssetRow)
		}},
		{schema.DimRenter, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.DimRenter, p.source.Renters, dimRenterRow)
		}},
	}
}

func dimEmployeeRow(e store.Employee) schema.Row {
	var reportsTo any
	if e.ReportsTo != nil {
		reportsTo = *e.ReportsTo
	}
	return schema.Row{
		"employee_id":   e.ID,
		"name":          e.Name,
		"address":       e.Address,
		"job_title":     e.JobTitle,
		"employee_type": e.EmployeeType,
		"salary_rate":   e.SalaryRate,
		"reports_to":    reportsTo,
	}
}

func dimClientRow(c store.Client) schema.Row {
	return schema.Row{
		"client_id":    c.ID,
		"name":         c.Name,
		"address":      c.Address,
		"contact_info": c.ContactInfo,
	}
}

func dimServiceRow(s store.ServiceType) schema.Row {
	return schema.Row{
		"service_id":             s.ID,
		"service_name":           s.Name,
		"rate":                   s.Rate,
		"requires_certification": s.RequiresCertification,
	}
}

func dimAssetRow(a store.Asset) schema.Row {
	return schema.Row{
		"asset_id":     a.ID,
		"asset_type":   a.Type,
		"location":     a.Location,
		"monthly_rent": a.MonthlyRent,
	}
}

func dimRenterRow(r store.Renter) schema.Row {
	return schema.Row{
		"renter_id":         r.ID,
		"name":              r.Name,
		"emergency_contact": r.EmergencyContact,
		"family_doctor":     r.FamilyDoctor,
	}
}
