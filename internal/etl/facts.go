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

func (p *Pipeline) factLoaders() []loader {
	return []loader{
		{schema.FactPayroll, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactPayroll, p.source.Payments, factPayrollRow)
		}},
		{schema.FactShifts, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactShifts, p.source.Shifts, factShiftsRow)
		}},
		{schema.FactAttendance, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactAttendance, p.source.Shifts, factAttendanceRow)
		}},
		// Service is read once per projection.
		{schema.FactServiceAssignment, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactServiceAssignment, p.source.Services, serviceAssignmentRow)
		}},
		{schema.FactInvoice, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactInvoice, p.source.Services, invoiceRow)
		}},
		{schema.FactServiceRegistration, func(ctx context.Context, _ *runLog) (int, error) {
			return copyAll(ctx, p.target, schema.FactServiceRegistration, p.source.Services, serviceRegistrationRow)
		}},
		{schema.FactDamageReport, p.loadDamageReports},
		{schema.FactRentalHistory, p.loadRentalHistory},
	}
}

func factPayrollRow(pay store.Payment) schema.Row {
	return schema.Row{
		"payroll_id":      pay.ID,
		"dim_employee_id": pay.EmployeeID,
		"pay_date":        pay.PayDate,
		"base_salary":     orZero(pay.BasePay),
		"over_time_pay":   orZero(pay.OverTimePay),
		"deductions":      orZero(pay.Deductions),
		"net_pay":         NetPay(pay.BasePay, pay.OverTimePay, pay.Deductions),
	}
}

func factShiftsRow(s store.Shift) schema.Row {
	return schema.Row{
		"shift_id":        s.ID,
		"dim_employee_id": s.EmployeeID,
		"start_time":      s.StartTime,
		"end_time":        s.EndTime,
		"is_on_call":      s.IsOnCall,
	}
}

// factAttendanceRow keys attendance by shift. Holiday and vacation are not
// recorded at the source.
func factAttendanceRow(s store.Shift) schema.Row {
	return schema.Row{
		"attendance_id":   s.ID,
		"dim_employee_id": s.EmployeeID,
		"fact_shifts_id":  s.ID,
		"is_holiday":      false,
		"is_vacation":     false,
		"is_on_call":      s.IsOnCall,
	}
}

// The three Service projections share the service identifier.

func serviceAssignmentRow(s store.Service) schema.Row {
	return schema.Row{
		"assigned_id":     s.ID,
		"dim_employee_id": s.EmployeeID,
		"dim_service_id":  s.ServiceTypeID,
		"scheduled_date":  s.ScheduledDate,
	}
}

func invoiceRow(s store.Service) schema.Row {
	return schema.Row{
		"invoice_id":     s.ID,
		"dim_client_id":  s.ClientID,
		"dim_service_id": s.ServiceTypeID,
		"invoice_date":   s.ScheduledDate,
		"total_amount":   s.TotalAmount,
		"is_paid":        s.IsPaid,
	}
}

func serviceRegistrationRow(s store.Service) schema.Row {
	return schema.Row{
		"registration_id":   s.ID,
		"dim_client_id":     s.ClientID,
		"dim_service_id":    s.ServiceTypeID,
		"registration_date": s.RegistrationDate,
	}
}

// loadDamageReports fabricates one report per asset. A failed insert is
// logged and skipped; only a failed asset read stops the run.
func (p *Pipeline) loadDamageReports(ctx context.Context, log *runLog) (int, error) {
	e := schema.FactDamageReport
	assets, err := p.source.Assets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", e.Source, err)
	}

	now := p.now()
	inserted := 0
	var reportID int64
	for _, a := range assets {
		reportID++
		row := schema.Row{
			"report_id":    reportID,
			"dim_asset_id": a.ID,
			"report_date":  p.damage.ReportDate(now),
			"repair_cost":  p.damage.RepairCost(),
			"description":  p.damage.Description(),
		}
		if err := p.target.Insert(ctx, e, row); err != nil {
			log.fail(e.Name, err, "Error inserting damage report for asset %d: %v", a.ID, err)
			p.metrics.SyntheticRowError(e.Name)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// loadRentalHistory numbers rentals with a sequence local to the run, so
// repeated runs produce identical identifiers.
func (p *Pipeline) loadRentalHistory(ctx context.Context, _ *runLog) (int, error) {
	var historyID int64
	return copyAll(ctx, p.target, schema.FactRentalHistory, p.source.AssetRentals,
		func(r store.AssetRental) schema.Row {
			historyID++
			var endDate any
			if r.EndDate != nil {
				endDate = *r.EndDate
			}
			return schema.Row{
				"history_id":    historyID,
				"dim_asset_id":  r.AssetID,
				"dim_renter_id": r.RenterID,
				"start_date":    r.StartDate,
				"end_date":      endDate,
				"rent_amount":   r.MonthlyRent,
			}
		})
}
