//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"fmt"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

// RowScanner is satisfied by pgx.Rows and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Rows is the iteration subset shared by pgx.Rows and *sql.Rows.
type Rows interface {
	RowScanner
	Next() bool
	Err() error
}

// Collect scans every remaining row with scan. The caller closes rows.
func Collect[T any](rows Rows, scan func(RowScanner) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Each Scan function reads columns in the registry's attribute order, as
// produced by schema.SelectSQL.

// ScanEmployee scans an employee row.
func ScanEmployee(r RowScanner) (Employee, error) {
	var e Employee
	err := r.Scan(&e.ID, &e.Name, &e.Address, &e.JobTitle, &e.EmployeeType, &e.SalaryRate, &e.ReportsTo)
	return e, err
}

// ScanClient scans a client row.
func ScanClient(r RowScanner) (Client, error) {
	var c Client
	err := r.Scan(&c.ID, &c.Name, &c.Address, &c.ContactInfo)
	return c, err
}

// ScanServiceType scans a service type row.
func ScanServiceType(r RowScanner) (ServiceType, error) {
	var s ServiceType
	err := r.Scan(&s.ID, &s.Name, &s.Rate, &s.RequiresCertification)
	return s, err
}

// ScanAsset scans an asset row.
func ScanAsset(r RowScanner) (Asset, error) {
	var a Asset
	err := r.Scan(&a.ID, &a.Type, &a.Location, &a.MonthlyRent)
	return a, err
}

// ScanRenter scans a renter row.
func ScanRenter(r RowScanner) (Renter, error) {
	var rt Renter
	err := r.Scan(&rt.ID, &rt.Name, &rt.EmergencyContact, &rt.FamilyDoctor)
	return rt, err
}

// ScanPayment scans a payment row.
func ScanPayment(r RowScanner) (Payment, error) {
	var p Payment
	err := r.Scan(&p.ID, &p.EmployeeID, &p.PayDate, &p.OverTimePay, &p.Deductions, &p.BasePay)
	return p, err
}

// ScanShift scans a shift row.
func ScanShift(r RowScanner) (Shift, error) {
	var s Shift
	err := r.Scan(&s.ID, &s.EmployeeID, &s.StartTime, &s.EndTime, &s.IsOnCall)
	return s, err
}

// ScanService scans a service row.
func ScanService(r RowScanner) (Service, error) {
	var s Service
	err := r.Scan(&s.ID, &s.ServiceTypeID, &s.EmployeeID, &s.ClientID,
		&s.ScheduledDate, &s.RegistrationDate, &s.TotalAmount, &s.IsPaid)
	return s, err
}

// ScanAssetRental scans a row of AssetRentalsSQL.
func ScanAssetRental(r RowScanner) (AssetRental, error) {
	var a AssetRental
	err := r.Scan(&a.ID, &a.AssetID, &a.RenterID, &a.StartDate, &a.EndDate, &a.MonthlyRent)
	return a, err
}

// AssetRentalsSQL joins rentals with their asset. Rentals of unknown
// assets are dropped by the inner join.
var AssetRentalsSQL = fmt.Sprintf(`
SELECT ar.asset_rent_id, ar.asset_id, ar.renter_id, ar.start_date, ar.end_date, a.monthly_rent
FROM %s ar
JOIN %s a ON a.asset_id = ar.asset_id
ORDER BY ar.asset_rent_id`, schema.AssetRent.Table, schema.Asset.Table)

// ScanRunRecord scans a row of RecentRunsSQL.
func ScanRunRecord(r RowScanner) (RunRecord, error) {
	var rec RunRecord
	err := r.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.State,
		&rec.FailedStage, &rec.Error, &rec.RowsLoaded, &rec.Log)
	return rec, err
}

// RecentRunsSQL lists run history newest first. The single bind
// parameter is the limit.
func RecentRunsSQL(d schema.Dialect) string {
	return fmt.Sprintf(`
SELECT run_id, started_at, finished_at, state, failed_stage, error_message, rows_loaded, log_text
FROM %s
ORDER BY started_at DESC
LIMIT %s`, schema.RunLogTable, d.Placeholder(1))
}

// SaveRunSQL inserts a run record.
func SaveRunSQL(d schema.Dialect) string {
	params := make([]any, 8)
	for i := range params {
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf(`
INSERT INTO %s (run_id, started_at, finished_at, state, failed_stage, error_message, rows_loaded, log_text)
VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`, append([]any{schema.RunLogTable}, params...)...)
}

// RunRecordArgs returns the bind arguments of SaveRunSQL.
func RunRecordArgs(rec RunRecord) []any {
	return []any{rec.ID, rec.StartedAt, rec.FinishedAt, rec.State,
		rec.FailedStage, rec.Error, rec.RowsLoaded, rec.Log}
}
