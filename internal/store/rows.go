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
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

// The Row helpers convert transactional records to and from the
// attribute-keyed form used by Writer.Insert. Nullable attributes hold
// nil rather than a typed nil pointer.

// EmployeeRow converts an employee to a row.
func EmployeeRow(e Employee) schema.Row {
	return schema.Row{
		"employee_id":   e.ID,
		"name":          e.Name,
		"address":       e.Address,
		"job_title":     e.JobTitle,
		"employee_type": e.EmployeeType,
		"salary_rate":   e.SalaryRate,
		"reports_to":    nullable(e.ReportsTo),
	}
}

// ClientRow converts a client to a row.
func ClientRow(c Client) schema.Row {
	return schema.Row{
		"client_id":    c.ID,
		"name":         c.Name,
		"address":      c.Address,
		"contact_info": c.ContactInfo,
	}
}

// ServiceTypeRow converts a service type to a row.
func ServiceTypeRow(s ServiceType) schema.Row {
	return schema.Row{
		"service_type_id":        s.ID,
		"service_name":           s.Name,
		"rate":                   s.Rate,
		"requires_certification": s.RequiresCertification,
	}
}

// AssetRow converts an asset to a row.
func AssetRow(a Asset) schema.Row {
	return schema.Row{
		"asset_id":     a.ID,
		"asset_type":   a.Type,
		"location":     a.Location,
		"monthly_rent": a.MonthlyRent,
	}
}

// RenterRow converts a renter to a row.
func RenterRow(r Renter) schema.Row {
	return schema.Row{
		"renter_id":         r.ID,
		"name":              r.Name,
		"emergency_contact": r.EmergencyContact,
		"family_doctor":     r.FamilyDoctor,
	}
}

// PaymentRow converts a payment to a row.
func PaymentRow(p Payment) schema.Row {
	return schema.Row{
		"payment_id":    p.ID,
		"employee_id":   p.EmployeeID,
		"pay_date":      p.PayDate,
		"over_time_pay": nullable(p.OverTimePay),
		"deductions":    nullable(p.Deductions),
		"base_pay":      nullable(p.BasePay),
	}
}

// ShiftRow converts a shift to a row.
func ShiftRow(s Shift) schema.Row {
	return schema.Row{
		"shift_id":    s.ID,
		"employee_id": s.EmployeeID,
		"start_time":  s.StartTime,
		"end_time":    s.EndTime,
		"is_on_call":  s.IsOnCall,
	}
}

// ServiceRow converts a service to a row.
func ServiceRow(s Service) schema.Row {
	return schema.Row{
		"service_id":        s.ID,
		"service_type_id":   s.ServiceTypeID,
		"employee_id":       s.EmployeeID,
		"client_id":         s.ClientID,
		"scheduled_date":    s.ScheduledDate,
		"registration_date": s.RegistrationDate,
		"total_amount":      s.TotalAmount,
		"is_paid":           s.IsPaid,
	}
}

// AssetRentRow converts a rental to an asset_rent row. MonthlyRent is
// not part of the row.
func AssetRentRow(r AssetRental) schema.Row {
	return schema.Row{
		"asset_rent_id": r.ID,
		"asset_id":      r.AssetID,
		"renter_id":     r.RenterID,
		"start_date":    r.StartDate,
		"end_date":      nullable(r.EndDate),
	}
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// RowDecoder reads typed values out of a row, remembering the first
// conversion failure.
type RowDecoder struct {
	row schema.Row
	err error
}

// NewRowDecoder wraps a row.
func NewRowDecoder(row schema.Row) *RowDecoder {
	return &RowDecoder{row: row}
}

// Err returns the first conversion failure.
func (d *RowDecoder) Err() error {
	return d.err
}

func (d *RowDecoder) fail(name string, v any, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("attribute %s: cannot use %T as %s", name, v, want)
	}
}

// Int64 reads an integer attribute.
func (d *RowDecoder) Int64(name string) int64 {
	switch v := d.row[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	default:
		d.fail(name, v, "int64")
		return 0
	}
}

// NullInt64 reads a nullable integer attribute.
func (d *RowDecoder) NullInt64(name string) *int64 {
	if d.row[name] == nil {
		return nil
	}
	v := d.Int64(name)
	return &v
}

// Float64 reads a decimal attribute.
func (d *RowDecoder) Float64(name string) float64 {
	switch v := d.row[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		d.fail(name, v, "float64")
		return 0
	}
}

// NullFloat64 reads a nullable decimal attribute.
func (d *RowDecoder) NullFloat64(name string) *float64 {
	if d.row[name] == nil {
		return nil
	}
	v := d.Float64(name)
	return &v
}

// String reads a text attribute.
func (d *RowDecoder) String(name string) string {
	v, ok := d.row[name].(string)
	if !ok {
		d.fail(name, d.row[name], "string")
	}
	return v
}

// Bool reads a boolean attribute.
func (d *RowDecoder) Bool(name string) bool {
	v, ok := d.row[name].(bool)
	if !ok {
		d.fail(name, d.row[name], "bool")
	}
	return v
}

// Time reads a date or timestamp attribute.
func (d *RowDecoder) Time(name string) time.Time {
	v, ok := d.row[name].(time.Time)
	if !ok {
		d.fail(name, d.row[name], "time.Time")
	}
	return v
}

// NullTime reads a nullable date or timestamp attribute.
func (d *RowDecoder) NullTime(name string) *time.Time {
	if d.row[name] == nil {
		return nil
	}
	v := d.Time(name)
	return &v
}
