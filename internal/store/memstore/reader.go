//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package memstore

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// read decodes every row of an entity ordered by key.
func read[T any](ctx context.Context, s *Store, e *schema.Entity, decode func(*store.RowDecoder) T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if err, ok := s.readFaults[e.Name]; ok {
		return nil, err
	}

	rows := s.snapshot(e)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		dec := store.NewRowDecoder(row)
		v := decode(dec)
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Employees returns all employees.
func (s *Store) Employees(ctx context.Context) ([]store.Employee, error) {
	return read(ctx, s, schema.Employee, func(d *store.RowDecoder) store.Employee {
		return store.Employee{
			ID:           d.Int64("employee_id"),
			Name:         d.String("name"),
			Address:      d.String("address"),
			JobTitle:     d.String("job_title"),
			EmployeeType: d.String("employee_type"),
			SalaryRate:   d.Float64("salary_rate"),
			ReportsTo:    d.NullInt64("reports_to"),
		}
	})
}

// Clients returns all clients.
func (s *Store) Clients(ctx context.Context) ([]store.Client, error) {
	return read(ctx, s, schema.Client, func(d *store.RowDecoder) store.Client {
		return store.Client{
			ID:          d.Int64("client_id"),
			Name:        d.String("name"),
			Address:     d.String("address"),
			ContactInfo: d.String("contact_info"),
		}
	})
}

// ServiceTypes returns all service types.
func (s *Store) ServiceTypes(ctx context.Context) ([]store.ServiceType, error) {
	return read(ctx, s, schema.ServiceType, func(d *store.RowDecoder) store.ServiceType {
		return store.ServiceType{
			ID:                    d.Int64("service_type_id"),
			Name:                  d.String("service_name"),
			Rate:                  d.Float64("rate"),
			RequiresCertification: d.Bool("requires_certification"),
		}
	})
}

// Assets returns all assets.
func (s *Store) Assets(ctx context.Context) ([]store.Asset, error) {
	return read(ctx, s, schema.Asset, func(d *store.RowDecoder) store.Asset {
		return store.Asset{
			ID:          d.Int64("asset_id"),
			Type:        d.String("asset_type"),
			Location:    d.String("location"),
			MonthlyRent: d.Float64("monthly_rent"),
		}
	})
}

// Renters returns all renters.
func (s *Store) Renters(ctx context.Context) ([]store.Renter, error) {
	return read(ctx, s, schema.Renter, func(d *store.RowDecoder) store.Renter {
		return store.Renter{
			ID:               d.Int64("renter_id"),
			Name:             d.String("name"),
			EmergencyContact: d.String("emergency_contact"),
			FamilyDoctor:     d.String("family_doctor"),
		}
	})
}

// Payments returns all payments.
func (s *Store) Payments(ctx context.Context) ([]store.Payment, error) {
	return read(ctx, s, schema.Payment, func(d *store.RowDecoder) store.Payment {
		return store.Payment{
			ID:          d.Int64("payment_id"),
			EmployeeID:  d.Int64("employee_id"),
			PayDate:     d.Time("pay_date"),
			OverTimePay: d.NullFloat64("over_time_pay"),
			Deductions:  d.NullFloat64("deductions"),
			BasePay:     d.NullFloat64("base_pay"),
		}
	})
}

// Shifts returns all shifts.
func (s *Store) Shifts(ctx context.Context) ([]store.Shift, error) {
	return read(ctx, s, schema.Shift, func(d *store.RowDecoder) store.Shift {
		return store.Shift{
			ID:         d.Int64("shift_id"),
			EmployeeID: d.Int64("employee_id"),
			StartTime:  d.Time("start_time"),
			EndTime:    d.Time("end_time"),
			IsOnCall:   d.Bool("is_on_call"),
		}
	})
}

// Services returns all services.
func (s *Store) Services(ctx context.Context) ([]store.Service, error) {
	return read(ctx, s, schema.Service, func(d *store.RowDecoder) store.Service {
		return store.Service{
			ID:               d.Int64("service_id"),
			ServiceTypeID:    d.Int64("service_type_id"),
			EmployeeID:       d.Int64("employee_id"),
			ClientID:         d.Int64("client_id"),
			ScheduledDate:    d.Time("scheduled_date"),
			RegistrationDate: d.Time("registration_date"),
			TotalAmount:      d.Float64("total_amount"),
			IsPaid:           d.Bool("is_paid"),
		}
	})
}

// AssetRentals returns rentals joined with their asset's monthly rent.
// Rentals whose asset is missing are skipped.
func (s *Store) AssetRentals(ctx context.Context) ([]store.AssetRental, error) {
	assets, err := s.Assets(ctx)
	if err != nil {
		return nil, err
	}
	rent := make(map[int64]float64, len(assets))
	for _, a := range assets {
		rent[a.ID] = a.MonthlyRent
	}

	rentals, err := read(ctx, s, schema.AssetRent, func(d *store.RowDecoder) store.AssetRental {
		return store.AssetRental{
			ID:        d.Int64("asset_rent_id"),
			AssetID:   d.Int64("asset_id"),
			RenterID:  d.Int64("renter_id"),
			StartDate: d.Time("start_date"),
			EndDate:   d.NullTime("end_date"),
		}
	})
	if err != nil {
		return nil, err
	}

	joined := rentals[:0]
	for _, r := range rentals {
		amount, ok := rent[r.AssetID]
		if !ok {
			continue
		}
		r.MonthlyRent = amount
		joined = append(joined, r)
	}
	return joined, nil
}
