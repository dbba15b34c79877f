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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
	"github.com/pgEdge/pgedge-careetl/internal/store/memstore"
)

var (
	day0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	now  = time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

// fixture is a small, consistent transactional dataset.
type fixture struct {
	employees    []store.Employee
	clients      []store.Client
	serviceTypes []store.ServiceType
	assets       []store.Asset
	renters      []store.Renter
	payments     []store.Payment
	shifts       []store.Shift
	services     []store.Service
	rentals      []store.AssetRental
}

func newFixture() fixture {
	return fixture{
		employees: []store.Employee{
			{ID: 1, Name: "Ada Park", Address: "1 Elm St", JobTitle: "Care Manager", EmployeeType: "Full-time", SalaryRate: 42.5},
			{ID: 2, Name: "Ben Ode", Address: "2 Oak St", JobTitle: "Nurse", EmployeeType: "Part-time", SalaryRate: 31, ReportsTo: ptr(int64(1))},
		},
		clients: []store.Client{
			{ID: 1, Name: "Cara Lin", Address: "3 Pine St", ContactInfo: "555-0101"},
			{ID: 2, Name: "Dev Rao", Address: "4 Ash St", ContactInfo: "555-0102"},
		},
		serviceTypes: []store.ServiceType{
			{ID: 10, Name: "Home Nursing", Rate: 80, RequiresCertification: true},
			{ID: 11, Name: "Meal Delivery", Rate: 15.5},
		},
		assets: []store.Asset{
			{ID: 100, Type: "Apartment", Location: "North Wing", MonthlyRent: 1200},
			{ID: 101, Type: "Room", Location: "South Wing", MonthlyRent: 650.75},
			{ID: 102, Type: "Mobility Scooter", Location: "Storage", MonthlyRent: 40},
		},
		renters: []store.Renter{
			{ID: 1, Name: "Eve Moss", EmergencyContact: "Fay Moss, 555-0199", FamilyDoctor: "Dr. Hale"},
		},
		payments: []store.Payment{
			{ID: 1, EmployeeID: 2, PayDate: day0, BasePay: ptr(1000.0), OverTimePay: ptr(200.0), Deductions: ptr(150.0)},
			{ID: 2, EmployeeID: 1, PayDate: day0.AddDate(0, 0, 14), BasePay: ptr(2500.0)},
		},
		shifts: []store.Shift{
			{ID: 1, EmployeeID: 1, StartTime: day0.Add(8 * time.Hour), EndTime: day0.Add(16 * time.Hour)},
			{ID: 2, EmployeeID: 2, StartTime: day0.Add(20 * time.Hour), EndTime: day0.Add(28 * time.Hour), IsOnCall: true},
		},
		services: []store.Service{
			{ID: 500, ServiceTypeID: 10, EmployeeID: 2, ClientID: 1, ScheduledDate: day0, RegistrationDate: day0.AddDate(0, 0, -3), TotalAmount: 160, IsPaid: true},
			{ID: 501, ServiceTypeID: 11, EmployeeID: 1, ClientID: 2, ScheduledDate: day0.AddDate(0, 0, 1), RegistrationDate: day0.AddDate(0, 0, -1), TotalAmount: 15.5},
		},
		rentals: []store.AssetRental{
			{ID: 1, AssetID: 100, RenterID: 1, StartDate: day0.AddDate(0, -6, 0)},
			{ID: 2, AssetID: 101, RenterID: 1, StartDate: day0.AddDate(-1, 0, 0), EndDate: ptr(day0.AddDate(0, -6, -1))},
		},
	}
}

func (f fixture) load(t *testing.T, s store.Writer) {
	t.Helper()
	ctx := context.Background()
	insert := func(e *schema.Entity, row schema.Row) {
		require.NoError(t, s.Insert(ctx, e, row))
	}
	for _, v := range f.employees {
		insert(schema.Employee, store.EmployeeRow(v))
	}
	for _, v := range f.clients {
		insert(schema.Client, store.ClientRow(v))
	}
	for _, v := range f.serviceTypes {
		insert(schema.ServiceType, store.ServiceTypeRow(v))
	}
	for _, v := range f.assets {
		insert(schema.Asset, store.AssetRow(v))
	}
	for _, v := range f.renters {
		insert(schema.Renter, store.RenterRow(v))
	}
	for _, v := range f.payments {
		insert(schema.Payment, store.PaymentRow(v))
	}
	for _, v := range f.shifts {
		insert(schema.Shift, store.ShiftRow(v))
	}
	for _, v := range f.services {
		insert(schema.Service, store.ServiceRow(v))
	}
	for _, v := range f.rentals {
		insert(schema.AssetRent, store.AssetRentRow(v))
	}
}

// fixedDamage returns the same report for every asset.
type fixedDamage struct{}

func (fixedDamage) RepairCost() float64 { return 125 }

func (fixedDamage) ReportDate(now time.Time) time.Time {
	return now.AddDate(0, 0, -10).Truncate(24 * time.Hour)
}

func (fixedDamage) Description() string { return "Generated damage report for maintenance" }

// newTestPipeline wires a seeded source and an empty target.
func newTestPipeline(t *testing.T, f fixture, opts ...Option) (*Pipeline, *memstore.Store, *memstore.Store) {
	t.Helper()
	source := memstore.New()
	f.load(t, source)
	target := memstore.New()
	opts = append([]Option{WithDamageGenerator(fixedDamage{}), WithClock(func() time.Time { return now })}, opts...)
	return New(source, target, opts...), source, target
}

func count(t *testing.T, s *memstore.Store, e *schema.Entity) int64 {
	t.Helper()
	n, err := s.Count(context.Background(), e)
	require.NoError(t, err)
	return n
}

func keys(rows []schema.Row, attr string) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r[attr].(int64)
	}
	return out
}
