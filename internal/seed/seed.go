//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package seed populates an empty transactional store with a coherent
// care-services dataset.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/datagen"
	"github.com/pgEdge/pgedge-careetl/internal/logging"
	"github.com/pgEdge/pgedge-careetl/internal/schema"
	"github.com/pgEdge/pgedge-careetl/internal/store"
)

// Config controls the size and reproducibility of a generated dataset.
type Config struct {
	// Scale multiplies the base row counts. Values below 1 are treated as 1.
	Scale int

	// Seed makes generation reproducible. Zero draws a random seed.
	Seed uint64

	// Now anchors generated dates. Zero means time.Now.
	Now time.Time
}

// Base row counts at scale 1.
const (
	managersPerScale  = 3
	employeesPerScale = 20
	clientsPerScale   = 30
	assetsPerScale    = 15
	rentersPerScale   = 12

	paymentsPerEmployee = 6
	shiftsPerEmployee   = 8
	servicesPerClient   = 4
)

type serviceKind struct {
	name     string
	rate     float64
	certReqd bool
}

var serviceKinds = []serviceKind{
	{"Home Nursing", 80, true},
	{"Personal Care", 45, true},
	{"Meal Delivery", 15.5, false},
	{"Physiotherapy", 95, true},
	{"Housekeeping", 30, false},
	{"Transport", 25, false},
	{"Companionship", 20, false},
	{"Medication Review", 60, true},
}

type assetKind struct {
	name     string
	min, max float64
}

var assetKinds = []assetKind{
	{"Apartment", 900, 1800},
	{"Room", 450, 900},
	{"Studio", 650, 1200},
	{"Mobility Scooter", 30, 90},
	{"Hospital Bed", 40, 120},
	{"Wheelchair", 15, 45},
}

var (
	jobTitles      = []string{"Nurse", "Care Assistant", "Physiotherapist", "Housekeeper", "Driver"}
	employeeTypes  = []string{"Full-time", "Part-time", "Contract"}
	employeeWeight = []int{6, 3, 1}
	locations      = []string{"North Wing", "South Wing", "East Wing", "Garden Block", "Storage"}
	shiftStarts    = []int{6, 14, 22}
)

// Counts is the number of rows generated per transactional entity.
type Counts map[string]int64

// Generator creates transactional rows and writes them through a
// store.Writer, referenced entities first.
type Generator struct {
	faker *datagen.Faker
	w     store.Writer
	scale int
	now   time.Time

	employees    []store.Employee
	clients      []store.Client
	serviceTypes []store.ServiceType
	assets       []store.Asset
	renters      []store.Renter
}

// NewGenerator creates a generator writing to w.
func NewGenerator(w store.Writer, cfg Config) *Generator {
	faker := datagen.NewFaker()
	if cfg.Seed != 0 {
		faker = datagen.NewFakerWithSeed(cfg.Seed)
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Generator{
		faker: faker,
		w:     w,
		scale: max(1, cfg.Scale),
		now:   datagen.TruncateDay(now),
	}
}

// SeedIfEmpty generates a dataset unless the store already holds
// employees. It reports whether anything was written.
func SeedIfEmpty(ctx context.Context, w store.Writer, cfg Config) (bool, error) {
	n, err := w.Count(ctx, schema.Employee)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing data: %w", err)
	}
	if n > 0 {
		logging.Info().
			Int64("employees", n).
			Msg("Database already seeded. Skipping.")
		return false, nil
	}

	counts, err := NewGenerator(w, cfg).Generate(ctx)
	if err != nil {
		return false, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	logging.Info().
		Int64("rows", total).
		Int("scale", max(1, cfg.Scale)).
		Msg("OLTP database seeded successfully.")
	return true, nil
}

// Generate writes a full dataset.
func (g *Generator) Generate(ctx context.Context) (Counts, error) {
	steps := []struct {
		entity *schema.Entity
		total  int
		fn     func(context.Context, *datagen.ProgressReporter) error
	}{
		{schema.Employee, employeesPerScale * g.scale, g.generateEmployees},
		{schema.Client, clientsPerScale * g.scale, g.generateClients},
		{schema.ServiceType, len(serviceKinds), g.generateServiceTypes},
		{schema.Asset, assetsPerScale * g.scale, g.generateAssets},
		{schema.Renter, rentersPerScale * g.scale, g.generateRenters},
		{schema.Payment, paymentsPerEmployee * employeesPerScale * g.scale, g.generatePayments},
		{schema.Shift, shiftsPerEmployee * employeesPerScale * g.scale, g.generateShifts},
		{schema.Service, servicesPerClient * clientsPerScale * g.scale, g.generateServices},
		{schema.AssetRent, rentersPerScale * g.scale, g.generateRentals},
	}

	counts := make(Counts, len(steps))
	for _, step := range steps {
		progress := datagen.NewProgressReporter(step.entity.Name, int64(step.total), 100)
		if err := step.fn(ctx, progress); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", step.entity.Name, err)
		}
		progress.Done()
		counts[step.entity.Name] = progress.Rows()
	}
	return counts, nil
}

func (g *Generator) insert(ctx context.Context, progress *datagen.ProgressReporter, e *schema.Entity, row schema.Row) error {
	if err := g.w.Insert(ctx, e, row); err != nil {
		return err
	}
	progress.Update(1)
	return nil
}

func (g *Generator) generateEmployees(ctx context.Context, progress *datagen.ProgressReporter) error {
	managers := managersPerScale * g.scale
	total := employeesPerScale * g.scale
	for id := int64(1); id <= int64(total); id++ {
		emp := store.Employee{
			ID:           id,
			Name:         g.faker.Name(),
			Address:      g.faker.Address(),
			EmployeeType: datagen.ChooseWeighted(g.faker, employeeTypes, employeeWeight),
		}
		if id <= int64(managers) {
			emp.JobTitle = "Care Manager"
			emp.EmployeeType = "Full-time"
			emp.SalaryRate = g.faker.Money(38, 55)
		} else {
			emp.JobTitle = datagen.Choose(g.faker, jobTitles)
			emp.SalaryRate = g.faker.Money(18, 40)
			manager := g.faker.Int64(1, int64(managers))
			emp.ReportsTo = &manager
		}
		if err := g.insert(ctx, progress, schema.Employee, store.EmployeeRow(emp)); err != nil {
			return err
		}
		g.employees = append(g.employees, emp)
	}
	return nil
}

func (g *Generator) generateClients(ctx context.Context, progress *datagen.ProgressReporter) error {
	total := clientsPerScale * g.scale
	for id := int64(1); id <= int64(total); id++ {
		c := store.Client{
			ID:          id,
			Name:        g.faker.Name(),
			Address:     g.faker.Address(),
			ContactInfo: g.faker.Phone(),
		}
		if err := g.insert(ctx, progress, schema.Client, store.ClientRow(c)); err != nil {
			return err
		}
		g.clients = append(g.clients, c)
	}
	return nil
}

func (g *Generator) generateServiceTypes(ctx context.Context, progress *datagen.ProgressReporter) error {
	for i, k := range serviceKinds {
		st := store.ServiceType{
			ID:                    int64(i + 1),
			Name:                  k.name,
			Rate:                  k.rate,
			RequiresCertification: k.certReqd,
		}
		if err := g.insert(ctx, progress, schema.ServiceType, store.ServiceTypeRow(st)); err != nil {
			return err
		}
		g.serviceTypes = append(g.serviceTypes, st)
	}
	return nil
}

func (g *Generator) generateAssets(ctx context.Context, progress *datagen.ProgressReporter) error {
	total := assetsPerScale * g.scale
	for id := int64(1); id <= int64(total); id++ {
		k := datagen.Choose(g.faker, assetKinds)
		a := store.Asset{
			ID:          id,
			Type:        k.name,
			Location:    datagen.Choose(g.faker, locations),
			MonthlyRent: g.faker.Money(k.min, k.max),
		}
		if err := g.insert(ctx, progress, schema.Asset, store.AssetRow(a)); err != nil {
			return err
		}
		g.assets = append(g.assets, a)
	}
	return nil
}

func (g *Generator) generateRenters(ctx context.Context, progress *datagen.ProgressReporter) error {
	total := rentersPerScale * g.scale
	for id := int64(1); id <= int64(total); id++ {
		r := store.Renter{
			ID:               id,
			Name:             g.faker.Name(),
			EmergencyContact: g.faker.Contact(),
			FamilyDoctor:     g.faker.Doctor(),
		}
		if err := g.insert(ctx, progress, schema.Renter, store.RenterRow(r)); err != nil {
			return err
		}
		g.renters = append(g.renters, r)
	}
	return nil
}

// generatePayments writes biweekly payments. Some amounts are left null
// so the net pay calculation sees absent values.
func (g *Generator) generatePayments(ctx context.Context, progress *datagen.ProgressReporter) error {
	first := g.now.AddDate(0, 0, -14*paymentsPerEmployee)
	var id int64
	for _, emp := range g.employees {
		for period := 0; period < paymentsPerEmployee; period++ {
			id++
			p := store.Payment{
				ID:         id,
				EmployeeID: emp.ID,
				PayDate:    first.AddDate(0, 0, 14*period),
			}
			if !g.faker.Chance(0.02) {
				base := datagen.RoundCents(emp.SalaryRate * 80)
				p.BasePay = &base
			}
			if g.faker.Chance(0.3) {
				ot := g.faker.Money(20, 400)
				p.OverTimePay = &ot
			}
			if g.faker.Chance(0.8) {
				ded := g.faker.Money(50, 300)
				p.Deductions = &ded
			}
			if err := g.insert(ctx, progress, schema.Payment, store.PaymentRow(p)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) generateShifts(ctx context.Context, progress *datagen.ProgressReporter) error {
	var id int64
	for _, emp := range g.employees {
		for i := 0; i < shiftsPerEmployee; i++ {
			id++
			day := g.faker.Day(g.now.AddDate(0, 0, -60), g.now)
			start := day.Add(time.Duration(datagen.Choose(g.faker, shiftStarts)) * time.Hour)
			s := store.Shift{
				ID:         id,
				EmployeeID: emp.ID,
				StartTime:  start,
				EndTime:    start.Add(8 * time.Hour),
				IsOnCall:   g.faker.Chance(0.15),
			}
			if err := g.insert(ctx, progress, schema.Shift, store.ShiftRow(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) generateServices(ctx context.Context, progress *datagen.ProgressReporter) error {
	var id int64
	for _, c := range g.clients {
		for i := 0; i < servicesPerClient; i++ {
			id++
			st := datagen.Choose(g.faker, g.serviceTypes)
			registered := g.faker.Day(g.now.AddDate(0, 0, -90), g.now)
			scheduled := registered.AddDate(0, 0, g.faker.Int(1, 14))
			s := store.Service{
				ID:               id,
				ServiceTypeID:    st.ID,
				EmployeeID:       datagen.Choose(g.faker, g.employees).ID,
				ClientID:         c.ID,
				ScheduledDate:    scheduled,
				RegistrationDate: registered,
				TotalAmount:      datagen.RoundCents(st.Rate * float64(g.faker.Int(1, 4))),
				IsPaid:           scheduled.Before(g.now) && g.faker.Chance(0.7),
			}
			if err := g.insert(ctx, progress, schema.Service, store.ServiceRow(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

// generateRentals gives each renter one open rental, and some renters an
// earlier closed one. Assets are not rented twice at the same time.
func (g *Generator) generateRentals(ctx context.Context, progress *datagen.ProgressReporter) error {
	free := make([]store.Asset, len(g.assets))
	copy(free, g.assets)

	var id int64
	for _, r := range g.renters {
		if len(free) == 0 {
			break
		}
		if g.faker.Chance(0.4) {
			id++
			past := store.AssetRental{
				ID:        id,
				AssetID:   datagen.Choose(g.faker, g.assets).ID,
				RenterID:  r.ID,
				StartDate: g.faker.Day(g.now.AddDate(-2, 0, 0), g.now.AddDate(-1, 0, 0)),
			}
			end := g.faker.Day(past.StartDate.AddDate(0, 1, 0), g.now.AddDate(0, -7, 0))
			past.EndDate = &end
			if err := g.insert(ctx, progress, schema.AssetRent, store.AssetRentRow(past)); err != nil {
				return err
			}
		}

		i := g.faker.Int(0, len(free)-1)
		asset := free[i]
		free = append(free[:i], free[i+1:]...)

		id++
		current := store.AssetRental{
			ID:        id,
			AssetID:   asset.ID,
			RenterID:  r.ID,
			StartDate: g.faker.Day(g.now.AddDate(0, -6, 0), g.now),
		}
		if err := g.insert(ctx, progress, schema.AssetRent, store.AssetRentRow(current)); err != nil {
			return err
		}
	}
	return nil
}
