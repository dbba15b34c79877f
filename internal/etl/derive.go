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
	"time"

	"github.com/pgEdge/pgedge-careetl/internal/datagen"
)

// NetPay is base + overtime - deductions with absent amounts counted as
// zero, rounded to cents.
func NetPay(base, overtime, deductions *float64) float64 {
	return datagen.RoundCents(orZero(base) + orZero(overtime) - orZero(deductions))
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// DamageGenerator fabricates the content of damage reports. The
// transactional store has no damage data; every value it returns is
// synthetic.
type DamageGenerator interface {
	// RepairCost returns a whole amount in [MinCost, MaxCost).
	RepairCost() float64

	// ReportDate returns a day between 1 and MaxAgeDays-1 days before now.
	ReportDate(now time.Time) time.Time

	Description() string
}

// DamageConfig bounds the generated damage reports.
type DamageConfig struct {
	MinCost     int
	MaxCost     int
	MaxAgeDays  int
	Description string
}

// DefaultDamageConfig returns the default damage report bounds.
func DefaultDamageConfig() DamageConfig {
	return DamageConfig{
		MinCost:     50,
		MaxCost:     500,
		MaxAgeDays:  90,
		Description: "Generated damage report for maintenance",
	}
}

// FakerDamageGenerator draws damage reports from a gofakeit source.
type FakerDamageGenerator struct {
	cfg   DamageConfig
	faker *datagen.Faker
}

// NewFakerDamageGenerator creates a generator. A zero seed draws a random
// one.
func NewFakerDamageGenerator(cfg DamageConfig, seed uint64) *FakerDamageGenerator {
	faker := datagen.NewFaker()
	if seed != 0 {
		faker = datagen.NewFakerWithSeed(seed)
	}
	return &FakerDamageGenerator{cfg: cfg, faker: faker}
}

// RepairCost returns a whole amount in [MinCost, MaxCost).
func (g *FakerDamageGenerator) RepairCost() float64 {
	return float64(g.faker.Int(g.cfg.MinCost, max(g.cfg.MinCost, g.cfg.MaxCost-1)))
}

// ReportDate returns a day between 1 and MaxAgeDays-1 days before now.
func (g *FakerDamageGenerator) ReportDate(now time.Time) time.Time {
	days := g.faker.Int(1, max(1, g.cfg.MaxAgeDays-1))
	return datagen.TruncateDay(now.AddDate(0, 0, -days))
}

// Description returns the fixed report text.
func (g *FakerDamageGenerator) Description() string {
	return g.cfg.Description
}
