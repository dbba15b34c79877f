//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"testing"
	"time"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
	if f1.Name() != f2.Name() {
		t.Error("Same seed produced different names")
	}
}

func TestFakerStrings(t *testing.T) {
	f := NewFaker()
	tests := []struct {
		name string
		fn   func() string
	}{
		{"Name", f.Name},
		{"Address", f.Address},
		{"Phone", f.Phone},
		{"Contact", f.Contact},
		{"Doctor", f.Doctor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fn() == "" {
				t.Errorf("%s returned empty string", tt.name)
			}
		})
	}

	if !strings.HasPrefix(f.Doctor(), "Dr. ") {
		t.Error("Doctor should be prefixed with Dr.")
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(50, 499)
		if v < 50 || v > 499 {
			t.Fatalf("Int out of range: %d", v)
		}
	}
}

func TestFakerMoney(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Money(10, 20)
		if v < 10 || v > 20 {
			t.Fatalf("Money out of range: %v", v)
		}
		if RoundCents(v) != v {
			t.Fatalf("Money not rounded to cents: %v", v)
		}
	}
}

func TestFakerDay(t *testing.T) {
	f := NewFaker()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	d := f.Day(start, end)
	if d.Before(start) || d.After(end) {
		t.Errorf("Day out of range: %v", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
		t.Errorf("Day should be midnight: %v", d)
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFakerWithSeed(1)
	for i := 0; i < 50; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !f.Chance(1.01) {
			t.Fatal("Chance(>1) returned false")
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1050, 1050},
		{10.006, 10.01},
		{10.004, 10},
		{-3.333, -3.33},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncateDay(t *testing.T) {
	in := time.Date(2024, 3, 5, 17, 45, 12, 99, time.UTC)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := TruncateDay(in); !got.Equal(want) {
		t.Errorf("TruncateDay() = %v, want %v", got, want)
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("Employee", 10, 3)
	for i := 0; i < 10; i++ {
		p.Update(1)
	}
	p.Done()
	if p.Rows() != 10 {
		t.Errorf("Expected 10 rows, got %d", p.Rows())
	}
}

func BenchmarkFakerInt(b *testing.B) {
	f := NewFaker()
	for i := 0; i < b.N; i++ {
		f.Int(0, 1000)
	}
}
