//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema_test

import (
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-careetl/internal/schema"
)

func TestRegistryCounts(t *testing.T) {
	if n := len(schema.TransactionalEntities()); n != 9 {
		t.Errorf("Expected 9 transactional entities, got %d", n)
	}
	if n := len(schema.Dimensions()); n != 5 {
		t.Errorf("Expected 5 dimensions, got %d", n)
	}
	if n := len(schema.Facts()); n != 8 {
		t.Errorf("Expected 8 facts, got %d", n)
	}
	if n := len(schema.ResetOrder()); n != 13 {
		t.Errorf("Expected 13 entities in reset order, got %d", n)
	}
}

func TestEntityDefinitions(t *testing.T) {
	tables := make(map[string]bool)
	for _, e := range schema.All() {
		t.Run(e.Name, func(t *testing.T) {
			if tables[e.Table] {
				t.Fatalf("Duplicate table name %s", e.Table)
			}
			tables[e.Table] = true

			if _, ok := e.Attribute(e.Key); !ok {
				t.Errorf("Key %s is not an attribute", e.Key)
			}
			if e.Kind != schema.Transactional {
				src, err := schema.Lookup(e.Source)
				if err != nil {
					t.Fatalf("Source lookup failed: %v", err)
				}
				for _, a := range e.Attributes {
					if a.Source == "" {
						continue
					}
					if _, ok := src.Attribute(a.Source); !ok {
						t.Errorf("%s maps from unknown %s.%s", a.Name, src.Name, a.Source)
					}
				}
			}
			for _, a := range e.Attributes {
				if a.References == "" {
					continue
				}
				if _, err := schema.Lookup(a.References); err != nil {
					t.Errorf("%s references unknown entity: %v", a.Name, err)
				}
			}
		})
	}
}

func TestServiceProjections(t *testing.T) {
	var names []string
	for _, e := range schema.Facts() {
		if e.Source == "Service" {
			names = append(names, e.Name)
		}
	}
	want := "FactServiceAssignment,FactInvoice,FactServiceRegistration"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Expected Service projections %s, got %s", want, got)
	}
}

func TestSyntheticFlag(t *testing.T) {
	for _, e := range schema.Analytical() {
		if e.Synthetic != (e == schema.FactDamageReport) {
			t.Errorf("%s: unexpected Synthetic=%v", e.Name, e.Synthetic)
		}
	}
	if !strings.HasPrefix(schema.FactDamageReport.Description, "SYNTHETIC") {
		t.Error("FactDamageReport description should flag the synthetic content")
	}
}

// Every entity must be cleared before any entity it references.
func TestResetOrderRespectsReferences(t *testing.T) {
	position := make(map[string]int)
	for i, e := range schema.ResetOrder() {
		position[e.Name] = i
	}
	for _, e := range schema.Analytical() {
		if _, ok := position[e.Name]; !ok {
			t.Fatalf("%s missing from reset order", e.Name)
		}
		for _, a := range e.Attributes {
			if a.References == "" {
				continue
			}
			if position[e.Name] > position[a.References] {
				t.Errorf("%s is cleared after %s which it references", e.Name, a.References)
			}
		}
	}
}

// Every entity must be loaded after the entities it references.
func TestLoadOrderRespectsReferences(t *testing.T) {
	for _, entities := range [][]*schema.Entity{schema.TransactionalEntities(), schema.Analytical()} {
		seen := make(map[string]bool)
		for _, e := range entities {
			for _, a := range e.Attributes {
				if a.References != "" && a.References != e.Name && !seen[a.References] {
					t.Errorf("%s loaded before referenced %s", e.Name, a.References)
				}
			}
			seen[e.Name] = true
		}
	}
}

func TestLookup(t *testing.T) {
	e, err := schema.Lookup("DimService")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if e.Table != "dim_service" {
		t.Errorf("Expected table dim_service, got %s", e.Table)
	}
	if _, err := schema.Lookup("nonexistent"); err == nil {
		t.Error("Expected error for unknown entity")
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		name    string
		row     schema.Row
		wantErr bool
	}{
		{
			name: "complete",
			row: schema.Row{"client_id": int64(1), "name": "A", "address": "B", "contact_info": "C"},
		},
		{
			name:    "missing attribute",
			row:     schema.Row{"client_id": int64(1), "name": "A", "address": "B"},
			wantErr: true,
		},
		{
			name:    "unknown attribute",
			row:     schema.Row{"client_id": int64(1), "name": "A", "address": "B", "contact_info": "C", "x": 1},
			wantErr: true,
		},
		{
			name:    "nil in non-nullable",
			row:     schema.Row{"client_id": int64(1), "name": nil, "address": "B", "contact_info": "C"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := schema.DimClient.Values(tt.row)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Values() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && values[0] != int64(1) {
				t.Errorf("Expected key first, got %v", values[0])
			}
		})
	}
}

func TestValuesNullable(t *testing.T) {
	row := schema.Row{
		"employee_id": int64(1), "name": "A", "address": "B", "job_title": "C",
		"employee_type": "D", "salary_rate": 10.0, "reports_to": nil,
	}
	if _, err := schema.DimEmployee.Values(row); err != nil {
		t.Errorf("Nullable reports_to should accept nil: %v", err)
	}
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"postgres", "MySQL", "sqlite"} {
		if _, err := schema.ParseDialect(name); err != nil {
			t.Errorf("ParseDialect(%q) failed: %v", name, err)
		}
	}
	if _, err := schema.ParseDialect("oracle"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestCreateTableSQL(t *testing.T) {
	stmt, err := schema.CreateTableSQL(schema.Postgres, schema.FactAttendance)
	if err != nil {
		t.Fatalf("CreateTableSQL failed: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS fact_attendance",
		"attendance_id BIGINT PRIMARY KEY",
		"is_holiday BOOLEAN NOT NULL",
		"FOREIGN KEY (dim_employee_id) REFERENCES dim_employee(employee_id)",
		"FOREIGN KEY (fact_shifts_id) REFERENCES fact_shifts(shift_id)",
	} {
		if !strings.Contains(stmt, want) {
			t.Errorf("Expected %q in:\n%s", want, stmt)
		}
	}

	stmt, err = schema.CreateTableSQL(schema.MySQL, schema.FactShifts)
	if err != nil {
		t.Fatalf("CreateTableSQL failed: %v", err)
	}
	if !strings.Contains(stmt, "start_time DATETIME NOT NULL") {
		t.Errorf("Expected DATETIME for MySQL timestamps:\n%s", stmt)
	}

	stmt, err = schema.CreateTableSQL(schema.SQLite, schema.DimEmployee)
	if err != nil {
		t.Fatalf("CreateTableSQL failed: %v", err)
	}
	if strings.Contains(stmt, "FOREIGN KEY") {
		t.Errorf("DimEmployee must not constrain reports_to:\n%s", stmt)
	}
	if !strings.Contains(stmt, "reports_to INTEGER,") && !strings.Contains(stmt, "reports_to INTEGER\n") {
		t.Errorf("Expected nullable reports_to:\n%s", stmt)
	}
}

func TestDropSQLReversesCreation(t *testing.T) {
	stmts := schema.DropSQL(schema.Analytical())
	if stmts[0] != "DROP TABLE IF EXISTS fact_rental_history" {
		t.Errorf("Unexpected first drop: %s", stmts[0])
	}
	if stmts[len(stmts)-1] != "DROP TABLE IF EXISTS dim_employee" {
		t.Errorf("Unexpected last drop: %s", stmts[len(stmts)-1])
	}
}

func TestInsertSQL(t *testing.T) {
	tests := []struct {
		dialect schema.Dialect
		want    string
	}{
		{schema.Postgres, "INSERT INTO dim_client (client_id, name, address, contact_info) VALUES ($1, $2, $3, $4)"},
		{schema.MySQL, "INSERT INTO dim_client (client_id, name, address, contact_info) VALUES (?, ?, ?, ?)"},
		{schema.SQLite, "INSERT INTO dim_client (client_id, name, address, contact_info) VALUES (?, ?, ?, ?)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			if got := schema.InsertSQL(tt.dialect, schema.DimClient); got != tt.want {
				t.Errorf("InsertSQL() = %s, want %s", got, tt.want)
			}
		})
	}
}
