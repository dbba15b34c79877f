//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package schema

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavour DDL and DML are rendered for.
type Dialect string

// Supported dialects.
const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a driver name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(name)); d {
	case Postgres, MySQL, SQLite:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s (valid: postgres, mysql, sqlite)", name)
	}
}

// Placeholder returns the bind parameter for the i-th (1-based) argument.
func (d Dialect) Placeholder(i int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// ColumnType returns the column type used for a semantic type.
func (d Dialect) ColumnType(t Type) string {
	switch t {
	case Integer:
		if d == SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case Decimal:
		if d == MySQL {
			return "DECIMAL(12,2)"
		}
		return "NUMERIC(12,2)"
	case Text:
		if d == MySQL {
			return "VARCHAR(255)"
		}
		return "TEXT"
	case Bool:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Timestamp:
		if d == MySQL {
			return "DATETIME"
		}
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders the CREATE TABLE statement for an entity.
// Foreign keys are emitted as table constraints so every dialect
// enforces them.
func CreateTableSQL(d Dialect, e *Entity) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", e.Table)

	var constraints []string
	for i, a := range e.Attributes {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %s %s", a.Name, d.ColumnType(a.Type))
		if a.Name == e.Key {
			b.WriteString(" PRIMARY KEY")
		} else if !a.Nullable {
			b.WriteString(" NOT NULL")
		}
		if a.References == "" {
			continue
		}
		ref, err := Lookup(a.References)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", e.Name, a.Name, err)
		}
		constraints = append(constraints,
			fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)", a.Name, ref.Table, ref.Key))
	}
	for _, c := range constraints {
		b.WriteString(",\n")
		b.WriteString(c)
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// CreateSQL renders CREATE TABLE statements for entities in the given
// order, which must list referenced entities first.
func CreateSQL(d Dialect, entities []*Entity) ([]string, error) {
	stmts := make([]string, 0, len(entities))
	for _, e := range entities {
		stmt, err := CreateTableSQL(d, e)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// DropSQL renders DROP TABLE statements in reverse creation order.
func DropSQL(entities []*Entity) []string {
	stmts := make([]string, 0, len(entities))
	for i := len(entities) - 1; i >= 0; i-- {
		stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s", entities[i].Table))
	}
	return stmts
}

// InsertSQL renders a single-row INSERT for an entity.
func InsertSQL(d Dialect, e *Entity) string {
	params := make([]string, len(e.Attributes))
	for i := range e.Attributes {
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.Table, strings.Join(e.Columns(), ", "), strings.Join(params, ", "))
}

// DeleteSQL renders an unconditional DELETE for an entity.
func DeleteSQL(e *Entity) string {
	return "DELETE FROM " + e.Table
}

// CountSQL renders a row count query for an entity.
func CountSQL(e *Entity) string {
	return "SELECT COUNT(*) FROM " + e.Table
}

// SelectSQL renders a full-snapshot read of an entity ordered by key.
func SelectSQL(e *Entity) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(e.Columns(), ", "), e.Table, e.Key)
}

// RunLogTable holds one row per pipeline run. It lives in the analytical
// store but is not an analytical entity, so a reset never clears it.
const RunLogTable = "etl_run_log"

// CreateRunLogSQL renders the run history table.
func CreateRunLogSQL(d Dialect) string {
	id, text, ts := "TEXT", "TEXT", "TIMESTAMP"
	if d == MySQL {
		id, ts = "VARCHAR(36)", "DATETIME"
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    run_id        %s PRIMARY KEY,
    started_at    %s NOT NULL,
    finished_at   %s NOT NULL,
    state         VARCHAR(32) NOT NULL,
    failed_stage  VARCHAR(64) NOT NULL,
    error_message %s NOT NULL,
    rows_loaded   BIGINT NOT NULL,
    log_text      %s NOT NULL
)`, RunLogTable, id, ts, ts, text, text)
}
