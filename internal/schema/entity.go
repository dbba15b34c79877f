//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema is the static registry of transactional and analytical
// entities: their attributes, semantic types and source mappings.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the semantic type of an attribute.
type Type int

// Semantic attribute types.
const (
	Integer Type = iota
	Decimal
	Text
	Bool
	Date
	Timestamp
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Text:
		return "text"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Kind classifies an entity.
type Kind string

// Entity kinds.
const (
	Transactional Kind = "transactional"
	Dimension     Kind = "dimension"
	Fact          Kind = "fact"
)

// Attribute describes one column of an entity.
type Attribute struct {
	// Name is the column name.
	Name string

	// Type is the semantic type.
	Type Type

	// Nullable allows NULL values.
	Nullable bool

	// Source is the source attribute copied verbatim into this one.
	// Empty for derived, defaulted or generated values.
	Source string

	// References names the entity this attribute points at.
	References string
}

// Entity describes a transactional or analytical record type.
type Entity struct {
	// Name is the logical entity name used in logs (e.g. DimEmployee).
	Name string

	// Table is the physical table name.
	Table string

	// Kind is transactional, dimension or fact.
	Kind Kind

	// Source is the transactional entity an analytical entity is read from.
	Source string

	// Key is the identifying attribute.
	Key string

	// Synthetic marks entities whose content is generated rather than
	// derived from transactional data.
	Synthetic bool

	// Description is a short human-readable summary.
	Description string

	// Attributes are the entity's columns in insertion order.
	Attributes []Attribute
}

// Row is a single record keyed by attribute name.
type Row map[string]any

// Columns returns the attribute names in order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.Attributes))
	for i, a := range e.Attributes {
		cols[i] = a.Name
	}
	return cols
}

// Attribute returns the named attribute.
func (e *Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Values orders a row's values by the entity's attributes. Every attribute
// must be present and no unknown attribute is allowed; a nil value is only
// accepted for nullable attributes.
func (e *Entity) Values(row Row) ([]any, error) {
	if len(row) != len(e.Attributes) {
		if extra := e.unknown(row); len(extra) > 0 {
			return nil, fmt.Errorf("%s: unknown attributes %s", e.Name, strings.Join(extra, ", "))
		}
	}
	values := make([]any, len(e.Attributes))
	for i, a := range e.Attributes {
		v, ok := row[a.Name]
		if !ok {
			return nil, fmt.Errorf("%s: missing attribute %s", e.Name, a.Name)
		}
		if v == nil && !a.Nullable {
			return nil, fmt.Errorf("%s: attribute %s is not nullable", e.Name, a.Name)
		}
		values[i] = v
	}
	return values, nil
}

func (e *Entity) unknown(row Row) []string {
	var extra []string
	for k := range row {
		if _, ok := e.Attribute(k); !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
