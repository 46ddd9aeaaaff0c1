// Package schema describes how each domain record maps to its table.
package schema

import (
	"fmt"
	"slices"
)

// Table maps records of type T to one table.
type Table[T any] struct {
	Name string

	// Columns are selected and returned by writes. The first is the primary key.
	Columns []string

	// InsertColumns is the order in which Values emits a record's values.
	InsertColumns []string

	// NaturalKey is the unique column set that identifies a record across
	// ingestion runs. It is a subset of InsertColumns.
	NaturalKey []string

	// SlugColumn is empty for tables without a slug.
	SlugColumn string

	Values func(T) []any
}

// HasSlug reports whether the table carries a unique slug column.
func (t Table[T]) HasSlug() bool { return t.SlugColumn != "" }

// KeyValues returns rec's natural-key values in NaturalKey order.
func (t Table[T]) KeyValues(rec T) []any {
	values := t.Values(rec)
	out := make([]any, len(t.NaturalKey))
	for i, col := range t.NaturalKey {
		out[i] = values[slices.Index(t.InsertColumns, col)]
	}
	return out
}

// Check verifies that the descriptor is internally consistent.
func (t Table[T]) Check() error {
	if t.Name == "" || len(t.Columns) == 0 || len(t.InsertColumns) == 0 || t.Values == nil {
		return fmt.Errorf("table %q: incomplete descriptor", t.Name)
	}
	if len(t.NaturalKey) == 0 {
		return fmt.Errorf("table %q: natural key is empty", t.Name)
	}
	for _, col := range t.NaturalKey {
		if !slices.Contains(t.InsertColumns, col) {
			return fmt.Errorf("table %q: natural key column %q is not insertable", t.Name, col)
		}
	}
	if t.HasSlug() && !slices.Contains(t.InsertColumns, t.SlugColumn) {
		return fmt.Errorf("table %q: slug column %q is not insertable", t.Name, t.SlugColumn)
	}
	for _, col := range t.InsertColumns {
		if !slices.Contains(t.Columns, col) {
			return fmt.Errorf("table %q: insert column %q is not selectable", t.Name, col)
		}
	}
	return nil
}
