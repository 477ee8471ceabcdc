// Package table provides the in-memory tabular value that every crunch
// pipeline stage operates on: an ordered set of column labels plus rows of
// named string cells, as produced by the CSV codec in this package.
//
// Tables are treated as immutable: transformations return a new Table and
// never mutate their receiver or arguments.
package table

import (
	"fmt"
	"strconv"
)

// Row is a single record. Cells are kept as their CSV string form; numeric
// access goes through Float.
type Row map[string]string

// Table is an ordered sequence of rows sharing a column set. Columns
// preserves the source column order; Rows preserves source row order.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given column labels.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether the table carries the given column label.
func (t *Table) HasColumn(label string) bool {
	for _, c := range t.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// Append adds a row. Cells for columns the table does not declare are
// ignored by the writers, so callers should keep rows aligned with Columns.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Float parses the named cell as a float64.
func (r Row) Float(column string) (float64, error) {
	raw, ok := r[column]
	if !ok {
		return 0, &MissingFieldError{Field: column}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", column, raw, err)
	}
	return v, nil
}
