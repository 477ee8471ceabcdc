// Package cereal implements the pipeline's domain logic: reconciling raw
// dataset schemas, ranking cereals by nutritional value, and merging
// nutrition ratings with user review ratings.
package cereal

import (
	"fmt"
	"strings"

	"crunch/internal/table"
)

// Canonical column labels after normalization.
const (
	ColName     = "name"
	ColBrand    = "brand"
	ColProtein  = "protein"
	ColCalories = "calories"
	ColRating   = "rating"
)

// Normalize reconciles a raw dataset into the canonical schema: every
// column label is lower-cased, and a "name" column is guaranteed to exist.
// If "name" is absent but "brand" is present, "brand" is renamed to "name".
// If neither exists the dataset is unusable and a *table.SchemaError is
// returned. All other columns pass through with their values untouched.
//
// Normalize is idempotent and never mutates its input.
func Normalize(t *table.Table) (*table.Table, error) {
	out := table.New()
	rename := make(map[string]string, len(t.Columns))

	for _, col := range t.Columns {
		lower := strings.ToLower(col)
		if out.HasColumn(lower) {
			return nil, &table.SchemaError{
				Reason: fmt.Sprintf("column %q collides with another column after lower-casing", col),
			}
		}
		out.Columns = append(out.Columns, lower)
		rename[col] = lower
	}

	if !out.HasColumn(ColName) {
		if !out.HasColumn(ColBrand) {
			return nil, &table.SchemaError{
				Reason: fmt.Sprintf("dataset does not contain column %q (and no %q column to fall back on)", ColName, ColBrand),
			}
		}
		for i, col := range out.Columns {
			if col == ColBrand {
				out.Columns[i] = ColName
			}
		}
		for orig, lower := range rename {
			if lower == ColBrand {
				rename[orig] = ColName
			}
		}
	}

	for _, row := range t.Rows {
		nr := make(table.Row, len(row))
		for col, val := range row {
			mapped, ok := rename[col]
			if !ok {
				mapped = strings.ToLower(col)
			}
			nr[mapped] = val
		}
		out.Append(nr)
	}
	return out, nil
}
