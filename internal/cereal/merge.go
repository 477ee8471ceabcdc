package cereal

import (
	"crunch/internal/table"
)

// Merged-table column labels.
const (
	ColNutritionRating = "nutrition_rating"
	ColUserRating      = "user_rating"
)

// Merge joins a nutrition ratings dataset with a user reviews dataset on
// the "name" column. The result carries name, nutrition_rating (the
// primary dataset's rating), user_rating (the reviews dataset's rating),
// then every other primary column in its original order.
//
// The join is inner: names present in only one dataset are dropped. This
// is the narrowest contract that cannot invent a rating for a row that has
// none; callers that care about unmatched rows can diff row counts.
//
// Both datasets must already be normalized, carry a rating column, and be
// unique on name; a duplicate name in either input is ambiguous and
// returns a *table.DuplicateKeyError.
func Merge(primary, reviews *table.Table) (*table.Table, error) {
	for _, in := range []*table.Table{primary, reviews} {
		for _, col := range []string{ColName, ColRating} {
			if !in.HasColumn(col) {
				return nil, &table.MissingFieldError{Field: col}
			}
		}
	}

	userRating := make(map[string]string, reviews.Len())
	for _, row := range reviews.Rows {
		name := row[ColName]
		if _, dup := userRating[name]; dup {
			return nil, &table.DuplicateKeyError{Column: ColName, Key: name}
		}
		userRating[name] = row[ColRating]
	}

	out := table.New(ColName, ColNutritionRating, ColUserRating)
	for _, col := range primary.Columns {
		if col != ColName && col != ColRating {
			out.Columns = append(out.Columns, col)
		}
	}

	seen := make(map[string]bool, primary.Len())
	for _, row := range primary.Rows {
		name := row[ColName]
		if seen[name] {
			return nil, &table.DuplicateKeyError{Column: ColName, Key: name}
		}
		seen[name] = true

		rating, matched := userRating[name]
		if !matched {
			continue
		}
		merged := table.Row{
			ColName:            name,
			ColNutritionRating: row[ColRating],
			ColUserRating:      rating,
		}
		for col, val := range row {
			if col != ColName && col != ColRating {
				merged[col] = val
			}
		}
		out.Append(merged)
	}
	return out, nil
}
