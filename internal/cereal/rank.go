package cereal

import (
	"fmt"
	"sort"

	"crunch/internal/table"
)

// Rank returns the name of the most protein-rich cereal in the dataset.
// Ties on protein are broken by the lowest calorie count; rows tied on both
// keep their input order, so the first such row wins.
//
// The dataset must already be normalized. An empty dataset returns
// table.ErrEmptyDataset; an absent name/protein/calories column returns a
// *table.MissingFieldError.
func Rank(t *table.Table) (string, error) {
	if t.Len() == 0 {
		return "", fmt.Errorf("rank cereals: %w", table.ErrEmptyDataset)
	}
	for _, col := range []string{ColName, ColProtein, ColCalories} {
		if !t.HasColumn(col) {
			return "", &table.MissingFieldError{Field: col}
		}
	}

	type scored struct {
		name     string
		protein  float64
		calories float64
	}
	rows := make([]scored, 0, t.Len())
	for i, row := range t.Rows {
		protein, err := row.Float(ColProtein)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i+1, err)
		}
		calories, err := row.Float(ColCalories)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, scored{name: row[ColName], protein: protein, calories: calories})
	}

	// Stable sort keeps input order for rows tied on both keys.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].protein != rows[j].protein {
			return rows[i].protein > rows[j].protein
		}
		return rows[i].calories < rows[j].calories
	})
	return rows[0].name, nil
}
