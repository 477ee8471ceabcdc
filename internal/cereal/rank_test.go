package cereal

import (
	"errors"
	"testing"

	"crunch/internal/table"
)

func rankTable(rows ...table.Row) *table.Table {
	t := table.New("name", "protein", "calories")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestRank(t *testing.T) {
	cases := []struct {
		name string
		in   *table.Table
		want string
	}{
		{
			name: "unique maximum protein wins",
			in: rankTable(
				table.Row{"name": "Honey-comb", "protein": "1", "calories": "110"},
				table.Row{"name": "Special K", "protein": "6", "calories": "110"},
				table.Row{"name": "Bran", "protein": "4", "calories": "70"},
			),
			want: "Special K",
		},
		{
			name: "protein tie broken by lowest calories",
			in: rankTable(
				table.Row{"name": "Bran", "protein": "4", "calories": "70"},
				table.Row{"name": "Bran - no added sugars", "protein": "4", "calories": "50"},
				table.Row{"name": "Honey-comb", "protein": "1", "calories": "110"},
			),
			want: "Bran - no added sugars",
		},
		{
			name: "full tie keeps input order",
			in: rankTable(
				table.Row{"name": "First", "protein": "4", "calories": "70"},
				table.Row{"name": "Second", "protein": "4", "calories": "70"},
				table.Row{"name": "Third", "protein": "4", "calories": "70"},
			),
			want: "First",
		},
		{
			name: "fractional protein values",
			in: rankTable(
				table.Row{"name": "A", "protein": "3.5", "calories": "100"},
				table.Row{"name": "B", "protein": "3.55", "calories": "100"},
			),
			want: "B",
		},
		{
			name: "single row",
			in: rankTable(
				table.Row{"name": "Only", "protein": "0", "calories": "0"},
			),
			want: "Only",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rank(tc.in)
			if err != nil {
				t.Fatalf("Rank failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := rankTable(
		table.Row{"name": "Honey-comb", "protein": "1", "calories": "110"},
		table.Row{"name": "Bran", "protein": "4", "calories": "70"},
	)
	if _, err := Rank(in); err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if in.Rows[0]["name"] != "Honey-comb" {
		t.Error("Rank reordered its input")
	}
}

func TestRank_EmptyDataset(t *testing.T) {
	_, err := Rank(rankTable())
	if !errors.Is(err, table.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestRank_MissingColumns(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		missing string
	}{
		{"no protein", []string{"name", "calories"}, "protein"},
		{"no calories", []string{"name", "protein"}, "calories"},
		{"no name", []string{"protein", "calories"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := table.New(tc.columns...)
			row := table.Row{}
			for _, c := range tc.columns {
				row[c] = "1"
			}
			in.Append(row)

			_, err := Rank(in)
			var missing *table.MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tc.missing {
				t.Errorf("expected missing field %q, got %q", tc.missing, missing.Field)
			}
		})
	}
}

func TestRank_UnparsableCell(t *testing.T) {
	in := rankTable(table.Row{"name": "Bran", "protein": "lots", "calories": "70"})
	if _, err := Rank(in); err == nil {
		t.Fatal("expected error for non-numeric protein cell")
	}
}
