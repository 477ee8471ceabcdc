package cereal

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"crunch/internal/table"
)

func cereals() *table.Table {
	t := table.New("name", "protein", "calories")
	t.Append(table.Row{"name": "Bran", "protein": "4", "calories": "70"})
	t.Append(table.Row{"name": "Honey-comb", "protein": "1", "calories": "110"})
	return t
}

func TestNormalize_CanonicalPassesThrough(t *testing.T) {
	in := cereals()
	got, err := Normalize(in)
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("canonical dataset changed (-want +got):\n%s", diff)
	}
}

func TestNormalize_UppercaseColumns(t *testing.T) {
	in := table.New("NAME", "PROTEIN", "CALORIES")
	in.Append(table.Row{"NAME": "Bran", "PROTEIN": "4", "CALORIES": "70"})

	got, err := Normalize(in)
	require.NoError(t, err)

	want := table.New("name", "protein", "calories")
	want.Append(table.Row{"name": "Bran", "protein": "4", "calories": "70"})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("uppercase dataset not canonicalized (-want +got):\n%s", diff)
	}
}

func TestNormalize_BrandRenamedToName(t *testing.T) {
	in := table.New("brand", "protein", "calories")
	in.Append(table.Row{"brand": "Bran", "protein": "4", "calories": "70"})

	got, err := Normalize(in)
	require.NoError(t, err)

	want := table.New("name", "protein", "calories")
	want.Append(table.Row{"name": "Bran", "protein": "4", "calories": "70"})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("brand column not renamed (-want +got):\n%s", diff)
	}
}

func TestNormalize_BrandKeptWhenNamePresent(t *testing.T) {
	in := table.New("name", "brand")
	in.Append(table.Row{"name": "Bran", "brand": "Kellogg's"})

	got, err := Normalize(in)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "brand"}, got.Columns)
	require.Equal(t, "Kellogg's", got.Rows[0]["brand"])
}

func TestNormalize_Idempotent(t *testing.T) {
	in := table.New("NAME", "Protein", "calories")
	in.Append(table.Row{"NAME": "Bran", "Protein": "4", "calories": "70"})

	once, err := Normalize(in)
	require.NoError(t, err)
	twice, err := Normalize(once)
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("normalize is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestNormalize_NoNameNoBrand(t *testing.T) {
	in := table.New("product", "protein")
	in.Append(table.Row{"product": "Bran", "protein": "4"})

	_, err := Normalize(in)
	var schemaErr *table.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestNormalize_CaseCollision(t *testing.T) {
	in := table.New("Name", "NAME")
	_, err := Normalize(in)
	var schemaErr *table.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for colliding labels, got %v", err)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := table.New("NAME")
	in.Append(table.Row{"NAME": "Bran"})

	_, err := Normalize(in)
	require.NoError(t, err)
	require.Equal(t, []string{"NAME"}, in.Columns)
	require.Equal(t, "Bran", in.Rows[0]["NAME"])
}
