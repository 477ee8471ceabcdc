package table

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned by operations that require at least one row.
var ErrEmptyDataset = errors.New("dataset is empty")

// MissingFieldError reports a required column that is absent from a table
// (after schema normalization, so the absence is genuine, not naming drift).
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("dataset does not contain column %q", e.Field)
}

// SchemaError reports a table whose column labels cannot be reconciled into
// the canonical schema.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// DuplicateKeyError reports an ambiguous join key: the same value appears in
// more than one row of a column that must be unique.
type DuplicateKeyError struct {
	Column string
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value %q in key column %q", e.Key, e.Column)
}
