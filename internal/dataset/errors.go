package dataset

import "fmt"

// InvalidInputError indicates a degenerate input column, e.g. one whose
// variance is zero so it cannot be standardized.
type InvalidInputError struct {
	Column string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input column %q: %s", e.Column, e.Reason)
}

// ColumnNotFoundError indicates a configured column name that is absent
// from the matrix it should apply to.
type ColumnNotFoundError struct{ Column string }

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// SchemaMismatchError indicates that a rename mapping does not line up with
// the columns that survived preprocessing.
type SchemaMismatchError struct {
	Want int // rename-mapping length
	Got  int // surviving column count
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("rename mapping has %d names for %d columns", e.Want, e.Got)
}
