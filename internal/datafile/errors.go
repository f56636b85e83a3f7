package datafile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaMismatch is returned when a record's labels differ from the
	// data file's header.
	ErrSchemaMismatch = errors.New("record labels do not match data file header")

	// ErrUnsafeValue is returned for a label or value containing a comma,
	// newline or carriage return.
	ErrUnsafeValue = errors.New("value would break the data file row")

	// ErrColumnNotFound is returned by ReadColumn for an unknown label.
	ErrColumnNotFound = errors.New("column not found in data file header")

	// ErrEmptyRecord is returned when appending a record without fields.
	ErrEmptyRecord = errors.New("record has no fields")
)

// SchemaMismatchError describes a record whose labels differ from the
// data file's header.
type SchemaMismatchError struct {
	// Path is the data file path.
	Path string

	// Expected is the header of the data file.
	Expected []string

	// Got is the labels of the rejected record.
	Got []string
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %v: expected [%s], got [%s]",
		e.Path, ErrSchemaMismatch,
		strings.Join(e.Expected, ","), strings.Join(e.Got, ","))
}

// Unwrap returns ErrSchemaMismatch.
func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
