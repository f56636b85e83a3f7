package crawler

import (
	"errors"
	"fmt"
	"strings"
)

// Page errors.
// Every error returned for a specific page is a *PageError wrapping one of
// these, so callers can use errors.Is for the kind and errors.As for the path.
var (
	// ErrPageIO is returned when a page file is missing or unreadable.
	ErrPageIO = errors.New("cannot read page")

	// ErrNoTable is returned when an incident page contains no <table>.
	ErrNoTable = errors.New("page has no table")

	// ErrEmptyTable is returned when the table has no rows after the
	// discarded first row.
	ErrEmptyTable = errors.New("table has no data rows")

	// ErrMalformedRow is returned for a data row with fewer than two cells.
	ErrMalformedRow = errors.New("table row has fewer than two cells")

	// ErrDuplicateLabel is returned under the reject policy when a label
	// appears twice in one table.
	ErrDuplicateLabel = errors.New("duplicate label in table")
)

// PageError describes a failure tied to one page of the mirror.
type PageError struct {
	// Path is the page's filesystem path.
	Path string

	// Row is the table row index, counting the discarded first row as 0.
	// Zero when the error is not about a row.
	Row int

	// Detail is optional extra context such as the offending label.
	Detail string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *PageError) Unwrap() error {
	return e.Err
}

// PathOf returns the page path carried by err, if any.
func PathOf(err error) (string, bool) {
	var pe *PageError
	if errors.As(err, &pe) {
		return pe.Path, true
	}
	return "", false
}

// ErrPagesFailed is returned by Walker.Walk in keep-going mode when at least
// one page failed. The individual failures are listed in Walker.Stats.
var ErrPagesFailed = errors.New("one or more pages failed")

// AbortError marks a failure that is not caused by the page being processed,
// such as a data file that cannot be written. It ends a walk even in
// keep-going mode and is returned as is, without the page path.
type AbortError struct {
	Err error
}

// Abort wraps err in an *AbortError. A nil err returns nil.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &AbortError{Err: err}
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AbortError) Unwrap() error {
	return e.Err
}
