// Package datafile appends extracted records to the cumulative data file.
//
// The data file is plain comma-delimited text: a single header line holding
// the labels, then one line of values per record. Values are never quoted or
// escaped, so the Writer refuses values that would break the row layout
// instead of writing them.
//
// A Writer remembers the label set of the file (read from an existing header
// or captured on the first Append) and rejects records with a different
// label set or order with a *SchemaMismatchError.
package datafile
