package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/planecrash/internal/model"
)

const (
	// separator joins labels and values on a line.
	separator = ","

	// unsafeChars may not appear in a label or value.
	unsafeChars = ",\n\r"
)

// Writer appends records to one data file.
//
// Each Append opens the file in append mode, writes, and closes it again, so
// nothing is held open between records and a crash loses at most the row
// being written. Existing content is never truncated or rewritten.
//
// A Writer is not safe for concurrent use. Several writers appending to the
// same path would need mutual exclusion per path.
type Writer struct {
	path   string
	schema []string
}

// Open creates a Writer for the data file at path.
// If the file exists and is non-empty its header line becomes the schema.
// A missing file is not an error; it is created by the first Append.
func Open(path string) (*Writer, error) {
	w := &Writer{path: path}

	header, err := readHeader(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read data file header: %w", err)
	default:
		w.schema = header
	}

	return w, nil
}

// Path returns the data file path.
func (w *Writer) Path() string {
	return w.path
}

// Schema returns the labels expected by the Writer, or nil if no record has
// been seen and the file had no header.
func (w *Writer) Schema() []string {
	return slices.Clone(w.schema)
}

// Append writes record as one line, preceded by the header line when the
// file is empty. Missing parent directories are created. Nothing is written
// when the record is rejected.
func (w *Writer) Append(record *model.Record) (err error) {
	if record == nil || record.Len() == 0 {
		return ErrEmptyRecord
	}

	labels := record.Labels()
	values := record.Values()

	if w.schema != nil && !slices.Equal(w.schema, labels) {
		return &SchemaMismatchError{Path: w.path, Expected: slices.Clone(w.schema), Got: labels}
	}
	if err := checkSafe(labels); err != nil {
		return err
	}
	if err := checkSafe(values); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create data file directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // data file is meant to be shared
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close data file: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat data file: %w", err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		b.WriteString(strings.Join(labels, separator))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(values, separator))
	b.WriteByte('\n')

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}

	if w.schema == nil {
		w.schema = labels
	}
	return nil
}

func checkSafe(fields []string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, unsafeChars) {
			return fmt.Errorf("%w: %q", ErrUnsafeValue, f)
		}
	}
	return nil
}

// readHeader returns the first line of the file split into labels.
// An empty file has no header and returns nil.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is the configured data file
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	return splitLine(scanner.Text()), nil
}
