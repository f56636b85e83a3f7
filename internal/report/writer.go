package report

import (
	"io"

	"github.com/nao1215/planecrash/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write renders the series to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(series *model.Series) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
// The plot command uses it to print the table while saving a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the series to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(series *model.Series) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(series)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter counts the bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
