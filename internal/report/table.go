package report

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nao1215/planecrash/internal/model"
)

// defaultBarWidth is the width of the bar drawn for the busiest year.
const defaultBarWidth = 40

// TableWriter outputs the series as a terminal table.
// Each year gets a bar proportional to its count, which makes the table
// readable as a chart without leaving the terminal.
type TableWriter struct {
	baseWriter

	// barWidth is the bar length of the highest count.
	barWidth int

	// showSkipped adds a second table listing skipped dates.
	showSkipped bool
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithBarWidth sets the bar length of the highest count. Zero hides bars.
func WithBarWidth(width int) TableWriterOption {
	return func(w *TableWriter) {
		w.barWidth = max(width, 0)
	}
}

// WithShowSkipped lists skipped dates below the table.
func WithShowSkipped(show bool) TableWriterOption {
	return func(w *TableWriter) {
		w.showSkipped = show
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{
		baseWriter:  newBaseWriter(output),
		barWidth:    defaultBarWidth,
		showSkipped: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the series.
func (w *TableWriter) Write(series *model.Series) (int, error) {
	out := &countingWriter{w: w.output}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Incidents per year (" + series.Column + ")")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	highest := series.Max()
	if w.barWidth > 0 {
		t.AppendHeader(table.Row{"Year", "Incidents", ""})
	} else {
		t.AppendHeader(table.Row{"Year", "Incidents"})
	}
	for _, p := range series.Points {
		row := table.Row{p.Year, p.Count}
		if w.barWidth > 0 {
			row = append(row, bar(p.Count, highest, w.barWidth))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"Total", series.Total()})
	t.Render()

	if w.showSkipped && len(series.Skipped) > 0 {
		s := table.NewWriter()
		s.SetOutputMirror(out)
		s.SetStyle(table.StyleLight)
		s.SetTitle("Skipped dates")
		s.AppendHeader(table.Row{"Row", "Value", "Reason"})
		for _, sk := range series.Skipped {
			s.AppendRow(table.Row{sk.Row, sk.Value, sk.Reason})
		}
		s.Render()
	}

	return out.n, nil
}

// bar returns a bar of width proportional to count/highest.
// Any non-zero count gets at least one block.
func bar(count, highest, width int) string {
	if highest <= 0 || count <= 0 {
		return ""
	}
	n := count * width / highest
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
