package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/planecrash/internal/model"
)

// MarkdownWriter outputs the series as a Markdown document.
// The document holds a mermaid line chart of incidents per year, a pie chart
// per decade, the year table, and the list of skipped dates.
type MarkdownWriter struct {
	baseWriter

	// title is the document heading.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithTitle sets the document heading.
func WithTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      "Plane Crashes by Year",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the series in Markdown format.
func (w *MarkdownWriter) Write(series *model.Series) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, series)

	if len(series.Points) > 0 {
		w.writeLineChart(md, series)
		w.writeDecadeChart(md, series)
		w.writeYearTable(md, series)
	} else {
		md.Note("No incidents were counted.")
		md.PlainText("")
	}

	w.writeSkipped(md, series)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, series *model.Series) {
	md.H1(w.title)
	md.PlainText("")

	span := "-"
	if first, last, ok := series.Span(); ok {
		span = fmt.Sprintf("%d - %d", first, last)
	}
	source := series.Source
	if source == "" {
		source = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Data File", "`" + source + "`"},
			{"Date Column", "`" + series.Column + "`"},
			{"Years", span},
			{"Incidents", strconv.Itoa(series.Total())},
			{"Skipped Dates", strconv.Itoa(len(series.Skipped))},
		},
	})
	md.PlainText("")
}

// writeLineChart writes a mermaid xychart of incidents per year.
func (w *MarkdownWriter) writeLineChart(md *markdown.Markdown, series *model.Series) {
	md.H2("Incidents per Year")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, lineChart(series))
	md.PlainText("")
}

// lineChart builds a mermaid xychart-beta line chart.
// Years without incidents inside the span are plotted as zero so the x axis
// stays linear.
func lineChart(series *model.Series) string {
	years, counts := fillYears(series)

	labels := make([]string, len(years))
	values := make([]string, len(counts))
	for i := range years {
		labels[i] = strconv.Itoa(years[i])
		values[i] = strconv.Itoa(counts[i])
	}

	var b strings.Builder
	b.WriteString("xychart-beta\n")
	b.WriteString("    title \"Incidents per year\"\n")
	fmt.Fprintf(&b, "    x-axis \"Year\" [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "    y-axis \"Incidents\" 0 --> %d\n", series.Max())
	fmt.Fprintf(&b, "    line [%s]", strings.Join(values, ", "))
	return b.String()
}

// fillYears returns every year from the first to the last year of the
// series together with its count.
func fillYears(series *model.Series) ([]int, []int) {
	first, last, ok := series.Span()
	if !ok {
		return nil, nil
	}

	years := make([]int, 0, last-first+1)
	counts := make([]int, 0, last-first+1)
	next := 0
	for year := first; year <= last; year++ {
		count := 0
		if next < len(series.Points) && series.Points[next].Year == year {
			count = series.Points[next].Count
			next++
		}
		years = append(years, year)
		counts = append(counts, count)
	}
	return years, counts
}

// writeDecadeChart writes a mermaid pie chart of incidents per decade.
func (w *MarkdownWriter) writeDecadeChart(md *markdown.Markdown, series *model.Series) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Incidents by Decade"),
		piechart.WithShowData(true),
	)

	for _, d := range decades(series) {
		chart.LabelAndIntValue(strconv.Itoa(d.Year)+"s", uint64(d.Count)) //nolint:gosec // counts are never negative
	}

	md.H2("Incidents by Decade")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// decades sums the series per decade, sorted by decade.
func decades(series *model.Series) []model.YearCount {
	result := make([]model.YearCount, 0)
	for _, p := range series.Points {
		decade := p.Year - p.Year%10
		if n := len(result); n > 0 && result[n-1].Year == decade {
			result[n-1].Count += p.Count
			continue
		}
		result = append(result, model.YearCount{Year: decade, Count: p.Count})
	}
	return result
}

// writeYearTable writes the per-year counts.
func (w *MarkdownWriter) writeYearTable(md *markdown.Markdown, series *model.Series) {
	md.H2("Counts")
	md.PlainText("")

	rows := make([][]string, 0, len(series.Points)+1)
	for _, p := range series.Points {
		rows = append(rows, []string{strconv.Itoa(p.Year), strconv.Itoa(p.Count)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(series.Total()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Year", "Incidents"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped lists dates that were not counted.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, series *model.Series) {
	if len(series.Skipped) == 0 {
		return
	}

	md.Warningf("%d date value(s) could not be parsed and were not counted.", len(series.Skipped))
	md.PlainText("")

	rows := make([][]string, len(series.Skipped))
	for i, s := range series.Skipped {
		value := s.Value
		if strings.TrimSpace(value) == "" {
			value = "(empty)"
		}
		rows[i] = []string{strconv.Itoa(s.Row), value}
	}

	md.H2("Skipped Dates")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Row", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [planecrash](https://github.com/nao1215/planecrash)*")
}
