package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/planecrash/internal/model"
)

// cellReplacer removes the characters that would break a data file row:
// the non-breaking space used as a flag marker, newlines, and the commas
// that separate thousands in numbers.
var cellReplacer = strings.NewReplacer("\u00a0", "", "\n", "", ",", "")

// CleanCell returns text without U+00A0, '\n' and ','.
// Everything else, including ordinary spaces, is kept as is.
func CleanCell(text string) string {
	return cellReplacer.Replace(text)
}

// extractConfig holds the options for ExtractRecord.
type extractConfig struct {
	policy model.DuplicatePolicy
}

// ExtractOption configures ExtractRecord.
type ExtractOption func(*extractConfig)

// WithDuplicatePolicy sets how a label repeated within one table is handled.
// The default is model.DuplicateLastWins.
func WithDuplicatePolicy(p model.DuplicatePolicy) ExtractOption {
	return func(c *extractConfig) {
		c.policy = p
	}
}

// ExtractRecord converts the first table of an incident page into a Record.
//
// The first row of the table is always discarded. Each remaining row gives
// one field: the cleaned text of its first <td> is the label and the cleaned
// text of its second <td> is the value. Rows are read in document order and
// field order follows the first appearance of each label.
func ExtractRecord(page *model.Page, opts ...ExtractOption) (*model.Record, error) {
	cfg := &extractConfig{policy: model.DuplicateLastWins}
	for _, opt := range opts {
		opt(cfg)
	}

	table := page.Doc.Find("table").First()
	if table.Length() == 0 {
		return nil, &PageError{Path: page.Path, Err: ErrNoTable}
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil, &PageError{Path: page.Path, Err: ErrEmptyTable}
	}

	record := model.NewRecord()
	var rowErr error
	rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
		index := i + 1

		cells := row.Find("td")
		if cells.Length() < 2 {
			rowErr = &PageError{Path: page.Path, Row: index, Err: ErrMalformedRow}
			return false
		}

		label := CleanCell(cells.Eq(0).Text())
		value := CleanCell(cells.Eq(1).Text())

		if cfg.policy == model.DuplicateReject && record.Has(label) {
			rowErr = &PageError{Path: page.Path, Row: index, Detail: label, Err: ErrDuplicateLabel}
			return false
		}
		record.Set(label, value)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return record, nil
}
