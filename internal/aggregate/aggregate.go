// Package aggregate tallies data file records by year.
package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/nao1215/planecrash/internal/datafile"
	"github.com/nao1215/planecrash/internal/model"
)

// ErrUnparseableDate is returned in strict mode for a date value that
// cannot be parsed.
var ErrUnparseableDate = errors.New("cannot parse date")

type options struct {
	strict bool
	logger *slog.Logger
	loc    *time.Location
}

// Option configures CountByYear and FromDataFile.
type Option func(*options)

// WithStrict makes the first unparseable date an error instead of skipping it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithLogger sets the logger used to report skipped dates.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLocation sets the location dates without a zone are interpreted in.
// The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default(),
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CountByYear parses each date and counts how many fall in each year.
// The result is a fresh Series; nothing is kept between calls.
//
// Dates are free text such as "September 17 1908". A value that cannot be
// parsed is recorded in Series.Skipped and logged, or, with WithStrict,
// returned as an error wrapping ErrUnparseableDate.
func CountByYear(column string, dates []string, opts ...Option) (*model.Series, error) {
	o := newOptions(opts)

	counts := make(map[int]int)
	skipped := make([]model.SkippedDate, 0)

	for i, raw := range dates {
		row := i + 1
		year, err := parseYear(raw, o.loc)
		if err != nil {
			if o.strict {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			o.logger.Warn("skipping unparseable date", "row", row, "value", raw, "error", err)
			skipped = append(skipped, model.SkippedDate{Row: row, Value: raw, Reason: err.Error()})
			continue
		}
		counts[year]++
	}

	series := model.NewSeries(column, counts)
	series.Skipped = skipped
	return series, nil
}

// FromDataFile reads the column of the data file at path and tallies it.
func FromDataFile(path, column string, opts ...Option) (*model.Series, error) {
	dates, err := datafile.ReadColumn(path, column)
	if err != nil {
		return nil, err
	}

	series, err := CountByYear(column, dates, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	series.Source = path
	return series, nil
}

func parseYear(raw string, loc *time.Location) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}

	t, err := dateparse.ParseIn(value, loc, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrUnparseableDate, value, err)
	}
	return t.Year(), nil
}
