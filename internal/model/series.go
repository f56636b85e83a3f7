package model

import "sort"

// YearCount is the number of incidents recorded in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// SkippedDate is a data file value that could not be turned into a year.
type SkippedDate struct {
	// Row is the 1-based data row number (the header is not counted).
	Row int `json:"row"`

	// Value is the raw date text.
	Value string `json:"value"`

	// Reason is the parser error message.
	Reason string `json:"reason"`
}

// Series is the per-year incident tally of a data file.
type Series struct {
	// Source is the data file the series was built from, if any.
	Source string `json:"source,omitempty"`

	// Column is the name of the date column.
	Column string `json:"column"`

	// Points holds one entry per year, sorted by year.
	Points []YearCount `json:"points"`

	// Skipped lists the dates that were not counted.
	Skipped []SkippedDate `json:"skipped,omitempty"`
}

// NewSeries builds a Series from a year to count mapping.
func NewSeries(column string, counts map[int]int) *Series {
	points := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		points = append(points, YearCount{Year: year, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Year < points[j].Year
	})
	return &Series{
		Column:  column,
		Points:  points,
		Skipped: make([]SkippedDate, 0),
	}
}

// Total returns the number of counted incidents.
func (s *Series) Total() int {
	total := 0
	for _, p := range s.Points {
		total += p.Count
	}
	return total
}

// Max returns the highest yearly count, or 0 for an empty series.
func (s *Series) Max() int {
	highest := 0
	for _, p := range s.Points {
		if p.Count > highest {
			highest = p.Count
		}
	}
	return highest
}

// Span returns the first and last year of the series.
// ok is false when the series is empty.
func (s *Series) Span() (first, last int, ok bool) {
	if len(s.Points) == 0 {
		return 0, 0, false
	}
	return s.Points[0].Year, s.Points[len(s.Points)-1].Year, true
}

// Count returns the tally for year.
func (s *Series) Count(year int) int {
	for _, p := range s.Points {
		if p.Year == year {
			return p.Count
		}
	}
	return 0
}
