package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/planecrash/internal/model"
)

// LeafFunc processes one incident page.
// path is the resolved page path and year the name of its year directory.
type LeafFunc func(ctx context.Context, path, year string) error

// Failure is a page that could not be processed in keep-going mode.
type Failure struct {
	// Path is the page path.
	Path string

	// Err is the error the page produced.
	Err error
}

// Stats summarizes a walk.
type Stats struct {
	// YearPages is the number of year pages loaded.
	YearPages int

	// IncidentPages is the number of incident pages handed to the leaf
	// function.
	IncidentPages int

	// SkippedLinks is the number of links the filter rejected.
	SkippedLinks int

	// Failures lists the pages that failed. Only populated in keep-going
	// mode, since otherwise the first failure ends the walk.
	Failures []Failure
}

// Walker performs the depth-first traversal database page -> year pages ->
// incident pages. Links are followed in document order. There is no
// deduplication and no cycle detection; the mirror layout is assumed.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	filter    *LinkFilter
	logger    *slog.Logger
	years     map[string]bool
	keepGoing bool
	stats     Stats
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLinkFilter sets the link filter. The default is NewLinkFilter().
func WithLinkFilter(f *LinkFilter) WalkerOption {
	return func(w *Walker) {
		w.filter = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithYears restricts the walk to year pages whose directory name is one of
// years. No years means every year.
func WithYears(years ...string) WalkerOption {
	return func(w *Walker) {
		if len(years) == 0 {
			w.years = nil
			return
		}
		w.years = make(map[string]bool, len(years))
		for _, y := range years {
			w.years[y] = true
		}
	}
}

// WithKeepGoing makes page failures non-fatal. Failed pages are logged and
// recorded in Stats, and Walk returns ErrPagesFailed at the end.
func WithKeepGoing(keepGoing bool) WalkerOption {
	return func(w *Walker) {
		w.keepGoing = keepGoing
	}
}

// NewWalker creates a Walker with the given options.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		filter: NewLinkFilter(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns the statistics of the last walk.
func (w *Walker) Stats() Stats {
	s := w.stats
	s.Failures = append([]Failure(nil), w.stats.Failures...)
	return s
}

// Walk traverses the mirror starting at databasePath and calls leaf for every
// incident page.
//
// By default the first failure of any page, including an error returned by
// leaf, aborts the walk and is returned. A failure to load the database page
// itself is always fatal. The context is checked before every page.
func (w *Walker) Walk(ctx context.Context, databasePath string, leaf LeafFunc) error {
	w.stats = Stats{}

	w.logger.Debug("loading database page", "path", databasePath)
	root, err := LoadPage(databasePath)
	if err != nil {
		return err
	}

	for _, link := range PageLinks(root) {
		if !w.filter.Follow(LevelDatabase, link.Href) {
			w.skip(LevelDatabase, link)
			continue
		}

		yearPath := ResolveHref(databasePath, link.Href)
		year := YearOf(yearPath)
		if w.years != nil && !w.years[year] {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.walkYear(ctx, yearPath, year, leaf); err != nil {
			return err
		}
	}

	if n := len(w.stats.Failures); n > 0 {
		return fmt.Errorf("%w: %d failed", ErrPagesFailed, n)
	}
	return nil
}

// walkYear processes one year page. It returns an error only when the walk
// must stop.
func (w *Walker) walkYear(ctx context.Context, yearPath, year string, leaf LeafFunc) error {
	w.logger.Debug("loading year page", "year_page", yearPath, "year", year)
	page, err := LoadPage(yearPath)
	if err != nil {
		return w.fail(yearPath, err)
	}
	w.stats.YearPages++

	for _, link := range PageLinks(page) {
		if !w.filter.Follow(LevelYear, link.Href) {
			w.skip(LevelYear, link)
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		incidentPath := ResolveHref(yearPath, link.Href)
		w.stats.IncidentPages++
		if err := leaf(ctx, incidentPath, year); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err := w.fail(incidentPath, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// fail records a page failure. In keep-going mode the failure is logged and
// nil is returned; otherwise err is returned with the page path attached.
// An *AbortError is always returned unchanged.
func (w *Walker) fail(path string, err error) error {
	var abort *AbortError
	if errors.As(err, &abort) {
		w.logger.Error("aborting walk", "path", path, "error", err)
		return err
	}
	if !w.keepGoing {
		if _, ok := PathOf(err); ok {
			return err
		}
		return &PageError{Path: path, Err: err}
	}
	w.logger.Warn("page failed, continuing", "path", path, "error", err)
	w.stats.Failures = append(w.stats.Failures, Failure{Path: path, Err: err})
	return nil
}

func (w *Walker) skip(level Level, link model.Link) {
	w.stats.SkippedLinks++
	w.logger.Debug("skipping link", "level", level.String(), "page", link.Source, "href", link.Href)
}
