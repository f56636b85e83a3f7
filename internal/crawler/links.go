package crawler

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/planecrash/internal/model"
)

// ResolveHref returns the path of the page that href points to when it
// appears on the page at currentPath.
//
// The resolution is purely lexical: currentPath is split on "/", its last
// segment is replaced by href, and the segments are joined again. No
// normalization of "." or ".." is performed and the filesystem is not
// consulted.
//
//	ResolveHref("a/b/c.htm", "d.htm")                        // "a/b/d.htm"
//	ResolveHref("../root/database.htm", "1922/1922.htm")     // "../root/1922/1922.htm"
func ResolveHref(currentPath, href string) string {
	segments := strings.Split(currentPath, "/")
	segments = segments[:len(segments)-1]
	segments = append(segments, href)
	return strings.Join(segments, "/")
}

// PageLinks returns the href of every anchor on the page, in document order.
// Anchors without an href attribute are skipped.
func PageLinks(page *model.Page) []model.Link {
	links := make([]model.Link, 0)
	page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, model.Link{
			Source: page.Path,
			Href:   href,
			Text:   strings.TrimSpace(a.Text()),
		})
	})
	return links
}

// YearOf returns the year directory name of a year or incident page path,
// e.g. "1922" for "../mirror/1922/1922.htm".
func YearOf(pagePath string) string {
	dir := path.Dir(pagePath)
	if dir == "." || dir == "/" {
		return ""
	}
	return path.Base(dir)
}

// Level is a level of the mirror hierarchy that links are followed from.
type Level int

const (
	// LevelDatabase is the root page linking to year pages.
	LevelDatabase Level = iota

	// LevelYear is a year page linking to incident pages.
	LevelYear
)

// String returns the level name used in log output.
func (l Level) String() string {
	switch l {
	case LevelDatabase:
		return "database"
	case LevelYear:
		return "year"
	default:
		return "unknown"
	}
}

// Expected link targets for strict mode.
var (
	yearPagePattern     = regexp.MustCompile(`^(\d{4})/(\d{4})\.html?$`)
	incidentPagePattern = regexp.MustCompile(`^\d{4}-\d+\.html?$`)
)

// LinkFilter decides which links of a database or year page are followed.
//
// A link is never followed when its href is empty, is only a fragment,
// starts with "/", carries a URL scheme, or names one of the index pages as
// its final path segment. In strict mode the href must also look like the
// page type expected one level down: "<year>/<year>.htm" on the database
// page and "<year>-<n>.htm" on a year page.
type LinkFilter struct {
	indexPages map[string]bool
	strict     bool
}

// FilterOption configures a LinkFilter.
type FilterOption func(*LinkFilter)

// WithIndexPages replaces the index page file names that are never followed.
// Names are compared case-insensitively.
func WithIndexPages(names ...string) FilterOption {
	return func(f *LinkFilter) {
		f.indexPages = make(map[string]bool, len(names))
		for _, name := range names {
			f.indexPages[strings.ToLower(name)] = true
		}
	}
}

// WithStrictLinks enables page type classification of hrefs.
func WithStrictLinks(strict bool) FilterOption {
	return func(f *LinkFilter) {
		f.strict = strict
	}
}

// NewLinkFilter creates a LinkFilter that skips index.html and index.htm.
func NewLinkFilter(opts ...FilterOption) *LinkFilter {
	f := &LinkFilter{
		indexPages: map[string]bool{
			"index.html": true,
			"index.htm":  true,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Follow reports whether href, found on a page of the given level, should
// be followed.
func (f *LinkFilter) Follow(level Level, href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "/") {
		return false
	}

	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return false
	}

	if f.indexPages[strings.ToLower(path.Base(u.Path))] {
		return false
	}

	if !f.strict {
		return true
	}

	switch level {
	case LevelDatabase:
		m := yearPagePattern.FindStringSubmatch(u.Path)
		return m != nil && m[1] == m[2]
	case LevelYear:
		return incidentPagePattern.MatchString(u.Path)
	default:
		return false
	}
}
