package crawler

import (
	"bytes"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/planecrash/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// LoadPage reads the HTML file at path and parses it.
// The file is decoded as ISO-8859-1, the encoding used by the mirrored site.
// There is no retry and no fallback encoding: a missing or unreadable file
// returns a *PageError wrapping ErrPageIO.
func LoadPage(path string) (*model.Page, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the mirror walk
	if err != nil {
		return nil, &PageError{Path: path, Err: fmt.Errorf("%w: %w", ErrPageIO, err)}
	}
	return ParsePage(path, raw)
}

// ParsePage parses raw Latin-1 HTML as the page at path.
func ParsePage(path string, raw []byte) (*model.Page, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))

	root, err := html.Parse(decoded)
	if err != nil {
		return nil, &PageError{Path: path, Err: fmt.Errorf("%w: %w", ErrPageIO, err)}
	}

	page := &model.Page{
		Path: path,
		Raw:  raw,
		Doc:  goquery.NewDocumentFromNode(root),
	}
	page.ComputeHash()

	return page, nil
}
