package model

import (
	"encoding/hex"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/crypto/sha3"
)

// Page is a parsed HTML document loaded from the local mirror.
// A Page is created on load and discarded once its data is extracted;
// pages are never cached.
type Page struct {
	// Path is the filesystem path the page was loaded from.
	// It is also the base for resolving the page's relative links.
	Path string

	// Raw contains the undecoded file bytes.
	Raw []byte

	// Hash is the hex SHA3-256 digest of Raw.
	// Stored in the ingest ledger to tell which page revision produced a row.
	Hash string

	// Doc is the queryable document tree.
	Doc *goquery.Document
}

// ComputeHash calculates the SHA3-256 hash of the raw content.
// An empty page has an empty hash.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// Link is an href found in one of a page's anchor elements.
// Links only exist during traversal.
type Link struct {
	// Source is the path of the page containing the anchor.
	Source string

	// Href is the raw href attribute value.
	Href string

	// Text is the anchor's visible text, trimmed.
	Text string
}
