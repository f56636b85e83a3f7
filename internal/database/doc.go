// Package database provides the SQLite ingest ledger for planecrash.
//
// The ledger records every scrape run and every incident page a run
// processed, with the page's content hash, its field count and any error.
// It answers "which run wrote this row, from which revision of the page"
// without touching the data file, which stays a plain append-only text file.
//
// The ledger lives in a single file (planecrash.db) inside the configured
// directory, by default the XDG data directory. It uses modernc.org/sqlite,
// a CGO-free driver.
package database
