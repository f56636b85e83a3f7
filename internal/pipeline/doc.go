// Package pipeline runs the per-page processing of a scrape as a sequence
// of steps.
//
// Every incident page found by the walker becomes a model.Incident that is
// passed through the steps in order: extract (load the page and read its
// table), write (append the record to the data file) and, when the ledger is
// enabled, ledger (record the outcome in SQLite). Each step receives the
// Incident filled in by the previous ones.
//
// Final steps run after the regular steps even when one of them failed, so
// a failed page is still recorded in the ledger.
package pipeline
