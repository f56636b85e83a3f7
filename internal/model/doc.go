// Package model defines the core data structures used throughout planecrash.
//
// This package contains the following main types:
//   - Page: A parsed local HTML page identified by its filesystem path
//   - Link: An href discovered on a page
//   - Record: The ordered label/value fields extracted from one incident page
//   - Incident: The unit of work passed through the leaf pipeline
//   - Series: Incident counts aggregated by year
//
// The types live in their own package so that crawler, datafile, pipeline,
// aggregate and report can share them without import cycles.
package model
