// Package main provides the entry point for the planecrash CLI.
//
// planecrash extracts accident records from a local mirror of the plane
// crash database site into a single comma-delimited data file, and plots
// the number of incidents per year.
//
// Usage:
//
//	planecrash scrape ../wget_planecrashinfo/database.htm -o all_data.csv
//	planecrash plot all_data.csv --markdown -o report.md
//
// See --help for all available options.
package main

func main() {
	Execute()
}
