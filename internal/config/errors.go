package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoDatabasePage is returned when no database page path is configured.
	ErrNoDatabasePage = errors.New("no database page specified: pass a path to database.htm")

	// ErrNoOutput is returned when the data file path is empty.
	ErrNoOutput = errors.New("no output data file specified")

	// ErrInvalidDuplicatePolicy is returned for an unknown duplicate label policy.
	ErrInvalidDuplicatePolicy = errors.New("invalid duplicate label policy: must be last-wins or reject")

	// ErrNoDateColumn is returned when the date column name is empty.
	ErrNoDateColumn = errors.New("no date column specified")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoLedgerDir is returned when the ledger is enabled without a directory.
	ErrNoLedgerDir = errors.New("ledger enabled but no ledger directory specified")
)
