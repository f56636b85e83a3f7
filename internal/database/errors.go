package database

import "errors"

// ErrRunNotFound is returned when a run ID does not exist in the ledger.
var ErrRunNotFound = errors.New("run not found")
