package model

import "fmt"

// DuplicatePolicy decides what happens when an incident table repeats a label.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the value of the later row. The label keeps the
	// column position of its first occurrence.
	DuplicateLastWins DuplicatePolicy = iota

	// DuplicateReject fails extraction of the page.
	DuplicateReject
)

// String returns the policy name used in flags and config files.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateLastWins:
		return "last-wins"
	case DuplicateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy converts a policy name into a DuplicatePolicy.
// The empty string selects DuplicateLastWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "last-wins":
		return DuplicateLastWins, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return DuplicateLastWins, fmt.Errorf("unknown duplicate label policy %q (want last-wins or reject)", s)
	}
}
