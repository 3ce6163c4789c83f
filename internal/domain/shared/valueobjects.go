// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// RunID identifies one tournament run (UUID format).
type RunID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the run ID is a valid UUID.
func (r RunID) IsValid() bool {
	return uuidRegex.MatchString(string(r))
}

// String returns the string representation.
func (r RunID) String() string {
	return string(r)
}

// NewRunID validates and wraps a run identifier.
func NewRunID(id string) (RunID, error) {
	r := RunID(id)
	if !r.IsValid() {
		return "", NewDomainError("tournament", "Validate", ErrInvalidInput, fmt.Sprintf("invalid run id %q", id))
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Identifier Sequence
// ═══════════════════════════════════════════════════════════════════════════

// Sequence hands out monotonically increasing identifiers starting at 1.
// It is owned by whoever builds the tournament and passed to every
// constructor that needs numbering; the zero value is ready to use.
// A Sequence is not safe for concurrent use.
type Sequence struct {
	last int
}

// NewSequence returns a sequence whose first Next() is start.
func NewSequence(start int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{last: start - 1}
}

// Next returns the next identifier.
func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// Last returns the most recently issued identifier, 0 if none.
func (s *Sequence) Last() int {
	return s.last
}
