// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Capacity errors
	ErrCapacity = errors.New("capacity exceeded")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Lookup errors
	ErrNotFound = errors.New("entity not found")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "event", "roster", "session"
	Op      string // Operation that failed, e.g., "Resolve", "Build"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// UserMessage returns the human-readable cause of err, without the domain/op prefix
// when err is a DomainError.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// Event domain errors
var (
	ErrRosterFull         = NewDomainError("event", "AddCompetitors", ErrCapacity, "no more than 8 athletes in an event")
	ErrRefereeAssigned    = NewDomainError("event", "SetReferee", ErrInvalidState, "a referee has already been assigned")
	ErrNoReferee          = NewDomainError("event", "Resolve", ErrInvalidState, "no referee in the event")
	ErrTooFewCompetitors  = NewDomainError("event", "Resolve", ErrInvalidState, "fewer than 4 athletes, the event is cancelled")
	ErrEventFinished      = NewDomainError("event", "Resolve", ErrInvalidState, "the event is finished")
	ErrNilCompetitor      = NewDomainError("event", "AddCompetitors", ErrInvalidInput, "competitor cannot be nil")
	ErrNilReferee         = NewDomainError("event", "SetReferee", ErrInvalidInput, "referee cannot be nil")
	ErrInvalidTime        = NewDomainError("event", "Resolve", ErrInvalidInput, "performance time must be a finite, non-negative number")
	ErrInvalidKind        = NewDomainError("event", "Validate", ErrInvalidInput, "unknown event kind")
	ErrInvalidEventID     = NewDomainError("event", "Validate", ErrInvalidInput, "event id cannot be empty")
	ErrEventAlreadyClosed = NewDomainError("event", "AddCompetitors", ErrInvalidState, "the event is finished")
)

// Roster domain errors
var (
	ErrInsufficientPool  = NewDomainError("roster", "Build", ErrInvalidState, "not enough eligible athletes in the pool")
	ErrDrawLimitExceeded = NewDomainError("roster", "Build", ErrInvalidState, "draw attempt limit exceeded")
	ErrEmptyPool         = NewDomainError("roster", "Build", ErrInvalidInput, "athlete pool is empty")
	ErrRosterNotEmpty    = NewDomainError("roster", "Build", ErrInvalidState, "the event already has athletes")
	ErrNoOfficials       = NewDomainError("roster", "Build", ErrInvalidInput, "no official provider")
	ErrNilEvent          = NewDomainError("roster", "Build", ErrInvalidInput, "event cannot be nil")
)

// Session domain errors
var (
	ErrNoEventSelected  = NewDomainError("session", "Check", ErrInvalidState, "select an event first")
	ErrInvalidOption    = NewDomainError("session", "Input", ErrInvalidInput, "invalid input")
	ErrEventNotFound    = NewDomainError("session", "SelectEvent", ErrNotFound, "event not found")
	ErrSelectedFinished = NewDomainError("session", "SelectEvent", ErrInvalidState, "the event is finished")
)

// IsCapacity checks if the error is a capacity error.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

// IsState checks if the error is a state error.
func IsState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsDomain reports whether err carries a domain error, i.e. it is safe to show
// to the operator and the session can continue.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
