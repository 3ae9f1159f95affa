// Package shared contains common domain types, errors, and events used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
//
// The error taxonomy of the progress engine is deliberately small:
//   - validation errors reject malformed activity before any folding;
//   - not-found on load is resolved internally via default-record synthesis
//     and never surfaces to callers (the sentinels live next to their
//     aggregates: identity.ErrIdentityNotFound, progress.ErrProgressNotFound);
//   - transient I/O errors are caught at the persistence boundary, logged,
//     and never block gameplay;
//   - broadcast delivery failures are silently dropped (best-effort contract).
var (
	// Validation errors
	ErrValidation = errors.New("validation error")
	ErrInvalidID  = errors.New("invalid ID")
	ErrEmptyValue = errors.New("value cannot be empty")

	// I/O boundary errors
	ErrTransientIO        = errors.New("transient i/o error")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Broadcast errors
	ErrBroadcastClosed = errors.New("broadcast channel closed")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "identity", "progress", "leaderboard"
	Op      string // Operation that failed, e.g., "Load", "Save"
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
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// IsTransient reports whether the error is a transient I/O failure that the
// caller should log and absorb instead of propagating to gameplay.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientIO) || errors.Is(err, ErrServiceUnavailable)
}
