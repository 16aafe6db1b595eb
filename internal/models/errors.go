package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors for callers.
type ErrorKind string

const (
	// ErrKindValidation covers bad input: bad amount, inactive product,
	// insufficient cash or credit score, limit exceeded. Rejected before
	// any write; never retried automatically.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindPrecondition covers transitions attempted from the wrong
	// status, including concurrent modification detected inside the
	// transaction. Safe to re-fetch and retry the correct transition.
	ErrKindPrecondition ErrorKind = "precondition"
	// ErrKindLedger marks an account balance that would go inconsistent.
	// Must not happen given transactional transitions; the instance is
	// left untouched for manual reconciliation.
	ErrKindLedger ErrorKind = "ledger"
	// ErrKindTransient covers infrastructure failures; the whole
	// operation is safe to retry from the top.
	ErrKindTransient ErrorKind = "transient"
)

// Error is the engine's typed error: a kind plus a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidation creates a validation error.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewPrecondition creates a precondition/state error.
func NewPrecondition(format string, args ...any) *Error {
	return &Error{Kind: ErrKindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// NewLedger creates a ledger inconsistency error.
func NewLedger(format string, args ...any) *Error {
	return &Error{Kind: ErrKindLedger, Message: fmt.Sprintf(format, args...)}
}

// NewTransient creates a transient infrastructure error.
func NewTransient(format string, args ...any) *Error {
	return &Error{Kind: ErrKindTransient, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain. Unclassified errors
// are reported as transient so callers treat them as retriable.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindTransient
}
