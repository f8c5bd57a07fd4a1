package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the sentinel every ValidationError unwraps to.
	ErrValidation = errors.New("invalid activity input")
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrDuplicateID is returned when an activity id is already held by the store.
	ErrDuplicateID = errors.New("activity id already exists")
	// ErrEmptyInput is returned when a spatial extent is requested for no activities.
	ErrEmptyInput = errors.New("no activities to compute extent from")
	// ErrPersistence is the sentinel every PersistenceError unwraps to.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports a numeric input rejected at creation time.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError wraps a failed write to the persistence slot.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
