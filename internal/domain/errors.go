package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExamNotFound is returned when no exam exists for an id.
	ErrExamNotFound = errors.New("exam not found")
	// ErrStoreUnavailable indicates no store handle could be initialized.
	ErrStoreUnavailable = errors.New("exam store unavailable")
	// ErrRevisionConflict is returned when an update's expected revision is stale.
	ErrRevisionConflict = errors.New("exam revision conflict")
)

// PersistenceError reports a failed write that must be surfaced to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist exam (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
