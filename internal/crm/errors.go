package crm

import (
	"crm_system/internal/storage" // Collection names
)

// ValidationError rejects a form submission. No state was changed.
type ValidationError struct {
	Msg string // Message shown next to the form
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// PersistError reports that a record was accepted in memory but the
// collection could not be written. The session still holds the record.
type PersistError struct {
	Collection storage.Collection // Collection that failed to save
	Err        error              // Underlying storage error
}

func (e *PersistError) Error() string { return "Unable to save data: " + e.Err.Error() }

func (e *PersistError) Unwrap() error { return e.Err }
