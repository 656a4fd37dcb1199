package services

import "errors"

var (
	// ErrNotFound is returned when no record exists for a document id.
	ErrNotFound = errors.New("document not found")
	// ErrStorage wraps object storage failures.
	ErrStorage = errors.New("storage failure")
	// ErrRecordStore wraps record store failures.
	ErrRecordStore = errors.New("record store failure")
)

// ValidationError reports an upload that was rejected before processing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
