package task

import "errors"

var (
	// ErrUnauthorized is returned when the actor lacks the role or relation
	// the operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidTransition is returned when the requested status is not
	// reachable from the current one.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation is returned for malformed input or violated limits.
	ErrValidation = errors.New("validation error")
	// ErrPersistence wraps failures of the record or object store.
	ErrPersistence = errors.New("persistence error")
	// ErrConflict is returned when the task changed since it was read.
	ErrConflict = errors.New("task was modified concurrently")
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
)
