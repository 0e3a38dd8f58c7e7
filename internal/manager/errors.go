package manager

import (
	"errors"

	"ftserve/internal/engine"
)

// tooBusyError signals that an exclusive operation is already running (429).
type tooBusyError struct{ op string }

func (e tooBusyError) Error() string { return "too busy: " + e.op + " already in progress" }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// modelNotFoundError is returned when a requested model id is not present in the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// badRequestError signals a malformed request that never reached the engine.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

// ErrBadRequest constructs a badRequestError.
func ErrBadRequest(msg string) error { return badRequestError{msg: msg} }

// IsBadRequest reports whether err was caused by request validation.
func IsBadRequest(err error) bool {
	var e badRequestError
	return errors.As(err, &e)
}

// ErrDependencyUnavailable re-exports the engine constructor so HTTP tests
// and callers need a single import.
func ErrDependencyUnavailable(msg string) error { return engine.ErrDependencyUnavailable(msg) }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool { return engine.IsDependencyUnavailable(err) }

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("manager closed")
