package fasttext

import (
	"errors"
	"fmt"
)

// fileNotFoundError signals that a model path does not name a readable file.
type fileNotFoundError struct{ path string }

func (e fileNotFoundError) Error() string { return "model file does not exist: " + e.path }

// ErrFileNotFound constructs a fileNotFoundError.
func ErrFileNotFound(path string) error { return fileNotFoundError{path: path} }

// IsFileNotFound reports whether err indicates a missing model file.
func IsFileNotFound(err error) bool {
	var e fileNotFoundError
	return errors.As(err, &e)
}

// incompatibleFormatError signals that the engine rejected the file header.
type incompatibleFormatError struct{ path string }

func (e incompatibleFormatError) Error() string {
	return "model file format is not compatible with this engine: " + e.path
}

// ErrIncompatibleFormat constructs an incompatibleFormatError.
func ErrIncompatibleFormat(path string) error { return incompatibleFormatError{path: path} }

// IsIncompatibleFormat reports whether err indicates a failed format check.
func IsIncompatibleFormat(err error) bool {
	var e incompatibleFormatError
	return errors.As(err, &e)
}

// initializationError signals that a load was attempted but the engine did
// not become ready (corrupt payload, engine parse failure).
type initializationError struct {
	path  string
	cause error
}

func (e initializationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("model failed to initialize: %s: %v", e.path, e.cause)
	}
	return "model failed to initialize: " + e.path
}

func (e initializationError) Unwrap() error { return e.cause }

// ErrInitialization constructs an initializationError.
func ErrInitialization(path string, cause error) error {
	return initializationError{path: path, cause: cause}
}

// IsInitializationFailure reports whether err indicates a load that did not produce a ready model.
func IsInitializationFailure(err error) bool {
	var e initializationError
	return errors.As(err, &e)
}

// invalidArgumentError signals a caller-supplied value outside its domain.
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return "invalid argument: " + e.msg }

// ErrInvalidArgument constructs an invalidArgumentError.
func ErrInvalidArgument(msg string) error { return invalidArgumentError{msg: msg} }

// IsInvalidArgument reports whether err indicates a bad argument (e.g. k <= 0).
func IsInvalidArgument(err error) bool {
	var e invalidArgumentError
	return errors.As(err, &e)
}

// extractionError signals an I/O failure materializing the bundled model.
type extractionError struct{ cause error }

func (e extractionError) Error() string { return "bundled model extraction failed: " + e.cause.Error() }

func (e extractionError) Unwrap() error { return e.cause }

// IsResourceExtractionFailure reports whether err came from materializing the bundled model.
func IsResourceExtractionFailure(err error) bool {
	var e extractionError
	return errors.As(err, &e)
}

var (
	// ErrModelNotLoaded is returned by every query made while Unloaded.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrAlreadyLoaded is returned by Load while a model is loaded; Unload first.
	ErrAlreadyLoaded = errors.New("a model is already loaded; unload it first")
)

// IsModelNotLoaded reports whether err indicates a query without a loaded model.
func IsModelNotLoaded(err error) bool { return errors.Is(err, ErrModelNotLoaded) }

// IsAlreadyLoaded reports whether err indicates a rejected reload.
func IsAlreadyLoaded(err error) bool { return errors.Is(err, ErrAlreadyLoaded) }
