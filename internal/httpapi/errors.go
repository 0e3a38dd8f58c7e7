package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"ftserve/internal/fasttext"
	"ftserve/internal/manager"
	"ftserve/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case fasttext.IsModelNotLoaded(err), fasttext.IsAlreadyLoaded(err):
		return http.StatusConflict
	case fasttext.IsFileNotFound(err), manager.IsModelNotFound(err):
		return http.StatusNotFound
	case fasttext.IsIncompatibleFormat(err), fasttext.IsInvalidArgument(err), manager.IsBadRequest(err):
		return http.StatusBadRequest
	case fasttext.IsInitializationFailure(err):
		return http.StatusUnprocessableEntity
	case manager.IsDependencyUnavailable(err), errors.Is(err, manager.ErrClosed):
		return http.StatusServiceUnavailable
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
