package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("already exists")
	ErrStorageBusy       = errors.New("storage is busy, please try again")
	ErrAttachment        = errors.New("attachment could not be saved")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// statuses is checked in order; the first sentinel found in the chain wins.
var statuses = []struct {
	err  error
	code int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrAttachment, http.StatusUnprocessableEntity},
	{ErrRateLimitExceeded, http.StatusTooManyRequests},
	{ErrStorageBusy, http.StatusServiceUnavailable},
}

// MapErrorToStatus maps an error chain to an HTTP status code. Errors without
// a known sentinel are internal.
func MapErrorToStatus(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}

// IsTransient reports whether the caller may retry the same request later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStorageBusy) || errors.Is(err, ErrRateLimitExceeded)
}
