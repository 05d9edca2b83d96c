package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a rejection from the backend: the call reached it and it said
// no. Message carries the backend's own wording and is surfaced to the
// user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the backend. Only this
// class of error destroys the stored credential.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsBackendRejection reports whether err carries a backend refusal (any
// non-401 HTTP error response).
func IsBackendRejection(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode != http.StatusUnauthorized
}

// IsTransient reports whether err is a transport-level failure (network,
// timeout, malformed response) rather than a backend decision. Transient
// failures never log the user out; the operation may simply be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	return !errors.As(err, &apiErr)
}

// errorBody matches the backend's error payloads, which use either a
// single message or a list.
type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func (b errorBody) message() string {
	if len(b.Errors) > 0 && b.Errors[0] != "" {
		return b.Errors[0]
	}
	return b.Error
}
