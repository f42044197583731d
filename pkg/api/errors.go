package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for Tower API outcomes.
var (
	// ErrServer indicates the Tower server sent back a 5xx response.
	ErrServer = errors.New("tower server error")

	// ErrAuth indicates the configured credentials were rejected (401).
	ErrAuth = errors.New("invalid tower credentials")

	// ErrForbidden indicates the authenticated user lacks permission (403).
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound indicates the requested object does not exist (404),
	// or a required relation is absent from a record.
	ErrNotFound = errors.New("object not found")

	// ErrMethodNotAllowed indicates the server rejected the method (405).
	// Some operations treat this as a logical outcome rather than a
	// transport failure (see jobs.Orchestrator.Cancel).
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrBadRequest indicates any other 4xx response.
	ErrBadRequest = errors.New("bad request")

	// ErrValidation indicates a missing or malformed field before dispatch.
	ErrValidation = errors.New("validation failed")

	// ErrCannotStartJob indicates an update was requested for a resource
	// the server reports as not updatable.
	ErrCannotStartJob = errors.New("cannot start job")

	// ErrMonitorTimeout indicates a monitor loop exceeded its deadline
	// before the job reached a terminal status.
	ErrMonitorTimeout = errors.New("monitor timed out")
)

// RequestError wraps an API error with the request context that produced it.
type RequestError struct {
	// Method and Path identify the request that failed.
	Method string
	Path   string

	// StatusCode is the HTTP status the server returned, if any.
	StatusCode int

	// Params is the encoded query string sent, if any.
	Params string

	// Body is the request body sent, if any.
	Body string

	// Response is the raw response body, kept for diagnostics on 4xx.
	Response string

	// Err is the sentinel error classifying this failure.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: %v (status %d)", e.Method, e.Path, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the sentinel error for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a monitor loop that exceeded its deadline.
// It carries the last status observed before the deadline passed.
type TimeoutError struct {
	LastStatus string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("monitor timed out (last status: %s)", e.LastStatus)
}

func (e *TimeoutError) Unwrap() error {
	return ErrMonitorTimeout
}

// IsServerError returns true if the error indicates a 5xx response.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsAuthError returns true if the error indicates rejected credentials.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsForbidden returns true if the error indicates insufficient permission.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound returns true if the error indicates a missing object or relation.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMethodNotAllowed returns true if the error indicates a 405 response.
func IsMethodNotAllowed(err error) bool {
	return errors.Is(err, ErrMethodNotAllowed)
}

// IsBadRequest returns true if the error indicates a non-special 4xx response.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsValidation returns true if the error indicates client-side field validation failed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsCannotStartJob returns true if the error indicates a non-updatable resource.
func IsCannotStartJob(err error) bool {
	return errors.Is(err, ErrCannotStartJob)
}

// IsMonitorTimeout returns true if the error indicates a monitor deadline expired.
func IsMonitorTimeout(err error) bool {
	return errors.Is(err, ErrMonitorTimeout)
}
