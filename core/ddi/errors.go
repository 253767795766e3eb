package ddi

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an operation requires a target store but
// no host has been configured. It is fatal for the enclosing operation and
// never retried.
var ErrNotConfigured = errors.New("ddi: target store not configured")

// ErrAuthentication is returned on HTTP 401 from the target store.
// Authentication failures are never retried.
var ErrAuthentication = errors.New("ddi: authentication failed")

// TransientError is returned after all retry attempts for a request are
// exhausted. It carries the last observed status and body so callers can
// report what the store actually said.
type TransientError struct {
	// StatusCode is the last HTTP status, or 0 for transport failures.
	StatusCode int
	// Body is the last response body, possibly truncated.
	Body string
	// Attempts is the number of attempts made before giving up.
	Attempts int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ddi: request failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("ddi: request failed after %d attempts: status %d: %s", e.Attempts, e.StatusCode, e.Body)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
