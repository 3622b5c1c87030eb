package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured is returned when a backing store is missing its credentials.
	ErrNotConfigured = errors.New("backing store not configured")

	// ErrTableNotFound is returned when the backing store does not know the requested table.
	ErrTableNotFound = errors.New("table not found")

	// ErrNotFound is returned by lookups (job id, company slug) that match nothing.
	ErrNotFound = errors.New("not found")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
