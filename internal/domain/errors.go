package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record or upstream document matches
	// the given identifier.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
)

// UpstreamError reports a failed call to the upstream content API, keeping
// the upstream status and body for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
