package model

import "errors"

// Resolution error taxonomy. Not-found is never an error: it is a normal
// result with Tier set to TierNone.
var (
	// ErrInvalidInput rejects blank input before any tier runs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable reports an unreachable graph or embedding backend.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrTimeout reports a deadline elapsing mid-cascade.
	ErrTimeout = errors.New("resolution deadline exceeded")
)
