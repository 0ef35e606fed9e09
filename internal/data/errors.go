package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrPayloadNotFound is returned when a job record exists but its payload is missing.
	ErrPayloadNotFound = errors.New("job payload not found")
)
