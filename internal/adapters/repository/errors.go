package repository

import "errors"

var (
	// ErrNotFound is returned when no persisted model exists yet.
	ErrNotFound = errors.New("model not found")
	// ErrCorrupt is returned when a persisted file cannot be decoded.
	ErrCorrupt = errors.New("model file corrupt")
)
