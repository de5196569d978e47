package api

import "errors"

var (
	// ErrUnauthorized is returned on API key mismatch.
	ErrUnauthorized = errors.New("invalid or missing api key")
	// ErrBackpressure is returned when the training queue is full.
	ErrBackpressure = errors.New("training queue full, retry later")
)
