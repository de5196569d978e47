package app

import "errors"

var (
	// ErrEmptyBatch is returned when a prediction request carries no rows.
	ErrEmptyBatch = errors.New("empty employee batch")
	// ErrBatchTooLarge is returned when a prediction request exceeds the
	// configured batch cap.
	ErrBatchTooLarge = errors.New("employee batch too large")
	// ErrQueueFull is returned when the training queue rejects a job.
	ErrQueueFull = errors.New("training queue full")
)
