package forest

import "errors"

// Sentinel kinds for classifier errors.
var (
	ErrInsufficientData = errors.New("insufficient training data")
	ErrNotTrained       = errors.New("classifier not trained")
)
