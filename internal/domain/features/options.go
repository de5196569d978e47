// Package features derives model-ready feature vectors from raw employee rows.
package features

import "time"

// Option applies a configuration option to the Engineer.
type Option func(*Engineer)

// WithMedianImputation fills missing evaluation scores with the per-batch
// column median instead of the fixed neutral value. Used when engineering
// large cohorts fetched from the database.
func WithMedianImputation() Option {
	return func(e *Engineer) {
		e.medianImpute = true
	}
}

// WithAgeFloor clamps computed ages to a minimum. The JSON service variant
// uses 18.
func WithAgeFloor(floor int) Option {
	return func(e *Engineer) {
		if floor > 0 {
			e.ageFloor = floor
		}
	}
}

// WithNow overrides the time source, making age and tenure derivation
// deterministic in tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engineer) {
		if now != nil {
			e.now = now
		}
	}
}
