// Package potential buckets employees by composite performance score.
//
// Classification is relative to the cohort being scored: the 25th and 75th
// percentile cut points are recomputed for every batch, so the same employee
// can land in different buckets depending on who else is scored with them.
package potential

import (
	"math"
	"sort"

	"github.com/hrsignal/attrition/internal/domain/model"
)

// Quantile cut points used for bucketing.
const (
	lowQuantile  = 0.25
	highQuantile = 0.75
)

// Thresholds returns the batch's p25 and p75 performance cut points. ok is
// false when no row carries a usable performance score.
func Thresholds(vectors []model.FeatureVector) (low, high float64, ok bool) {
	scores := make([]float64, 0, len(vectors))
	for i := range vectors {
		if !math.IsNaN(vectors[i].Performance) {
			scores = append(scores, vectors[i].Performance)
		}
	}
	if len(scores) == 0 {
		return 0, 0, false
	}
	return Quantile(scores, lowQuantile), Quantile(scores, highQuantile), true
}

// Classify assigns a potential label per feature vector, in input order.
func Classify(vectors []model.FeatureVector) []string {
	labels := make([]string, len(vectors))

	low, high, ok := Thresholds(vectors)
	if !ok {
		for i := range labels {
			labels[i] = model.LabelInsufficientData
		}
		return labels
	}

	for i := range vectors {
		score := vectors[i].Performance
		switch {
		case math.IsNaN(score):
			labels[i] = model.LabelInsufficientData
		case score >= high:
			labels[i] = model.PotentialHigh
		case score >= low:
			labels[i] = model.PotentialMeets
		default:
			labels[i] = model.PotentialBelow
		}
	}
	return labels
}

// Quantile computes the q-th quantile of values with linear interpolation
// between closest ranks. values must be non-empty; it is not modified.
func Quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
