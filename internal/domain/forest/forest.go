// Package forest implements the random forest classifier that scores
// resignation risk, together with the labeling rule and threshold selection
// used during training.
package forest

import (
	"fmt"
	"math/rand"

	"github.com/hrsignal/attrition/internal/domain/model"
)

const (
	defaultNumTrees   = 300
	defaultMinLeaf    = 2
	defaultSeed       = 42
	defaultMinSamples = 10
)

// Forest is a trained ensemble. Fields are exported for gob persistence.
type Forest struct {
	Trees       []Tree
	NumFeatures int
}

type trainOptions struct {
	numTrees   int
	minLeaf    int
	seed       int64
	minSamples int
}

// Option customizes training.
type Option func(*trainOptions)

// WithNumTrees sets the ensemble size.
func WithNumTrees(n int) Option {
	return func(o *trainOptions) {
		if n > 0 {
			o.numTrees = n
		}
	}
}

// WithMinLeaf sets the minimum sample count per leaf.
func WithMinLeaf(n int) Option {
	return func(o *trainOptions) {
		if n > 0 {
			o.minLeaf = n
		}
	}
}

// WithSeed sets the RNG seed so training is reproducible.
func WithSeed(seed int64) Option {
	return func(o *trainOptions) {
		o.seed = seed
	}
}

// WithMinSamples sets the minimum number of training rows.
func WithMinSamples(n int) Option {
	return func(o *trainOptions) {
		if n > 0 {
			o.minSamples = n
		}
	}
}

// SyntheticLabel derives the risk label for a feature vector. An employee is
// positive when performance falls under 2.5, attendance under 70 percent, or
// at least two core scores sit at the bottom of the scale.
func SyntheticLabel(v model.FeatureVector) int {
	if v.Performance < 2.5 || v.AttendanceRate < 70 || v.LowScoreCount >= 2 {
		return 1
	}
	return 0
}

// Train fits a forest on the vectors and returns it with the decision
// threshold chosen on the training scores. Class weights are balanced so the
// minority class is not drowned out.
func Train(vectors []model.FeatureVector, opts ...Option) (*Forest, float64, error) {
	o := trainOptions{
		numTrees:   defaultNumTrees,
		minLeaf:    defaultMinLeaf,
		seed:       defaultSeed,
		minSamples: defaultMinSamples,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if len(vectors) < o.minSamples {
		return nil, 0, fmt.Errorf("%w: got %d rows, need %d", ErrInsufficientData, len(vectors), o.minSamples)
	}

	samples := make([][]float64, len(vectors))
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		vals := v.Values()
		samples[i] = vals[:]
		labels[i] = SyntheticLabel(v)
	}

	weights := balancedWeights(labels)
	maxFeatures := sqrtFeatures(model.NumFeatures)
	rng := rand.New(rand.NewSource(o.seed))

	f := &Forest{
		Trees:       make([]Tree, 0, o.numTrees),
		NumFeatures: model.NumFeatures,
	}
	for t := 0; t < o.numTrees; t++ {
		boot := bootstrapIndices(len(samples), rng)
		f.Trees = append(f.Trees, growTree(samples, labels, weights, boot, o.minLeaf, maxFeatures, rng))
	}

	scores := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = f.proba(s)
	}
	threshold := OptimalThreshold(labels, scores)

	return f, threshold, nil
}

// Proba returns the ensemble probability of the positive class for one
// feature vector.
func (f *Forest) Proba(v model.FeatureVector) (float64, error) {
	if f == nil || len(f.Trees) == 0 {
		return 0, ErrNotTrained
	}
	vals := v.Values()
	return f.proba(vals[:]), nil
}

func (f *Forest) proba(x []float64) float64 {
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

// balancedWeights assigns each row n / (k * count(class)) so both classes
// contribute equally regardless of imbalance.
func balancedWeights(labels []int) []float64 {
	counts := map[int]int{}
	for _, y := range labels {
		counts[y]++
	}
	n := float64(len(labels))
	k := float64(len(counts))
	weights := make([]float64, len(labels))
	for i, y := range labels {
		weights[i] = n / (k * float64(counts[y]))
	}
	return weights
}

// sqrtFeatures is the number of features sampled per split, floor of
// sqrt(n) with a minimum of one.
func sqrtFeatures(n int) int {
	m := 1
	for (m+1)*(m+1) <= n {
		m++
	}
	return m
}

// bootstrapIndices samples n rows with replacement.
func bootstrapIndices(n int, rng *rand.Rand) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rng.Intn(n)
	}
	return out
}
