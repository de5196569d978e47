package forest

import (
	"math"
	"math/rand"
	"sort"
)

// leafMarker identifies leaf nodes in the flattened tree layout.
const leafMarker = -1

// Node is one decision node in a flattened tree. Exported fields so trees
// survive gob round-trips.
type Node struct {
	Feature int     // feature index, or leafMarker for a leaf
	Split   float64 // go left when x[Feature] <= Split
	Left    int     // child indices into Tree.Nodes
	Right   int
	P1      float64 // leaf only: weighted fraction of the positive class
}

// Tree is a single CART classification tree.
type Tree struct {
	Nodes []Node
}

// predict returns the positive-class probability stored at the leaf x
// reaches.
func (t *Tree) predict(x []float64) float64 {
	i := 0
	for t.Nodes[i].Feature != leafMarker {
		n := &t.Nodes[i]
		if x[n.Feature] <= n.Split {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].P1
}

// treeBuilder accumulates nodes while growing one tree on a bootstrap sample.
type treeBuilder struct {
	samples     [][]float64
	labels      []int
	weights     []float64
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

// growTree fits a tree on the rows named by indices and returns it.
func growTree(samples [][]float64, labels []int, weights []float64, indices []int, minLeaf, maxFeatures int, rng *rand.Rand) Tree {
	b := &treeBuilder{
		samples:     samples,
		labels:      labels,
		weights:     weights,
		minLeaf:     minLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
	}
	b.build(indices)
	return Tree{Nodes: b.nodes}
}

// build grows the subtree for indices and returns its root node index.
func (b *treeBuilder) build(indices []int) int {
	w1, wTotal := b.classWeight(indices)

	// Leaf when pure or too small to split with minLeaf on both sides.
	if w1 == 0 || w1 == wTotal || len(indices) < 2*b.minLeaf {
		return b.leaf(w1, wTotal)
	}

	feature, split, ok := b.bestSplit(indices)
	if !ok {
		return b.leaf(w1, wTotal)
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if b.samples[i][feature] <= split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Reserve the node slot before recursing so children land after it.
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: feature, Split: split})
	b.nodes[id].Left = b.build(left)
	b.nodes[id].Right = b.build(right)
	return id
}

func (b *treeBuilder) leaf(w1, wTotal float64) int {
	p1 := 0.0
	if wTotal > 0 {
		p1 = w1 / wTotal
	}
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leafMarker, P1: p1})
	return id
}

func (b *treeBuilder) classWeight(indices []int) (w1, wTotal float64) {
	for _, i := range indices {
		wTotal += b.weights[i]
		if b.labels[i] == 1 {
			w1 += b.weights[i]
		}
	}
	return w1, wTotal
}

// bestSplit searches a random feature subset for the split with the lowest
// weighted gini impurity, honoring the minimum leaf size on both children.
func (b *treeBuilder) bestSplit(indices []int) (feature int, split float64, ok bool) {
	numFeatures := len(b.samples[0])
	candidates := b.sampleFeatures(numFeatures)

	bestGini := math.Inf(1)
	for _, f := range candidates {
		s, g, found := b.bestSplitOnFeature(indices, f)
		if found && g < bestGini {
			bestGini = g
			feature = f
			split = s
			ok = true
		}
	}
	return feature, split, ok
}

// sampleFeatures draws maxFeatures distinct feature indices.
func (b *treeBuilder) sampleFeatures(numFeatures int) []int {
	if b.maxFeatures >= numFeatures {
		out := make([]int, numFeatures)
		for i := range out {
			out[i] = i
		}
		return out
	}
	perm := b.rng.Perm(numFeatures)
	return perm[:b.maxFeatures]
}

// splitCandidate pairs a feature value with its row for threshold scans.
type splitCandidate struct {
	value  float64
	label  int
	weight float64
}

func (b *treeBuilder) bestSplitOnFeature(indices []int, feature int) (split, gini float64, ok bool) {
	rows := make([]splitCandidate, len(indices))
	for k, i := range indices {
		rows[k] = splitCandidate{value: b.samples[i][feature], label: b.labels[i], weight: b.weights[i]}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].value < rows[j].value })

	var total1, total float64
	for _, r := range rows {
		total += r.weight
		if r.label == 1 {
			total1 += r.weight
		}
	}

	bestGini := math.Inf(1)
	var left1, left float64
	for k := 0; k < len(rows)-1; k++ {
		left += rows[k].weight
		if rows[k].label == 1 {
			left1 += rows[k].weight
		}

		// Thresholds only between distinct values.
		if rows[k].value == rows[k+1].value {
			continue
		}
		// Both children must carry at least minLeaf samples.
		if k+1 < b.minLeaf || len(rows)-(k+1) < b.minLeaf {
			continue
		}

		right := total - left
		right1 := total1 - left1
		g := weightedGini(left1, left, right1, right, total)
		if g < bestGini {
			bestGini = g
			split = (rows[k].value + rows[k+1].value) / 2
			ok = true
		}
	}
	return split, bestGini, ok
}

// weightedGini is the weight-averaged gini impurity of a binary split.
func weightedGini(left1, left, right1, right, total float64) float64 {
	return left/total*giniImpurity(left1, left) + right/total*giniImpurity(right1, right)
}

func giniImpurity(w1, wTotal float64) float64 {
	if wTotal == 0 {
		return 0
	}
	p := w1 / wTotal
	return 2 * p * (1 - p)
}
