package forest

import "sort"

// OptimalThreshold picks the probability cutoff maximizing Youden's J
// statistic (tpr - fpr) over the ROC curve of scores against labels. When
// the labels contain a single class the curve is degenerate and 0.5 is
// returned.
func OptimalThreshold(labels []int, scores []float64) float64 {
	var pos, neg int
	for _, y := range labels {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	thresholds, tpr, fpr := rocCurve(labels, scores, pos, neg)

	best := 0
	bestJ := tpr[0] - fpr[0]
	for i := 1; i < len(thresholds); i++ {
		if j := tpr[i] - fpr[i]; j > bestJ {
			bestJ = j
			best = i
		}
	}
	return thresholds[best]
}

// rocCurve walks score thresholds from high to low, emitting one point per
// distinct score. A sentinel threshold above the maximum score leads the
// curve so the (0, 0) corner is always present.
func rocCurve(labels []int, scores []float64, pos, neg int) (thresholds, tpr, fpr []float64) {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	thresholds = append(thresholds, scores[order[0]]+1)
	tpr = append(tpr, 0)
	fpr = append(fpr, 0)

	var tp, fp int
	for k := 0; k < len(order); k++ {
		i := order[k]
		if labels[i] == 1 {
			tp++
		} else {
			fp++
		}
		// Emit only once per distinct score value.
		if k+1 < len(order) && scores[order[k+1]] == scores[i] {
			continue
		}
		thresholds = append(thresholds, scores[i])
		tpr = append(tpr, float64(tp)/float64(pos))
		fpr = append(fpr, float64(fp)/float64(neg))
	}
	return thresholds, tpr, fpr
}
