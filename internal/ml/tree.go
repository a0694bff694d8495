// Package ml implements the two price models: gradient-boosted regression
// trees for the price per m² and a binary logistic classifier for the
// cheap/expensive split. Both train deterministically from the same feature
// tables and persist as JSON artifacts.
package ml

import (
	"math"
	"sort"
)

// treeNode is one node of a CART regression tree. Exported fields so the
// fitted tree round-trips through JSON.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// regressionTree fits a depth-limited least-squares CART tree. Splits scan
// midpoints between distinct sorted values and keep the one with the lowest
// weighted squared error; a split must leave minLeaf samples on each side.
type regressionTree struct {
	maxDepth int
	minLeaf  int
}

func (rt regressionTree) fit(x [][]float64, y []float64) *treeNode {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	return rt.build(x, y, idx, 0)
}

func (rt regressionTree) build(x [][]float64, y []float64, idx []int, depth int) *treeNode {
	if len(idx) < 2*rt.minLeaf || (rt.maxDepth > 0 && depth >= rt.maxDepth) {
		return &treeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	feature, threshold, ok := rt.bestSplit(x, y, idx)
	if !ok {
		return &treeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      rt.build(x, y, left, depth+1),
		Right:     rt.build(x, y, right, depth+1),
	}
}

// bestSplit finds the (feature, threshold) minimizing the summed squared
// error of the two children, using running prefix sums over the sorted
// column. Deterministic: features and thresholds scan in fixed order and
// ties keep the first candidate.
func (rt regressionTree) bestSplit(x [][]float64, y []float64, idx []int) (int, float64, bool) {
	p := len(x[idx[0]])
	bestErr := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	order := make([]int, len(idx))
	for f := 0; f < p; f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}

		var leftSum, leftSq float64
		n := len(order)
		for s := 1; s < n; s++ {
			yi := y[order[s-1]]
			leftSum += yi
			leftSq += yi * yi

			if x[order[s]][f] == x[order[s-1]][f] {
				continue
			}
			if s < rt.minLeaf || n-s < rt.minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			nl, nr := float64(s), float64(n-s)
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestErr {
				bestErr = sse
				bestFeature = f
				bestThreshold = (x[order[s-1]][f] + x[order[s]][f]) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func meanAt(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
