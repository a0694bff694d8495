package ml

import (
	"math"
	"sort"
)

// RegressionMetrics summarizes regression quality on a held-out set.
type RegressionMetrics struct {
	R2   float64 `yaml:"r2"`
	MAE  float64 `yaml:"mae"`
	RMSE float64 `yaml:"rmse"`
}

// ClassificationMetrics summarizes binary classification quality.
type ClassificationMetrics struct {
	Accuracy float64 `yaml:"accuracy"`
	ROCAUC   float64 `yaml:"roc_auc"`
}

// EvaluateRegression computes R², MAE, and RMSE of predictions against the
// true targets.
func EvaluateRegression(yTrue, yPred []float64) RegressionMetrics {
	n := float64(len(yTrue))
	if n == 0 {
		return RegressionMetrics{}
	}

	var mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= n

	var ssRes, ssTot, absSum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		absSum += math.Abs(d)
		t := yTrue[i] - mean
		ssTot += t * t
	}

	m := RegressionMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(ssRes / n),
	}
	if ssTot > 0 {
		m.R2 = 1 - ssRes/ssTot
	}
	return m
}

// Accuracy is the share of exact label matches.
func Accuracy(yTrue []float64, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var hits int
	for i := range yTrue {
		if int(yTrue[i]) == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// ROCAUC computes the area under the ROC curve by the rank statistic:
// the probability a random positive scores above a random negative, with
// ties counting half.
func ROCAUC(yTrue, scores []float64) float64 {
	type scored struct {
		score float64
		pos   bool
	}
	rows := make([]scored, len(yTrue))
	var nPos, nNeg float64
	for i := range yTrue {
		rows[i] = scored{scores[i], yTrue[i] == 1}
		if rows[i].pos {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].score < rows[b].score })

	// Average rank per tie group, then the Mann-Whitney U statistic.
	var rankSumPos float64
	i := 0
	for i < len(rows) {
		j := i
		for j < len(rows) && rows[j].score == rows[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based ranks i+1 .. j
		for k := i; k < j; k++ {
			if rows[k].pos {
				rankSumPos += avgRank
			}
		}
		i = j
	}
	u := rankSumPos - nPos*(nPos+1)/2
	return u / (nPos * nNeg)
}
