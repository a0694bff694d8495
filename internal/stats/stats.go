// Package stats provides the distribution statistics used by the outlier
// filter and the feature scaler.
package stats

import (
	"math"
	"sort"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return math.NaN()
	}
	m := Mean(x)
	v := 0.0
	for _, xi := range x {
		d := xi - m
		v += d * d
	}
	return math.Sqrt(v / n)
}

// Quantile computes the q-th quantile (0 ≤ q ≤ 1) of a slice using linear
// interpolation between order statistics. The input is not modified.
func Quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median computes the median of a slice.
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// MAD computes the median absolute deviation around the median.
func MAD(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	med := Median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

// Min returns the smallest value in the slice.
func Min(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	m := x[0]
	for _, v := range x[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value in the slice.
func Max(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
