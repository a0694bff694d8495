package dvf

import (
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/stats"
)

// Thresholds bound the plausible price-per-m² range for one batch. The high
// threshold is recomputed from each batch's own distribution; the low
// threshold is a fixed policy constant (sales below it are symbolic
// transfers or donations, not noise, so the floor is not data-derived).
type Thresholds struct {
	Low      float64
	High     float64
	Q1       float64
	Q3       float64
	IQR      float64
	Median   float64
	MAD      float64
	MinValue float64
}

// ComputeThresholds derives the outlier thresholds from the non-missing
// price-per-m² values. High = max(Q3 + 3·IQR, median + 3.5·MAD).
/// Deterministic: the same batch always yields the same thresholds.
func ComputeThresholds(txs []Transaction, minPricePerM2, minValue float64) Thresholds {
	var prices []float64
	for _, t := range txs {
		if !Missing(t.PricePerM2) {
			prices = append(prices, t.PricePerM2)
		}
	}

	q1 := stats.Quantile(prices, 0.25)
	q3 := stats.Quantile(prices, 0.75)
	iqr := q3 - q1
	median := stats.Median(prices)
	mad := stats.MAD(prices)

	high := q3 + 3*iqr
	if m := median + 3.5*mad; m > high {
		high = m
	}

	th := Thresholds{
		Low:      minPricePerM2,
		High:     high,
		Q1:       q1,
		Q3:       q3,
		IQR:      iqr,
		Median:   median,
		MAD:      mad,
		MinValue: minValue,
	}

	zap.L().Info("clean: outlier thresholds",
		zap.Float64("q1", q1),
		zap.Float64("q3", q3),
		zap.Float64("iqr", iqr),
		zap.Float64("median", median),
		zap.Float64("mad", mad),
		zap.Float64("low", th.Low),
		zap.Float64("high", th.High),
	)
	return th
}

// LowReason names why a row landed in the low-outlier bucket.
type LowReason string

const (
	// LowReasonValueFloor marks a declared value below the absolute minimum.
	LowReasonValueFloor LowReason = "value_floor"
	// LowReasonPriceFloor marks a price per m² below the fixed floor.
	LowReasonPriceFloor LowReason = "price_floor"
	// LowReasonUnclassifiable marks a row whose price per m² is undefined
	// (symbolic transaction with no usable surface or value).
	LowReasonUnclassifiable LowReason = "unclassifiable"
)

// LowOutlier is a low-bucket row with its classification reason.
type LowOutlier struct {
	Transaction
	Reason LowReason
}

// Partition is the three-way disjoint cover produced by Classify.
type Partition struct {
	Normal []Transaction
	Low    []LowOutlier
	High   []Transaction
}

// Classify partitions rows into normal, low-outlier, and high-outlier sets.
// Every input row lands in exactly one bucket. The value floor takes
// precedence: a row below the minimum absolute value is a low outlier even
// when its price per m² would otherwise read as high. Rows with an undefined
// price per m² fold into the low bucket under the "unclassifiable" reason.
func Classify(txs []Transaction, th Thresholds) Partition {
	var p Partition
	for _, t := range txs {
		switch {
		case !Missing(t.Value) && t.Value < th.MinValue:
			p.Low = append(p.Low, LowOutlier{Transaction: t, Reason: LowReasonValueFloor})
		case Missing(t.PricePerM2):
			p.Low = append(p.Low, LowOutlier{Transaction: t, Reason: LowReasonUnclassifiable})
		case t.PricePerM2 < th.Low:
			p.Low = append(p.Low, LowOutlier{Transaction: t, Reason: LowReasonPriceFloor})
		case t.PricePerM2 > th.High:
			p.High = append(p.High, t)
		default:
			p.Normal = append(p.Normal, t)
		}
	}

	zap.L().Info("clean: partition complete",
		zap.Int("total", len(txs)),
		zap.Int("normal", len(p.Normal)),
		zap.Int("low", len(p.Low)),
		zap.Int("high", len(p.High)),
	)
	return p
}
