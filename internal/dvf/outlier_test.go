package dvf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkTx builds a derived transaction with a precomputed price per m2.
func mkTx(value, pricePerM2 float64) Transaction {
	return Transaction{Value: value, PricePerM2: pricePerM2}
}

func withPrices(prices ...float64) []Transaction {
	txs := make([]Transaction, len(prices))
	for i, p := range prices {
		txs[i] = Transaction{Value: 500_000, PricePerM2: p}
	}
	return txs
}

func TestComputeThresholds_HighTakesMaxOfBothRules(t *testing.T) {
	// Q1=5750, Q3=9750, median=8000, MAD=2000 under interpolated quantiles.
	// IQR rule: 9750 + 3*4000 = 21750. MAD rule: 8000 + 3.5*2000 = 15000.
	th := ComputeThresholds(withPrices(5000, 5000, 6500, 8000, 9500, 10000, 10000), 2000, 10000)
	assert.InDelta(t, 5750, th.Q1, 1e-9)
	assert.InDelta(t, 9750, th.Q3, 1e-9)
	assert.InDelta(t, 8000, th.Median, 1e-9)
	assert.InDelta(t, 2000, th.MAD, 1e-9)
	assert.InDelta(t, 21750, th.High, 1e-9)
	assert.Equal(t, 2000.0, th.Low)
}

func TestComputeThresholds_HighMatchesFormula(t *testing.T) {
	th := ComputeThresholds(withPrices(8000, 8000, 8000, 8000, 8000, 8000, 20000), 2000, 10000)
	iqrBound := th.Q3 + 3*th.IQR
	madBound := th.Median + 3.5*th.MAD
	assert.Equal(t, math.Max(iqrBound, madBound), th.High)
}

func TestClassify_ValueFloorWinsOverHighPrice(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	// Tiny value but astronomic price per m2: the value floor rules first.
	p := Classify([]Transaction{mkTx(5000, 50000)}, th)
	require.Len(t, p.Low, 1)
	assert.Empty(t, p.High)
	assert.Equal(t, LowReasonValueFloor, p.Low[0].Reason)
}

func TestClassify_MissingPriceGoesLowUnclassifiable(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	p := Classify([]Transaction{mkTx(200000, math.NaN())}, th)
	require.Len(t, p.Low, 1)
	assert.Equal(t, LowReasonUnclassifiable, p.Low[0].Reason)
}

func TestClassify_PriceFloor(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	p := Classify([]Transaction{mkTx(150000, 1500)}, th)
	require.Len(t, p.Low, 1)
	assert.Equal(t, LowReasonPriceFloor, p.Low[0].Reason)
}

func TestClassify_High(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	p := Classify([]Transaction{mkTx(3_000_000, 30000)}, th)
	assert.Len(t, p.High, 1)
	assert.Empty(t, p.Low)
	assert.Empty(t, p.Normal)
}

func TestClassify_BoundariesAreInclusive(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	p := Classify([]Transaction{
		mkTx(100000, 2000),  // exactly low bound stays normal
		mkTx(500000, 25000), // exactly high bound stays normal
	}, th)
	assert.Len(t, p.Normal, 2)
}

func TestClassify_PartitionCoversInput(t *testing.T) {
	th := Thresholds{Low: 2000, High: 25000, MinValue: 10000}
	txs := []Transaction{
		mkTx(5000, 8000),
		mkTx(150000, 1500),
		mkTx(200000, math.NaN()),
		mkTx(500000, 8000),
		mkTx(3_000_000, 30000),
	}
	p := Classify(txs, th)
	assert.Equal(t, len(txs), len(p.Normal)+len(p.Low)+len(p.High))
}

func TestComputeThresholds_IgnoresMissingPrices(t *testing.T) {
	th := ComputeThresholds(withPrices(5000, 5000, 6500, 8000, 9500, 10000, 10000, math.NaN(), math.NaN()), 2000, 10000)
	assert.InDelta(t, 21750, th.High, 1e-9)
}
