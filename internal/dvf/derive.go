package dvf

import (
	"math"
	"strconv"
)

// Derive computes the derived columns in place: composite surface, price per
// m², arrondissement code, and calendar fields. It never drops rows and a
// row-level failure only leaves the affected derived fields missing.
func Derive(txs []Transaction) {
	for i := range txs {
		deriveOne(&txs[i])
	}
}

func deriveOne(t *Transaction) {
	// Composite surface: built area takes priority over land area.
	switch {
	case !Missing(t.BuildingArea):
		t.CompositeArea = t.BuildingArea
	case !Missing(t.LandArea):
		t.CompositeArea = t.LandArea
	default:
		t.CompositeArea = math.NaN()
	}

	// Price per m² is defined only when both operands are present and the
	// denominator is strictly positive. Anything else is missing, never an
	// error or an infinity.
	if !Missing(t.Value) && !Missing(t.CompositeArea) && t.CompositeArea > 0 {
		t.PricePerM2 = round2(t.Value / t.CompositeArea)
	} else {
		t.PricePerM2 = math.NaN()
	}

	// Arrondissement from the last two digits of the commune code (75101-75120).
	t.District = districtFromCommuneCode(t.CommuneCode)

	// Calendar fields; an unparsable date leaves both missing.
	if d, ok := parseMutationDate(t.MutationDate); ok {
		t.Year = d.Year()
		t.Month = int(d.Month())
	} else {
		t.Year = 0
		t.Month = 0
	}
}

// districtFromCommuneCode parses the last two characters of a commune code.
// Returns 0 when the code is too short or not numeric.
func districtFromCommuneCode(code string) int {
	if len(code) < 2 {
		return 0
	}
	n, err := strconv.Atoi(code[len(code)-2:])
	if err != nil {
		return 0
	}
	return n
}
