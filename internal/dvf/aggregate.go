package dvf

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/quartier-analytics/immo-cli/internal/stats"
)

// minGroupSize is the cutoff below which a group is not reported: one or two
// sales say nothing about a market segment.
const minGroupSize = 2

// districtCentroids holds the center coordinates of the 20 arrondissements,
// joined onto the district report for map layers.
var districtCentroids = map[int][2]float64{
	1:  {48.8628, 2.3469},
	2:  {48.8637, 2.3522},
	3:  {48.8606, 2.3600},
	4:  {48.8530, 2.3554},
	5:  {48.8467, 2.3523},
	6:  {48.8490, 2.3333},
	7:  {48.8549, 2.3103},
	8:  {48.8698, 2.3078},
	9:  {48.8771, 2.3382},
	10: {48.8734, 2.3609},
	11: {48.8636, 2.3801},
	12: {48.8407, 2.3978},
	13: {48.8273, 2.3558},
	14: {48.8289, 2.3278},
	15: {48.8427, 2.2892},
	16: {48.8565, 2.2777},
	17: {48.8803, 2.2888},
	18: {48.8893, 2.3449},
	19: {48.8925, 2.3885},
	20: {48.8599, 2.4079},
}

// DistrictSummary aggregates price per m² for one arrondissement.
type DistrictSummary struct {
	District     int     `csv:"code_arrondissement"`
	Latitude     float64 `csv:"latitude"`
	Longitude    float64 `csv:"longitude"`
	PriceMean    float64 `csv:"prix_m2_moyen"`
	PriceMedian  float64 `csv:"prix_m2_median"`
	PriceMin     float64 `csv:"prix_m2_min"`
	PriceMax     float64 `csv:"prix_m2_max"`
	PriceStd     float64 `csv:"prix_m2_std"`
	Transactions int     `csv:"nombre_transactions"`
	SurfaceMean  float64 `csv:"surface_moyenne"`
	ValueMean    float64 `csv:"valeur_moyenne"`
}

// YearDistrictSummary aggregates price per m² for one (year, arrondissement).
type YearDistrictSummary struct {
	Year         int     `csv:"annee"`
	District     int     `csv:"code_arrondissement"`
	PriceMean    float64 `csv:"prix_m2_moyen"`
	PriceMedian  float64 `csv:"prix_m2_median"`
	PriceMin     float64 `csv:"prix_m2_min"`
	PriceMax     float64 `csv:"prix_m2_max"`
	PriceStd     float64 `csv:"prix_m2_std"`
	Transactions int     `csv:"nombre_transactions"`
}

// TypeDistrictSummary aggregates price per m² for one (type, arrondissement).
type TypeDistrictSummary struct {
	PropertyType string  `csv:"type_local"`
	District     int     `csv:"code_arrondissement"`
	PriceMean    float64 `csv:"prix_m2_moyen"`
	PriceMedian  float64 `csv:"prix_m2_median"`
	PriceMin     float64 `csv:"prix_m2_min"`
	PriceMax     float64 `csv:"prix_m2_max"`
	PriceStd     float64 `csv:"prix_m2_std"`
	Transactions int     `csv:"nombre_transactions"`
}

// AggregateByDistrict groups cleaned rows by arrondissement. Pure function
// of its input; groups under the size cutoff are skipped.
func AggregateByDistrict(txs []Transaction) []DistrictSummary {
	groups := make(map[int][]Transaction)
	for _, t := range txs {
		if t.District == 0 || Missing(t.PricePerM2) {
			continue
		}
		groups[t.District] = append(groups[t.District], t)
	}

	var out []DistrictSummary
	for district, rows := range groups {
		if len(rows) < minGroupSize {
			continue
		}
		prices := pricesOf(rows)
		s := DistrictSummary{
			District:     district,
			PriceMean:    round2(stats.Mean(prices)),
			PriceMedian:  round2(stats.Median(prices)),
			PriceMin:     round2(stats.Min(prices)),
			PriceMax:     round2(stats.Max(prices)),
			PriceStd:     round2(stats.Std(prices)),
			Transactions: len(rows),
			SurfaceMean:  round2(meanField(rows, func(t Transaction) float64 { return t.CompositeArea })),
			ValueMean:    round2(meanField(rows, func(t Transaction) float64 { return t.Value })),
		}
		if c, ok := districtCentroids[district]; ok {
			s.Latitude, s.Longitude = c[0], c[1]
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	return out
}

// AggregateByYearDistrict groups cleaned rows by (year, arrondissement).
func AggregateByYearDistrict(txs []Transaction) []YearDistrictSummary {
	type key struct{ year, district int }
	groups := make(map[key][]Transaction)
	for _, t := range txs {
		if t.Year == 0 || t.District == 0 || Missing(t.PricePerM2) {
			continue
		}
		k := key{t.Year, t.District}
		groups[k] = append(groups[k], t)
	}

	var out []YearDistrictSummary
	for k, rows := range groups {
		if len(rows) < minGroupSize {
			continue
		}
		prices := pricesOf(rows)
		out = append(out, YearDistrictSummary{
			Year:         k.year,
			District:     k.district,
			PriceMean:    round2(stats.Mean(prices)),
			PriceMedian:  round2(stats.Median(prices)),
			PriceMin:     round2(stats.Min(prices)),
			PriceMax:     round2(stats.Max(prices)),
			PriceStd:     round2(stats.Std(prices)),
			Transactions: len(rows),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].District < out[j].District
	})
	return out
}

// AggregateByTypeDistrict groups cleaned rows by (property type, arrondissement).
func AggregateByTypeDistrict(txs []Transaction) []TypeDistrictSummary {
	type key struct {
		propertyType string
		district     int
	}
	groups := make(map[key][]Transaction)
	for _, t := range txs {
		if t.PropertyType == "" || t.District == 0 || Missing(t.PricePerM2) {
			continue
		}
		k := key{t.PropertyType, t.District}
		groups[k] = append(groups[k], t)
	}

	var out []TypeDistrictSummary
	for k, rows := range groups {
		if len(rows) < minGroupSize {
			continue
		}
		prices := pricesOf(rows)
		out = append(out, TypeDistrictSummary{
			PropertyType: k.propertyType,
			District:     k.district,
			PriceMean:    round2(stats.Mean(prices)),
			PriceMedian:  round2(stats.Median(prices)),
			PriceMin:     round2(stats.Min(prices)),
			PriceMax:     round2(stats.Max(prices)),
			PriceStd:     round2(stats.Std(prices)),
			Transactions: len(rows),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PropertyType != out[j].PropertyType {
			return out[i].PropertyType < out[j].PropertyType
		}
		return out[i].District < out[j].District
	})
	return out
}

// WriteReport marshals summary rows to a semicolon CSV at path.
func WriteReport[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	enc := csvutil.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "report: encode row for %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "report: write %s", path)
}

func pricesOf(rows []Transaction) []float64 {
	prices := make([]float64, 0, len(rows))
	for _, t := range rows {
		prices = append(prices, t.PricePerM2)
	}
	return prices
}

func meanField(rows []Transaction, f func(Transaction) float64) float64 {
	var vals []float64
	for _, t := range rows {
		if v := f(t); !Missing(v) {
			vals = append(vals, v)
		}
	}
	return stats.Mean(vals)
}
