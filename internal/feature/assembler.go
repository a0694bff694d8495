package feature

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/dvf"
	"github.com/quartier-analytics/immo-cli/internal/stats"
)

// City-center reference point (Notre-Dame) for the distance feature.
const (
	centerLat = 48.853
	centerLon = 2.3499
)

const earthRadiusKm = 6371.0

// yearReference anchors the normalized year feature: (year-2020)/5.
const yearReference = 2020

// ErrEmptyResult reports that filtering left no usable rows.
var ErrEmptyResult = eris.New("feature: no usable rows after filtering")

// Options configures the assembler. The zero value keeps every type and
// every surface; callers normally restrict to apartments in 9-300 m².
type Options struct {
	PropertyType string  // restrict to one type_local; empty keeps all types
	MinSurface   float64 // inclusive lower bound on composite surface
	MaxSurface   float64 // inclusive upper bound; 0 means unbounded
}

// Dataset is a design matrix with its target vector. Row i of X matches
// element i of Y; Names holds the column names of X in order.
type Dataset struct {
	Names []string
	X     [][]float64
	Y     []float64
}

// Assemble filters cleaned transactions and builds the numeric features:
// log1p of the composite surface, median-filled room count, haversine
// distance to the city center, normalized year, sin/cos month, and the
// one-hot arrondissement (plus type and nature one-hots when no type
// restriction applies). Rows missing any feature or the target after the
// median fill are dropped. Returns ErrEmptyResult when nothing survives.
func Assemble(txs []dvf.Transaction, opts Options) (*Dataset, error) {
	var kept []dvf.Transaction
	for _, t := range txs {
		if opts.PropertyType != "" && t.PropertyType != opts.PropertyType {
			continue
		}
		if dvf.Missing(t.CompositeArea) || t.CompositeArea < opts.MinSurface {
			continue
		}
		if opts.MaxSurface > 0 && t.CompositeArea > opts.MaxSurface {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyResult
	}

	roomsMedian := medianRooms(kept)

	withTypes := opts.PropertyType == ""
	names := columnNames(withTypes)

	ds := &Dataset{Names: names}
	for _, t := range kept {
		row, ok := featureRow(t, roomsMedian, names)
		if !ok {
			continue
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, t.PricePerM2)
	}
	if len(ds.X) == 0 {
		return nil, ErrEmptyResult
	}

	zap.L().Info("feature: dataset assembled",
		zap.Int("input_rows", len(txs)),
		zap.Int("rows", len(ds.X)),
		zap.Int("columns", len(names)),
	)
	return ds, nil
}

// featureRow builds one row; ok is false when a feature or the target is
// missing after the room-count fill.
func featureRow(t dvf.Transaction, roomsMedian float64, names []string) ([]float64, bool) {
	if dvf.Missing(t.PricePerM2) {
		return nil, false
	}
	if dvf.Missing(t.Latitude) || dvf.Missing(t.Longitude) {
		return nil, false
	}
	if t.Year == 0 || t.Month == 0 {
		return nil, false
	}
	rooms := t.Rooms
	if dvf.Missing(rooms) {
		rooms = roomsMedian
	}
	if dvf.Missing(rooms) {
		return nil, false
	}

	in := Input{
		Surface:   t.CompositeArea,
		Rooms:     rooms,
		Year:      t.Year,
		Month:     t.Month,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		District:  t.District,
		Type:      t.PropertyType,
		Nature:    t.NatureMutation,
	}
	return Vector(in, names), true
}

func columnNames(withTypes bool) []string {
	names := []string{
		"log_surface", "pieces", "distance_centre_km",
		"annee_norm", "mois_sin", "mois_cos",
	}
	names = append(names, districtColumnNames()...)
	if withTypes {
		names = append(names, categoryColumnNames("type", typeCategories)...)
		names = append(names, categoryColumnNames("nature", natureCategories)...)
	}
	return names
}

func medianRooms(txs []dvf.Transaction) float64 {
	var rooms []float64
	for _, t := range txs {
		if !dvf.Missing(t.Rooms) {
			rooms = append(rooms, t.Rooms)
		}
	}
	return stats.Median(rooms)
}

// haversineKm is the great-circle distance between two points in kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
