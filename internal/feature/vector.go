package feature

import (
	"math"
	"strconv"
	"strings"
)

// Input is one observation to vectorize: the train path fills it from a
// transaction, the serving path from a user request plus geocoding.
type Input struct {
	Surface   float64
	Rooms     float64
	Year      int
	Month     int // 0 leaves the month encoding at zero
	Latitude  float64
	Longitude float64
	District  int
	Type      string
	Nature    string
}

// Vector builds the feature vector for the given column names, in order.
// Both the training tables and the serving path go through this function,
// so a vector is aligned with a model as long as the same names are used.
// Unknown names resolve to zero.
func Vector(in Input, names []string) []float64 {
	out := make([]float64, len(names))
	for i, name := range names {
		out[i] = featureValue(in, name)
	}
	return out
}

func featureValue(in Input, name string) float64 {
	switch name {
	case "log_surface":
		return math.Log1p(in.Surface)
	case "pieces":
		return in.Rooms
	case "distance_centre_km":
		return haversineKm(in.Latitude, in.Longitude, centerLat, centerLon)
	case "annee_norm":
		return float64(in.Year-yearReference) / 5
	case "mois_sin":
		if in.Month == 0 {
			return 0
		}
		return math.Sin(2 * math.Pi * float64(in.Month) / 12)
	case "mois_cos":
		if in.Month == 0 {
			return 0
		}
		return math.Cos(2 * math.Pi * float64(in.Month) / 12)
	case "arr_autre":
		return oneHotValue(!districtKnown(in.District))
	case "type_autre":
		return oneHotValue(indexOf(typeCategories, in.Type) < 0)
	case "nature_autre":
		return oneHotValue(indexOf(natureCategories, in.Nature) < 0)
	}

	if n, ok := suffixIndex(name, "arr_"); ok {
		return oneHotValue(in.District == n)
	}
	if n, ok := suffixIndex(name, "type_"); ok {
		return oneHotValue(indexOf(typeCategories, in.Type) == n)
	}
	if n, ok := suffixIndex(name, "nature_"); ok {
		return oneHotValue(indexOf(natureCategories, in.Nature) == n)
	}
	return 0
}

func suffixIndex(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

func districtKnown(d int) bool {
	for _, c := range districtCategories {
		if d == c {
			return true
		}
	}
	return false
}

func indexOf(list []string, v string) int {
	for i, c := range list {
		if c == v {
			return i
		}
	}
	return -1
}

func oneHotValue(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
