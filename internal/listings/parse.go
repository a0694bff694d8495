// Package listings cleans the scraped sale announcements: per-agency CSV
// exports with free-form price, surface, and location text are merged,
// parsed into numeric columns, deduplicated, and exported as one CSV.
package listings

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	postalCodeRe = regexp.MustCompile(`\b75\d{3}\b`)
	ordinalRe    = regexp.MustCompile(`^\s*(\d{1,2})(er|ème|eme|e)?\b`)
	digitsRe     = regexp.MustCompile(`\d+`)
)

// parsePrice reads a scraped price cell: "509 000 €" → 509000.
func parsePrice(s string) float64 {
	s = normalize(s)
	if s == "" {
		return math.NaN()
	}
	if i := strings.IndexRune(s, '€'); i >= 0 {
		s = s[:i]
	}
	return digitsToFloat(s)
}

// parseSurface reads a scraped surface cell: "71 m²" → 71.
func parseSurface(s string) float64 {
	s = normalize(s)
	if s == "" {
		return math.NaN()
	}
	for _, token := range []string{"m²", "m2", " m", "m"} {
		s = strings.ReplaceAll(s, token, "")
	}
	return digitsToFloat(s)
}

// parsePricePerM2 reads an explicit price-per-m² cell: "soit 7 200 €/m²".
func parsePricePerM2(s string) float64 {
	s = normalize(s)
	if s == "" {
		return math.NaN()
	}
	for _, token := range []string{"soit", "/m2", "/m²", "/ m2", "/ m²"} {
		s = strings.ReplaceAll(s, token, "")
	}
	if i := strings.IndexRune(s, '€'); i >= 0 {
		s = s[:i]
	}
	return digitsToFloat(s)
}

// droppedTypes are property kinds excluded from the cleaned output.
var droppedTypes = []string{"peniche", "péniche", "viager", "hotel", "hôtel", "immeuble", "propriet", "propriét"}

// parseType normalizes the property type, falling back to the details text
// when the type cell is blank or a bare "à vendre" headline. An empty
// result means the row is dropped.
func parseType(typeCell, detailsCell string) string {
	t := normalize(typeCell)
	d := normalize(detailsCell)

	if t == "" || strings.Contains(t, "à vendre") || strings.Contains(t, "a vendre") {
		if strings.Contains(d, "appart") {
			return "Appartement"
		}
		return ""
	}

	switch {
	case strings.Contains(t, "appart"), strings.Contains(t, "duplex"), strings.Contains(t, "loft"):
		return "Appartement"
	case strings.Contains(t, "maison"):
		return "Maison"
	case strings.Contains(t, "locaux"), strings.Contains(t, "commercial"), strings.Contains(t, "bureau"):
		return "Locaux"
	case strings.Contains(t, "garage"), strings.Contains(t, "parking"):
		return "Garage"
	}

	for _, bad := range droppedTypes {
		if strings.Contains(t, bad) {
			return ""
		}
	}

	if i := strings.Index(t, " à "); i >= 0 {
		t = strings.TrimSpace(t[:i])
	} else if i := strings.Index(t, " a "); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + t[1:]
}

// parseRooms extracts the first integer of a room-count cell; 0 is missing.
func parseRooms(s string) int {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// parseLocation extracts a 75XXX postal code, accepting either the code
// itself or an ordinal arrondissement ("3ème", "1er"). Empty means the row
// has no usable Paris location.
func parseLocation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if m := postalCodeRe.FindString(s); m != "" {
		return m
	}
	if m := ordinalRe.FindStringSubmatch(s); m != nil {
		arr, err := strconv.Atoi(m[1])
		if err == nil && arr >= 1 && arr <= 20 {
			return "75" + pad3(arr)
		}
	}
	return ""
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// normalize lowercases, trims, folds non-breaking spaces, and maps the
// scraper's "not available" markers to empty.
func normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(s, "non disponible") || strings.Contains(s, "aucun") {
		return ""
	}
	return s
}

// digitsToFloat keeps digits and decimal separators from an already
// normalized string.
func digitsToFloat(s string) float64 {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
