// Package dvf implements the DVF transaction pipeline: ingestion of the
// geocoded yearly exports, derived-field computation, outlier filtering,
// and the aggregation reports.
package dvf

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Transaction is one observed property sale from the geocoded DVF export.
// Missing numeric values are represented as NaN; missing integer fields as
// the zero value noted on each field.
type Transaction struct {
	MutationID     string
	MutationDate   string // raw "YYYY-MM-DD" as exported
	NatureMutation string
	Value          float64 // valeur_fonciere, NaN if missing
	AddressNumber  string
	AddressStreet  string
	PostalCode     string
	CommuneCode    string
	CommuneName    string
	PropertyType   string  // type_local
	BuildingArea   float64 // surface_reelle_bati, NaN if missing
	Rooms          float64 // nombre_pieces_principales, NaN if missing
	LandArea       float64 // surface_terrain, NaN if missing
	Longitude      float64 // NaN if missing
	Latitude       float64 // NaN if missing

	// Derived fields, populated by Derive.
	CompositeArea float64 // building area, else land area, else NaN
	PricePerM2    float64 // value / composite area, NaN when undefined
	District      int     // last two digits of commune code, 0 if unparsable
	Year          int     // 0 if mutation date unparsable
	Month         int     // 0 if mutation date unparsable
}

// Missing reports whether a numeric cell is absent.
func Missing(v float64) bool { return math.IsNaN(v) }

// columns of the aggregated exploitable CSV, in output order.
var transactionColumns = []string{
	"id_mutation", "date_mutation", "nature_mutation", "valeur_fonciere",
	"adresse_numero", "adresse_nom_voie", "code_postal", "code_commune",
	"nom_commune", "type_local", "surface_reelle_bati",
	"nombre_pieces_principales", "surface_terrain", "longitude", "latitude",
}

// derivedColumns are appended by Derive on export.
var derivedColumns = []string{
	"surface_m2_retenue", "prix_m2", "code_arrondissement", "annee", "mois",
}

// parseFloatOrNaN coerces a raw cell to float64, accepting French decimal
// commas. Unparsable or empty cells become NaN, never an error.
func parseFloatOrNaN(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// formatFloat renders a numeric cell for CSV output; NaN renders empty.
func formatFloat(v float64) string {
	if Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFloat2 renders with exactly two decimals; NaN renders empty.
func formatFloat2(v float64) string {
	if Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatInt renders a derived integer cell; 0 means missing and renders empty.
func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// parseMutationDate parses the DVF "YYYY-MM-DD" date format.
func parseMutationDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name from a CSV record, returning empty string if not found.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[strings.ToLower(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// IsParis reports whether a record belongs to the target city: commune code
// prefix 75 and a commune name containing "paris".
func IsParis(communeCode, communeName string) bool {
	return strings.HasPrefix(strings.TrimSpace(communeCode), "75") &&
		strings.Contains(strings.ToLower(communeName), "paris")
}

// transactionFromRecord builds a Transaction from a CSV record, coercing the
// declared numeric columns. A malformed cell degrades to missing.
func transactionFromRecord(record []string, colIdx map[string]int) Transaction {
	return Transaction{
		MutationID:     getCol(record, colIdx, "id_mutation"),
		MutationDate:   getCol(record, colIdx, "date_mutation"),
		NatureMutation: getCol(record, colIdx, "nature_mutation"),
		Value:          parseFloatOrNaN(getCol(record, colIdx, "valeur_fonciere")),
		AddressNumber:  getCol(record, colIdx, "adresse_numero"),
		AddressStreet:  getCol(record, colIdx, "adresse_nom_voie"),
		PostalCode:     getCol(record, colIdx, "code_postal"),
		CommuneCode:    getCol(record, colIdx, "code_commune"),
		CommuneName:    getCol(record, colIdx, "nom_commune"),
		PropertyType:   getCol(record, colIdx, "type_local"),
		BuildingArea:   parseFloatOrNaN(getCol(record, colIdx, "surface_reelle_bati")),
		Rooms:          parseFloatOrNaN(getCol(record, colIdx, "nombre_pieces_principales")),
		LandArea:       parseFloatOrNaN(getCol(record, colIdx, "surface_terrain")),
		Longitude:      parseFloatOrNaN(getCol(record, colIdx, "longitude")),
		Latitude:       parseFloatOrNaN(getCol(record, colIdx, "latitude")),
	}
}

// record renders a Transaction back to CSV fields, raw columns first, then
// the derived columns.
func (t Transaction) record() []string {
	return []string{
		t.MutationID, t.MutationDate, t.NatureMutation, formatFloat(t.Value),
		t.AddressNumber, t.AddressStreet, t.PostalCode, t.CommuneCode,
		t.CommuneName, t.PropertyType, formatFloat(t.BuildingArea),
		formatFloat(t.Rooms), formatFloat(t.LandArea),
		formatFloat(t.Longitude), formatFloat(t.Latitude),
		formatFloat(t.CompositeArea), formatFloat2(t.PricePerM2),
		formatInt(t.District), formatInt(t.Year), formatInt(t.Month),
	}
}
