package listings

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/csvx"
	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

// Listing is one cleaned announcement.
type Listing struct {
	Source     string
	Type       string
	Price      float64 // NaN if missing
	Surface    float64
	PricePerM2 float64
	Rooms      int // 0 if missing
	Location   string
	Details    string
}

var outputColumns = []string{
	"source", "type", "prix", "surface", "prix_m2", "nb_pieces", "localisation", "details",
}

// sourceNames maps a filename fragment to the canonical source label.
var sourceNames = []struct{ fragment, source string }{
	{"orpi", "orpi"},
	{"laforet", "laforet"},
	{"century21", "century21"},
	{"plaza", "stephane_plaza"},
	{"lefigaro", "lefigaro"},
}

// DetectSource names the scraper a file came from, "autre" when unknown.
func DetectSource(filename string) string {
	lower := strings.ToLower(filename)
	for _, s := range sourceNames {
		if strings.Contains(lower, s.fragment) {
			return s.source
		}
	}
	return "autre"
}

// Result counts the rows at each stage of one Clean run.
type Result struct {
	Merged     int
	Cleaned    int
	Located    int
	Duplicates int
	Final      int
}

// Clean merges the scraped per-source files, parses the free-form cells,
// computes missing price/m², keeps located Paris rows, deduplicates, and
// writes the final CSV. An unreadable source file is skipped with a
// warning; no readable source at all is fatal.
func Clean(ctx context.Context, inputs []string, outPath string) (*Result, error) {
	var rows []Listing
	var readable int
	for _, path := range inputs {
		parsed, err := readSource(ctx, path)
		if err != nil {
			zap.L().Warn("listings: source skipped",
				zap.String("path", path), zap.Error(err))
			continue
		}
		readable++
		rows = append(rows, parsed...)
	}
	if readable == 0 {
		return nil, eris.New("listings: no readable source file")
	}
	res := &Result{Merged: len(rows)}

	// Drop rows without a recognized type or any surface, then fill the
	// missing price/m² where price and surface allow.
	var cleaned []Listing
	for _, l := range rows {
		if l.Type == "" || math.IsNaN(l.Surface) {
			continue
		}
		if math.IsNaN(l.PricePerM2) && !math.IsNaN(l.Price) && l.Surface > 0 {
			l.PricePerM2 = l.Price / l.Surface
		}
		if !math.IsNaN(l.PricePerM2) {
			l.PricePerM2 = math.Round(l.PricePerM2*100) / 100
		}
		cleaned = append(cleaned, l)
	}
	res.Cleaned = len(cleaned)

	var located []Listing
	for _, l := range cleaned {
		if l.Location != "" {
			located = append(located, l)
		}
	}
	res.Located = len(located)

	final := dedupe(located)
	res.Duplicates = len(located) - len(final)
	res.Final = len(final)

	if err := write(outPath, final); err != nil {
		return nil, err
	}
	zap.L().Info("listings: export complete",
		zap.Int("merged", res.Merged),
		zap.Int("final", res.Final),
		zap.Int("duplicates", res.Duplicates),
		zap.String("path", outPath),
	)
	return res, nil
}

// readSource parses one scraped file (comma-separated, with header).
func readSource(ctx context.Context, path string) ([]Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "listings: open %s", path)
	}
	defer f.Close()

	source := DetectSource(filepath.Base(path))

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		Delimiter:  ',',
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var colIdx map[string]int
	var out []Listing
	for row := range rowCh {
		if colIdx == nil {
			select {
			case header := <-headerCh:
				colIdx = indexColumns(header)
			default:
				return nil, eris.Errorf("listings: %s has no header row", path)
			}
		}
		cell := func(name string) string {
			i, ok := colIdx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		out = append(out, Listing{
			Source:     source,
			Type:       parseType(cell("type"), cell("details")),
			Price:      parsePrice(cell("prix")),
			Surface:    parseSurface(cell("surface")),
			PricePerM2: parsePricePerM2(cell("prix_m2")),
			Rooms:      parseRooms(cell("nb_pieces")),
			Location:   parseLocation(cell("localisation")),
			Details:    strings.TrimSpace(cell("details")),
		})
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "listings: read %s", path)
	}
	zap.L().Info("listings: source merged",
		zap.String("source", source), zap.Int("rows", len(out)))
	return out, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// dedupe keeps the first occurrence of each (type, price, surface,
// location) tuple, preserving input order.
func dedupe(rows []Listing) []Listing {
	type key struct {
		typ      string
		price    string
		surface  string
		location string
	}
	seen := make(map[key]bool, len(rows))
	var out []Listing
	for _, l := range rows {
		k := key{l.Type, numCell(l.Price), numCell(l.Surface), l.Location}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

// CountByDistrict tallies final rows per postal code, sorted by code.
func CountByDistrict(rows []Listing) [][2]string {
	counts := make(map[string]int)
	for _, l := range rows {
		counts[l.Location]++
	}
	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	out := make([][2]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, [2]string{c, strconv.Itoa(counts[c])})
	}
	return out
}

func write(path string, rows []Listing) error {
	w, err := csvx.NewQuotedWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Write(outputColumns); err != nil {
		return err
	}
	for _, l := range rows {
		row := []string{
			l.Source, l.Type, numCell(l.Price), numCell(l.Surface),
			numCell(l.PricePerM2), roomsCell(l.Rooms), l.Location, l.Details,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

func numCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roomsCell(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
