// Package fiscal cleans the DGFiP IRCOM income workbooks: one xlsx per
// year, a fixed header block, then one row per (arrondissement, income
// bracket). Sum rows, footnote rows, and department aggregates are dropped
// and the surviving years concatenate into a single CSV.
package fiscal

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/csvx"
	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

// rawColumns is the layout of the IRCOM sheet after the header block: a
// blank leading column, then the thirteen data columns.
const rawColumns = 14

// Record is one cleaned IRCOM row. Numeric cells are NaN when the workbook
// leaves them blank or non-numeric.
type Record struct {
	Year          int
	Department    string
	CommuneCode   string
	CommuneName   string
	IncomeBracket string

	Households          float64
	TotalIncome         float64
	NetTax              float64
	TaxedHouseholds     float64
	TaxedIncome         float64
	SalaryHouseholds    float64
	SalaryAmount        float64
	PensionHouseholds   float64
	PensionAmount       float64
}

var outputColumns = []string{
	"annee", "dep", "code_commune", "libelle_commune", "tranche_rfr",
	"nb_foyers_fiscaux", "rfr_foyers_fiscaux", "impot_net_total",
	"nb_foyers_imposes", "rfr_foyers_imposes",
	"traitements_salaires_nb_foyers", "traitements_salaires_montant",
	"retraites_pensions_nb_foyers", "retraites_pensions_montant",
}

// Options configures the fiscal cleaner.
type Options struct {
	InputDir   string // directory holding <year>.xlsx files
	Years      []int
	HeaderRows int // rows to skip before the data block
}

// Clean reads each year's workbook, filters and coerces the rows, and
// writes the concatenated result to outPath. A missing year file is skipped
// with a warning; the run fails only when no year could be read.
func Clean(opts Options, outPath string) (int, error) {
	var all []Record
	var loaded int
	for _, year := range opts.Years {
		path := filepath.Join(opts.InputDir, fmt.Sprintf("%d.xlsx", year))
		if _, err := os.Stat(path); err != nil {
			zap.L().Warn("fiscal: year file missing, skipped",
				zap.Int("year", year), zap.String("path", path))
			continue
		}
		records, err := cleanYear(path, year, opts.HeaderRows)
		if err != nil {
			return 0, err
		}
		zap.L().Info("fiscal: year cleaned",
			zap.Int("year", year), zap.Int("rows", len(records)))
		all = append(all, records...)
		loaded++
	}
	if loaded == 0 {
		return 0, eris.New("fiscal: no year file could be loaded")
	}

	if err := write(outPath, all); err != nil {
		return 0, err
	}
	zap.L().Info("fiscal: export complete",
		zap.Int("years", loaded), zap.Int("rows", len(all)), zap.String("path", outPath))
	return len(all), nil
}

func cleanYear(path string, year, headerRows int) ([]Record, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: headerRows})
	if err != nil {
		return nil, eris.Wrapf(err, "fiscal: read %s", path)
	}

	var out []Record
	for _, row := range rows {
		rec, keep := recordFromRow(row, year)
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

// recordFromRow maps one sheet row, applying the filters: blank rows, rows
// without a department, "Total" bracket rows, footnote rows (department
// contains '*'), and department aggregates (no commune code) are dropped.
func recordFromRow(row []string, year int) (Record, bool) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	blank := true
	for i := 0; i < rawColumns; i++ {
		if cell(i) != "" {
			blank = false
			break
		}
	}
	if blank {
		return Record{}, false
	}

	dep := cell(1)
	if dep == "" || strings.Contains(dep, "*") {
		return Record{}, false
	}
	bracket := cell(4)
	if strings.EqualFold(bracket, "total") {
		return Record{}, false
	}
	communeCode := cell(2)
	if communeCode == "" {
		return Record{}, false
	}

	return Record{
		Year:              year,
		Department:        dep,
		CommuneCode:       communeCode,
		CommuneName:       cell(3),
		IncomeBracket:     bracket,
		Households:        toNumber(cell(5)),
		TotalIncome:       toNumber(cell(6)),
		NetTax:            toNumber(cell(7)),
		TaxedHouseholds:   toNumber(cell(8)),
		TaxedIncome:       toNumber(cell(9)),
		SalaryHouseholds:  toNumber(cell(10)),
		SalaryAmount:      toNumber(cell(11)),
		PensionHouseholds: toNumber(cell(12)),
		PensionAmount:     toNumber(cell(13)),
	}, true
}

// toNumber coerces a sheet cell, accepting thousands spaces and French
// decimal commas. Non-numeric cells become NaN.
func toNumber(s string) float64 {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func write(path string, records []Record) error {
	w, err := csvx.NewQuotedWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Write(outputColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year), r.Department, r.CommuneCode,
			r.CommuneName, r.IncomeBracket,
			numCell(r.Households), numCell(r.TotalIncome), numCell(r.NetTax),
			numCell(r.TaxedHouseholds), numCell(r.TaxedIncome),
			numCell(r.SalaryHouseholds), numCell(r.SalaryAmount),
			numCell(r.PensionHouseholds), numCell(r.PensionAmount),
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
