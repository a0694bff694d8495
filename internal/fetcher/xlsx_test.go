package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Feuille1")
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{
		{"titre"},
		{"entete1", "entete2"},
		{"75101", "PARIS 1ER"},
		{"75102", "PARIS 2E"},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"75101", "PARIS 1ER"},
		{"75102", "PARIS 2E"},
	}, rows)
}

func TestReadXLSX_SheetByName(t *testing.T) {
	path := writeTestWorkbook(t, [][]string{{"x"}})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Feuille1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "absente"})
	assert.Error(t, err)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
