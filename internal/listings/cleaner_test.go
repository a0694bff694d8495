package listings

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scrapedHeader = "type,prix,prix_m2,surface,nb_pieces,localisation,details\n"

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClean_FullPipeline(t *testing.T) {
	dir := t.TempDir()
	orpi := writeSourceFile(t, dir, "annonces_orpi_paris.csv", scrapedHeader+
		`Appartement,509 000 €,,71 m²,3 pièces,75011 Paris,Bel appartement`+"\n"+
		`Appartement,300 000 €,soit 10 000 €/m²,30 m²,1,4ème,Studio refait`+"\n"+
		// no surface: dropped
		`Appartement,250 000 €,,Surface non disponible,2,75012,Sans surface`+"\n"+
		// excluded type: dropped
		`Péniche,900 000 €,,120 m²,4,75016,Sur la Seine`+"\n")
	laforet := writeSourceFile(t, dir, "annonces_laforet_paris.csv", scrapedHeader+
		// duplicate of the first orpi row on (type, price, surface, location)
		`Appartement,509 000 €,,71 m²,3,75011,Le même bien`+"\n"+
		// no usable location: dropped at the Paris filter
		`Maison,800 000 €,,150 m²,6,Montreuil,Hors Paris`+"\n")

	out := filepath.Join(dir, "annonces_paris_final.csv")
	res, err := Clean(context.Background(), []string{orpi, laforet}, out)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Merged)
	assert.Equal(t, 4, res.Cleaned, "no-surface and excluded-type rows dropped")
	assert.Equal(t, 3, res.Located)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 2, res.Final)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, outputColumns, records[0])

	// First kept row: orpi listing with the computed price/m².
	assert.Equal(t, "orpi", records[1][0])
	assert.Equal(t, "509000", records[1][2])
	assert.Equal(t, "7169.01", records[1][4], "missing prix_m2 computed from price/surface")
	assert.Equal(t, "75011", records[1][6])

	// Second kept row: explicit prix_m2 wins over recomputation.
	assert.Equal(t, "10000", records[2][4])
	assert.Equal(t, "75004", records[2][6])
}

func TestClean_SkipsUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	good := writeSourceFile(t, dir, "annonces_orpi_paris.csv", scrapedHeader+
		`Appartement,500 000 €,,50 m²,2,75005,OK`+"\n")
	missing := filepath.Join(dir, "annonces_laforet_paris.csv")

	res, err := Clean(context.Background(), []string{good, missing}, filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Final)
}

func TestClean_NoReadableSourceIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Clean(context.Background(), []string{filepath.Join(dir, "absent.csv")}, filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}

func TestCountByDistrict(t *testing.T) {
	rows := []Listing{
		{Location: "75011"}, {Location: "75004"}, {Location: "75011"},
	}
	out := CountByDistrict(rows)
	require.Len(t, out, 2)
	assert.Equal(t, [2]string{"75004", "1"}, out[0])
	assert.Equal(t, [2]string{"75011", "2"}, out[1])
}
