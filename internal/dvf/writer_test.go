package dvf

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTransactions_FullyQuotedSemicolon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned", "transactions.csv")
	txs := []Transaction{
		{
			MutationID:    "2023-1",
			MutationDate:  "2023-07-12",
			Value:         1_000_000,
			AddressStreet: `rue de la "Paix"`,
			CommuneCode:   "75101",
			CommuneName:   "Paris 1er Arrondissement",
			PropertyType:  "Appartement",
			BuildingArea:  50,
			Rooms:         3,
			LandArea:      math.NaN(),
			Longitude:     2.34,
			Latitude:      48.86,
		},
	}
	Derive(txs)
	require.NoError(t, WriteTransactions(path, txs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	// Every field is quoted, including empty ones.
	assert.True(t, strings.HasPrefix(lines[0], `"id_mutation";"date_mutation"`))
	assert.Contains(t, lines[1], `"rue de la ""Paix"""`)
	assert.Contains(t, lines[1], `"20000.00"`)
	assert.Contains(t, lines[1], `""`) // missing land area renders empty

	// encoding/csv reads the output back losslessly.
	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[0], len(transactionColumns)+len(derivedColumns))
	assert.Equal(t, `rue de la "Paix"`, records[1][5])
}

func TestWriteLowOutliers_AppendsReason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "low.csv")
	rows := []LowOutlier{
		{Transaction: Transaction{MutationID: "2023-2", Value: 5000}, Reason: LowReasonValueFloor},
	}
	require.NoError(t, WriteLowOutliers(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], `"motif"`))
	assert.True(t, strings.HasSuffix(lines[1], `"value_floor"`))
}
