package csvx

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotedWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rows.csv")
	w, err := NewQuotedWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"a", "", `with "quotes"`}))
	require.NoError(t, w.Write([]string{"1;2", "plain", "été"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"a";"";"with ""quotes"""`, lines[0])
	assert.Equal(t, `"1;2";"plain";"été"`, lines[1])

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "1;2", records[1][0])
}
