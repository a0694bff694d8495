package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, r *strings.Reader, opts CSVOptions) [][]string {
	t.Helper()
	rowCh, errCh := StreamCSV(context.Background(), r, opts)
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV_Basic(t *testing.T) {
	rows := collectRows(t, strings.NewReader("a,b\n1,2\n3,4\n"), CSVOptions{})
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, rows)
}

func TestStreamCSV_HeaderAndDelimiter(t *testing.T) {
	headerCh := make(chan []string, 1)
	rows := collectRows(t, strings.NewReader("a;b\n 1 ;2\n"), CSVOptions{
		Delimiter: ';',
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})
	assert.Equal(t, []string{"a", "b"}, <-headerCh)
	assert.Equal(t, [][]string{{"1", "2"}}, rows, "header row skipped, fields trimmed")
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	rows := collectRows(t, strings.NewReader("a,b,c\n1,2\n"), CSVOptions{})
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 2)
}

func TestStreamCSV_Latin1(t *testing.T) {
	// "é" in ISO-8859-1 is the single byte 0xE9.
	rows := collectRows(t, strings.NewReader("d\xe9partement\n"), CSVOptions{Latin1: true})
	require.Len(t, rows, 1)
	assert.Equal(t, "département", rows[0][0])
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}
