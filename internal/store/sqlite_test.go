package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleLog(addr string) *EstimationLog {
	return &EstimationLog{
		ClientIP:   "192.0.2.1",
		Surface:    55,
		Rooms:      2,
		Year:       2023,
		Address:    addr,
		PricePerM2: 10450.5,
		TotalPrice: 574777.5,
		Class:      "cher",
		Response:   `{"prix_m2":10450.5}`,
	}
}

func TestSQLite_LogAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	log := sampleLog("10 rue de Rivoli")
	require.NoError(t, st.LogEstimation(ctx, log))
	assert.NotEmpty(t, log.ID, "an id is assigned on insert")
	assert.False(t, log.CreatedAt.IsZero())

	out, err := st.ListEstimations(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, log.ID, out[0].ID)
	assert.Equal(t, "10 rue de Rivoli", out[0].Address)
	assert.Equal(t, 10450.5, out[0].PricePerM2)
	assert.Equal(t, "cher", out[0].Class)
}

func TestSQLite_ListOrderAndLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, addr := range []string{"rue A", "rue B", "rue C"} {
		log := sampleLog(addr)
		log.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, st.LogEstimation(ctx, log))
	}

	out, err := st.ListEstimations(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "rue C", out[0].Address, "newest first")
	assert.Equal(t, "rue B", out[1].Address)
}

func TestSQLite_WALMode(t *testing.T) {
	st := newTestSQLiteStore(t)
	var mode string
	require.NoError(t, st.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
