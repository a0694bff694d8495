package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, 2000.0, cfg.Clean.MinPricePerM2)
	assert.Equal(t, 10000.0, cfg.Clean.MinValue)
	assert.Equal(t, "Appartement", cfg.Features.PropertyType)
	assert.Equal(t, 0.3, cfg.Features.TestRatio)
	assert.Equal(t, int64(42), cfg.Features.Seed)
	assert.Equal(t, 200, cfg.Train.Trees)
	assert.Equal(t, "75056", cfg.Geocode.CityCode)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Fiscal.HeaderRows)
	assert.Contains(t, cfg.Listings.Sources, "orpi")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("IMMO_SERVER_PORT", "9000")
	t.Setenv("IMMO_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestPaths(t *testing.T) {
	p := PathsConfig{DataDir: "d", ModelsDir: "m"}

	assert.Equal(t, filepath.Join("d", "dvf", "raw"), p.RawDVFDir())
	assert.Equal(t, filepath.Join("d", "dvf", "cleaned", "dvf_paris_clean.csv"), p.CleanTransactions())
	assert.Equal(t, filepath.Join("d", "fiscal", "ircom_paris_clean.csv"), p.FiscalClean())
	assert.Equal(t, filepath.Join("m", "scaler.json"), p.Scaler())
	assert.Equal(t, filepath.Join("m", "manifest.yaml"), p.Manifest())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope"}))
}
