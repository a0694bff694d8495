package main

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

func TestDownloadGzipped(t *testing.T) {
	const payload = "id_mutation,valeur_fonciere\n2024-1,500000\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		gz := gzip.NewWriter(w)
		_, err := gz.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw", "2024.csv")
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RPS: 100})

	n, err := downloadGzipped(context.Background(), f, srv.URL, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, string(content))
}

func TestDownloadGzipped_NotGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("plain text")) //nolint:errcheck
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RPS: 100})
	_, err := downloadGzipped(context.Background(), f, srv.URL, filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}
