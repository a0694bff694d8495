package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Match(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		assert.Equal(t, "10 rue de Rivoli", r.URL.Query().Get("q"))
		assert.Equal(t, "75056", r.URL.Query().Get("citycode"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"features":[{
			"geometry":{"coordinates":[2.3559,48.8558]},
			"properties":{"label":"10 Rue de Rivoli 75004 Paris","postcode":"75004"}
		}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	res, err := c.Search(context.Background(), "10 rue de Rivoli")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "10 Rue de Rivoli 75004 Paris", res.Label)
	assert.InDelta(t, 48.8558, res.Latitude, 1e-9)
	assert.InDelta(t, 2.3559, res.Longitude, 1e-9)
	assert.Equal(t, 4, res.District)
}

func TestSearch_NoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	res, err := c.Search(context.Background(), "nulle part")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestSearch_ServiceErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "rue X")
	assert.Error(t, err)
}

func TestDistrictFromPostcode(t *testing.T) {
	assert.Equal(t, 16, districtFromPostcode("75116"))
	assert.Equal(t, 1, districtFromPostcode("75001"))
	assert.Equal(t, 1, districtFromPostcode("92100"), "non-Paris falls back to 1")
	assert.Equal(t, 1, districtFromPostcode(""))
}
