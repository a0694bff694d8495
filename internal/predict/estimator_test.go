package predict

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartier-analytics/immo-cli/internal/feature"
	"github.com/quartier-analytics/immo-cli/internal/ml"
	"github.com/quartier-analytics/immo-cli/pkg/geocode"
)

type stubGeocoder struct {
	res geocode.Result
	err error
}

func (s stubGeocoder) Search(_ context.Context, _ string) (geocode.Result, error) {
	return s.res, s.err
}

// trainArtifacts fits tiny models on synthetic rows and saves every
// artifact the estimator expects.
func trainArtifacts(t *testing.T) Artifacts {
	t.Helper()
	dir := t.TempDir()

	names := []string{"log_surface", "pieces", "distance_centre_km", "annee_norm"}
	var x [][]float64
	var y []float64
	for i := 0; i < 60; i++ {
		in := feature.Input{
			Surface:   30 + float64(i),
			Rooms:     float64(1 + i%4),
			Year:      2021 + i%3,
			Latitude:  48.85 + float64(i%10)*0.002,
			Longitude: 2.33 + float64(i%10)*0.002,
		}
		x = append(x, feature.Vector(in, names))
		y = append(y, 8000+float64(i)*50)
	}

	scaler := feature.FitScaler(x)
	scaled := scaler.Transform(x)

	price := ml.NewGradientBoosting(20, 0.1, 3, 5)
	require.NoError(t, price.Fit(scaled, y))

	labels, cut := ml.LabelsAtMedian(y)
	class := ml.NewLogisticRegression(0.5, 200)
	require.NoError(t, class.Fit(scaled, labels))
	class.PriceThreshold = cut

	a := Artifacts{
		Scaler:     filepath.Join(dir, "scaler.json"),
		Manifest:   filepath.Join(dir, "manifest.yaml"),
		PriceModel: filepath.Join(dir, "model_price.json"),
		ClassModel: filepath.Join(dir, "model_class.json"),
	}
	m := &feature.Manifest{Features: names, Target: "prix_m2", Seed: 42, TestRatio: 0.3}
	require.NoError(t, scaler.Save(a.Scaler))
	require.NoError(t, m.Save(a.Manifest))
	require.NoError(t, ml.SaveModel(a.PriceModel, price))
	require.NoError(t, ml.SaveModel(a.ClassModel, class))
	return a
}

func parisMatch() geocode.Result {
	return geocode.Result{
		Matched:   true,
		Label:     "10 Rue de Rivoli 75004 Paris",
		Latitude:  48.8558,
		Longitude: 2.3559,
		District:  4,
	}
}

func TestEstimate(t *testing.T) {
	a := trainArtifacts(t)
	e, err := NewEstimator(a, stubGeocoder{res: parisMatch()})
	require.NoError(t, err)

	est, err := e.Estimate(context.Background(), Request{
		Surface: 55, Rooms: 2, Year: 2022, Address: "10 rue de Rivoli",
	})
	require.NoError(t, err)

	assert.Greater(t, est.PricePerM2, 0.0)
	assert.InDelta(t, est.PricePerM2*55, est.TotalPrice, 1e-9)
	assert.InDelta(t, est.PricePerM2*0.8, est.PricePerM2Min, 1e-9)
	assert.InDelta(t, est.PricePerM2*1.2, est.PricePerM2Max, 1e-9)
	assert.InDelta(t, est.TotalPrice*0.8, est.TotalPriceMin, 1e-9)
	assert.InDelta(t, est.TotalPrice*1.2, est.TotalPriceMax, 1e-9)
	assert.InDelta(t, 1.0, est.ProbExpensive+est.ProbCheap, 1e-9)
	assert.Contains(t, []string{"cher", "bon_marche"}, est.Class)
	assert.Equal(t, 4, est.District)
	assert.Equal(t, "10 Rue de Rivoli 75004 Paris", est.AddressLabel)
}

func TestEstimate_Deterministic(t *testing.T) {
	a := trainArtifacts(t)
	e, err := NewEstimator(a, stubGeocoder{res: parisMatch()})
	require.NoError(t, err)

	req := Request{Surface: 40, Rooms: 1, Year: 2023, Address: "rue X"}
	e1, err := e.Estimate(context.Background(), req)
	require.NoError(t, err)
	e2, err := e.Estimate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

func TestEstimate_AddressNotFound(t *testing.T) {
	a := trainArtifacts(t)
	e, err := NewEstimator(a, stubGeocoder{res: geocode.Result{Matched: false}})
	require.NoError(t, err)

	_, err = e.Estimate(context.Background(), Request{Surface: 50, Address: "nulle part"})
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestEstimate_ServiceFailureSurfaces(t *testing.T) {
	a := trainArtifacts(t)
	boom := eris.New("service unavailable")
	e, err := NewEstimator(a, stubGeocoder{err: boom})
	require.NoError(t, err)

	_, err = e.Estimate(context.Background(), Request{Surface: 50, Address: "rue X"})
	assert.ErrorIs(t, err, boom)
}

func TestNewEstimator_MissingArtifactIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := NewEstimator(Artifacts{
		Scaler:     filepath.Join(dir, "absent.json"),
		Manifest:   filepath.Join(dir, "absent.yaml"),
		PriceModel: filepath.Join(dir, "absent.json"),
		ClassModel: filepath.Join(dir, "absent.json"),
	}, stubGeocoder{})
	assert.Error(t, err)
}
