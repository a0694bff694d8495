// Package predict serves price estimations: it reloads the training
// artifacts, geocodes the requested address, and runs both models over the
// exact feature vector the training tables were built with.
package predict

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/feature"
	"github.com/quartier-analytics/immo-cli/internal/ml"
	"github.com/quartier-analytics/immo-cli/pkg/geocode"
)

// confidenceBand is the relative width of the reported price interval.
const confidenceBand = 0.20

// ErrAddressNotFound reports that the geocoder had no candidate for the
// address inside Paris.
var ErrAddressNotFound = eris.New("predict: address not found in Paris")

// Geocoder is the subset of the geocoding client the estimator needs.
type Geocoder interface {
	Search(ctx context.Context, address string) (geocode.Result, error)
}

// Artifacts names the files a trained pipeline leaves behind.
type Artifacts struct {
	Scaler     string
	Manifest   string
	PriceModel string
	ClassModel string
}

// Request is one estimation to run.
type Request struct {
	Surface float64
	Rooms   float64
	Year    int
	Month   int // optional; 0 leaves the month encoding at zero
	Address string
}

// Estimation is the full model output for one request.
type Estimation struct {
	PricePerM2    float64
	PricePerM2Min float64
	PricePerM2Max float64
	TotalPrice    float64
	TotalPriceMin float64
	TotalPriceMax float64

	Class          string // "cher" or "bon_marche"
	ProbExpensive  float64
	ProbCheap      float64
	PriceThreshold float64

	AddressLabel string
	District     int
	Latitude     float64
	Longitude    float64
}

// Estimator holds the loaded artifacts and the geocoding client.
type Estimator struct {
	geocoder Geocoder
	scaler   *feature.StandardScaler
	manifest *feature.Manifest
	price    *ml.GradientBoosting
	class    *ml.LogisticRegression
}

// NewEstimator loads the artifacts. A missing artifact is fatal: serving
// without a trained pipeline makes no sense.
func NewEstimator(a Artifacts, g Geocoder) (*Estimator, error) {
	scaler, err := feature.LoadScaler(a.Scaler)
	if err != nil {
		return nil, err
	}
	manifest, err := feature.LoadManifest(a.Manifest)
	if err != nil {
		return nil, err
	}
	price, err := ml.LoadGradientBoosting(a.PriceModel)
	if err != nil {
		return nil, err
	}
	class, err := ml.LoadLogisticRegression(a.ClassModel)
	if err != nil {
		return nil, err
	}
	return &Estimator{
		geocoder: g,
		scaler:   scaler,
		manifest: manifest,
		price:    price,
		class:    class,
	}, nil
}

// Estimate geocodes the address and runs both models. A geocoding service
// failure is returned as-is, without retry; an unmatched address yields
// ErrAddressNotFound.
func (e *Estimator) Estimate(ctx context.Context, req Request) (*Estimation, error) {
	geo, err := e.geocoder.Search(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if !geo.Matched {
		return nil, ErrAddressNotFound
	}

	in := feature.Input{
		Surface:   req.Surface,
		Rooms:     req.Rooms,
		Year:      req.Year,
		Month:     req.Month,
		Latitude:  geo.Latitude,
		Longitude: geo.Longitude,
		District:  geo.District,
		Type:      "Appartement",
		Nature:    "Vente",
	}
	row := e.scaler.TransformRow(feature.Vector(in, e.manifest.Features))

	pricePerM2 := e.price.PredictRow(row)
	total := pricePerM2 * req.Surface
	probExpensive := e.class.PredictProba(row)

	est := &Estimation{
		PricePerM2:     pricePerM2,
		PricePerM2Min:  pricePerM2 * (1 - confidenceBand),
		PricePerM2Max:  pricePerM2 * (1 + confidenceBand),
		TotalPrice:     total,
		TotalPriceMin:  total * (1 - confidenceBand),
		TotalPriceMax:  total * (1 + confidenceBand),
		ProbExpensive:  probExpensive,
		ProbCheap:      1 - probExpensive,
		PriceThreshold: e.class.PriceThreshold,
		AddressLabel:   geo.Label,
		District:       geo.District,
		Latitude:       geo.Latitude,
		Longitude:      geo.Longitude,
	}
	if probExpensive >= 0.5 {
		est.Class = "cher"
	} else {
		est.Class = "bon_marche"
	}

	zap.L().Info("predict: estimation",
		zap.String("address", geo.Label),
		zap.Int("district", geo.District),
		zap.Float64("price_m2", pricePerM2),
	)
	return est, nil
}
