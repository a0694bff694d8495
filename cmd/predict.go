package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/quartier-analytics/immo-cli/internal/predict"
	"github.com/quartier-analytics/immo-cli/pkg/geocode"
)

var (
	predictSurface float64
	predictRooms   float64
	predictYear    int
	predictAddress string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate the price of one property from the trained models",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		est, err := newEstimator()
		if err != nil {
			return err
		}

		year := predictYear
		if year == 0 {
			year = time.Now().Year()
		}

		out, err := est.Estimate(ctx, predict.Request{
			Surface: predictSurface,
			Rooms:   predictRooms,
			Year:    year,
			Address: predictAddress,
		})
		if err != nil {
			return eris.Wrap(err, "predict")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(estimationResponseFrom(out)), "predict: encode output")
	},
}

func newEstimator() (*predict.Estimator, error) {
	client := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithCityCode(cfg.Geocode.CityCode),
		geocode.WithRateLimit(cfg.Geocode.RPS),
	)
	est, err := predict.NewEstimator(predict.Artifacts{
		Scaler:     cfg.Paths.Scaler(),
		Manifest:   cfg.Paths.Manifest(),
		PriceModel: cfg.Paths.PriceModel(),
		ClassModel: cfg.Paths.ClassModel(),
	}, client)
	if err != nil {
		return nil, eris.Wrap(err, "predict: load artifacts")
	}
	return est, nil
}

func init() {
	predictCmd.Flags().Float64Var(&predictSurface, "surface", 0, "surface in m2 (required)")
	predictCmd.Flags().Float64Var(&predictRooms, "rooms", 2, "number of main rooms")
	predictCmd.Flags().IntVar(&predictYear, "year", 0, "sale year (default: current year)")
	predictCmd.Flags().StringVar(&predictAddress, "address", "", "free-text address in Paris (required)")
	_ = predictCmd.MarkFlagRequired("surface")
	_ = predictCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(predictCmd)
}
