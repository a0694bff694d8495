package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/dvf"
	"github.com/quartier-analytics/immo-cli/internal/feature"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Build the scaled train/test feature tables from the clean transactions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		txs, err := dvf.Load(ctx, cfg.Paths.CleanTransactions(), dvf.LoadOptions{
			WithDerive: true,
		})
		if err != nil {
			return eris.Wrap(err, "preprocess: load clean")
		}

		ds, err := feature.Assemble(txs, feature.Options{
			PropertyType: cfg.Features.PropertyType,
			MinSurface:   cfg.Features.MinSurface,
			MaxSurface:   cfg.Features.MaxSurface,
		})
		if err != nil {
			return eris.Wrap(err, "preprocess: assemble features")
		}

		train, test := feature.Split(ds, cfg.Features.TestRatio, cfg.Features.Seed)

		// The scaler sees only the training rows; the test rows are
		// transformed with the training parameters.
		scaler := feature.FitScaler(train.X)
		train.X = scaler.Transform(train.X)
		test.X = scaler.Transform(test.X)

		if err := feature.WriteTable(cfg.Paths.TrainTable(), train); err != nil {
			return eris.Wrap(err, "preprocess: write train table")
		}
		if err := feature.WriteTable(cfg.Paths.TestTable(), test); err != nil {
			return eris.Wrap(err, "preprocess: write test table")
		}
		if err := scaler.Save(cfg.Paths.Scaler()); err != nil {
			return eris.Wrap(err, "preprocess: save scaler")
		}

		manifest := &feature.Manifest{
			Features:  ds.Names,
			Seed:      cfg.Features.Seed,
			TestRatio: cfg.Features.TestRatio,
			TrainRows: len(train.Y),
			TestRows:  len(test.Y),
		}
		if err := manifest.Save(cfg.Paths.Manifest()); err != nil {
			return eris.Wrap(err, "preprocess: save manifest")
		}

		zap.L().Info("preprocess: done",
			zap.Int("rows", len(ds.Y)),
			zap.Int("train_rows", len(train.Y)),
			zap.Int("test_rows", len(test.Y)),
			zap.Int("features", len(ds.Names)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}
