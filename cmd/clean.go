package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/dvf"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Filter outliers out of the exploitable transactions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		txs, err := dvf.Load(ctx, cfg.Paths.ExploitableTransactions(), dvf.LoadOptions{
			WithDerive: true,
		})
		if err != nil {
			return eris.Wrap(err, "clean: load exploitable")
		}

		th := dvf.ComputeThresholds(txs, cfg.Clean.MinPricePerM2, cfg.Clean.MinValue)
		part := dvf.Classify(txs, th)

		zap.L().Info("clean: thresholds",
			zap.Float64("q1", th.Q1),
			zap.Float64("q3", th.Q3),
			zap.Float64("median", th.Median),
			zap.Float64("mad", th.MAD),
			zap.Float64("low", th.Low),
			zap.Float64("high", th.High),
			zap.Float64("min_value", th.MinValue),
		)

		if err := dvf.WriteTransactions(cfg.Paths.CleanTransactions(), part.Normal); err != nil {
			return eris.Wrap(err, "clean: write clean")
		}
		if err := dvf.WriteTransactions(cfg.Paths.HighOutliers(), part.High); err != nil {
			return eris.Wrap(err, "clean: write high outliers")
		}
		if err := dvf.WriteLowOutliers(cfg.Paths.LowOutliers(), part.Low); err != nil {
			return eris.Wrap(err, "clean: write low outliers")
		}

		zap.L().Info("clean: done",
			zap.Int("input", len(txs)),
			zap.Int("clean", len(part.Normal)),
			zap.Int("low_outliers", len(part.Low)),
			zap.Int("high_outliers", len(part.High)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
