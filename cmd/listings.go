package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/listings"
)

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Merge and clean the scraped listing CSVs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		inputs := make([]string, 0, len(cfg.Listings.Sources))
		for _, src := range cfg.Listings.Sources {
			name := fmt.Sprintf("annonces_%s_paris.csv", src)
			inputs = append(inputs, filepath.Join(cfg.Paths.ListingsDir(), name))
		}

		res, err := listings.Clean(ctx, inputs, cfg.Paths.ListingsClean())
		if err != nil {
			return eris.Wrap(err, "listings")
		}

		zap.L().Info("listings: done",
			zap.Int("merged", res.Merged),
			zap.Int("cleaned", res.Cleaned),
			zap.Int("located", res.Located),
			zap.Int("duplicates", res.Duplicates),
			zap.Int("final", res.Final),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listingsCmd)
}
