package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/dvf"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the aggregation reports from the clean transactions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		txs, err := dvf.Load(ctx, cfg.Paths.CleanTransactions(), dvf.LoadOptions{
			WithDerive: true,
		})
		if err != nil {
			return eris.Wrap(err, "report: load clean")
		}

		dir := cfg.Paths.AnalysisDir()

		byDistrict := dvf.AggregateByDistrict(txs)
		if err := dvf.WriteReport(filepath.Join(dir, "prix_m2_par_arrondissement.csv"), byDistrict); err != nil {
			return eris.Wrap(err, "report: write district report")
		}

		byYearDistrict := dvf.AggregateByYearDistrict(txs)
		if err := dvf.WriteReport(filepath.Join(dir, "prix_m2_par_annee_arrondissement.csv"), byYearDistrict); err != nil {
			return eris.Wrap(err, "report: write year/district report")
		}

		byTypeDistrict := dvf.AggregateByTypeDistrict(txs)
		if err := dvf.WriteReport(filepath.Join(dir, "prix_m2_par_type_arrondissement.csv"), byTypeDistrict); err != nil {
			return eris.Wrap(err, "report: write type/district report")
		}

		zap.L().Info("report: done",
			zap.Int("transactions", len(txs)),
			zap.Int("districts", len(byDistrict)),
			zap.Int("year_district_groups", len(byYearDistrict)),
			zap.Int("type_district_groups", len(byTypeDistrict)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
