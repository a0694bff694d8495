package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/fiscal"
)

var fiscalCmd = &cobra.Command{
	Use:   "fiscal",
	Short: "Clean the IRCOM income workbooks into one CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := fiscal.Clean(fiscal.Options{
			InputDir:   cfg.Paths.FiscalDir(),
			Years:      cfg.Fiscal.Years,
			HeaderRows: cfg.Fiscal.HeaderRows,
		}, cfg.Paths.FiscalClean())
		if err != nil {
			return eris.Wrap(err, "fiscal")
		}

		zap.L().Info("fiscal: done",
			zap.Int("rows", n),
			zap.String("output", cfg.Paths.FiscalClean()),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fiscalCmd)
}
