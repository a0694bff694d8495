package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/dvf"
)

var ingestInputs []string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Stream the raw DVF exports into Paris-only transaction files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		inputs := ingestInputs
		if len(inputs) == 0 {
			var err error
			inputs, err = rawDVFFiles(cfg.Paths.RawDVFDir())
			if err != nil {
				return err
			}
		}

		res, err := dvf.Ingest(ctx, inputs,
			cfg.Paths.AllTransactions(),
			cfg.Paths.ExploitableTransactions(),
			cfg.Paths.InexploitableTransactions(),
		)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}

		zap.L().Info("ingest: done",
			zap.Int("files", len(inputs)),
			zap.Int("total", res.Total),
			zap.Int("exploitable", res.Exploitable),
			zap.Int("inexploitable", res.Inexploitable),
		)
		return nil
	},
}

func rawDVFFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read raw dir %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, eris.Errorf("ingest: no CSV files in %s (run fetch first)", dir)
	}
	return files, nil
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestInputs, "input", nil, "raw DVF CSV files (default: every CSV in the raw data dir)")
	rootCmd.AddCommand(ingestCmd)
}
