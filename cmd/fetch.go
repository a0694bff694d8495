package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

var fetchYears []int

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the yearly geocoded DVF exports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		years := fetchYears
		if len(years) == 0 {
			years = cfg.Fetch.Years
		}
		if len(years) == 0 {
			return eris.New("fetch: no years configured")
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})

		g, ctx := errgroup.WithContext(ctx)
		for _, year := range years {
			g.Go(func() error {
				url := fmt.Sprintf("%s/%d/departements/%s.csv.gz",
					cfg.Fetch.BaseURL, year, cfg.Fetch.Department)
				dest := filepath.Join(cfg.Paths.RawDVFDir(), fmt.Sprintf("%d.csv", year))

				n, err := downloadGzipped(ctx, f, url, dest)
				if err != nil {
					return eris.Wrapf(err, "fetch: year %d", year)
				}
				zap.L().Info("fetch: year downloaded",
					zap.Int("year", year),
					zap.String("dest", dest),
					zap.Int64("bytes", n),
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("fetch: complete", zap.Int("years", len(years)))
		return nil
	},
}

// downloadGzipped fetches a gzip-compressed CSV and writes it decompressed.
func downloadGzipped(ctx context.Context, f *fetcher.HTTPFetcher, url, dest string) (int64, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	gz, err := gzip.NewReader(body)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: gzip reader")
	}
	defer gz.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, eris.Wrap(err, "fetch: create dir")
	}
	out, err := os.Create(dest)
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: create %s", dest)
	}
	defer out.Close()

	n, err := io.Copy(out, gz)
	if err != nil {
		return n, eris.Wrapf(err, "fetch: write %s", dest)
	}
	return n, nil
}

func init() {
	fetchCmd.Flags().IntSliceVar(&fetchYears, "years", nil, "years to download (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
