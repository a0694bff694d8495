package dvf

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/csvx"
	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

// IngestResult counts the rows routed by one Ingest run.
type IngestResult struct {
	Total         int
	Exploitable   int
	Inexploitable int
}

// Ingest streams the raw yearly geocoded DVF exports (comma-separated),
// keeps the Paris rows, and routes each row into the all / exploitable /
// inexploitable outputs. Rows are processed one at a time so arbitrarily
// large source files stay memory-bounded. A row is exploitable when it has
// a positive declared value, a positive composite surface, and coordinates.
func Ingest(ctx context.Context, inputs []string, allPath, okPath, koPath string) (*IngestResult, error) {
	if len(inputs) == 0 {
		return nil, eris.New("dvf: no input files")
	}

	allW, err := csvx.NewQuotedWriter(allPath)
	if err != nil {
		return nil, err
	}
	defer allW.Close()
	okW, err := csvx.NewQuotedWriter(okPath)
	if err != nil {
		return nil, err
	}
	defer okW.Close()
	koW, err := csvx.NewQuotedWriter(koPath)
	if err != nil {
		return nil, err
	}
	defer koW.Close()

	header := append(append([]string{}, transactionColumns...), derivedColumns...)
	for _, w := range []*csvx.QuotedWriter{allW, okW, koW} {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}

	var res IngestResult
	for _, path := range inputs {
		n, err := ingestFile(ctx, path, allW, okW, koW, &res)
		if err != nil {
			return nil, err
		}
		zap.L().Info("ingest: file processed", zap.String("path", path), zap.Int("paris_rows", n))
	}

	for _, w := range []*csvx.QuotedWriter{allW, okW, koW} {
		if err := w.Flush(); err != nil {
			return nil, err
		}
	}

	zap.L().Info("ingest: complete",
		zap.Int("total", res.Total),
		zap.Int("exploitable", res.Exploitable),
		zap.Int("inexploitable", res.Inexploitable),
	)
	return &res, nil
}

func ingestFile(ctx context.Context, path string, allW, okW, koW *csvx.QuotedWriter, res *IngestResult) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		Delimiter:  ',',
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var colIdx map[string]int
	var kept int
	for row := range rowCh {
		if colIdx == nil {
			select {
			case header := <-headerCh:
				colIdx = mapColumns(header)
			default:
				return kept, eris.Errorf("ingest: %s has no header row", path)
			}
		}

		tx := transactionFromRecord(row, colIdx)
		if !IsParis(tx.CommuneCode, tx.CommuneName) {
			continue
		}
		deriveOne(&tx)
		kept++
		res.Total++

		if err := allW.Write(tx.record()); err != nil {
			return kept, err
		}
		if exploitable(tx) {
			res.Exploitable++
			if err := okW.Write(tx.record()); err != nil {
				return kept, err
			}
		} else {
			res.Inexploitable++
			if err := koW.Write(tx.record()); err != nil {
				return kept, err
			}
		}
	}
	if err := <-errCh; err != nil {
		return kept, eris.Wrapf(err, "ingest: read %s", path)
	}
	return kept, nil
}

func exploitable(t Transaction) bool {
	return !Missing(t.Value) && t.Value > 0 &&
		!Missing(t.CompositeArea) && t.CompositeArea > 0 &&
		!Missing(t.Latitude) && !Missing(t.Longitude)
}
