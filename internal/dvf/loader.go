package dvf

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/fetcher"
)

// LoadOptions configures the transaction loader.
type LoadOptions struct {
	Delimiter  rune // default ';'
	ParisOnly  bool // apply the commune-code/name predicate
	WithDerive bool // compute derived fields after loading
}

// Load reads a transaction CSV into memory. A missing or unreadable file is
// fatal for the run; a malformed cell degrades to missing for that cell only.
func Load(ctx context.Context, path string, opts LoadOptions) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dvf: open %s", path)
	}
	defer f.Close()

	delim := opts.Delimiter
	if delim == 0 {
		delim = ';'
	}

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		Delimiter:  delim,
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var colIdx map[string]int
	var txs []Transaction
	for row := range rowCh {
		if colIdx == nil {
			select {
			case header := <-headerCh:
				colIdx = mapColumns(header)
			default:
				return nil, eris.Errorf("dvf: %s has no header row", path)
			}
		}

		tx := transactionFromRecord(row, colIdx)
		if opts.ParisOnly && !IsParis(tx.CommuneCode, tx.CommuneName) {
			continue
		}
		txs = append(txs, tx)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "dvf: read %s", path)
	}

	if opts.WithDerive {
		Derive(txs)
	}

	zap.L().Info("dvf: loaded transactions",
		zap.String("path", path),
		zap.Int("rows", len(txs)),
	)
	return txs, nil
}
