package dvf

import (
	"github.com/quartier-analytics/immo-cli/internal/csvx"
)

// Output CSVs use a semicolon separator, UTF-8, and full quoting, matching
// the format the dashboards and downstream stages expect.

// WriteTransactions writes rows (raw plus derived columns) to path,
// replacing any previous file.
func WriteTransactions(path string, txs []Transaction) error {
	w, err := csvx.NewQuotedWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	header := append(append([]string{}, transactionColumns...), derivedColumns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, t := range txs {
		if err := w.Write(t.record()); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteLowOutliers writes the low bucket with its reason column appended.
func WriteLowOutliers(path string, rows []LowOutlier) error {
	w, err := csvx.NewQuotedWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()

	header := append(append([]string{}, transactionColumns...), derivedColumns...)
	header = append(header, "motif")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(append(r.record(), string(r.Reason))); err != nil {
			return err
		}
	}
	return w.Flush()
}
