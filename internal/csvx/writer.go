// Package csvx provides the CSV writer shared by the pipeline outputs:
// semicolon-separated, UTF-8, every field quoted. encoding/csv only quotes
// when needed, so the quoting is done by hand.
package csvx

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// QuotedWriter writes semicolon-separated rows with every field quoted.
type QuotedWriter struct {
	f  *os.File
	bw *bufio.Writer
}

// NewQuotedWriter creates path (and its directory) and returns a writer.
func NewQuotedWriter(path string) (*QuotedWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "csvx: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvx: create %s", path)
	}
	return &QuotedWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

// Write appends one row.
func (w *QuotedWriter) Write(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.bw.WriteByte(';'); err != nil {
				return eris.Wrap(err, "csvx: write row")
			}
		}
		quoted := `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		if _, err := w.bw.WriteString(quoted); err != nil {
			return eris.Wrap(err, "csvx: write row")
		}
	}
	return eris.Wrap(w.bw.WriteByte('\n'), "csvx: write row")
}

// Flush forces buffered rows to disk.
func (w *QuotedWriter) Flush() error {
	return eris.Wrap(w.bw.Flush(), "csvx: flush")
}

// Close flushes and closes the file.
func (w *QuotedWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return eris.Wrap(err, "csvx: flush")
	}
	return eris.Wrap(w.f.Close(), "csvx: close")
}
