package feature

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const targetColumn = "prix_m2"

// Manifest records how the train/test tables were produced so the serving
// path can rebuild the exact same feature vector in the same order.
type Manifest struct {
	Features  []string `yaml:"features"`
	Target    string   `yaml:"target"`
	Seed      int64    `yaml:"seed"`
	TestRatio float64  `yaml:"test_ratio"`
	TrainRows int      `yaml:"train_rows"`
	TestRows  int      `yaml:"test_rows"`
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "feature: create dir for %s", path)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "feature: marshal manifest")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "feature: write %s", path)
}

// LoadManifest reads a manifest back from YAML.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: read %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "feature: parse %s", path)
	}
	return &m, nil
}

// WriteTable writes a dataset as a semicolon CSV, feature columns first and
// the target last.
func WriteTable(path string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "feature: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "feature: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(append(append([]string{}, ds.Names...), targetColumn)); err != nil {
		return eris.Wrapf(err, "feature: write %s", path)
	}
	rec := make([]string, len(ds.Names)+1)
	for i, row := range ds.X {
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		rec[len(rec)-1] = strconv.FormatFloat(ds.Y[i], 'f', -1, 64)
		if err := w.Write(rec); err != nil {
			return eris.Wrapf(err, "feature: write %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "feature: write %s", path)
}

// ReadTable reads a dataset back from a table written by WriteTable.
func ReadTable(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "feature: read %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("feature: %s is empty", path)
	}

	header := records[0]
	if len(header) < 2 || header[len(header)-1] != targetColumn {
		return nil, eris.Errorf("feature: %s has no %s column", path, targetColumn)
	}
	ds := &Dataset{Names: header[: len(header)-1 : len(header)-1]}
	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, eris.Errorf("feature: %s has inconsistent row width", path)
		}
		row := make([]float64, len(rec)-1)
		for j := range row {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, eris.Wrapf(err, "feature: parse %s", path)
			}
			row[j] = v
		}
		y, err := strconv.ParseFloat(rec[len(rec)-1], 64)
		if err != nil {
			return nil, eris.Wrapf(err, "feature: parse %s", path)
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, y)
	}
	return ds, nil
}
