package feature

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/quartier-analytics/immo-cli/internal/stats"
)

// StandardScaler centers and scales each column to zero mean and unit
// variance. It is fit on the training rows only; the test rows and the
// serving path reuse the fitted parameters.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation. Constant
// columns get a unit std so scaling them is the identity on the offset.
func FitScaler(x [][]float64) *StandardScaler {
	if len(x) == 0 {
		return &StandardScaler{}
	}
	cols := len(x[0])
	s := &StandardScaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		s.Mean[j] = stats.Mean(col)
		s.Std[j] = stats.Std(col)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s
}

// Transform returns scaled copies of the rows; the input is not modified.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.TransformRow(row)
	}
	return out
}

// TransformRow scales a single feature vector.
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// Save writes the fitted parameters as JSON.
func (s *StandardScaler) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "feature: create dir for %s", path)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return eris.Wrap(err, "feature: marshal scaler")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "feature: write %s", path)
}

// LoadScaler reads fitted parameters back from JSON.
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: read %s", path)
	}
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "feature: parse %s", path)
	}
	return &s, nil
}
