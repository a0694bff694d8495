package ml

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// SaveModel writes a fitted model as indented JSON.
func SaveModel(path string, model any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "ml: create dir for %s", path)
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ml: marshal model")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "ml: write %s", path)
}

// LoadGradientBoosting reads a boosted ensemble back from JSON.
func LoadGradientBoosting(path string) (*GradientBoosting, error) {
	var g GradientBoosting
	if err := loadJSON(path, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// LoadLogisticRegression reads a classifier back from JSON.
func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	var m LogisticRegression
	if err := loadJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "ml: read %s", path)
	}
	return eris.Wrapf(json.Unmarshal(data, v), "ml: parse %s", path)
}
