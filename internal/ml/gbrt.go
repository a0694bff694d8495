package ml

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// GradientBoosting is a least-squares boosted ensemble of regression trees.
// Each stage fits a tree to the current residuals and contributes a
// learning-rate fraction of its prediction. Training is deterministic for a
// fixed input.
type GradientBoosting struct {
	Trees          int     `json:"trees"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`

	Baseline float64     `json:"baseline"`
	Ensemble []*treeNode `json:"ensemble"`
}

// NewGradientBoosting returns an untrained ensemble with the given
// hyperparameters.
func NewGradientBoosting(trees int, learningRate float64, maxDepth, minSamplesLeaf int) *GradientBoosting {
	return &GradientBoosting{
		Trees:          trees,
		LearningRate:   learningRate,
		MaxDepth:       maxDepth,
		MinSamplesLeaf: minSamplesLeaf,
	}
}

// Fit trains the ensemble on the design matrix. The baseline prediction is
// the target mean; every stage then fits the residuals.
func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return eris.New("ml: empty training set")
	}
	if len(x) != len(y) {
		return eris.New("ml: feature and target row counts differ")
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	g.Baseline = sum / float64(len(y))

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.Baseline
	}

	rt := regressionTree{maxDepth: g.MaxDepth, minLeaf: g.MinSamplesLeaf}
	residual := make([]float64, len(y))
	g.Ensemble = g.Ensemble[:0]
	for stage := 0; stage < g.Trees; stage++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree := rt.fit(x, residual)
		g.Ensemble = append(g.Ensemble, tree)
		for i := range pred {
			pred[i] += g.LearningRate * tree.predict(x[i])
		}
	}

	zap.L().Info("ml: boosting trained",
		zap.Int("rows", len(y)),
		zap.Int("trees", g.Trees),
		zap.Float64("baseline", g.Baseline),
	)
	return nil
}

// PredictRow returns the ensemble prediction for one feature vector.
func (g *GradientBoosting) PredictRow(row []float64) float64 {
	out := g.Baseline
	for _, tree := range g.Ensemble {
		out += g.LearningRate * tree.predict(row)
	}
	return out
}

// Predict returns predictions for every row.
func (g *GradientBoosting) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = g.PredictRow(row)
	}
	return out
}
