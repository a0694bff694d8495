package ml

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/stats"
)

// LogisticRegression is a binary classifier separating "cheap" from
// "expensive" sales at the median training price. Full-batch gradient
// descent with zero-initialized weights keeps training deterministic.
type LogisticRegression struct {
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`

	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	// PriceThreshold is the train-median target the labels were cut at,
	// kept so the serving path can report what the classes mean.
	PriceThreshold float64 `json:"price_threshold"`
}

// NewLogisticRegression returns an untrained classifier.
func NewLogisticRegression(learningRate float64, epochs int) *LogisticRegression {
	return &LogisticRegression{LearningRate: learningRate, Epochs: epochs}
}

// Fit trains on binary labels (0 or 1) with cross-entropy gradient descent.
func (m *LogisticRegression) Fit(x [][]float64, labels []float64) error {
	if len(x) == 0 {
		return eris.New("ml: empty training set")
	}
	if len(x) != len(labels) {
		return eris.New("ml: feature and label row counts differ")
	}

	p := len(x[0])
	m.Weights = make([]float64, p)
	m.Bias = 0

	n := float64(len(x))
	grad := make([]float64, p)
	for epoch := 0; epoch < m.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, row := range x {
			d := sigmoid(m.logit(row)) - labels[i]
			for j, v := range row {
				grad[j] += d * v
			}
			gradBias += d
		}
		for j := range m.Weights {
			m.Weights[j] -= m.LearningRate * grad[j] / n
		}
		m.Bias -= m.LearningRate * gradBias / n
	}

	zap.L().Info("ml: logistic trained",
		zap.Int("rows", len(x)),
		zap.Int("epochs", m.Epochs),
	)
	return nil
}

// PredictProba returns P(class=1) for one feature vector.
func (m *LogisticRegression) PredictProba(row []float64) float64 {
	return sigmoid(m.logit(row))
}

// Predict returns the class label at the 0.5 probability cut.
func (m *LogisticRegression) Predict(row []float64) int {
	if m.PredictProba(row) >= 0.5 {
		return 1
	}
	return 0
}

func (m *LogisticRegression) logit(row []float64) float64 {
	sum := m.Bias
	for j, v := range row {
		sum += m.Weights[j] * v
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// LabelsAtMedian cuts a continuous target into binary labels at its median:
// 1 for values strictly above, 0 otherwise. Returns the labels and the cut.
func LabelsAtMedian(y []float64) ([]float64, float64) {
	median := stats.Median(y)
	labels := make([]float64, len(y))
	for i, v := range y {
		if v > median {
			labels[i] = 1
		}
	}
	return labels, median
}
