package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/feature"
	"github.com/quartier-analytics/immo-cli/internal/ml"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the price and classification models on the feature tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		train, err := feature.ReadTable(cfg.Paths.TrainTable())
		if err != nil {
			return eris.Wrap(err, "train: read train table")
		}
		test, err := feature.ReadTable(cfg.Paths.TestTable())
		if err != nil {
			return eris.Wrap(err, "train: read test table")
		}

		// Price regressor.
		reg := ml.NewGradientBoosting(cfg.Train.Trees, cfg.Train.LearningRate,
			cfg.Train.MaxDepth, cfg.Train.MinSamplesLeaf)
		if err := reg.Fit(train.X, train.Y); err != nil {
			return eris.Wrap(err, "train: fit regressor")
		}
		trainReg := ml.EvaluateRegression(train.Y, reg.Predict(train.X))
		testReg := ml.EvaluateRegression(test.Y, reg.Predict(test.X))

		// Cheap/expensive classifier, cut at the train-set median price.
		trainLabels, cut := ml.LabelsAtMedian(train.Y)
		clf := ml.NewLogisticRegression(cfg.Train.LogisticLR, cfg.Train.LogisticEpochs)
		clf.PriceThreshold = cut
		if err := clf.Fit(train.X, trainLabels); err != nil {
			return eris.Wrap(err, "train: fit classifier")
		}

		testLabels := make([]float64, len(test.Y))
		scores := make([]float64, len(test.Y))
		preds := make([]int, len(test.Y))
		for i, y := range test.Y {
			if y > cut {
				testLabels[i] = 1
			}
			scores[i] = clf.PredictProba(test.X[i])
			preds[i] = clf.Predict(test.X[i])
		}
		clfMetrics := ml.ClassificationMetrics{
			Accuracy: ml.Accuracy(testLabels, preds),
			ROCAUC:   ml.ROCAUC(testLabels, scores),
		}

		if err := ml.SaveModel(cfg.Paths.PriceModel(), reg); err != nil {
			return eris.Wrap(err, "train: save price model")
		}
		if err := ml.SaveModel(cfg.Paths.ClassModel(), clf); err != nil {
			return eris.Wrap(err, "train: save class model")
		}
		if err := writeResults(cfg.Paths.Results(), trainReg, testReg, clfMetrics, cut); err != nil {
			return eris.Wrap(err, "train: write results")
		}

		zap.L().Info("train: done",
			zap.Float64("test_r2", testReg.R2),
			zap.Float64("test_mae", testReg.MAE),
			zap.Float64("test_rmse", testReg.RMSE),
			zap.Float64("accuracy", clfMetrics.Accuracy),
			zap.Float64("roc_auc", clfMetrics.ROCAUC),
			zap.Float64("price_threshold", cut),
		)
		return nil
	},
}

func writeResults(path string, trainReg, testReg ml.RegressionMetrics, clf ml.ClassificationMetrics, cut float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Regression (prix au m2)\n")
	fmt.Fprintf(&b, "  train  R2=%.4f  MAE=%.2f  RMSE=%.2f\n", trainReg.R2, trainReg.MAE, trainReg.RMSE)
	fmt.Fprintf(&b, "  test   R2=%.4f  MAE=%.2f  RMSE=%.2f\n", testReg.R2, testReg.MAE, testReg.RMSE)
	fmt.Fprintf(&b, "\nClassification (cher / bon marche, seuil %.2f)\n", cut)
	fmt.Fprintf(&b, "  accuracy=%.4f  roc_auc=%.4f\n", clf.Accuracy, clf.ROCAUC)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "results: create dir")
	}
	return eris.Wrap(os.WriteFile(path, []byte(b.String()), 0o644), "results: write file")
}

func init() {
	rootCmd.AddCommand(trainCmd)
}
