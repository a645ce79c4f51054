package ml

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

const DefaultModelPath = "iris_nb.json"

type TrainingConfig struct {
	ModelType string
	ModelPath string
	MaxDepth  int
	// TestRatio holds out a share of the samples for evaluation. Zero trains on everything.
	TestRatio float64
	Seed      int64
}

type TrainingResult struct {
	ModelType     string    `json:"model_type"`
	ModelPath     string    `json:"model_path"`
	DataPoints    int       `json:"data_points"`
	TrainAccuracy float64   `json:"train_accuracy"`
	TestAccuracy  float64   `json:"test_accuracy"`
	TestPoints    int       `json:"test_points"`
	TrainedAt     time.Time `json:"trained_at"`
	Model         MLModel   `json:"-"`
}

func TrainIris(ctx context.Context, cfg TrainingConfig) (*TrainingResult, error) {
	ds, err := LoadIris()
	if err != nil {
		return nil, err
	}
	return Train(ctx, cfg, ds)
}

func Train(ctx context.Context, cfg TrainingConfig, ds *Dataset) (*TrainingResult, error) {
	if cfg.ModelType == "" {
		cfg.ModelType = ModelTypeGaussianNB
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if cfg.TestRatio < 0 || cfg.TestRatio >= 1 {
		return nil, errors.New("test ratio must be in [0, 1)")
	}

	model, err := NewModel(cfg.ModelType, cfg.MaxDepth)
	if err != nil {
		return nil, err
	}

	trainX, trainY := ds.Features, ds.Labels
	var testX [][]float64
	var testY []int
	if cfg.TestRatio > 0 {
		trainX, trainY, testX, testY = SplitDataset(ds.Features, ds.Labels, cfg.TestRatio, cfg.Seed)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := model.Train(trainX, trainY); err != nil {
		return nil, err
	}

	result := &TrainingResult{
		ModelType:     cfg.ModelType,
		ModelPath:     cfg.ModelPath,
		DataPoints:    len(trainX),
		TrainAccuracy: Accuracy(model, trainX, trainY),
		TestPoints:    len(testX),
		Model:         model,
	}
	if len(testX) > 0 {
		result.TestAccuracy = Accuracy(model, testX, testY)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.ModelPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return nil, err
	}
	result.TrainedAt = time.Now().UTC()
	return result, nil
}

func SplitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// rows that fail to predict count as misses
func Accuracy(model MLModel, features [][]float64, labels []int) float64 {
	if len(features) == 0 {
		return 0
	}
	var correct int
	for i, row := range features {
		label, _, err := model.Predict(row)
		if err != nil {
			continue
		}
		if label == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(features))
}
