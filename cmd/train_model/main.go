package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"bridgedemo/config"
	"bridgedemo/db"
	"bridgedemo/logger"
	"bridgedemo/ml"
)

func main() {
	cfg, err := config.Load(config.Resolve(config.DefaultPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	modelType := flag.String("model_type", cfg.ML.ModelType, "model type (gaussian_nb, decision_tree)")
	modelPath := flag.String("model_path", cfg.ML.ModelPath, "model output path")
	maxDepth := flag.Int("max_depth", 10, "max tree depth for decision_tree")
	testRatio := flag.Float64("test_ratio", 0, "share of samples held out for evaluation")
	seed := flag.Int64("seed", 42, "shuffle seed for the holdout split")
	dbPath := flag.String("db", cfg.Database.Path, "training log database, empty to skip")
	flag.Parse()

	logg, _, err := logger.New(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logg.Sync()

	result, err := ml.TrainIris(context.Background(), ml.TrainingConfig{
		ModelType: *modelType,
		ModelPath: *modelPath,
		MaxDepth:  *maxDepth,
		TestRatio: *testRatio,
		Seed:      *seed,
	})
	if err != nil {
		logg.Fatal("failed to train model", zap.Error(err))
	}

	logg.Info("model trained",
		zap.String("model_type", result.ModelType),
		zap.Int("data_points", result.DataPoints),
		zap.Float64("train_accuracy", result.TrainAccuracy),
		zap.Int("test_points", result.TestPoints),
		zap.Float64("test_accuracy", result.TestAccuracy),
	)

	if *dbPath != "" {
		if err := recordRun(*dbPath, result); err != nil {
			logg.Warn("failed to record training run", zap.String("db", *dbPath), zap.Error(err))
		}
	}

	fmt.Fprintf(os.Stdout, "model saved to %s\n", result.ModelPath)
}

func recordRun(path string, result *ml.TrainingResult) error {
	if err := db.InitDB(path); err != nil {
		return err
	}
	defer db.Close()

	_, err := db.SaveTrainingRun(db.TrainingRun{
		ModelName:    result.ModelType,
		ModelPath:    result.ModelPath,
		Accuracy:     result.TrainAccuracy,
		TestAccuracy: result.TestAccuracy,
		DataPoints:   result.DataPoints,
		TestPoints:   result.TestPoints,
		TrainedAt:    result.TrainedAt,
	})
	return err
}
