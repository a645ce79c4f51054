package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestTrainingRuns(t *testing.T) {
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"gaussian_nb", "decision_tree", "gaussian_nb"} {
		_, err := SaveTrainingRun(TrainingRun{
			ModelName:  name,
			ModelPath:  "iris_nb.json",
			Accuracy:   0.9 + float64(i)/100,
			DataPoints: 150,
			TrainedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	runs, err := QueryTrainingRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].TrainedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("expected newest run first, got %v", runs[0].TrainedAt)
	}
	if runs[1].ModelName != "decision_tree" {
		t.Fatalf("unexpected second run: %+v", runs[1])
	}
	if runs[0].DataPoints != 150 {
		t.Fatalf("expected 150 data points, got %d", runs[0].DataPoints)
	}
}

func TestSaveTrainingRunValidation(t *testing.T) {
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()

	if _, err := SaveTrainingRun(TrainingRun{}); err == nil {
		t.Fatal("expected error for missing model name")
	}
	id, err := SaveTrainingRun(TrainingRun{ModelName: "gaussian_nb", ModelPath: "m.json"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}
}

func TestNotInitialized(t *testing.T) {
	Close()
	if _, err := SaveTrainingRun(TrainingRun{ModelName: "x"}); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := QueryTrainingRuns(context.Background(), 1); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestQueryTrainingRunsHonoursDeadline(t *testing.T) {
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	if _, err := QueryTrainingRuns(ctx, 5); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
