package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

var ErrNotInitialized = errors.New("database not initialized")

// TrainingRun is one row of the training log.
type TrainingRun struct {
	ID           int64     `json:"id"`
	ModelName    string    `json:"model_name"`
	ModelPath    string    `json:"model_path"`
	Accuracy     float64   `json:"accuracy"`
	TestAccuracy float64   `json:"test_accuracy"`
	DataPoints   int       `json:"data_points"`
	TestPoints   int       `json:"test_points"`
	TrainedAt    time.Time `json:"trained_at"`
}

// InitDB initializes the SQLite database
func InitDB(path string) error {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50) NOT NULL,
        model_path TEXT NOT NULL,
        accuracy REAL,
        test_accuracy REAL,
        data_points INTEGER,
        test_points INTEGER,
        trained_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_training_log_trained_at ON training_log(trained_at);
    `
	if _, err := conn.Exec(query); err != nil {
		conn.Close()
		return err
	}
	if database != nil {
		database.Close()
	}
	database = conn
	return nil
}

func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

func SaveTrainingRun(run TrainingRun) (int64, error) {
	if database == nil {
		return 0, ErrNotInitialized
	}
	if run.ModelName == "" {
		return 0, errors.New("model name required")
	}
	if run.TrainedAt.IsZero() {
		run.TrainedAt = time.Now().UTC()
	}
	res, err := database.Exec(`
        INSERT INTO training_log (
            model_name, model_path, accuracy, test_accuracy, data_points, test_points, trained_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ModelName, run.ModelPath, run.Accuracy, run.TestAccuracy, run.DataPoints, run.TestPoints, run.TrainedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// QueryTrainingRuns returns the latest runs, newest first. The query is abandoned
// once ctx is done.
func QueryTrainingRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	if database == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.QueryContext(ctx, `
        SELECT id, model_name, model_path, accuracy, test_accuracy, data_points, test_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	for rows.Next() {
		var r TrainingRun
		var accuracy, testAccuracy sql.NullFloat64
		var dataPoints, testPoints sql.NullInt64
		if err := rows.Scan(&r.ID, &r.ModelName, &r.ModelPath, &accuracy, &testAccuracy,
			&dataPoints, &testPoints, &r.TrainedAt); err != nil {
			return nil, err
		}
		r.Accuracy = accuracy.Float64
		r.TestAccuracy = testAccuracy.Float64
		r.DataPoints = int(dataPoints.Int64)
		r.TestPoints = int(testPoints.Int64)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
