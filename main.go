package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"bridgedemo/config"
	"bridgedemo/db"
	qhttp "bridgedemo/http"
	"bridgedemo/logger"
	"bridgedemo/ml"
	"bridgedemo/monitoring"
)

func main() {
	// 1. Load config
	configPath := config.Resolve(config.DefaultPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logg, level, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	// 3. Initialize database; the training log endpoint reports 503 without it
	if err := db.InitDB(cfg.Database.Path); err != nil {
		logg.Warn("database unavailable", zap.String("path", cfg.Database.Path), zap.Error(err))
	} else {
		defer db.Close()
		logg.Info("database initialized", zap.String("path", cfg.Database.Path))
	}

	models, err := ml.NewModelCache(cfg.ML.CacheSize)
	if err != nil {
		logg.Fatal("failed to create model cache", zap.Error(err))
	}

	// 4. Start HTTP server
	server, err := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		ModelType:      cfg.ML.ModelType,
		ModelPath:      cfg.ML.ModelPath,
	}, qhttp.Deps{
		Logger:  logg,
		Metrics: monitoring.NewMetricsCollector(),
		Models:  models,
	})
	if err != nil {
		logg.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Reload the log level when the config file changes
	go func() {
		err := config.Watch(ctx, configPath, func(updated *config.Config) {
			if err := logger.SetLevel(level, updated.Log.Level); err != nil {
				logg.Warn("ignoring invalid log level", zap.String("level", updated.Log.Level), zap.Error(err))
				return
			}
			logg.Info("config reloaded", zap.String("log_level", level.String()))
		}, func(err error) {
			logg.Warn("config watch", zap.Error(err))
		})
		if err != nil {
			logg.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	// 6. Drop the cached model when the trainer rewrites it
	go func() {
		err := models.Watch(ctx, cfg.ML.ModelType, cfg.ML.ModelPath, func() {
			logg.Info("model file changed, cache invalidated", zap.String("model_path", cfg.ML.ModelPath))
		}, func(err error) {
			logg.Warn("model watch", zap.Error(err))
		})
		if err != nil {
			logg.Warn("model watcher stopped", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 7. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logg.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			logg.Error("HTTP server failed", zap.Error(err))
		}
	}

	if err := server.Stop(); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}

	logg.Info("exiting")
}
