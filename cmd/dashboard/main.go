package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/couchcryptid/solar-forecast-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/solar-forecast-service/internal/adapter/kafka"
	"github.com/couchcryptid/solar-forecast-service/internal/config"
	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/forecast"
	"github.com/couchcryptid/solar-forecast-service/internal/observability"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	gin.SetMode(gin.ReleaseMode)

	measurements, stats, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}
	metrics.DatasetRows.WithLabelValues("kept").Set(float64(stats.Kept))
	metrics.DatasetRows.WithLabelValues("dropped").Set(float64(stats.Dropped))
	metrics.DatasetRows.WithLabelValues("undated").Set(float64(stats.Undated))
	logger.Info("dataset loaded",
		"path", cfg.DatasetPath,
		"rows", stats.Total,
		"kept", stats.Kept,
		"dropped", stats.Dropped,
		"undated", stats.Undated)

	factory, err := regression.NewFactory(cfg.Regressor, regression.Params{
		Alpha: cfg.RidgeAlpha,
		Trees: cfg.ForestTrees,
		Seed:  cfg.ForestSeed,
	})
	if err != nil {
		logger.Error("invalid regressor", "error", err)
		os.Exit(1)
	}
	trainer := training.NewTrainer(factory, training.Options{
		Strategy:  cfg.Strategy,
		TotalMode: cfg.TotalMode,
		TestRatio: cfg.TestRatio,
		Seed:      cfg.SplitSeed,
		MinRows:   cfg.MinTrainingRows,
	}, logger)

	set, err := trainer.Train(measurements)
	if err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
	metrics.TrainingDuration.Observe(set.Duration.Seconds())
	for _, m := range set.Models() {
		metrics.ModelR2.WithLabelValues(string(m.Interval), m.Label).Set(m.Metrics.R2)
		metrics.ModelMAE.WithLabelValues(string(m.Interval), m.Label).Set(m.Metrics.MAE)
	}

	svc := forecast.NewService(logger)
	svc.Install(set)
	metrics.ModelsReady.Set(1)
	predictor := forecast.NewCachedPredictor(svc, cfg.ForecastCacheSize, metrics)

	// Publishing appended measurements is feature-flagged via KAFKA_ENABLED.
	var (
		publisher httpadapter.MeasurementPublisher
		kafkaPub  *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publisher = kafkaPub
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaMeasurementTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	appender := dataset.NewAppender(cfg.DatasetPath)
	h := httpadapter.NewHandler(predictor, svc, appender, publisher, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, h, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	metrics.ModelsReady.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
