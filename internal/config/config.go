package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatasetPath string

	// Model selection and training.
	Strategy        domain.Strategy
	TotalMode       domain.TotalMode
	Regressor       regression.Kind
	RidgeAlpha      float64
	ForestTrees     int
	ForestSeed      uint64
	TestRatio       float64
	SplitSeed       uint64
	MinTrainingRows int

	ForecastCacheSize  int
	CORSAllowedOrigins []string

	// Optional measurement publishing.
	KafkaEnabled          bool
	KafkaBrokers          []string
	KafkaMeasurementTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	strategy, err := domain.ParseStrategy(sharedcfg.EnvOrDefault("PREDICTION_STRATEGY", string(domain.StrategyScaled)))
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_STRATEGY: %w", err)
	}
	totalMode, err := domain.ParseTotalMode(sharedcfg.EnvOrDefault("TOTAL_MODE", string(domain.TotalSum)))
	if err != nil {
		return nil, fmt.Errorf("invalid TOTAL_MODE: %w", err)
	}
	regressor, err := regression.ParseKind(sharedcfg.EnvOrDefault("REGRESSOR", string(regression.KindForest)))
	if err != nil {
		return nil, fmt.Errorf("invalid REGRESSOR: %w", err)
	}

	alpha, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RIDGE_ALPHA", "1.0"), 64)
	if err != nil || alpha < 0 {
		return nil, errors.New("invalid RIDGE_ALPHA: must be a number >= 0")
	}
	trees, err := strconv.Atoi(sharedcfg.EnvOrDefault("FOREST_TREES", strconv.Itoa(regression.DefaultTrees)))
	if err != nil || trees < 1 {
		return nil, errors.New("invalid FOREST_TREES: must be an integer >= 1")
	}
	forestSeed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("FOREST_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid FOREST_SEED: must be a non-negative integer")
	}
	ratio, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TEST_RATIO", "0.2"), 64)
	if err != nil || ratio <= 0 || ratio >= 1 {
		return nil, errors.New("invalid TEST_RATIO: must be between 0 and 1")
	}
	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SPLIT_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SPLIT_SEED: must be a non-negative integer")
	}
	minRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("MIN_TRAINING_ROWS", "10"))
	if err != nil || minRows < 2 {
		return nil, errors.New("invalid MIN_TRAINING_ROWS: must be an integer >= 2")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath: sharedcfg.EnvOrDefault("DATASET_PATH", "dataset/Data_Cacak.csv"),

		Strategy:        strategy,
		TotalMode:       totalMode,
		Regressor:       regressor,
		RidgeAlpha:      alpha,
		ForestTrees:     trees,
		ForestSeed:      forestSeed,
		TestRatio:       ratio,
		SplitSeed:       seed,
		MinTrainingRows: minRows,

		ForecastCacheSize:  parseForecastCacheSize(),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		KafkaEnabled:          os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaMeasurementTopic: sharedcfg.EnvOrDefault("KAFKA_MEASUREMENT_TOPIC", "solar-measurements"),
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaMeasurementTopic == "" {
		return nil, errors.New("KAFKA_MEASUREMENT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseForecastCacheSize() int {
	if s := os.Getenv("FORECAST_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 16
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
