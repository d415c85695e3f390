package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	ModelDir            string
	ModelDomains        []scenario.Domain
	ModelPreload        bool
	PredictionCacheSize int

	ScenarioSamples int
	ScenarioSeed    uint64

	TrainTrees              int
	TrainMaxDepth           int
	TrainMinLeaf            int
	TrainValidationFraction float64
	TrainMaxMAERatio        float64

	// Model-published events are disabled when KafkaBrokers is empty.
	KafkaBrokers    []string
	KafkaModelTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	domains, err := scenario.ParseDomains(sharedcfg.EnvOrDefault("MODEL_DOMAINS", "agriculture,coastal,flood"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_DOMAINS: %w", err)
	}
	if len(domains) == 0 {
		return nil, errors.New("MODEL_DOMAINS is required")
	}

	preload, err := parseBool("MODEL_PRELOAD", true)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("PREDICTION_CACHE_SIZE", 0, 0)
	if err != nil {
		return nil, err
	}
	samples, err := parseInt("SCENARIO_SAMPLES", 20000, 1)
	if err != nil {
		return nil, err
	}
	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SCENARIO_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SCENARIO_SEED")
	}
	trees, err := parseInt("TRAIN_TREES", 100, 1)
	if err != nil {
		return nil, err
	}
	maxDepth, err := parseInt("TRAIN_MAX_DEPTH", 20, 1)
	if err != nil {
		return nil, err
	}
	minLeaf, err := parseInt("TRAIN_MIN_LEAF", 2, 1)
	if err != nil {
		return nil, err
	}
	valFraction, err := parseFloat("TRAIN_VALIDATION_FRACTION", 0.2)
	if err != nil {
		return nil, err
	}
	maxMAERatio, err := parseFloat("TRAIN_MAX_MAE_RATIO", 0.01)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelDir:            sharedcfg.EnvOrDefault("MODEL_DIR", "./models"),
		ModelDomains:        domains,
		ModelPreload:        preload,
		PredictionCacheSize: cacheSize,

		ScenarioSamples: samples,
		ScenarioSeed:    seed,

		TrainTrees:              trees,
		TrainMaxDepth:           maxDepth,
		TrainMinLeaf:            minLeaf,
		TrainValidationFraction: valFraction,
		TrainMaxMAERatio:        maxMAERatio,

		KafkaModelTopic: sharedcfg.EnvOrDefault("KAFKA_MODEL_TOPIC", "surrogate-models"),
	}
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.ModelDir == "" {
		return nil, errors.New("MODEL_DIR is required")
	}
	if cfg.TrainValidationFraction <= 0 || cfg.TrainValidationFraction >= 1 {
		return nil, errors.New("TRAIN_VALIDATION_FRACTION must be between 0 and 1")
	}
	if cfg.TrainMaxMAERatio <= 0 {
		return nil, errors.New("TRAIN_MAX_MAE_RATIO must be positive")
	}
	if cfg.EventsEnabled() && cfg.KafkaModelTopic == "" {
		return nil, errors.New("KAFKA_MODEL_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// EventsEnabled reports whether model-published events should be sent.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseInt(key string, def, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
