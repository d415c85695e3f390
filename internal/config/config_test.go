package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "./models", cfg.ModelDir)
	assert.Equal(t, []scenario.Domain{scenario.Agriculture, scenario.Coastal, scenario.Flood}, cfg.ModelDomains)
	assert.True(t, cfg.ModelPreload)
	assert.Zero(t, cfg.PredictionCacheSize)
	assert.Equal(t, 20000, cfg.ScenarioSamples)
	assert.Equal(t, uint64(42), cfg.ScenarioSeed)
	assert.Equal(t, 100, cfg.TrainTrees)
	assert.Equal(t, 20, cfg.TrainMaxDepth)
	assert.Equal(t, 2, cfg.TrainMinLeaf)
	assert.InDelta(t, 0.2, cfg.TrainValidationFraction, 1e-12)
	assert.InDelta(t, 0.01, cfg.TrainMaxMAERatio, 1e-12)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, "surrogate-models", cfg.KafkaModelTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MODEL_DIR", "/var/lib/surrogate")
	t.Setenv("MODEL_DOMAINS", "flood, coastal")
	t.Setenv("MODEL_PRELOAD", "false")
	t.Setenv("PREDICTION_CACHE_SIZE", "512")
	t.Setenv("SCENARIO_SAMPLES", "5000")
	t.Setenv("SCENARIO_SEED", "7")
	t.Setenv("TRAIN_TREES", "50")
	t.Setenv("TRAIN_MAX_DEPTH", "12")
	t.Setenv("TRAIN_MIN_LEAF", "4")
	t.Setenv("TRAIN_VALIDATION_FRACTION", "0.25")
	t.Setenv("TRAIN_MAX_MAE_RATIO", "0.02")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_MODEL_TOPIC", "models")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/surrogate", cfg.ModelDir)
	assert.Equal(t, []scenario.Domain{scenario.Flood, scenario.Coastal}, cfg.ModelDomains)
	assert.False(t, cfg.ModelPreload)
	assert.Equal(t, 512, cfg.PredictionCacheSize)
	assert.Equal(t, 5000, cfg.ScenarioSamples)
	assert.Equal(t, uint64(7), cfg.ScenarioSeed)
	assert.Equal(t, 50, cfg.TrainTrees)
	assert.Equal(t, 12, cfg.TrainMaxDepth)
	assert.Equal(t, 4, cfg.TrainMinLeaf)
	assert.InDelta(t, 0.25, cfg.TrainValidationFraction, 1e-12)
	assert.InDelta(t, 0.02, cfg.TrainMaxMAERatio, 1e-12)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, "models", cfg.KafkaModelTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "MODEL_DOMAINS", value: "agriculture,volcano"},
		{key: "MODEL_PRELOAD", value: "maybe"},
		{key: "PREDICTION_CACHE_SIZE", value: "-1"},
		{key: "SCENARIO_SAMPLES", value: "0"},
		{key: "SCENARIO_SEED", value: "-3"},
		{key: "TRAIN_TREES", value: "many"},
		{key: "TRAIN_MAX_DEPTH", value: "0"},
		{key: "TRAIN_MIN_LEAF", value: "0"},
		{key: "TRAIN_VALIDATION_FRACTION", value: "1.5"},
		{key: "TRAIN_MAX_MAE_RATIO", value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
