package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spotsurfer/internal/llm"
)

var configKeys = []string{
	"SPOT_ADDR", "SPOT_STATIC_DIR", "SPOT_LOG_LEVEL", "WEATHER_API_KEY", "GOOGLE_MAPS_API_KEY",
	"SPOT_PROVIDER_TIMEOUT", "SPOT_GEOCODER", "SPOT_KNOWLEDGE_BASE", "MINIO_ENDPOINT",
	"MINIO_USE_SSL", "SPOT_TIMEZONE", "SPOT_ROUTE_MAX_STOPS", "SPOT_PUSH_STORE", "SPOT_DB",
	"REDIS_ADDR", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "VAPID_SUBJECT", "KAFKA_BROKERS",
	"KAFKA_TOPIC", "KAFKA_GROUP_ID", "SPOT_LLM_PROVIDER", "SPOT_LLM_API_KEY", "OPENAI_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5555", cfg.Addr)
	assert.Equal(t, "client_build", cfg.StaticDir)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, GeocoderNominatim, cfg.Geocoder)
	assert.Equal(t, PushStoreMemory, cfg.PushStore)
	assert.Equal(t, 4, cfg.RouteMaxStops)
	assert.Equal(t, 8*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.S3.UseSSL)
	assert.False(t, cfg.PushEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOT_ADDR", ":8080")
	t.Setenv("SPOT_LOG_LEVEL", "debug")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps")
	t.Setenv("SPOT_PROVIDER_TIMEOUT", "3s")
	t.Setenv("SPOT_TIMEZONE", "America/Denver")
	t.Setenv("SPOT_ROUTE_MAX_STOPS", "6")
	t.Setenv("SPOT_PUSH_STORE", "SQLite")
	t.Setenv("MINIO_USE_SSL", "false")
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC", "spot.notifications")
	t.Setenv("SPOT_LLM_PROVIDER", "anthropic")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "America/Denver", cfg.Location.String())
	assert.Equal(t, 6, cfg.RouteMaxStops)
	assert.Equal(t, PushStoreSQLite, cfg.PushStore)
	assert.False(t, cfg.S3.UseSSL)
	assert.True(t, cfg.PushEnabled())
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "spot-notifier", cfg.Kafka.GroupID)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOT_ROUTE_MAX_STOPS", "-2")
	t.Setenv("SPOT_PROVIDER_TIMEOUT", "soon")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.RouteMaxStops)
	assert.Equal(t, 8*time.Second, cfg.ProviderTimeout)
}

func TestLoad_InvalidChoices(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOT_GEOCODER", "bing")
	t.Setenv("SPOT_PUSH_STORE", "redis")
	t.Setenv("SPOT_TIMEZONE", "Mars/Olympus")
	t.Setenv("SPOT_LOG_LEVEL", "loud")

	_, err := Load()

	require.Error(t, err)
	for _, want := range []string{"SPOT_GEOCODER", "REDIS_ADDR", "SPOT_TIMEZONE", "SPOT_LOG_LEVEL"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
