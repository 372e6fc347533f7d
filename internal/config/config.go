// Package config assembles runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/spotsurfer/internal/knowledge"
	"github.com/alexanderramin/spotsurfer/internal/llm"
	"github.com/alexanderramin/spotsurfer/internal/push"
)

const (
	GeocoderGoogle    = "google"
	GeocoderNominatim = "nominatim"

	PushStoreMemory = "memory"
	PushStoreSQLite = "sqlite"
	PushStoreRedis  = "redis"
)

// Config is everything the spot binary needs to wire its components.
type Config struct {
	Addr      string
	StaticDir string
	LogLevel  slog.Level

	WeatherAPIKey string
	MapsAPIKey    string
	// Provider endpoint overrides. Empty uses each client's public URL.
	WeatherURL    string
	DirectionsURL string
	GeocodeURL    string
	NominatimURL  string

	ProviderTimeout time.Duration
	Geocoder        string

	KnowledgeBase string
	S3            knowledge.S3Config
	PolicyPath    string
	GazetteerPath string
	Location      *time.Location
	RouteMaxStops int

	PushStore     string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	VAPID         push.VAPIDConfig
	Kafka         push.KafkaConfig

	LLM llm.LLMConfig
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Addr:            "0.0.0.0:5555",
		StaticDir:       "client_build",
		LogLevel:        slog.LevelInfo,
		ProviderTimeout: 8 * time.Second,
		KnowledgeBase:   "knowledge_base.txt",
		Location:        time.UTC,
		RouteMaxStops:   4,
		PushStore:       PushStoreMemory,
		DBPath:          "data/spot.db",
		VAPID:           push.VAPIDConfig{Subject: "mailto:support@spotsurfer.com", TTL: 60},
		Kafka:           push.KafkaConfig{GroupID: "spot-notifier"},
		LLM:             llm.DefaultConfig(),
	}
}

// LoadEnv loads a .env file from the working directory if one exists.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil && logger != nil {
		logger.Debug("no .env file found, using process environment")
	}
}

// Load reads configuration from environment variables. Unparseable
// numbers keep their defaults; unknown choices and time zones are errors.
func Load() (Config, error) {
	cfg := Default()
	var errs []error

	setString(&cfg.Addr, "SPOT_ADDR")
	setString(&cfg.StaticDir, "SPOT_STATIC_DIR")
	if v := os.Getenv("SPOT_LOG_LEVEL"); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			errs = append(errs, err)
		}
		cfg.LogLevel = level
	}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.MapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	setString(&cfg.WeatherURL, "SPOT_WEATHER_URL")
	setString(&cfg.DirectionsURL, "SPOT_DIRECTIONS_URL")
	setString(&cfg.GeocodeURL, "SPOT_GEOCODE_URL")
	setString(&cfg.NominatimURL, "SPOT_NOMINATIM_URL")
	if v := os.Getenv("SPOT_PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProviderTimeout = d
		}
	}

	cfg.Geocoder = strings.ToLower(os.Getenv("SPOT_GEOCODER"))
	switch cfg.Geocoder {
	case "":
		cfg.Geocoder = GeocoderNominatim
		if cfg.MapsAPIKey != "" {
			cfg.Geocoder = GeocoderGoogle
		}
	case GeocoderGoogle, GeocoderNominatim:
	default:
		errs = append(errs, fmt.Errorf("SPOT_GEOCODER: unknown geocoder %q", cfg.Geocoder))
	}

	setString(&cfg.KnowledgeBase, "SPOT_KNOWLEDGE_BASE")
	cfg.S3 = knowledge.S3Config{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Region:    os.Getenv("MINIO_REGION"),
		UseSSL:    true,
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.S3.UseSSL, _ = strconv.ParseBool(v)
	}
	setString(&cfg.PolicyPath, "SPOT_POLICY_PATH")
	setString(&cfg.GazetteerPath, "SPOT_GAZETTEER_PATH")
	if v := os.Getenv("SPOT_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SPOT_TIMEZONE: %w", err))
		} else {
			cfg.Location = loc
		}
	}
	if v := os.Getenv("SPOT_ROUTE_MAX_STOPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RouteMaxStops = n
		}
	}

	if v := strings.ToLower(os.Getenv("SPOT_PUSH_STORE")); v != "" {
		switch v {
		case PushStoreMemory, PushStoreSQLite, PushStoreRedis:
			cfg.PushStore = v
		default:
			errs = append(errs, fmt.Errorf("SPOT_PUSH_STORE: unknown store %q", v))
		}
	}
	setString(&cfg.DBPath, "SPOT_DB")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.PushStore == PushStoreRedis && cfg.RedisAddr == "" {
		errs = append(errs, errors.New("SPOT_PUSH_STORE=redis requires REDIS_ADDR"))
	}

	cfg.VAPID.PublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	cfg.VAPID.PrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	setString(&cfg.VAPID.Subject, "VAPID_SUBJECT")
	if v := os.Getenv("VAPID_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.VAPID.TTL = n
		}
	}

	cfg.Kafka.Brokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	cfg.LLM = llm.LoadConfig()

	return cfg, errors.Join(errs...)
}

// PushEnabled reports whether VAPID keys are configured.
func (c Config) PushEnabled() bool {
	return c.VAPID.PublicKey != "" && c.VAPID.PrivateKey != ""
}

// KafkaEnabled reports whether the notification consumer should run.
func (c Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != ""
}

// ParseLogLevel accepts debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("SPOT_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
