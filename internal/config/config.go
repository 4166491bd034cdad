package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream signal sources.
	WeatherBaseURL        string
	WeatherTimeout        time.Duration
	ElevationBaseURL      string
	ElevationTimeout      time.Duration
	OverpassURL           string
	OverpassTimeout       time.Duration
	HydrologySearchRadius float64

	// Signal memo cache.
	CacheEnabled  bool
	CacheBackend  string
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Assessment publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Risk analysis.
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	LLMTimeout        time.Duration
	KnowledgeBasePath string

	DistrictsPath string
}

// LLMEnabled reports whether an API key for report generation is configured.
func (c *Config) LLMEnabled() bool { return c.OpenAIAPIKey != "" }

// Load reads configuration from environment variables, applying defaults where unset.
// Variables in ENV_FILE (default .env) are loaded first when the file exists;
// they never override variables already set in the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		ElevationBaseURL: sharedcfg.EnvOrDefault("ELEVATION_BASE_URL", "https://api.open-elevation.com/api/v1/lookup"),
		OverpassURL:      sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),

		CacheBackend:  strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory)),
		RedisAddr:     sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "fvi-assessments"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     sharedcfg.EnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       sharedcfg.EnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		KnowledgeBasePath: os.Getenv("KNOWLEDGE_BASE_PATH"),

		DistrictsPath: os.Getenv("DISTRICTS_PATH"),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"WEATHER_TIMEOUT", "12s", &cfg.WeatherTimeout},
		{"ELEVATION_TIMEOUT", "8s", &cfg.ElevationTimeout},
		{"OVERPASS_TIMEOUT", "30s", &cfg.OverpassTimeout},
		{"CACHE_TTL", "1h", &cfg.CacheTTL},
		{"LLM_TIMEOUT", "60s", &cfg.LLMTimeout},
	}
	for _, d := range durations {
		if *d.dest, err = parseDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = parseInt("CACHE_SIZE", 1000); err != nil || cfg.CacheSize < 1 {
		return nil, errors.New("invalid CACHE_SIZE: must be a positive integer")
	}
	if cfg.RedisDB, err = parseInt("REDIS_DB", 0); err != nil || cfg.RedisDB < 0 {
		return nil, errors.New("invalid REDIS_DB: must be a non-negative integer")
	}

	radius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("HYDROLOGY_SEARCH_RADIUS", "10000"), 64)
	if err != nil || radius <= 0 {
		return nil, errors.New("invalid HYDROLOGY_SEARCH_RADIUS: must be a positive number of meters")
	}
	cfg.HydrologySearchRadius = radius

	if cfg.CacheBackend != CacheMemory && cfg.CacheBackend != CacheRedis {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: must be %s or %s", cfg.CacheBackend, CacheMemory, CacheRedis)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
