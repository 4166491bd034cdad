// Package app wires configuration into the assessment components shared by
// the service and the command-line calculator.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/cache"
	kafkaadapter "github.com/couchcryptid/flood-vulnerability-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/openai"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/openelevation"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/overpass"
	"github.com/couchcryptid/flood-vulnerability-service/internal/analysis"
	"github.com/couchcryptid/flood-vulnerability-service/internal/config"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
	"github.com/couchcryptid/flood-vulnerability-service/internal/pipeline"
	"github.com/couchcryptid/flood-vulnerability-service/internal/vulnerability"
)

const redisKeyPrefix = "fvi:"

// App holds the wired components. Close releases broker and cache
// connections.
type App struct {
	Calculator *pipeline.Calculator
	Reporter   *analysis.Reporter
	Districts  *domain.DistrictTable

	closers []func() error
}

// New builds every component described by cfg. The fuzzy model is built
// eagerly; a model that fails to build aborts startup.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*App, error) {
	a := &App{}

	districts, err := loadDistricts(cfg)
	if err != nil {
		return nil, err
	}
	a.Districts = districts

	engine, err := vulnerability.NewEngine(logger)
	if err != nil {
		return nil, fmt.Errorf("build fuzzy model: %w", err)
	}

	var (
		weather   domain.WeatherSource   = openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics)
		elevation domain.ElevationSource = openelevation.NewClient(cfg.ElevationBaseURL, cfg.ElevationTimeout, metrics)
		hydrology domain.HydrologySource = overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, cfg.HydrologySearchRadius, metrics)
	)
	if cfg.CacheEnabled {
		store, err := a.newStore(ctx, cfg)
		if err != nil {
			a.Close() //nolint:errcheck // startup failure path
			return nil, err
		}
		weather = cache.NewCachedWeather(weather, store, metrics, logger)
		elevation = cache.NewCachedElevation(elevation, store, metrics, logger)
		hydrology = cache.NewCachedHydrology(hydrology, store, metrics, logger)
		logger.Info("signal cache enabled", "backend", cfg.CacheBackend)
	} else {
		logger.Info("signal cache disabled")
	}

	var publisher pipeline.ResultPublisher
	if cfg.KafkaEnabled {
		p := kafkaadapter.NewPublisher(cfg, metrics, logger)
		a.closers = append(a.closers, p.Close)
		publisher = p
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	agg := pipeline.NewAggregator(weather, elevation, hydrology, metrics, logger)
	a.Calculator = pipeline.NewCalculator(agg, engine, publisher, metrics, logger)

	kb, err := loadKnowledgeBase(cfg, logger)
	if err != nil {
		a.Close() //nolint:errcheck // startup failure path
		return nil, err
	}
	var llm analysis.LLM
	if cfg.LLMEnabled() {
		llm = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMTimeout)
		logger.Info("risk analysis enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Info("risk analysis disabled, OPENAI_API_KEY not set")
	}
	a.Reporter = analysis.NewReporter(kb, llm, metrics, logger)

	return a, nil
}

func (a *App) newStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.CacheBackend != config.CacheRedis {
		s, err := cache.NewLRUStore(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck // connection never established
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewRedisStore(client, cfg.CacheTTL, redisKeyPrefix), nil
}

func loadDistricts(cfg *config.Config) (*domain.DistrictTable, error) {
	if cfg.DistrictsPath == "" {
		return domain.BuiltinDistricts(), nil
	}
	return domain.LoadDistricts(cfg.DistrictsPath)
}

// loadKnowledgeBase returns nil when no path is configured, which yields the
// "not available" context.
func loadKnowledgeBase(cfg *config.Config, logger *slog.Logger) (analysis.ContextProvider, error) {
	if cfg.KnowledgeBasePath == "" {
		return nil, nil
	}
	kb, err := analysis.LoadKnowledgeBase(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("knowledge base loaded", "path", cfg.KnowledgeBasePath, "documents", kb.Len())
	return kb, nil
}

// Close waits for in-flight publishes, then releases held connections,
// returning every error encountered.
func (a *App) Close() error {
	if a.Calculator != nil {
		a.Calculator.Flush()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
