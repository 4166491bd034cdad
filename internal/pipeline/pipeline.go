// Package pipeline runs one FVI assessment end to end: gather signals, score
// them, interpret the score, and optionally publish the result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
	"github.com/couchcryptid/flood-vulnerability-service/internal/vulnerability"
)

// SignalGatherer produces the raw signal groups for a point.
type SignalGatherer interface {
	Gather(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile) domain.Signals
}

// publishTimeout bounds one background publish, retries included.
const publishTimeout = 15 * time.Second

// ResultPublisher delivers finished assessments downstream.
type ResultPublisher interface {
	Publish(ctx context.Context, result domain.Result) error
}

// Calculator orchestrates gather, evaluate, and interpret.
type Calculator struct {
	gatherer  SignalGatherer
	engine    *vulnerability.Engine
	publisher ResultPublisher
	metrics   *observability.Metrics
	logger    *slog.Logger

	pending sync.WaitGroup
}

// NewCalculator creates a Calculator. Pass a nil publisher to disable
// publishing.
func NewCalculator(g SignalGatherer, engine *vulnerability.Engine, publisher ResultPublisher, metrics *observability.Metrics, logger *slog.Logger) *Calculator {
	c := &Calculator{
		gatherer:  g,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
	if c.CheckReadiness(context.Background()) == nil {
		metrics.ModelReady.Set(1)
	}
	return c
}

// CheckReadiness returns nil once the fuzzy model has been built.
func (c *Calculator) CheckReadiness(_ context.Context) error {
	if c.engine == nil || c.engine.Model() == nil {
		return errors.New("fuzzy model has not been built")
	}
	return nil
}

// Calculate assesses a coordinate pair with an optional socioeconomic
// profile. It always returns a Result: upstream failures use defaults and
// inference failures use the fallback heuristic.
func (c *Calculator) Calculate(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile) domain.Result {
	return c.calculate(ctx, lat, lon, profile, "")
}

// CalculateDistrict assesses a named district at its fixed coordinates.
func (c *Calculator) CalculateDistrict(ctx context.Context, d domain.District) domain.Result {
	profile := d.DistrictProfile
	return c.calculate(ctx, d.Lat, d.Lon, &profile, d.Name)
}

func (c *Calculator) calculate(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile, district string) domain.Result {
	start := time.Now()

	signals := c.gather(ctx, lat, lon, profile)
	signals.Socioeconomic.District = district
	inputs := domain.NewInputVector(signals)

	eval := c.engine.Evaluate(inputs)
	score, level := scoreAndLevel(eval.Score)

	result := domain.Result{
		ID:        uuid.NewString(),
		Location:  domain.Location{Latitude: lat, Longitude: lon},
		District:  district,
		FVIScore:  score,
		RiskLevel: level,
		Inference: eval.Method,
		Inputs: domain.Inputs{
			Weather:         signals.Weather,
			Terrain:         signals.Terrain,
			Hydrology:       signals.Hydrology,
			Socioeconomic:   signals.Socioeconomic,
			ProcessedInputs: inputs,
		},
		KeyFactors: vulnerability.KeyFactors(inputs),
		Fallbacks:  signals.Fallbacks,
		Timestamp:  domain.UnixSeconds(domain.Now()),
	}

	c.metrics.Calculations.WithLabelValues(eval.Method).Inc()
	c.metrics.Score.Observe(score)
	c.metrics.CalculationDuration.Observe(time.Since(start).Seconds())

	c.logger.Info("fvi calculated",
		"id", result.ID,
		"lat", lat,
		"lon", lon,
		"district", district,
		"fvi", score,
		"risk_level", result.RiskLevel,
		"inference", eval.Method,
		"fallbacks", len(signals.Fallbacks),
	)

	c.publish(ctx, result)
	return result
}

// scoreAndLevel rounds the defuzzified value to two decimals and labels the
// rounded score, so the reported score and level never disagree.
func scoreAndLevel(raw float64) (float64, string) {
	score := domain.RoundScore(raw)
	return score, vulnerability.Interpret(score)
}

// gather shields the calculation from a faulty gatherer: a panic yields the
// all-default signal set.
func (c *Calculator) gather(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile) (s domain.Signals) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("signal gathering panicked, using defaults", "lat", lat, "lon", lon, "panic", r)
			s = DefaultSignals(profile)
		}
	}()
	return c.gatherer.Gather(ctx, lat, lon, profile)
}

// DefaultSignals is the signal set used when nothing upstream is reachable.
func DefaultSignals(profile *domain.DistrictProfile) domain.Signals {
	return domain.Signals{
		Weather:       domain.DefaultWeather(),
		Terrain:       domain.TerrainSignals{Elevation: domain.DefaultElevation, Slope: domain.DefaultSlope},
		Hydrology:     domain.DefaultHydrology(),
		Socioeconomic: domain.Socioeconomic(profile),
		Fallbacks:     []string{SourceWeather, SourceElevation, SourceSlope, SourceHydrology},
	}
}

// publish hands the result to the publisher in the background. The request
// context is detached; delivery is bounded by publishTimeout instead.
func (c *Calculator) publish(ctx context.Context, result domain.Result) {
	if c.publisher == nil {
		return
	}
	c.pending.Go(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := c.publisher.Publish(ctx, result); err != nil {
			c.logger.Error("publish assessment failed", "id", result.ID, "error", err)
		}
	})
}

// Flush blocks until every background publish has finished.
func (c *Calculator) Flush() {
	c.pending.Wait()
}
