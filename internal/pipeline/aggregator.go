package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

// Slope sampling: four points roughly 100 m north, south, east, and west of
// the target. The elevation spread is taken over a 200 m baseline.
const (
	slopeOffset   = 0.0009
	slopeBaseline = 200.0
)

// Fallback source names reported on Signals and in metrics.
const (
	SourceWeather   = "weather"
	SourceElevation = "elevation"
	SourceSlope     = "slope"
	SourceHydrology = "hydrology"
)

// Aggregator gathers the raw signal groups for a point. Every upstream
// failure is replaced by a static default, so Gather never fails.
type Aggregator struct {
	weather   domain.WeatherSource
	elevation domain.ElevationSource
	hydrology domain.HydrologySource
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewAggregator creates an Aggregator over the given sources.
func NewAggregator(w domain.WeatherSource, e domain.ElevationSource, h domain.HydrologySource, metrics *observability.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		weather:   w,
		elevation: e,
		hydrology: h,
		metrics:   metrics,
		logger:    logger,
	}
}

// Gather fetches weather, elevation, and hydrology concurrently, then derives
// slope from offset elevation samples. A nil profile uses the default
// socioeconomic values.
func (a *Aggregator) Gather(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile) domain.Signals {
	var (
		wg        sync.WaitGroup
		weather   domain.WeatherSignals
		weatherOK bool
		elev      float64
		elevOK    bool
		hydro     domain.HydrologySignals
		hydroOK   bool
	)

	wg.Go(func() {
		w, err := guard(SourceWeather, func() (domain.WeatherSignals, error) {
			return a.weather.Weather(ctx, lat, lon)
		})
		weather, weatherOK = w, a.check(SourceWeather, err, lat, lon)
	})
	wg.Go(func() {
		e, err := guard(SourceElevation, func() (float64, error) {
			return a.elevation.Elevation(ctx, lat, lon)
		})
		elev, elevOK = e, a.check(SourceElevation, err, lat, lon)
	})
	wg.Go(func() {
		h, err := guard(SourceHydrology, func() (domain.HydrologySignals, error) {
			return a.hydrology.Hydrology(ctx, lat, lon)
		})
		hydro, hydroOK = h, a.check(SourceHydrology, err, lat, lon)
	})
	wg.Wait()

	s := domain.Signals{Socioeconomic: domain.Socioeconomic(profile)}

	if weatherOK {
		s.Weather = weather
	} else {
		s.Weather = domain.DefaultWeather()
		s.Fallbacks = append(s.Fallbacks, SourceWeather)
	}

	s.Terrain.Elevation = elev
	if !elevOK {
		s.Terrain.Elevation = domain.DefaultElevation
		s.Fallbacks = append(s.Fallbacks, SourceElevation)
	}

	var center *float64
	if elevOK {
		center = &elev
	}
	slope, ok := a.slope(ctx, lat, lon, center)
	s.Terrain.Slope = slope
	if !ok {
		s.Fallbacks = append(s.Fallbacks, SourceSlope)
	}

	if hydroOK {
		s.Hydrology = hydro
	} else {
		s.Hydrology = domain.DefaultHydrology()
		s.Fallbacks = append(s.Fallbacks, SourceHydrology)
	}

	return s
}

// guard runs one upstream fetch, turning a panic into an error so the
// source falls back like any other failure.
func guard[T any](source string, fetch func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%s panic: %v", source, r)
		}
	}()
	return fetch()
}

// slope samples the four offset points concurrently and combines them with
// the center elevation when it is known. Fewer than two samples yields the
// default slope and ok=false.
func (a *Aggregator) slope(ctx context.Context, lat, lon float64, center *float64) (float64, bool) {
	offsets := [4][2]float64{
		{lat + slopeOffset, lon},
		{lat - slopeOffset, lon},
		{lat, lon + slopeOffset},
		{lat, lon - slopeOffset},
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		samples []float64
	)
	if center != nil {
		samples = append(samples, *center)
	}
	for _, p := range offsets {
		wg.Go(func() {
			e, err := guard(SourceSlope, func() (float64, error) {
				return a.elevation.Elevation(ctx, p[0], p[1])
			})
			if err != nil {
				a.logger.Debug("slope sample failed", "lat", p[0], "lon", p[1], "error", err)
				return
			}
			mu.Lock()
			samples = append(samples, e)
			mu.Unlock()
		})
	}
	wg.Wait()

	if len(samples) < 2 {
		a.logger.Warn("slope calculation failed, using default",
			"lat", lat, "lon", lon, "samples", len(samples), "slope", domain.DefaultSlope)
		a.metrics.SignalFallbacks.WithLabelValues(SourceSlope).Inc()
		return domain.DefaultSlope, false
	}
	return SlopeFromSamples(samples), true
}

// SlopeFromSamples converts the elevation spread of at least two samples to
// an angle in degrees over the sampling baseline, clamped to [0, 45].
func SlopeFromSamples(samples []float64) float64 {
	if len(samples) < 2 {
		return domain.DefaultSlope
	}
	diff := floats.Max(samples) - floats.Min(samples)
	deg := math.Atan(diff/slopeBaseline) * 180 / math.Pi
	return math.Max(0, math.Min(deg, domain.SlopeMax))
}

func (a *Aggregator) check(source string, err error, lat, lon float64) bool {
	if err == nil {
		return true
	}
	a.logger.Warn("signal fetch failed, using default", "source", source, "lat", lat, "lon", lon, "error", err)
	a.metrics.SignalFallbacks.WithLabelValues(source).Inc()
	return false
}
