package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

// Key formats the memo key for a signal kind at a point.
func Key(kind string, lat, lon float64) string {
	return fmt.Sprintf("%s_%.5f_%.5f", kind, lat, lon)
}

// memo wraps a fetch with a read-through lookup. Store failures are logged
// and treated as misses so the cache never breaks a calculation.
type memo[T any] struct {
	store   Store
	kind    string
	source  string
	metrics *observability.Metrics
	logger  *slog.Logger
}

func (m memo[T]) fetch(ctx context.Context, lat, lon float64, inner func(context.Context, float64, float64) (T, error)) (T, error) {
	key := Key(m.kind, lat, lon)

	data, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("signal cache read failed", "key", key, "error", err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			m.record("hit")
			return v, nil
		}
		m.logger.Warn("discarding corrupt cache entry", "key", key)
	}
	m.record("miss")

	v, err := inner(ctx, lat, lon)
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := m.store.Set(ctx, key, data); err != nil {
			m.logger.Warn("signal cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

func (m memo[T]) record(result string) {
	if m.metrics != nil {
		m.metrics.SignalCache.WithLabelValues(m.source, result).Inc()
	}
}

// CachedWeather memoizes a WeatherSource.
type CachedWeather struct {
	inner domain.WeatherSource
	memo  memo[domain.WeatherSignals]
}

// NewCachedWeather creates a cache decorator around a weather source.
func NewCachedWeather(inner domain.WeatherSource, store Store, metrics *observability.Metrics, logger *slog.Logger) *CachedWeather {
	return &CachedWeather{
		inner: inner,
		memo:  memo[domain.WeatherSignals]{store: store, kind: "weather", source: "weather", metrics: metrics, logger: logger},
	}
}

func (c *CachedWeather) Weather(ctx context.Context, lat, lon float64) (domain.WeatherSignals, error) {
	return c.memo.fetch(ctx, lat, lon, c.inner.Weather)
}

// CachedElevation memoizes an ElevationSource. Slope sampling reuses it, so
// neighboring points are cached too.
type CachedElevation struct {
	inner domain.ElevationSource
	memo  memo[float64]
}

// NewCachedElevation creates a cache decorator around an elevation source.
func NewCachedElevation(inner domain.ElevationSource, store Store, metrics *observability.Metrics, logger *slog.Logger) *CachedElevation {
	return &CachedElevation{
		inner: inner,
		memo:  memo[float64]{store: store, kind: "elev", source: "elevation", metrics: metrics, logger: logger},
	}
}

func (c *CachedElevation) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	return c.memo.fetch(ctx, lat, lon, c.inner.Elevation)
}

// CachedHydrology memoizes a HydrologySource.
type CachedHydrology struct {
	inner domain.HydrologySource
	memo  memo[domain.HydrologySignals]
}

// NewCachedHydrology creates a cache decorator around a hydrology source.
func NewCachedHydrology(inner domain.HydrologySource, store Store, metrics *observability.Metrics, logger *slog.Logger) *CachedHydrology {
	return &CachedHydrology{
		inner: inner,
		memo:  memo[domain.HydrologySignals]{store: store, kind: "hydro", source: "hydrology", metrics: metrics, logger: logger},
	}
}

func (c *CachedHydrology) Hydrology(ctx context.Context, lat, lon float64) (domain.HydrologySignals, error) {
	return c.memo.fetch(ctx, lat, lon, c.inner.Hydrology)
}
