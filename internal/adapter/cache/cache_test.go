package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- mocks for cache tests ---

type countingWeather struct {
	mu    sync.Mutex
	calls int
	err   error
	out   domain.WeatherSignals
}

func (m *countingWeather) Weather(_ context.Context, _, _ float64) (domain.WeatherSignals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.out, m.err
}

type countingElevation struct {
	calls int
	elev  float64
}

func (m *countingElevation) Elevation(_ context.Context, lat, _ float64) (float64, error) {
	m.calls++
	return m.elev + lat, nil
}

type countingHydrology struct {
	calls int
}

func (m *countingHydrology) Hydrology(_ context.Context, lat, _ float64) (domain.HydrologySignals, error) {
	m.calls++
	return domain.HydrologySignals{DistanceToWater: 420, DrainageDensity: domain.DrainageDensityAt(lat)}, nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func newLRU(t *testing.T, size int) *LRUStore {
	t.Helper()
	s, err := NewLRUStore(size)
	require.NoError(t, err)
	return s
}

// --- decorator tests ---

func TestKey(t *testing.T) {
	assert.Equal(t, "weather_30.31650_78.03220", Key("weather", 30.3165, 78.0322))
	assert.Equal(t, "elev_-1.00000_0.12346", Key("elev", -1, 0.123456))
}

func TestCachedWeather_Hit(t *testing.T) {
	inner := &countingWeather{out: domain.WeatherSignals{CurrentRainfall: 12.5, SoilMoisture: 0.25}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedWeather(inner, newLRU(t, 10), metrics, discard)

	w1, err := cached.Weather(context.Background(), 30.3165, 78.0322)
	require.NoError(t, err)
	w2, err := cached.Weather(context.Background(), 30.3165, 78.0322)
	require.NoError(t, err)

	assert.Equal(t, w1, w2)
	assert.Equal(t, 12.5, w2.CurrentRainfall)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SignalCache.WithLabelValues("weather", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SignalCache.WithLabelValues("weather", "miss")))
}

func TestCachedWeather_ErrorsNotCached(t *testing.T) {
	inner := &countingWeather{err: errors.New("upstream down")}
	cached := NewCachedWeather(inner, newLRU(t, 10), observability.NewMetricsForTesting(), discard)

	_, err := cached.Weather(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = cached.Weather(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedElevation_DifferentKeysMiss(t *testing.T) {
	inner := &countingElevation{elev: 100}
	cached := NewCachedElevation(inner, newLRU(t, 10), nil, discard)

	a, _ := cached.Elevation(context.Background(), 30.0, 78.0)
	b, _ := cached.Elevation(context.Background(), 30.0009, 78.0)
	c, _ := cached.Elevation(context.Background(), 30.0, 78.0)

	assert.Equal(t, 130.0, a)
	assert.InDelta(t, 130.0009, b, 1e-9)
	assert.Equal(t, a, c)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedHydrology_Hit(t *testing.T) {
	inner := &countingHydrology{}
	cached := NewCachedHydrology(inner, newLRU(t, 10), nil, discard)

	for range 3 {
		h, err := cached.Hydrology(context.Background(), 31, 78)
		require.NoError(t, err)
		assert.Equal(t, 420.0, h.DistanceToWater)
		assert.Equal(t, 8.0, h.DrainageDensity)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCached_BrokenStoreFallsThrough(t *testing.T) {
	inner := &countingWeather{out: domain.WeatherSignals{CurrentRainfall: 3}}
	cached := NewCachedWeather(inner, brokenStore{}, nil, discard)

	w, err := cached.Weather(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, w.CurrentRainfall)

	_, err = cached.Weather(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCached_CorruptEntryRefetched(t *testing.T) {
	store := newLRU(t, 10)
	require.NoError(t, store.Set(context.Background(), Key("weather", 1, 2), []byte("not json")))

	inner := &countingWeather{out: domain.WeatherSignals{CurrentRainfall: 7}}
	cached := NewCachedWeather(inner, store, nil, discard)

	w, err := cached.Weather(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.0, w.CurrentRainfall)
	assert.Equal(t, 1, inner.calls)
}

func TestCached_ConcurrentWriters(t *testing.T) {
	inner := &countingWeather{out: domain.WeatherSignals{CurrentRainfall: 9}}
	cached := NewCachedWeather(inner, newLRU(t, 100), nil, discard)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := cached.Weather(context.Background(), float64(i%5), 0)
			assert.NoError(t, err)
			assert.Equal(t, 9.0, w.CurrentRainfall)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, inner.calls, 5)
	assert.LessOrEqual(t, inner.calls, 50)
}

// --- store tests ---

func TestLRUStore_Evicts(t *testing.T) {
	s := newLRU(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	_, _, _ = s.Get(ctx, "a") // a is now most recently used
	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, s.Len())
}

func TestLRUStore_InvalidSize(t *testing.T) {
	_, err := NewLRUStore(0)
	require.Error(t, err)
}

// fakeRedis implements the two commands RedisStore issues.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	switch v, ok := f.data[key]; {
	case f.err != nil:
		cmd.SetErr(f.err)
	case !ok:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(v)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func TestRedisStore(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	s := NewRedisStore(fake, time.Hour, "fvi:")
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "weather_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "weather_1", []byte(`{"current_rainfall":4}`)))
	assert.Equal(t, time.Hour, fake.ttl["fvi:weather_1"])

	v, ok, err := s.Get(ctx, "weather_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"current_rainfall":4}`, string(v))
}

func TestRedisStore_Errors(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}, err: errors.New("i/o timeout")}
	s := NewRedisStore(fake, time.Minute, "")

	_, ok, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
	require.Error(t, s.Set(context.Background(), "k", []byte("v")))
}
