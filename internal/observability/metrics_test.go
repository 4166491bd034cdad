package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/flood-vulnerability-service/internal/config"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Calculations.WithLabelValues("fuzzy").Inc()
	a.SignalCache.WithLabelValues("weather", "hit").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Calculations.WithLabelValues("fuzzy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.SignalCache.WithLabelValues("weather", "hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Calculations.WithLabelValues("fuzzy")))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"}))
	assert.NotNil(t, NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"}))
}
