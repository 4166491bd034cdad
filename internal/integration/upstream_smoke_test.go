//go:build smoke

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/openelevation"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/overpass"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
)

// These tests hit the public upstream APIs.
// Run with: go test -tags=smoke ./internal/integration/ -run Smoke -v -count=1

// Haridwar sits on the Ganga.
const (
	smokeLat = 29.9457
	smokeLon = 78.1642
)

func TestSmoke_OpenMeteo(t *testing.T) {
	c := openmeteo.NewClient("https://api.open-meteo.com/v1/forecast", 15*time.Second, observability.NewMetricsForTesting())

	w, err := c.Weather(context.Background(), smokeLat, smokeLon)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, w.CurrentRainfall, 0.0)
	assert.GreaterOrEqual(t, w.WeeklyRainfall, 0.0)
	assert.InDelta(t, 50, w.Humidity, 50)
}

func TestSmoke_OpenElevation(t *testing.T) {
	c := openelevation.NewClient("https://api.open-elevation.com/api/v1/lookup", 15*time.Second, observability.NewMetricsForTesting())

	elev, err := c.Elevation(context.Background(), smokeLat, smokeLon)
	require.NoError(t, err)

	assert.InDelta(t, 300, elev, 100, "Haridwar lies near 300 m")
}

func TestSmoke_Overpass(t *testing.T) {
	c := overpass.NewClient("https://overpass-api.de/api/interpreter", 60*time.Second, 10000, observability.NewMetricsForTesting())

	h, err := c.Hydrology(context.Background(), smokeLat, smokeLon)
	require.NoError(t, err)

	assert.Less(t, h.DistanceToWater, 2000.0, "the Ganga is within 2 km")
	assert.Equal(t, 6.0, h.DrainageDensity)
}
