package domain

import "context"

// WeatherSource fetches aggregated weather metrics for a point.
type WeatherSource interface {
	Weather(ctx context.Context, lat, lon float64) (WeatherSignals, error)
}

// ElevationSource fetches the ground elevation (m) at a point.
type ElevationSource interface {
	Elevation(ctx context.Context, lat, lon float64) (float64, error)
}

// HydrologySource locates the nearest mapped water feature around a point.
type HydrologySource interface {
	Hydrology(ctx context.Context, lat, lon float64) (HydrologySignals, error)
}
