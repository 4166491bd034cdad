package domain

import "math"

// Fallback values used when an upstream source cannot be reached.
const (
	DefaultRainfall                 = 10.0
	DefaultWeeklyRainfall           = 50.0
	DefaultSoilMoisture             = 0.3
	DefaultHumidity                 = 70.0
	DefaultTemperature              = 20.0
	DefaultPrecipitationProbability = 20.0

	DefaultElevation = 500.0
	DefaultSlope     = 8.0

	DefaultDistanceToWater   = 2000.0
	DefaultDrainageDensity   = 7.0
	DefaultPopulationDensity = 180.0
	DefaultUrbanization      = 25.0
	DefaultDevPressure       = 40.0

	// MeasuredSoilMoisture is reported alongside live weather because no
	// upstream source supplies soil moisture.
	MeasuredSoilMoisture = 0.25
)

// WeatherSignals holds the aggregated weather metrics for a point.
type WeatherSignals struct {
	CurrentRainfall          float64 `json:"current_rainfall"`
	WeeklyRainfall           float64 `json:"weekly_rainfall"`
	SoilMoisture             float64 `json:"soil_moisture"`
	Humidity                 float64 `json:"humidity"`
	Temperature              float64 `json:"temperature"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
}

// DefaultWeather returns the weather fallback.
func DefaultWeather() WeatherSignals {
	return WeatherSignals{
		CurrentRainfall:          DefaultRainfall,
		WeeklyRainfall:           DefaultWeeklyRainfall,
		SoilMoisture:             DefaultSoilMoisture,
		Humidity:                 DefaultHumidity,
		Temperature:              DefaultTemperature,
		PrecipitationProbability: DefaultPrecipitationProbability,
	}
}

// TerrainSignals holds elevation (m) and slope (degrees).
type TerrainSignals struct {
	Elevation float64 `json:"elevation"`
	Slope     float64 `json:"slope"`
}

// HydrologySignals holds the distance to the nearest water feature (m) and a
// coarse drainage-density proxy.
type HydrologySignals struct {
	DistanceToWater float64 `json:"distance_to_water"`
	DrainageDensity float64 `json:"drainage_density"`
}

// DefaultHydrology returns the hydrology fallback.
func DefaultHydrology() HydrologySignals {
	return HydrologySignals{
		DistanceToWater: DefaultDistanceToWater,
		DrainageDensity: DefaultDrainageDensity,
	}
}

// DrainageDensityAt is a latitude-band proxy, not derived from drainage data.
func DrainageDensityAt(lat float64) float64 {
	if lat > 30.0 {
		return 8.0
	}
	return 6.0
}

// DistrictProfile is the socioeconomic profile of a named place.
type DistrictProfile struct {
	PopulationDensity float64 `json:"pop_density" yaml:"pop_density"`
	Urbanization      float64 `json:"urbanization" yaml:"urbanization"`
	DevPressure       float64 `json:"dev_pressure" yaml:"dev_pressure"`
}

// SocioeconomicSignals holds population and land-use indicators.
type SocioeconomicSignals struct {
	PopulationDensity   float64 `json:"population_density"`
	UrbanizationLevel   float64 `json:"urbanization_level"`
	Imperviousness      float64 `json:"imperviousness"`
	DevelopmentPressure float64 `json:"development_pressure"`
	District            string  `json:"district,omitempty"`
}

// DefaultDistrictProfile is the profile assumed for places outside the
// district table.
func DefaultDistrictProfile() DistrictProfile {
	return DistrictProfile{
		PopulationDensity: DefaultPopulationDensity,
		Urbanization:      DefaultUrbanization,
		DevPressure:       DefaultDevPressure,
	}
}

// Socioeconomic derives the socioeconomic group from an optional profile.
// A nil profile uses the defaults 180 / 25 / 40.
func Socioeconomic(profile *DistrictProfile) SocioeconomicSignals {
	p := DefaultDistrictProfile()
	if profile != nil {
		p = *profile
	}
	return SocioeconomicSignals{
		PopulationDensity:   p.PopulationDensity,
		UrbanizationLevel:   p.Urbanization,
		Imperviousness:      EstimateImperviousness(p.Urbanization, p.DevPressure),
		DevelopmentPressure: p.DevPressure,
	}
}

// EstimateImperviousness approximates impervious surface cover (%) from
// urbanization and development pressure, capped at 95.
func EstimateImperviousness(urbanization, devPressure float64) float64 {
	return math.Min(95.0, urbanization*0.8+devPressure*0.3)
}

// Signals is the complete set of raw signal groups for one assessment.
type Signals struct {
	Weather       WeatherSignals
	Terrain       TerrainSignals
	Hydrology     HydrologySignals
	Socioeconomic SocioeconomicSignals

	// Fallbacks lists the sources that were replaced by their static defaults.
	Fallbacks []string
}
