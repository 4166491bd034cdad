package domain

import (
	"math"
	"time"
)

// Universe bounds of the six fuzzy input variables.
const (
	RainfallMax       = 200.0
	SlopeMax          = 45.0
	ImperviousnessMax = 100.0
	DistanceWaterMax  = 10000.0
	SoilMoistureMax   = 1.0
	ElevationMax      = 3000.0
)

// Inference methods reported on a Result.
const (
	InferenceFuzzy    = "fuzzy"
	InferenceFallback = "fallback"
)

// InputVector is the six-signal input to the vulnerability model.
type InputVector struct {
	Rainfall       float64 `json:"rainfall"`
	Slope          float64 `json:"slope"`
	Imperviousness float64 `json:"imperviousness"`
	DistanceWater  float64 `json:"distance_water"`
	SoilMoisture   float64 `json:"soil_moisture"`
	Elevation      float64 `json:"elevation"`
}

// NewInputVector selects the model inputs from the raw signal groups and clamps them.
func NewInputVector(s Signals) InputVector {
	return InputVector{
		Rainfall:       s.Weather.CurrentRainfall,
		Slope:          s.Terrain.Slope,
		Imperviousness: s.Socioeconomic.Imperviousness,
		DistanceWater:  s.Hydrology.DistanceToWater,
		SoilMoisture:   s.Weather.SoilMoisture,
		Elevation:      s.Terrain.Elevation,
	}.Clamp()
}

// Clamp returns a copy with every reading limited to its universe bounds.
func (v InputVector) Clamp() InputVector {
	return InputVector{
		Rainfall:       clamp(v.Rainfall, 0, RainfallMax),
		Slope:          clamp(v.Slope, 0, SlopeMax),
		Imperviousness: clamp(v.Imperviousness, 0, ImperviousnessMax),
		DistanceWater:  clamp(v.DistanceWater, 0, DistanceWaterMax),
		SoilMoisture:   clamp(v.SoilMoisture, 0, SoilMoistureMax),
		Elevation:      clamp(v.Elevation, 0, ElevationMax),
	}
}

// clamp limits v to [lo, hi]. NaN collapses to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// Location is a WGS-84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Inputs echoes every raw signal group plus the clamped model inputs.
type Inputs struct {
	Weather         WeatherSignals       `json:"weather"`
	Terrain         TerrainSignals       `json:"terrain"`
	Hydrology       HydrologySignals     `json:"hydrology"`
	Socioeconomic   SocioeconomicSignals `json:"socioeconomic"`
	ProcessedInputs InputVector          `json:"processed_inputs"`
}

// Result is one FVI assessment. It is the contract consumed by the risk
// analysis report and the front end.
type Result struct {
	ID         string   `json:"id"`
	Location   Location `json:"location"`
	District   string   `json:"district,omitempty"`
	FVIScore   float64  `json:"fvi_score"`
	RiskLevel  string   `json:"risk_level"`
	Inference  string   `json:"inference"`
	Inputs     Inputs   `json:"inputs"`
	KeyFactors []string `json:"key_factors"`
	Fallbacks  []string `json:"fallbacks,omitempty"`
	Timestamp  float64  `json:"timestamp"`
}

// UnixSeconds converts t to fractional Unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// ComputedAt returns the result timestamp as a time.Time.
func (r Result) ComputedAt() time.Time {
	sec, frac := math.Modf(r.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// RoundScore rounds a score to two decimals.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
