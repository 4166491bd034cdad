package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocioeconomic_Defaults(t *testing.T) {
	s := Socioeconomic(nil)

	assert.Equal(t, 180.0, s.PopulationDensity)
	assert.Equal(t, 25.0, s.UrbanizationLevel)
	assert.Equal(t, 40.0, s.DevelopmentPressure)
	// 25*0.8 + 40*0.3
	assert.InDelta(t, 32.0, s.Imperviousness, 1e-9)
}

func TestSocioeconomic_Profile(t *testing.T) {
	s := Socioeconomic(&DistrictProfile{PopulationDensity: 550, Urbanization: 65, DevPressure: 80})

	assert.Equal(t, 550.0, s.PopulationDensity)
	assert.Equal(t, 65.0, s.UrbanizationLevel)
	assert.InDelta(t, 76.0, s.Imperviousness, 1e-9)
}

func TestEstimateImperviousness_Capped(t *testing.T) {
	assert.Equal(t, 95.0, EstimateImperviousness(100, 100))
	assert.InDelta(t, 0.0, EstimateImperviousness(0, 0), 1e-9)
}

func TestDrainageDensityAt(t *testing.T) {
	assert.Equal(t, 8.0, DrainageDensityAt(30.3165))
	assert.Equal(t, 6.0, DrainageDensityAt(30.0))
	assert.Equal(t, 6.0, DrainageDensityAt(29.9457))
}

func TestDefaultWeather(t *testing.T) {
	w := DefaultWeather()

	assert.Equal(t, WeatherSignals{
		CurrentRainfall:          10,
		WeeklyRainfall:           50,
		SoilMoisture:             0.3,
		Humidity:                 70,
		Temperature:              20,
		PrecipitationProbability: 20,
	}, w)
}

func TestDefaultHydrology(t *testing.T) {
	assert.Equal(t, HydrologySignals{DistanceToWater: 2000, DrainageDensity: 7}, DefaultHydrology())
}
