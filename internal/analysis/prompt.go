package analysis

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
)

// SystemPrompt fixes the six report sections and their order.
const SystemPrompt = `Flood and Cloudburst Risk Assessment Report

### 1. Flood Risk Level
- Output a single risk category: Low / Moderate / High / Severe.
- Decide based on rainfall, soil moisture, slope, river flow, and other relevant factors.

### 2. Cloudburst Probability
- Output: Yes / No.
- Provide short reasoning: why you think this is likely or unlikely (mention rainfall trends, terrain, historical similarity, etc.).

### 3. Key Risk Factors
- List the most important 3-5 factors that influence the risk.
- Format: bullet points.
- Each factor should have a brief explanation (1-2 lines).
- Pick the factors that matter most for this location, for example rainfall intensity, soil moisture and drainage, terrain slope and elevation, river proximity and flow, or other local risks.

### 4. Historical & Geographical Context
- Summarize past cloudburst/flood incidents in this region (if known).
- Describe local terrain, elevation, drainage patterns, valleys, slopes, and ecological features that affect vulnerability.
- Keep it short but informative.

### 5. Recommendations
Split into two groups:

For Residents:
- Provide 3-4 clear, actionable safety steps (evacuation, shelter, monitoring, precautions).

For Authorities:
- Provide 3-4 preparedness and response steps (relief planning, resource allocation, public alerts, monitoring).

### 6. Future Prediction Report (24-72 hrs)
- Describe expected weather conditions (rainfall, temperature, humidity).
- Predict if risk levels may rise, stay same, or reduce.
- Highlight key indicators to monitor for escalating risk.

Guidelines:
- Always follow the section order and headings.
- Keep writing clear, concise, and structured.
- Focus on what is most relevant for this location and time.
`

// PlaceName is the district echoed in the result, or the coordinates.
func PlaceName(r domain.Result) string {
	if d := r.Inputs.Socioeconomic.District; d != "" {
		return d
	}
	if r.District != "" {
		return r.District
	}
	return fmt.Sprintf("Location at %.4f, %.4f", r.Location.Latitude, r.Location.Longitude)
}

// UserPrompt renders an assessment and its retrieved context as the question
// put to the model.
func UserPrompt(r domain.Result, ragContext string) string {
	in := r.Inputs
	var b strings.Builder

	b.WriteString("Here are the observed conditions and FVI analysis:\n\n")

	b.WriteString("LOCATION DETAILS:\n")
	fmt.Fprintf(&b, "- Place: %s\n", PlaceName(r))
	fmt.Fprintf(&b, "- Coordinates: %.4f, %.4f\n", r.Location.Latitude, r.Location.Longitude)
	fmt.Fprintf(&b, "- FVI Score: %v/100\n", r.FVIScore)
	fmt.Fprintf(&b, "- Risk Level: %s\n\n", r.RiskLevel)

	b.WriteString("WEATHER DATA:\n")
	fmt.Fprintf(&b, "- Current Rainfall: %v mm\n", in.Weather.CurrentRainfall)
	fmt.Fprintf(&b, "- Weekly Rainfall: %v mm\n", in.Weather.WeeklyRainfall)
	fmt.Fprintf(&b, "- Soil Moisture: %v%%\n", in.Weather.SoilMoisture*100)
	fmt.Fprintf(&b, "- Humidity: %v%%\n", in.Weather.Humidity)
	fmt.Fprintf(&b, "- Precipitation Probability: %v%%\n\n", in.Weather.PrecipitationProbability)

	b.WriteString("TERRAIN DATA:\n")
	fmt.Fprintf(&b, "- Elevation: %v m\n", in.Terrain.Elevation)
	fmt.Fprintf(&b, "- Slope: %v°\n\n", in.Terrain.Slope)

	b.WriteString("HYDROLOGY:\n")
	fmt.Fprintf(&b, "- Distance to Water: %v m\n", in.Hydrology.DistanceToWater)
	fmt.Fprintf(&b, "- Drainage Density: %v\n\n", in.Hydrology.DrainageDensity)

	b.WriteString("SOCIOECONOMIC:\n")
	fmt.Fprintf(&b, "- Population Density: %v people/km²\n", in.Socioeconomic.PopulationDensity)
	fmt.Fprintf(&b, "- Urbanization Level: %v%%\n", in.Socioeconomic.UrbanizationLevel)
	fmt.Fprintf(&b, "- Imperviousness: %v%%\n\n", in.Socioeconomic.Imperviousness)

	b.WriteString("KEY FACTORS IDENTIFIED:\n")
	b.WriteString(strings.Join(r.KeyFactors, ", "))
	b.WriteString("\n\n")

	b.WriteString("KNOWLEDGE BASE CONTEXT:\n")
	b.WriteString(ragContext)
	b.WriteString("\n\n")

	b.WriteString("Question: Provide a comprehensive flood and cloudburst risk assessment report for this location.\n")
	return b.String()
}
