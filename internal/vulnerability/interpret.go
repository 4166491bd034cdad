package vulnerability

import (
	"fmt"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
)

// Risk levels in increasing severity.
const (
	RiskVeryLow  = "Very Low"
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

// CombinedFactors is reported when no single input crosses a threshold.
const CombinedFactors = "Moderate risk from combined factors"

// Interpret maps a score to its risk level. Each bucket includes its upper bound.
func Interpret(score float64) string {
	switch {
	case score <= 25:
		return RiskVeryLow
	case score <= 45:
		return RiskLow
	case score <= 65:
		return RiskModerate
	case score <= 85:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// KeyFactors lists the readings that push the score up, in a fixed order.
func KeyFactors(v domain.InputVector) []string {
	var factors []string

	switch {
	case v.Rainfall >= 50:
		factors = append(factors, fmt.Sprintf("Heavy recent rainfall (%.1f mm)", v.Rainfall))
	case v.Rainfall >= 20:
		factors = append(factors, fmt.Sprintf("Moderate rainfall (%.1f mm)", v.Rainfall))
	}

	switch {
	case v.Imperviousness >= 60:
		factors = append(factors, fmt.Sprintf("High imperviousness (%.1f%%)", v.Imperviousness))
	case v.Imperviousness >= 40:
		factors = append(factors, fmt.Sprintf("Moderate imperviousness (%.1f%%)", v.Imperviousness))
	}

	switch {
	case v.DistanceWater <= 500:
		factors = append(factors, fmt.Sprintf("Very close to water body (%.0f m)", v.DistanceWater))
	case v.DistanceWater <= 2000:
		factors = append(factors, fmt.Sprintf("Close to water body (%.0f m)", v.DistanceWater))
	}

	if v.Elevation <= 400 {
		factors = append(factors, fmt.Sprintf("Low elevation (%.0f m)", v.Elevation))
	}
	if v.Slope <= 5 {
		factors = append(factors, fmt.Sprintf("Very flat terrain (%.1f° slope)", v.Slope))
	}

	if len(factors) == 0 {
		return []string{CombinedFactors}
	}
	return factors
}
