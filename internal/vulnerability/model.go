// Package vulnerability holds the flood-vulnerability rule base and turns a
// clamped input vector into a 0-100 score, a risk label, and the factors
// that drove it.
package vulnerability

import (
	"fmt"

	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/fuzzy"
)

// Variable names used by the rule base.
const (
	Rainfall       = "rainfall"
	Slope          = "slope"
	Imperviousness = "imperviousness"
	DistanceWater  = "distance_water"
	SoilMoisture   = "soil_moisture"
	Elevation      = "elevation"
	FVI            = "fvi"
)

type variableDef struct {
	name     string
	universe fuzzy.Universe
	terms    []fuzzy.Term
}

func term(name string, mf fuzzy.MembershipFunc) fuzzy.Term {
	return fuzzy.Term{Name: name, MF: mf}
}

var inputDefs = []variableDef{
	{Rainfall, fuzzy.Universe{Min: 0, Max: domain.RainfallMax, Step: 1}, []fuzzy.Term{
		term("very_low", fuzzy.Trap(0, 0, 2, 8)),
		term("low", fuzzy.Tri(5, 15, 30)),
		term("moderate", fuzzy.Tri(25, 50, 80)),
		term("high", fuzzy.Tri(70, 100, 150)),
		term("extreme", fuzzy.Trap(120, 150, 200, 200)),
	}},
	{Slope, fuzzy.Universe{Min: 0, Max: domain.SlopeMax, Step: 1}, []fuzzy.Term{
		term("flat", fuzzy.Trap(0, 0, 3, 8)),
		term("gentle", fuzzy.Tri(5, 12, 20)),
		term("moderate", fuzzy.Tri(15, 25, 35)),
		term("steep", fuzzy.Trap(30, 35, 45, 45)),
	}},
	{Imperviousness, fuzzy.Universe{Min: 0, Max: domain.ImperviousnessMax, Step: 1}, []fuzzy.Term{
		term("low", fuzzy.Trap(0, 0, 20, 40)),
		term("medium", fuzzy.Tri(30, 50, 70)),
		term("high", fuzzy.Trap(60, 80, 100, 100)),
	}},
	{DistanceWater, fuzzy.Universe{Min: 0, Max: domain.DistanceWaterMax, Step: 1}, []fuzzy.Term{
		term("very_near", fuzzy.Trap(0, 0, 100, 500)),
		term("near", fuzzy.Tri(300, 1000, 2000)),
		term("moderate", fuzzy.Tri(1500, 3000, 5000)),
		term("far", fuzzy.Trap(4000, 6000, 10000, 10000)),
	}},
	{SoilMoisture, fuzzy.Universe{Min: 0, Max: domain.SoilMoistureMax, Step: 0.01}, []fuzzy.Term{
		term("dry", fuzzy.Trap(0, 0, 0.2, 0.4)),
		term("moderate", fuzzy.Tri(0.3, 0.5, 0.7)),
		term("saturated", fuzzy.Trap(0.6, 0.8, 1, 1)),
	}},
	{Elevation, fuzzy.Universe{Min: 0, Max: domain.ElevationMax, Step: 1}, []fuzzy.Term{
		term("low", fuzzy.Trap(0, 0, 300, 600)),
		term("mid", fuzzy.Tri(400, 1000, 1800)),
		term("high", fuzzy.Trap(1500, 2000, 3000, 3000)),
	}},
}

var outputDef = variableDef{FVI, fuzzy.Universe{Min: 0, Max: 100, Step: 1}, []fuzzy.Term{
	term("very_low", fuzzy.Trap(0, 0, 15, 25)),
	term("low", fuzzy.Tri(20, 30, 45)),
	term("moderate", fuzzy.Tri(40, 50, 65)),
	term("high", fuzzy.Tri(60, 75, 85)),
	term("very_high", fuzzy.Trap(80, 90, 100, 100)),
}}

var is = fuzzy.Is

// Rules is the flood-vulnerability rule base in evaluation order.
var Rules = []fuzzy.Rule{
	fuzzy.When(is(Imperviousness, "high"), is(DistanceWater, "very_near")).Conclude("very_high"),
	fuzzy.When(is(Imperviousness, "high"), is(Rainfall, "high")).Conclude("very_high"),
	fuzzy.When(is(Imperviousness, "high"), is(Rainfall, "moderate")).Conclude("high"),
	fuzzy.When(is(Imperviousness, "high")).Conclude("moderate"),
	fuzzy.When(is(DistanceWater, "very_near"), is(Elevation, "low")).Conclude("high"),
	fuzzy.When(is(DistanceWater, "very_near"), is(Rainfall, "moderate")).Conclude("high"),
	fuzzy.When(is(DistanceWater, "very_near")).Conclude("moderate"),
	fuzzy.When(is(Rainfall, "extreme")).Conclude("very_high"),
	fuzzy.When(is(Rainfall, "high"), is(Slope, "flat")).Conclude("high"),
	fuzzy.When(is(Rainfall, "high")).Conclude("moderate"),
	fuzzy.When(is(Rainfall, "moderate"), is(Slope, "flat")).Conclude("moderate"),
	fuzzy.When(is(Slope, "flat"), is(Elevation, "low")).Conclude("moderate"),
	fuzzy.When(is(Slope, "steep"), is(Rainfall, "high")).Conclude("high"),
	fuzzy.When(is(Imperviousness, "low"), is(DistanceWater, "far"), is(Elevation, "high")).Conclude("very_low"),
	fuzzy.When(is(Rainfall, "very_low"), is(DistanceWater, "far")).Conclude("low"),
	fuzzy.When(is(Elevation, "high"), is(Slope, "steep"), is(Rainfall, "low")).Conclude("low"),
	fuzzy.When(is(SoilMoisture, "moderate"), is(Rainfall, "low")).Conclude("low"),
	fuzzy.When(is(Elevation, "mid"), is(Imperviousness, "medium")).Conclude("moderate"),
}

// BuildModel constructs the six input variables, the fvi output, and the
// rule base. It fails if any rule references an undefined term.
func BuildModel() (*fuzzy.Model, error) {
	return buildModel(Rules)
}

func buildModel(rules []fuzzy.Rule) (*fuzzy.Model, error) {
	inputs := make([]*fuzzy.Variable, 0, len(inputDefs))
	for _, d := range inputDefs {
		v, err := fuzzy.NewVariable(d.name, d.universe, d.terms...)
		if err != nil {
			return nil, fmt.Errorf("build input %s: %w", d.name, err)
		}
		inputs = append(inputs, v)
	}

	output, err := fuzzy.NewVariable(outputDef.name, outputDef.universe, outputDef.terms...)
	if err != nil {
		return nil, fmt.Errorf("build output: %w", err)
	}

	m, err := fuzzy.NewModel(output, inputs, rules)
	if err != nil {
		return nil, fmt.Errorf("build rule base: %w", err)
	}
	return m, nil
}

// modelInputs maps an input vector onto the rule base's variable names.
func modelInputs(v domain.InputVector) map[string]float64 {
	return map[string]float64{
		Rainfall:       v.Rainfall,
		Slope:          v.Slope,
		Imperviousness: v.Imperviousness,
		DistanceWater:  v.DistanceWater,
		SoilMoisture:   v.SoilMoisture,
		Elevation:      v.Elevation,
	}
}
