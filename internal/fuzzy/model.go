// Package fuzzy implements a Mamdani inference system: min conjunction,
// max aggregation, and centroid defuzzification over a sampled output
// universe.
//
// A Model is immutable once built. Every call to Infer allocates its own
// working state, so a single Model may serve concurrent evaluations.
package fuzzy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Model is a compiled rule base over a set of input variables and one
// output variable.
type Model struct {
	inputs   []*Variable
	inputIdx map[string]int
	output   *Variable
	rules    []compiledRule
	source   []Rule

	points []float64   // sampled output universe
	curves [][]float64 // output term curves over points
}

// NewModel validates the rule base against the variables and compiles it.
// Rules that reference undefined variables or terms are rejected.
func NewModel(output *Variable, inputs []*Variable, rules []Rule) (*Model, error) {
	if output == nil {
		return nil, fmt.Errorf("%w: nil output variable", ErrUnknownVariable)
	}
	m := &Model{
		inputs:   inputs,
		inputIdx: make(map[string]int, len(inputs)),
		output:   output,
		source:   append([]Rule(nil), rules...),
	}
	for i, v := range inputs {
		if _, dup := m.inputIdx[v.Name()]; dup {
			return nil, fmt.Errorf("%w: input %s defined twice", ErrInvalidShape, v.Name())
		}
		m.inputIdx[v.Name()] = i
	}

	for n, r := range rules {
		cr, err := m.compile(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", n+1, r, err)
		}
		m.rules = append(m.rules, cr)
	}

	m.points = output.Universe().Points()
	m.curves = output.sample(m.points)
	return m, nil
}

func (m *Model) compile(r Rule) (compiledRule, error) {
	if len(r.If) == 0 {
		return compiledRule{}, fmt.Errorf("%w: empty antecedent", ErrInvalidShape)
	}
	out, ok := m.output.index[r.Then]
	if !ok {
		return compiledRule{}, fmt.Errorf("%w: %s has no term %q", ErrUnknownTerm, m.output.Name(), r.Then)
	}

	cr := compiledRule{output: out, clauses: make([]compiledClause, len(r.If))}
	for i, c := range r.If {
		vi, ok := m.inputIdx[c.Variable]
		if !ok {
			return compiledRule{}, fmt.Errorf("%w: %q", ErrUnknownVariable, c.Variable)
		}
		ti, ok := m.inputs[vi].index[c.Term]
		if !ok {
			return compiledRule{}, fmt.Errorf("%w: %s has no term %q", ErrUnknownTerm, c.Variable, c.Term)
		}
		cr.clauses[i] = compiledClause{variable: vi, term: ti}
	}
	return cr, nil
}

// Inputs returns the input variables in definition order.
func (m *Model) Inputs() []*Variable {
	return append([]*Variable(nil), m.inputs...)
}

// Output returns the output variable.
func (m *Model) Output() *Variable { return m.output }

// Rules returns the rule base in definition order.
func (m *Model) Rules() []Rule {
	return append([]Rule(nil), m.source...)
}

// Inference is the outcome of one evaluation.
type Inference struct {
	// Value is the defuzzified crisp output.
	Value float64
	// Activation is the aggregated firing strength per output term.
	Activation map[string]float64
	// Fired counts rules with a non-zero firing strength.
	Fired int
}

// Infer evaluates the rule base for one crisp input per input variable.
// Inputs are clamped to their universes. ErrEmptyOutput is returned when no
// rule fires.
func (m *Model) Infer(values map[string]float64) (Inference, error) {
	degrees := make([][]float64, len(m.inputs))
	for i, v := range m.inputs {
		x, ok := values[v.Name()]
		if !ok {
			return Inference{}, fmt.Errorf("%w: %s", ErrMissingInput, v.Name())
		}
		if math.IsNaN(x) {
			return Inference{}, fmt.Errorf("%w: %s is NaN", ErrMissingInput, v.Name())
		}
		degrees[i] = v.Fuzzify(x)
	}

	activation := make([]float64, len(m.output.terms))
	fired := 0
	for _, r := range m.rules {
		strength := 1.0
		for _, c := range r.clauses {
			strength = math.Min(strength, degrees[c.variable][c.term])
		}
		if strength > 0 {
			fired++
		}
		activation[r.output] = math.Max(activation[r.output], strength)
	}

	aggregated := make([]float64, len(m.points))
	for t, curve := range m.curves {
		if activation[t] == 0 {
			continue
		}
		for j, mu := range curve {
			aggregated[j] = math.Max(aggregated[j], math.Min(mu, activation[t]))
		}
	}

	inf := Inference{Activation: make(map[string]float64, len(activation)), Fired: fired}
	for t, a := range activation {
		inf.Activation[m.output.terms[t].Name] = a
	}

	if floats.Max(aggregated) == 0 {
		return inf, ErrEmptyOutput
	}
	value, err := Centroid(m.points, aggregated)
	if err != nil {
		return inf, err
	}
	inf.Value = value
	return inf, nil
}

// Centroid returns the center of gravity of a sampled membership curve,
// integrating each segment between samples as a piecewise-linear area.
func Centroid(x, mu []float64) (float64, error) {
	if len(x) != len(mu) || len(x) == 0 {
		return 0, fmt.Errorf("%w: %d points, %d degrees", ErrInvalidShape, len(x), len(mu))
	}
	if len(x) == 1 {
		if mu[0] == 0 {
			return 0, ErrEmptyOutput
		}
		return x[0], nil
	}

	var moment, area float64
	for i := 1; i < len(x); i++ {
		x1, x2 := x[i-1], x[i]
		y1, y2 := mu[i-1], mu[i]
		if (y1 == 0 && y2 == 0) || x1 == x2 {
			continue
		}

		var c, a float64
		w := x2 - x1
		switch {
		case y1 == y2: // rectangle
			c = 0.5 * (x1 + x2)
			a = w * y1
		case y1 == 0: // rising triangle
			c = 2.0/3.0*w + x1
			a = 0.5 * w * y2
		case y2 == 0: // falling triangle
			c = 1.0/3.0*w + x1
			a = 0.5 * w * y1
		default: // trapezoid
			c = (2.0/3.0*w*(y2+0.5*y1))/(y1+y2) + x1
			a = 0.5 * w * (y1 + y2)
		}
		moment += c * a
		area += a
	}

	if area == 0 || math.IsNaN(area) {
		return 0, ErrEmptyOutput
	}
	return moment / area, nil
}
