package fuzzy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Universe is the discretized domain of a linguistic variable.
type Universe struct {
	Min  float64
	Max  float64
	Step float64
}

// Len returns the number of sample points, both bounds included.
func (u Universe) Len() int {
	return int(math.Round((u.Max-u.Min)/u.Step)) + 1
}

// Points samples the universe at every step.
func (u Universe) Points() []float64 {
	return floats.Span(make([]float64, u.Len()), u.Min, u.Max)
}

// Clamp limits x to the universe bounds.
func (u Universe) Clamp(x float64) float64 {
	return math.Max(u.Min, math.Min(x, u.Max))
}

func (u Universe) validate() error {
	if u.Step <= 0 || u.Max <= u.Min || u.Step > u.Max-u.Min || math.IsInf(u.Max-u.Min, 0) {
		return fmt.Errorf("%w: universe [%g, %g] step %g", ErrInvalidShape, u.Min, u.Max, u.Step)
	}
	return nil
}

// Term is a named membership function on a variable.
type Term struct {
	Name string
	MF   MembershipFunc
}

// Variable is an immutable linguistic variable: a named universe partitioned
// into ordered terms.
type Variable struct {
	name     string
	universe Universe
	terms    []Term
	index    map[string]int
}

// NewVariable validates and builds a linguistic variable.
func NewVariable(name string, u Universe, terms ...Term) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty variable name", ErrInvalidShape)
	}
	if err := u.validate(); err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: variable %s has no terms", ErrInvalidShape, name)
	}

	v := &Variable{
		name:     name,
		universe: u,
		terms:    make([]Term, len(terms)),
		index:    make(map[string]int, len(terms)),
	}
	for i, t := range terms {
		if _, dup := v.index[t.Name]; dup {
			return nil, fmt.Errorf("%w: variable %s defines term %q twice", ErrInvalidShape, name, t.Name)
		}
		if err := t.MF.validate(); err != nil {
			return nil, fmt.Errorf("variable %s term %s: %w", name, t.Name, err)
		}
		v.terms[i] = t
		v.index[t.Name] = i
	}
	return v, nil
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Universe returns the variable's universe.
func (v *Variable) Universe() Universe { return v.universe }

// Terms returns a copy of the terms in definition order.
func (v *Variable) Terms() []Term {
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Term looks up a term by name.
func (v *Variable) Term(name string) (Term, bool) {
	i, ok := v.index[name]
	if !ok {
		return Term{}, false
	}
	return v.terms[i], true
}

// Fuzzify clamps x to the universe and returns its membership in every term,
// in term order.
func (v *Variable) Fuzzify(x float64) []float64 {
	x = v.universe.Clamp(x)
	out := make([]float64, len(v.terms))
	for i, t := range v.terms {
		out[i] = t.MF.Degree(x)
	}
	return out
}

// sample evaluates every term over the sampled universe.
func (v *Variable) sample(points []float64) [][]float64 {
	curves := make([][]float64, len(v.terms))
	for i, t := range v.terms {
		c := make([]float64, len(points))
		for j, x := range points {
			c[j] = t.MF.Degree(x)
		}
		curves[i] = c
	}
	return curves
}
