package fuzzy

import (
	"fmt"
)

// Shape identifies the geometry of a membership function.
type Shape int

const (
	// Triangle is defined by three breakpoints: foot, peak, foot.
	Triangle Shape = iota
	// Trapezoid is defined by four breakpoints: foot, shoulder, shoulder, foot.
	Trapezoid
)

func (s Shape) String() string {
	switch s {
	case Triangle:
		return "triangle"
	case Trapezoid:
		return "trapezoid"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// MembershipFunc is a piecewise-linear membership function. Triangles are
// stored as trapezoids whose shoulders coincide.
type MembershipFunc struct {
	shape Shape
	a     float64
	b     float64
	c     float64
	d     float64
}

// Tri builds a triangular membership function.
func Tri(a, b, c float64) MembershipFunc {
	return MembershipFunc{shape: Triangle, a: a, b: b, c: b, d: c}
}

// Trap builds a trapezoidal membership function.
func Trap(a, b, c, d float64) MembershipFunc {
	return MembershipFunc{shape: Trapezoid, a: a, b: b, c: c, d: d}
}

// Shape reports the function geometry.
func (m MembershipFunc) Shape() Shape { return m.shape }

// Breakpoints returns the defining breakpoints (3 for triangles, 4 for trapezoids).
func (m MembershipFunc) Breakpoints() []float64 {
	if m.shape == Triangle {
		return []float64{m.a, m.b, m.d}
	}
	return []float64{m.a, m.b, m.c, m.d}
}

// validate rejects breakpoints that decrease.
func (m MembershipFunc) validate() error {
	if m.a > m.b || m.b > m.c || m.c > m.d {
		return fmt.Errorf("%w: %s %v is not non-decreasing", ErrInvalidShape, m.shape, m.Breakpoints())
	}
	return nil
}

// Degree returns the membership of x, always in [0, 1]. A zero-width foot
// (a == b or c == d) forms a shoulder that holds 1 up to the boundary.
func (m MembershipFunc) Degree(x float64) float64 {
	switch {
	case x >= m.b && x <= m.c:
		return 1
	case x <= m.a || x >= m.d:
		return 0
	case x < m.b:
		return (x - m.a) / (m.b - m.a)
	default:
		return (m.d - x) / (m.d - m.c)
	}
}
