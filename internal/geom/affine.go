// Package geom provides the 2x3 affine transform used to map between screen
// pointer coordinates and diagram-local coordinates.
package geom

import (
	"fmt"
	"math"
	"strconv"

	"topodiagram/internal/domain"
)

// Affine is a 2x3 affine matrix in SVG order:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// Apply maps (x, y) to (A*x + C*y + E, B*x + D*y + F).
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translate returns a pure translation
func Translate(tx, ty float64) Affine {
	return Affine{A: 1, D: 1, E: tx, F: ty}
}

// Scale returns a uniform scale about the origin
func Scale(s float64) Affine {
	return Affine{A: s, D: s}
}

// ViewTransform returns the pan/zoom transform applied to the render surface:
// local points are scaled about the origin, then translated by pan.
func ViewTransform(scale float64, pan domain.Point) Affine {
	return Translate(pan.X, pan.Y).Multiply(Scale(scale))
}

// Multiply returns m·n, the transform that applies n first and then m
func (m Affine) Multiply(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Determinant returns the determinant of the linear part
func (m Affine) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse transform. ok is false when m is singular.
func (m Affine) Invert() (inv Affine, ok bool) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, false
	}
	return Affine{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Apply maps p through the transform
func (m Affine) Apply(p domain.Point) domain.Point {
	return domain.Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ScaleFactor returns the uniform scale of the transform. For non-uniform
// transforms it is the geometric mean of the axis scales.
func (m Affine) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Determinant()))
}

// SVG renders the transform as an SVG transform attribute value
func (m Affine) SVG() string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)",
		format(m.A), format(m.B), format(m.C), format(m.D), format(m.E), format(m.F))
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
