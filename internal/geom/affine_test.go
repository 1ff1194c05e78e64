package geom

import (
	"math"
	"testing"

	"topodiagram/internal/domain"
)

const epsilon = 1e-9

func nearPoint(a, b domain.Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

func TestViewTransformApply(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		pan   domain.Point
		in    domain.Point
		want  domain.Point
	}{
		{"identity", 1, domain.Point{}, domain.Point{X: 3, Y: 4}, domain.Point{X: 3, Y: 4}},
		{"pan only", 1, domain.Point{X: 10, Y: -5}, domain.Point{X: 3, Y: 4}, domain.Point{X: 13, Y: -1}},
		{"zoom about origin", 2, domain.Point{}, domain.Point{X: 3, Y: 4}, domain.Point{X: 6, Y: 8}},
		{"zoom then pan", 0.5, domain.Point{X: 100, Y: 50}, domain.Point{X: 40, Y: 20}, domain.Point{X: 120, Y: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewTransform(tt.scale, tt.pan).Apply(tt.in)
			if !nearPoint(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	transforms := []Affine{
		Identity(),
		Translate(12, -7),
		Scale(2.5),
		ViewTransform(1.1, domain.Point{X: -30, Y: 80}),
		{A: 2, B: 1, C: -1, D: 3, E: 5, F: 6},
	}
	p := domain.Point{X: 42.5, Y: -17.25}

	for _, m := range transforms {
		inv, ok := m.Invert()
		if !ok {
			t.Fatalf("expected %+v to be invertible", m)
		}
		if got := inv.Apply(m.Apply(p)); !nearPoint(got, p) {
			t.Errorf("inverse round trip of %+v: expected %+v, got %+v", m, p, got)
		}
		if got := m.Multiply(inv); !nearPoint(got.Apply(p), p) {
			t.Errorf("m·inv(m) is not identity for %+v", m)
		}
	}
}

func TestAffineInvertSingular(t *testing.T) {
	if _, ok := Scale(0).Invert(); ok {
		t.Error("expected zero scale to be singular")
	}
}

func TestMultiplyOrder(t *testing.T) {
	// Translate after scale: (1,1) -> (2,2) -> (12,2)
	got := Translate(10, 0).Multiply(Scale(2)).Apply(domain.Point{X: 1, Y: 1})
	if !nearPoint(got, domain.Point{X: 12, Y: 2}) {
		t.Errorf("expected (12,2), got %+v", got)
	}
}

func TestScaleFactor(t *testing.T) {
	if got := ViewTransform(1.5, domain.Point{X: 9, Y: 9}).ScaleFactor(); math.Abs(got-1.5) > epsilon {
		t.Errorf("expected 1.5, got %f", got)
	}
}

func TestAffineSVG(t *testing.T) {
	got := ViewTransform(1.1, domain.Point{X: 10, Y: -4.5}).SVG()
	want := "matrix(1.1 0 0 1.1 10 -4.5)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
