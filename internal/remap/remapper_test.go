package remap

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/litescript/ls-greatcircle/internal/sphere"
)

const tol = 1e-5

// sampleAnchors covers both hemispheres and the longitude seam, away from
// the poles.
var sampleAnchors = []Anchor{
	{0.1, 0.3}, {0.25, 0.5}, {0.5, 0.5}, {0.73, 0.81}, {0.99, 0.2},
	{0.0, 0.6}, {0.42, 0.05}, {0.6, 0.95},
}

func TestNew_NoAnchorsIsIdentity(t *testing.T) {
	r := New(nil)

	if !r.IsIdentity() {
		t.Fatal("remapper without anchors should be identity")
	}
	if r.Matrix() != Identity() {
		t.Errorf("Matrix() = %v, want identity", r.Matrix())
	}

	for u := 0.0; u < 1; u += 0.0625 {
		for v := 0.0; v < 1; v += 0.0625 {
			gu, gv := r.Untwist(u, v)
			if gu != u || gv != v {
				t.Errorf("Untwist(%v, %v) = (%v, %v), want unchanged", u, v, gu, gv)
			}
		}
	}
}

func TestNew_OneAnchorOrthonormal(t *testing.T) {
	for _, a := range sampleAnchors {
		r := New([]Anchor{a})
		if r.Fallback() != FallbackNone {
			t.Errorf("anchor %v: unexpected fallback %v", a, r.Fallback())
		}
		if !r.Matrix().IsOrthonormal(tol) {
			t.Errorf("anchor %v: basis not orthonormal: %v", a, r.Matrix())
		}
		if d := r.Matrix().Det(); math.Abs(d-1) > tol {
			t.Errorf("anchor %v: det = %v, want 1 (proper rotation)", a, d)
		}
	}
}

func TestNew_TwoAnchorsOrthonormal(t *testing.T) {
	for i, a := range sampleAnchors {
		for j, b := range sampleAnchors {
			if i == j {
				continue
			}
			r := New([]Anchor{a, b})
			if r.Fallback() != FallbackNone {
				t.Errorf("anchors %v %v: unexpected fallback %v", a, b, r.Fallback())
				continue
			}
			if !r.Matrix().IsOrthonormal(tol) {
				t.Errorf("anchors %v %v: basis not orthonormal: %v", a, b, r.Matrix())
			}
		}
	}
}

func TestInverseMatchesTranspose(t *testing.T) {
	r := New([]Anchor{{0.2, 0.4}, {0.7, 0.6}})
	inv := r.Inverse()
	tr := r.Matrix().Transpose()
	for i := range inv {
		if math.Abs(inv[i]-tr[i]) > tol {
			t.Fatalf("inverse %v differs from transpose %v", inv, tr)
		}
	}

	prod := Mul(r.Matrix(), inv)
	for i, want := range Identity() {
		if math.Abs(prod[i]-want) > tol {
			t.Fatalf("M × M⁻¹ = %v, want identity", prod)
		}
	}
}

func TestTwistUntwistRoundTrip(t *testing.T) {
	configs := [][]Anchor{
		{{0.3, 0.4}},
		{{0.9, 0.7}},
		{{0.1, 0.3}, {0.6, 0.55}},
		{{0.45, 0.2}, {0.5, 0.8}},
	}

	for _, anchors := range configs {
		r := New(anchors)
		for u := 0.0; u < 1; u += 1.0 / 32 {
			for v := 1.0 / 32; v < 1; v += 1.0 / 32 {
				tu, tv := r.Untwist(u, v)
				gu, gv := r.Twist(tu, tv)
				if d := sphereDistance(u, v, gu, gv); d > tol {
					t.Errorf("anchors %v: Twist(Untwist(%v, %v)) = (%v, %v), off by %v",
						anchors, u, v, gu, gv, d)
				}
			}
		}
	}
}

func TestOneAnchorLandsAtDisplayCentre(t *testing.T) {
	for _, a := range sampleAnchors {
		r := New([]Anchor{a})

		u, v := r.Twist(a.U, a.V)
		if d := sphereDistance(u, v, 0.5, 0.5); d > tol {
			t.Errorf("Twist(%v) = (%v, %v), want display centre (0.5, 0.5)", a, u, v)
		}

		su, sv := r.Untwist(0.5, 0.5)
		if d := sphereDistance(su, sv, a.U, a.V); d > tol {
			t.Errorf("Untwist(0.5, 0.5) = (%v, %v), want anchor %v", su, sv, a)
		}
	}
}

func TestTwoAnchorsLieOnDisplayEquator(t *testing.T) {
	// The great circle through both anchors becomes the display equator.
	pairs := [][2]Anchor{
		{{0.1, 0.3}, {0.6, 0.55}},
		{{0.45, 0.2}, {0.5, 0.8}},
		{{0.9, 0.9}, {0.05, 0.1}},
	}

	for _, p := range pairs {
		r := New(p[:])
		for _, a := range p {
			_, v := r.Twist(a.U, a.V)
			if math.Abs(v-0.5) > tol {
				t.Errorf("anchors %v: Twist(%v) has v = %v, want 0.5", p, a, v)
			}
		}
	}
}

func TestDegenerateFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		anchors  []Anchor
		want     Fallback
		identity bool
	}{
		{"single anchor at south pole", []Anchor{{0.3, 0}}, FallbackIdentity, true},
		{"coincident anchors", []Anchor{{0.2, 0.4}, {0.2, 0.4}}, FallbackNewestAnchor, false},
		{"antipodal anchors", []Anchor{{0.25, 0.5}, {0.75, 0.5}}, FallbackNewestAnchor, false},
		{"coincident anchors at pole", []Anchor{{0.1, 0}, {0.6, 0}}, FallbackIdentity, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.anchors)
			if r.Fallback() != tt.want {
				t.Errorf("Fallback() = %v, want %v", r.Fallback(), tt.want)
			}
			if r.IsIdentity() != tt.identity {
				t.Errorf("IsIdentity() = %v, want %v", r.IsIdentity(), tt.identity)
			}
			if !r.Matrix().IsOrthonormal(tol) {
				t.Errorf("fallback basis not orthonormal: %v", r.Matrix())
			}
		})
	}
}

func TestDegenerateTwoAnchorsUseNewest(t *testing.T) {
	newest := Anchor{0.75, 0.5}
	got := New([]Anchor{{0.25, 0.5}, newest})
	want := New([]Anchor{newest})

	if got.Matrix() != want.Matrix() {
		t.Errorf("antipodal fallback basis = %v, want single-anchor basis %v", got.Matrix(), want.Matrix())
	}
}

func TestNew_UsesNewestTwoAnchors(t *testing.T) {
	all := []Anchor{{0.9, 0.9}, {0.1, 0.3}, {0.6, 0.55}}
	got := New(all)
	want := New(all[1:])

	if got.Matrix() != want.Matrix() {
		t.Errorf("basis from 3 anchors = %v, want basis of newest two %v", got.Matrix(), want.Matrix())
	}
	if len(got.Anchors()) != MaxAnchors {
		t.Errorf("Anchors() len = %d, want %d", len(got.Anchors()), MaxAnchors)
	}
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := []Anchor{{0.1, 0.3}}
	r := New(in)
	in[0] = Anchor{0.8, 0.8}

	if r.Anchors()[0] != (Anchor{0.1, 0.3}) {
		t.Errorf("remapper anchors changed with caller slice: %v", r.Anchors())
	}
}

func TestBasisInverseSingular(t *testing.T) {
	var zero Basis
	if _, ok := zero.Inverse(); ok {
		t.Error("Inverse of zero matrix should report singular")
	}
}

func TestFromColumns(t *testing.T) {
	x := r3.Vector{X: 1, Y: 2, Z: 3}
	y := r3.Vector{X: 4, Y: 5, Z: 6}
	z := r3.Vector{X: 7, Y: 8, Z: 9}
	m := FromColumns(x, y, z)

	for i, want := range []r3.Vector{x, y, z} {
		if got := m.Column(i); got != want {
			t.Errorf("Column(%d) = %v, want %v", i, got, want)
		}
	}
	if got := m.Apply(r3.Vector{Y: 1}); got != y {
		t.Errorf("Apply(ŷ) = %v, want second column %v", got, y)
	}
}

// sphereDistance is the chord length between two map fractions, which
// sidesteps longitude wrap and pole ambiguity.
func sphereDistance(u1, v1, u2, v2 float64) float64 {
	return sphere.FracToCartesian(u1, v1).Sub(sphere.FracToCartesian(u2, v2)).Norm()
}
