// Package remap derives a rotation of the sphere from up to two anchor points
// and maps coordinates between the source map and the rotated display.
package remap

import (
	"github.com/golang/geo/r3"

	"github.com/litescript/ls-greatcircle/internal/sphere"
)

// DegenerateEpsilon is the shortest cross product accepted when building an
// axis. Shorter ones mean the anchors do not pin down an orientation.
const DegenerateEpsilon = 1e-6

// Fallback records which substitute basis was used for anchors that could
// not define one themselves.
type Fallback int

const (
	// FallbackNone means the anchors produced their own basis.
	FallbackNone Fallback = iota
	// FallbackNewestAnchor means two coincident or antipodal anchors were
	// reduced to the newest one alone.
	FallbackNewestAnchor
	// FallbackIdentity means a single anchor sat on a pole and the
	// unrotated basis was used.
	FallbackIdentity
)

func (f Fallback) String() string {
	switch f {
	case FallbackNone:
		return "none"
	case FallbackNewestAnchor:
		return "newest-anchor"
	case FallbackIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

var zAxis = r3.Vector{Z: 1}

// Remapper maps between display and source coordinates through a rotation
// basis. It is immutable after New and safe for concurrent use.
type Remapper struct {
	anchors  Anchors
	matrix   Basis // source → display axes, applied by Untwist
	inverse  Basis // applied by Twist
	identity bool
	fallback Fallback
}

// New builds a remapper from the given anchors. Only the newest MaxAnchors
// entries are used, in insertion order.
//
// New panics if the derived basis cannot be inverted; bases built here are
// orthonormal, so that indicates a bug rather than bad input.
func New(anchors []Anchor) *Remapper {
	if len(anchors) > MaxAnchors {
		anchors = anchors[len(anchors)-MaxAnchors:]
	}

	matrix, fallback := basisFor(anchors)
	inverse, ok := matrix.Inverse()
	if !ok {
		panic("remap: singular rotation basis")
	}

	return &Remapper{
		anchors:  Anchors(anchors).Clone(),
		matrix:   matrix,
		inverse:  inverse,
		identity: matrix.IsIdentity(),
		fallback: fallback,
	}
}

// basisFor picks the construction by anchor count. Degenerate configurations
// drop to the next simpler one: two anchors → newest anchor → identity.
func basisFor(anchors []Anchor) (Basis, Fallback) {
	switch len(anchors) {
	case 0:
		return Identity(), FallbackNone

	case 1:
		axisX := sphere.FracToCartesian(anchors[0].U, anchors[0].V).Normalize()
		y := zAxis.Cross(axisX)
		if y.Norm() < DegenerateEpsilon {
			return Identity(), FallbackIdentity
		}
		axisY := y.Normalize()
		axisZ := axisX.Cross(axisY).Normalize()
		return FromColumns(axisX, axisY, axisZ), FallbackNone

	default:
		a1 := sphere.FracToCartesian(anchors[0].U, anchors[0].V)
		a2 := sphere.FracToCartesian(anchors[1].U, anchors[1].V)

		mid := a1.Add(a2).Mul(0.5)
		z := a1.Cross(a2)
		if z.Norm() < DegenerateEpsilon || mid.Norm() < DegenerateEpsilon {
			b, fb := basisFor(anchors[1:2])
			if fb == FallbackNone {
				fb = FallbackNewestAnchor
			}
			return b, fb
		}

		axisX := mid.Normalize()
		axisZ := z.Normalize()
		axisY := axisZ.Cross(axisX).Normalize()
		return FromColumns(axisX, axisY, axisZ), FallbackNone
	}
}

// Untwist maps a display-space fraction to the source-space fraction that
// should be sampled for it.
func (r *Remapper) Untwist(u, v float64) (float64, float64) {
	if r.identity {
		return sphere.Wrap(u, 1), sphere.Wrap(v, 1)
	}
	return sphere.ToLonLat(r.matrix.Apply(sphere.FracToCartesian(u, v)))
}

// Twist maps a source-space fraction, such as a stored anchor, to where it
// appears on the display.
func (r *Remapper) Twist(u, v float64) (float64, float64) {
	if r.identity {
		return sphere.Wrap(u, 1), sphere.Wrap(v, 1)
	}
	return sphere.ToLonLat(r.inverse.Apply(sphere.FracToCartesian(u, v)))
}

// Matrix returns the source → display basis.
func (r *Remapper) Matrix() Basis { return r.matrix }

// Inverse returns the display → source basis.
func (r *Remapper) Inverse() Basis { return r.inverse }

// Anchors returns a copy of the anchors the basis was built from.
func (r *Remapper) Anchors() Anchors { return r.anchors.Clone() }

// Fallback reports whether a substitute basis was used.
func (r *Remapper) Fallback() Fallback { return r.fallback }

// IsIdentity reports whether the remapper leaves coordinates unchanged.
func (r *Remapper) IsIdentity() bool { return r.identity }
