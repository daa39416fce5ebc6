package remap

import (
	"fmt"

	"github.com/litescript/ls-greatcircle/internal/sphere"
)

// MaxAnchors is how many anchors shape the rotation. Older ones are evicted.
const MaxAnchors = 2

// Anchor is a user-picked point on the source map as (longitude, latitude)
// fractions in [0,1).
type Anchor struct {
	U float64
	V float64
}

func (a Anchor) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", a.U, a.V)
}

// Anchors is an insertion-ordered FIFO of at most MaxAnchors points. The
// first entry defines the primary axis, the second refines orientation.
// Methods never modify the receiver's backing array.
type Anchors []Anchor

// Push appends p, evicting the oldest anchor when the list is full.
// Coordinates are wrapped into [0,1).
func (l Anchors) Push(p Anchor) (next Anchors, evicted Anchor, didEvict bool) {
	p = Anchor{U: sphere.Wrap(p.U, 1), V: sphere.Wrap(p.V, 1)}

	next = make(Anchors, 0, MaxAnchors)
	next = append(next, l...)
	next = append(next, p)
	if len(next) > MaxAnchors {
		evicted = next[0]
		didEvict = true
		next = append(Anchors(nil), next[len(next)-MaxAnchors:]...)
	}
	return next, evicted, didEvict
}

// Pop removes the newest anchor.
func (l Anchors) Pop() (next Anchors, removed Anchor, ok bool) {
	if len(l) == 0 {
		return l, Anchor{}, false
	}
	next = append(Anchors(nil), l[:len(l)-1]...)
	return next, l[len(l)-1], true
}

// Clone returns an independent copy.
func (l Anchors) Clone() Anchors {
	if l == nil {
		return nil
	}
	return append(Anchors(nil), l...)
}
