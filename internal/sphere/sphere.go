// Package sphere converts between normalized map fractions, spherical angles
// and unit-sphere Cartesian coordinates.
//
// Map fractions follow the equirectangular layout of the source image:
//   - u in [0,1) runs once around the full circle of longitude
//   - v in [0,1) runs linearly from latitude -90° (v=0) to +90° (v→1)
package sphere

import (
	"math"

	"github.com/golang/geo/r3"
)

// ToRadians converts map fractions to longitude theta and latitude phi.
// theta spans [0, 2π) and phi spans [-π/2, π/2).
func ToRadians(u, v float64) (theta, phi float64) {
	theta = u * 2 * math.Pi
	phi = (v - 0.5) * math.Pi
	return theta, phi
}

// ToCartesian converts spherical angles to a unit vector.
//
// Longitude 0 points along -X and increases toward -Y; latitude +π/2 is +Z.
func ToCartesian(theta, phi float64) r3.Vector {
	r := math.Cos(phi)
	return r3.Vector{
		X: -math.Cos(theta) * r,
		Y: -math.Sin(theta) * r,
		Z: math.Sin(phi),
	}
}

// ToLonLat converts a Cartesian direction back to map fractions, each folded
// into [0,1). The vector does not need to be unit length.
//
// At the poles longitude is undefined and u carries whatever atan2 yields.
// The north pole itself (v=1) is pulled onto the last value below 1 so it
// stays on the top latitude instead of wrapping onto the south pole.
func ToLonLat(p r3.Vector) (u, v float64) {
	r := math.Hypot(p.X, p.Y)
	phi := math.Atan2(p.Z, r)
	theta := math.Atan2(-p.Y, -p.X)

	v = phi/math.Pi + 0.5
	u = theta / (2 * math.Pi)
	if v >= 1 {
		v = maxFrac
	}
	return Wrap(u, 1), Wrap(v, 1)
}

// maxFrac is the largest fraction below 1.
var maxFrac = math.Nextafter(1, 0)

// FracToCartesian is ToCartesian(ToRadians(u, v)).
func FracToCartesian(u, v float64) r3.Vector {
	return ToCartesian(ToRadians(u, v))
}

// Wrap returns a modulo b folded forward into [0, b). b must be positive.
func Wrap(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	// -tiny + b rounds to b; fold that back onto 0.
	if r >= b {
		r = 0
	}
	// Normalise -0.
	return r + 0
}
