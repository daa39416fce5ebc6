package remap

import (
	"math"

	"github.com/golang/geo/r3"
)

// Basis is a 3×3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
// A rotation basis keeps its axes in the columns.
type Basis [9]float64

// Identity returns the identity basis.
func Identity() Basis {
	return Basis{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// FromColumns builds a basis whose columns are x, y and z.
func FromColumns(x, y, z r3.Vector) Basis {
	return Basis{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	}
}

// Column returns column c (0, 1 or 2).
func (m Basis) Column(c int) r3.Vector {
	return r3.Vector{X: m[c], Y: m[3+c], Z: m[6+c]}
}

// Apply returns M × v.
func (m Basis) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Mul returns a × b.
func Mul(a, b Basis) Basis {
	var m Basis
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

func (m Basis) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the general inverse of m. ok is false when m is singular.
func (m Basis) Inverse() (inv Basis, ok bool) {
	d := m.Det()
	if math.Abs(d) < 1e-12 {
		return Basis{}, false
	}
	invD := 1.0 / d
	return Basis{
		(m[4]*m[8] - m[5]*m[7]) * invD,
		(m[2]*m[7] - m[1]*m[8]) * invD,
		(m[1]*m[5] - m[2]*m[4]) * invD,
		(m[5]*m[6] - m[3]*m[8]) * invD,
		(m[0]*m[8] - m[2]*m[6]) * invD,
		(m[2]*m[3] - m[0]*m[5]) * invD,
		(m[3]*m[7] - m[4]*m[6]) * invD,
		(m[1]*m[6] - m[0]*m[7]) * invD,
		(m[0]*m[4] - m[1]*m[3]) * invD,
	}, true
}

func (m Basis) Transpose() Basis {
	return Basis{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// IsOrthonormal reports whether every column has unit length and the columns
// are mutually perpendicular, within tol.
func (m Basis) IsOrthonormal(tol float64) bool {
	for i := 0; i < 3; i++ {
		ci := m.Column(i)
		if math.Abs(ci.Norm()-1) > tol {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(ci.Dot(m.Column(j))) > tol {
				return false
			}
		}
	}
	return true
}

// IsIdentity checks if the basis is approximately identity.
func (m Basis) IsIdentity() bool {
	id := Identity()
	for i := range m {
		d := m[i] - id[i]
		if d > 1e-12 || d < -1e-12 {
			return false
		}
	}
	return true
}
