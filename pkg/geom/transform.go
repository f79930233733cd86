package geom

import (
	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transformation in row-major order with an implicit
// bottom row of [0 0 1]:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Matrix f64.Aff3

// Identity returns the identity transform
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform that moves points by (dx, dy)
func Translation(dx, dy float64) Matrix {
	return Matrix{1, 0, dx, 0, 1, dy}
}

// Scaling returns a transform that scales about the origin
func Scaling(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, 0, sy, 0}
}

// Rotation returns a counter-clockwise rotation about the origin in degrees
func Rotation(degrees float64) Matrix {
	sin, cos := sinCos(degrees)
	return Matrix{cos, -sin, 0, sin, cos, 0}
}

// Mul returns the transform that applies n first and then m
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Then returns the transform that applies m first and then n
func (m Matrix) Then(n Matrix) Matrix {
	return n.Mul(m)
}

// Apply applies the transformation to a point
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Invert returns the inverse transform. A singular matrix yields the
// identity and false.
func (m Matrix) Invert() (Matrix, bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 {
		return Identity(), false
	}
	inv := 1 / det
	a := m[4] * inv
	b := -m[1] * inv
	d := -m[3] * inv
	e := m[0] * inv
	return Matrix{
		a, b, -(a*m[2] + b*m[5]),
		d, e, -(d*m[2] + e*m[5]),
	}, true
}

// ApplyRect transforms the four corners of r and returns their bounding box
func (m Matrix) ApplyRect(r Rect) Rect {
	if r.IsEmpty() {
		return r
	}
	out := NewRect()
	for _, c := range r.Corners() {
		out.Expand(m.Apply(c))
	}
	return out
}

// Placement returns the transform used for a graphic item: rotate about the
// local origin, then translate to origin.
func Placement(origin Point, rotation float64) Matrix {
	return Rotation(rotation).Then(Translation(origin.X, origin.Y))
}
