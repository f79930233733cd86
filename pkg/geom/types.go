// Package geom provides the planar geometry shared by shapes, components and
// renderers. All coordinates are in Modelica diagram units with Y increasing
// upward.
package geom

import "math"

// Point represents a 2D coordinate
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both coordinates by s
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Eq reports whether p and q are equal within Epsilon
func (p Point) Eq(q Point) bool {
	return math.Abs(p.X-q.X) <= Epsilon && math.Abs(p.Y-q.Y) <= Epsilon
}

// Rotate rotates p about the pivot by the given angle in degrees
// (counter-clockwise, Y up).
func (p Point) Rotate(pivot Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	sin, cos := sinCos(degrees)
	x, y := p.X-pivot.X, p.Y-pivot.Y
	return Point{
		X: x*cos - y*sin + pivot.X,
		Y: x*sin + y*cos + pivot.Y,
	}
}

// Epsilon is the tolerance used for coordinate comparisons
const Epsilon = 1e-9

// Rect represents an axis-aligned rectangular boundary
type Rect struct {
	Min Point // Minimum (bottom-left) corner
	Max Point // Maximum (top-right) corner
}

// NewRect creates an empty rectangle that any Expand call will initialize
func NewRect() Rect {
	return Rect{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// RectFromPoints returns the normalized rectangle spanned by two corners
func RectFromPoints(a, b Point) Rect {
	r := NewRect()
	r.Expand(a)
	r.Expand(b)
	return r
}

// IsEmpty checks if the rectangle is empty
func (r Rect) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Expand expands the rectangle to include a point
func (r *Rect) Expand(p Point) {
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
}

// ExpandRect expands to include another rectangle
func (r *Rect) ExpandRect(other Rect) {
	if !other.IsEmpty() {
		r.Expand(other.Min)
		r.Expand(other.Max)
	}
}

// Inset grows the rectangle by d on every side (shrinks for negative d)
func (r Rect) Inset(d float64) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Width returns the width of the rectangle
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Max.Y - r.Min.Y
}

// Center returns the center point of the rectangle
func (r Rect) Center() Point {
	return Point{
		X: (r.Min.X + r.Max.X) / 2,
		Y: (r.Min.Y + r.Max.Y) / 2,
	}
}

// Contains checks if a point is within the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects checks if two rectangles intersect
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X <= other.Max.X && r.Max.X >= other.Min.X &&
		r.Min.Y <= other.Max.Y && r.Max.Y >= other.Min.Y
}

// Corners returns the four corners in handle order: bottom-left,
// top-left, top-right, bottom-right.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Max.X, Y: r.Min.Y},
	}
}

// NormalizeAngle maps an angle in degrees into [0, 360)
func NormalizeAngle(degrees float64) float64 {
	a := math.Mod(degrees, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod(-360, 360) is -0 and tiny negatives round up to 360
	if a >= 360 || a == 0 {
		a = 0
	}
	return a
}

// sinCos returns exact values for multiples of 90 degrees so that quarter
// turns do not accumulate floating point drift.
func sinCos(degrees float64) (float64, float64) {
	switch NormalizeAngle(degrees) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	rad := degrees * math.Pi / 180
	return math.Sin(rad), math.Cos(rad)
}
