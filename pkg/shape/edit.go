package shape

import (
	"errors"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// ApplyRotation rotates the shape about its own origin by delta degrees
func ApplyRotation(s Shape, delta float64) {
	b := s.Common()
	b.SetRotationAngle(b.Rotation + delta)
}

// RotateClockwise rotates by a quarter turn clockwise
func RotateClockwise(s Shape) { ApplyRotation(s, -90) }

// RotateAntiClockwise rotates by a quarter turn anticlockwise
func RotateAntiClockwise(s Shape) { ApplyRotation(s, 90) }

// FlipHorizontal mirrors the shape across the vertical axis through its
// origin. The rotation is negated so the mirror is exact at any angle.
func FlipHorizontal(s Shape) { flip(s, geom.Pt(-1, 1)) }

// FlipVertical mirrors the shape across the horizontal axis through its
// origin.
func FlipVertical(s Shape) { flip(s, geom.Pt(1, -1)) }

func flip(s Shape, m geom.Point) {
	b := s.Common()
	for i, p := range b.Points {
		b.Points[i] = geom.Pt(p.X*m.X, p.Y*m.Y)
	}
	for i, p := range b.Extents {
		b.Extents[i] = geom.Pt(p.X*m.X, p.Y*m.Y)
	}
	b.SetRotationAngle(-b.Rotation)
}

// Direction of a keyboard nudge
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Modifier is the keyboard modifier held during a nudge
type Modifier int

const (
	ModNone Modifier = iota
	ModShift
	ModCtrl
)

// Nudge holds the grid step multipliers for keyboard moves
type Nudge struct {
	Plain float64
	Shift float64
	Ctrl  float64
}

// DefaultNudge moves one grid step, ten with shift and a tenth with ctrl
func DefaultNudge() Nudge {
	return Nudge{Plain: 1, Shift: 10, Ctrl: 0.1}
}

// Offset returns the displacement of one nudge
func (n Nudge) Offset(dir Direction, mod Modifier, grid geom.Point) geom.Point {
	k := n.Plain
	switch mod {
	case ModShift:
		k = n.Shift
	case ModCtrl:
		k = n.Ctrl
	}

	switch dir {
	case Up:
		return geom.Pt(0, grid.Y*k)
	case Down:
		return geom.Pt(0, -grid.Y*k)
	case Left:
		return geom.Pt(-grid.X*k, 0)
	case Right:
		return geom.Pt(grid.X*k, 0)
	}
	return geom.Point{}
}

// MoveBy translates the shape origin
func MoveBy(s Shape, d geom.Point) {
	b := s.Common()
	b.Origin = b.Origin.Add(d)
}

// Move applies one keyboard nudge
func Move(s Shape, dir Direction, mod Modifier, grid geom.Point, n Nudge) {
	MoveBy(s, n.Offset(dir, mod, grid))
}

// Duplicate returns an independent copy offset by one grid step
func Duplicate(s Shape, grid geom.Point) Shape {
	c := s.Clone()
	MoveBy(c, grid)
	return c
}

// ErrNoPoints is returned by point editing on extent-based shapes
var ErrNoPoints = errors.New("shape has no point list")

// ErrIndex is returned for a point or extent index out of range
var ErrIndex = errors.New("index out of range")

// AddPoint appends a vertex while drawing. The new point is provisional and
// follows UpdateEndExtent until the next AddPoint or CommitPoints.
func AddPoint(s Shape, p geom.Point) error {
	if s.Kind().HasExtent() {
		return ErrNoPoints
	}
	b := s.Common()
	b.Points = append(b.Points, p)
	b.provisional = true
	return nil
}

// UpdateEndExtent moves the provisional end point, or the second extent
// corner for extent-based shapes.
func UpdateEndExtent(s Shape, p geom.Point) {
	b := s.Common()
	if s.Kind().HasExtent() {
		if len(b.Extents) == 2 {
			b.Extents[1] = p
		}
		return
	}
	if len(b.Points) > 0 {
		b.Points[len(b.Points)-1] = p
	}
}

// ReplaceExtent sets point i of the point list or extent corner i
func ReplaceExtent(s Shape, i int, p geom.Point) error {
	b := s.Common()
	list := b.Points
	if s.Kind().HasExtent() {
		list = b.Extents
	}
	if i < 0 || i >= len(list) {
		return ErrIndex
	}
	list[i] = p
	return nil
}

// ClearPoints removes every vertex
func ClearPoints(s Shape) {
	b := s.Common()
	b.Points = nil
	b.provisional = false
}

// CommitPoints ends interactive drawing. A provisional end point that
// repeats its predecessor is dropped.
func CommitPoints(s Shape) {
	b := s.Common()
	if b.provisional {
		n := len(b.Points)
		if n > 1 && b.Points[n-1].Eq(b.Points[n-2]) {
			b.Points = b.Points[:n-1]
		}
	}
	b.provisional = false
}

// IsDrawing reports whether the shape has a provisional end point
func IsDrawing(s Shape) bool {
	return s.Common().provisional
}

// LineGeometryType classifies a segment
type LineGeometryType int

const (
	Horizontal LineGeometryType = iota
	Vertical
	Diagonal
)

func (t LineGeometryType) String() string {
	switch t {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	}
	return "Diagonal"
}

// FindLineGeometryType classifies the segment p1-p2
func FindLineGeometryType(p1, p2 geom.Point) LineGeometryType {
	switch {
	case sameCoord(p1.Y, p2.Y):
		return Horizontal
	case sameCoord(p1.X, p2.X):
		return Vertical
	}
	return Diagonal
}

// IsLineStraight reports whether the endpoints share exactly one coordinate
func IsLineStraight(p1, p2 geom.Point) bool {
	return sameCoord(p1.X, p2.X) != sameCoord(p1.Y, p2.Y)
}

func sameCoord(a, b float64) bool {
	d := a - b
	return d <= geom.Epsilon && d >= -geom.Epsilon
}

// Geometries classifies every segment of the point list
func Geometries(points []geom.Point) []LineGeometryType {
	if len(points) < 2 {
		return nil
	}
	out := make([]LineGeometryType, len(points)-1)
	for i := range out {
		out[i] = FindLineGeometryType(points[i], points[i+1])
	}
	return out
}

// Manhattanize turns every diagonal segment into a horizontal leg followed
// by a vertical leg, then removes duplicate and collinear interior points.
// Endpoints are preserved; polygons are closed first.
func Manhattanize(s Shape) error {
	if s.Kind().HasExtent() {
		return ErrNoPoints
	}
	b := s.Common()
	points := b.Points
	if s.Kind() == KindPolygon {
		points = closePoints(points)
	}
	if len(points) < 2 {
		return nil
	}

	out := []geom.Point{points[0]}
	for _, next := range points[1:] {
		prev := out[len(out)-1]
		if FindLineGeometryType(prev, next) == Diagonal {
			out = append(out, geom.Pt(next.X, prev.Y))
		}
		out = append(out, next)
	}
	b.Points = removeRedundantPoints(out)
	return nil
}

func removeRedundantPoints(points []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Eq(p) {
			continue
		}
		if n := len(out); n >= 2 {
			a, m := out[n-2], out[n-1]
			if FindLineGeometryType(a, m) == FindLineGeometryType(m, p) &&
				FindLineGeometryType(a, p) != Diagonal {
				out[n-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// AdjustPointsWithOrigin moves the origin to the centre of the point list
// and shifts the points so the shape does not move in the scene.
func AdjustPointsWithOrigin(s Shape) {
	b := s.Common()
	if len(b.Points) == 0 {
		return
	}
	c := b.pointsRect().Center()
	for i := range b.Points {
		b.Points[i] = b.Points[i].Sub(c)
	}
	b.Origin = b.Origin.Add(c.Rotate(geom.Point{}, b.Rotation))
}

// AdjustExtentsWithOrigin moves the origin to the centre of the extent and
// shifts the extent so the shape does not move in the scene.
func AdjustExtentsWithOrigin(s Shape) {
	b := s.Common()
	if len(b.Extents) != 2 {
		return
	}
	c := b.extentRect().Center()
	for i := range b.Extents {
		b.Extents[i] = b.Extents[i].Sub(c)
	}
	b.Origin = b.Origin.Add(c.Rotate(geom.Point{}, b.Rotation))
}
