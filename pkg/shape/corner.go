package shape

import (
	"errors"
	"slices"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Corner handle indices of extent-based shapes
const (
	BottomLeft = iota
	TopLeft
	TopRight
	BottomRight
)

// DefaultMinSize is the smallest extent a corner drag can produce
const DefaultMinSize = 1.0

// Handles returns the handle positions in local coordinates: the four
// extent corners in handle order, or one handle per vertex.
func Handles(s Shape) []geom.Point {
	b := s.Common()
	if s.Kind().HasExtent() {
		c := b.extentRect().Corners()
		return c[:]
	}
	return slices.Clone(b.Points)
}

// DragState is the state of a corner drag
type DragState int

const (
	Idle DragState = iota
	Pressed
	Dragging
)

func (s DragState) String() string {
	switch s {
	case Pressed:
		return "Pressed"
	case Dragging:
		return "Dragging"
	}
	return "Idle"
}

var (
	ErrDragActive = errors.New("a handle is already active")
	ErrNoHandle   = errors.New("no such handle")
)

// CornerDrag tracks the interaction with one resize handle
type CornerDrag struct {
	MinSize float64

	state   DragState
	shape   Shape
	index   int
	points  []geom.Point // geometry before the drag
	extents []geom.Point
}

// State returns the current state
func (d *CornerDrag) State() DragState { return d.state }

// Index returns the active handle, or -1 when idle
func (d *CornerDrag) Index() int {
	if d.state == Idle {
		return -1
	}
	return d.index
}

// Press activates handle i of s
func (d *CornerDrag) Press(s Shape, i int) error {
	if d.state != Idle {
		return ErrDragActive
	}
	if i < 0 || i >= len(Handles(s)) {
		return ErrNoHandle
	}

	b := s.Common()
	d.shape = s
	d.index = i
	d.points = slices.Clone(b.Points)
	d.extents = slices.Clone(b.Extents)
	d.state = Pressed
	return nil
}

// Move drags the active handle to p, given in the shape's local frame
func (d *CornerDrag) Move(p geom.Point) {
	if d.state == Idle {
		return
	}
	d.state = Dragging
	b := d.shape.Common()

	if !d.shape.Kind().HasExtent() {
		b.Points[d.index] = p
		// keep an explicitly closed polygon closed
		last := len(b.Points) - 1
		if d.shape.Kind() == KindPolygon && last > 0 && d.points[0].Eq(d.points[last]) {
			switch d.index {
			case 0:
				b.Points[last] = p
			case last:
				b.Points[0] = p
			}
		}
		return
	}

	minSize := d.MinSize
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	e := geom.ResizeExtent([2]geom.Point{d.extents[0], d.extents[1]}, d.index, p, minSize)
	b.Extents[0], b.Extents[1] = e[0], e[1]
}

// ScaleFactors returns the current extent size relative to the size before
// the drag.
func (d *CornerDrag) ScaleFactors() (float64, float64) {
	if d.state == Idle || !d.shape.Kind().HasExtent() {
		return 1, 1
	}
	before := geom.RectFromPoints(d.extents[0], d.extents[1])
	now := d.shape.BoundingRect()
	sx, sy := 1.0, 1.0
	if w := before.Width(); w > 0 {
		sx = now.Width() / w
	}
	if h := before.Height(); h > 0 {
		sy = now.Height() / h
	}
	return sx, sy
}

// Release ends the drag and reports whether the geometry changed
func (d *CornerDrag) Release() bool {
	moved := d.state == Dragging
	d.reset()
	return moved
}

// Cancel ends the drag and restores the geometry from before Press
func (d *CornerDrag) Cancel() {
	if d.state == Idle {
		return
	}
	b := d.shape.Common()
	b.Points = d.points
	b.Extents = d.extents
	d.reset()
}

func (d *CornerDrag) reset() {
	d.state = Idle
	d.shape = nil
	d.points = nil
	d.extents = nil
}
