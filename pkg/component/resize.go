package component

import (
	"errors"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

var (
	ErrResizeActive = errors.New("resize already in progress")
	ErrNoHandle     = errors.New("no such handle")
)

type resizeState struct {
	handle  int
	minSize float64
	before  Transformation
	changed bool
}

// PrepareResize starts dragging corner handle (shape.BottomLeft ..
// shape.BottomRight). Each side of the extent stays at least minSize.
func (c *Component) PrepareResize(handle int, minSize float64) error {
	if c.resize != nil {
		return ErrResizeActive
	}
	if handle < shape.BottomLeft || handle > shape.BottomRight {
		return ErrNoHandle
	}
	if minSize <= 0 {
		minSize = shape.DefaultMinSize
	}
	c.resize = &resizeState{handle: handle, minSize: minSize, before: c.Placement.Transformation}
	return nil
}

// Resizing reports whether a resize is in progress
func (c *Component) Resizing() bool { return c.resize != nil }

// Resize moves the active handle to p, given in the parent layer. The
// opposite corner stays fixed.
func (c *Component) Resize(p geom.Point) {
	r := c.resize
	if r == nil {
		return
	}
	inv, ok := r.before.Frame().Invert()
	if !ok {
		return
	}
	t := c.Transformation()
	t.Extent = geom.ResizeExtent(r.before.Extent, r.handle, inv.Apply(p), r.minSize)
	r.changed = true
}

// FinishResize commits the resize and reports whether the extent changed
func (c *Component) FinishResize() bool {
	r := c.resize
	c.resize = nil
	return r != nil && r.changed && r.before.Extent != c.Placement.Transformation.Extent
}

// CancelResize restores the transformation from before PrepareResize
func (c *Component) CancelResize() {
	if c.resize == nil {
		return
	}
	c.Placement.Transformation = c.resize.before
	c.resize = nil
}
