package component

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

var (
	// ErrCycle is returned when adding a component would make it its own
	// ancestor
	ErrCycle = errors.New("component tree cycle")
	// ErrHasParent is returned when adding a component that is already owned
	ErrHasParent = errors.New("component already has a parent")
)

// Component is one instance placed in a layer. Its shapes are expressed in
// the class coordinate system Coords and mapped into the parent layer by
// Placement. Inherited children (extends clauses) share the component's
// frame; the others are placed by their own Placement.
type Component struct {
	ID        uuid.UUID
	Name      string
	ClassName string
	Inherited bool

	Placement Placement
	Coords    CoordinateSystem
	Shapes    *shape.Arena

	parent   *Component
	children []*Component
	resize   *resizeState
}

// New creates a component with the default placement and coordinate system
func New(name, className string) *Component {
	return &Component{
		ID:        uuid.New(),
		Name:      name,
		ClassName: className,
		Placement: DefaultPlacement(),
		Coords:    DefaultCoordinateSystem(),
		Shapes:    shape.NewArena(),
	}
}

// Parent returns the owning component, or nil for top-level components
func (c *Component) Parent() *Component { return c.parent }

// Children returns the owned components
func (c *Component) Children() []*Component { return slices.Clone(c.children) }

// AddChild transfers ownership of child to c
func (c *Component) AddChild(child *Component) error {
	for p := c; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		return ErrHasParent
	}
	child.parent = c
	c.children = append(c.children, child)
	return nil
}

// RemoveChild releases child and reports whether c owned it
func (c *Component) RemoveChild(child *Component) bool {
	i := slices.Index(c.children, child)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	child.parent = nil
	return true
}

// Walk visits c and its descendants depth first. Returning false from fn
// skips the subtree.
func (c *Component) Walk(fn func(*Component) bool) {
	if !fn(c) {
		return
	}
	for _, child := range c.children {
		child.Walk(fn)
	}
}

// Transformation returns the placement transformation in use
func (c *Component) Transformation() *Transformation {
	return &c.Placement.Transformation
}

// Scale returns the scale factors of the placement
func (c *Component) Scale() (float64, float64) {
	return c.Placement.Transformation.Scale(c.Coords)
}

// Matrix maps class coordinates to the parent layer
func (c *Component) Matrix() geom.Matrix {
	if c.Inherited {
		return geom.Identity()
	}
	return c.Placement.Transformation.Matrix(c.Coords)
}

// SceneMatrix maps class coordinates to the top-level layer
func (c *Component) SceneMatrix() geom.Matrix {
	m := c.Matrix()
	for p := c.parent; p != nil; p = p.parent {
		m = m.Then(p.Matrix())
	}
	return m
}

// SceneRect is the bounding box of the placed extent in the parent layer
func (c *Component) SceneRect() geom.Rect {
	if c.Inherited && c.parent != nil {
		return c.parent.SceneRect()
	}
	return c.Placement.Transformation.SceneRect()
}

// SceneShape is a shape with the transform from its local frame to the
// top-level layer
type SceneShape struct {
	Owner  *Component
	Handle shape.Handle
	Shape  shape.Shape
	Matrix geom.Matrix
}

// SceneShapes returns the visible shapes of c and its descendants, back
// to front, inherited shapes first.
func (c *Component) SceneShapes() []SceneShape {
	if !c.Placement.Visible && !c.Inherited {
		return nil
	}
	m := c.SceneMatrix()

	var out []SceneShape
	for _, child := range c.children {
		if child.Inherited {
			out = append(out, child.SceneShapes()...)
		}
	}
	for _, h := range c.Shapes.Handles() {
		s, _ := c.Shapes.Get(h)
		if !s.Common().Visible {
			continue
		}
		out = append(out, SceneShape{
			Owner:  c,
			Handle: h,
			Shape:  s,
			Matrix: s.Common().Transform().Then(m),
		})
	}
	for _, child := range c.children {
		if !child.Inherited {
			out = append(out, child.SceneShapes()...)
		}
	}
	return out
}

// ApplyRotation rotates about the component origin by delta degrees
func (c *Component) ApplyRotation(delta float64) {
	t := c.Transformation()
	t.Rotation = geom.NormalizeAngle(t.Rotation + delta)
}

// RotateClockwise rotates by a quarter turn clockwise
func (c *Component) RotateClockwise() { c.ApplyRotation(-90) }

// RotateAntiClockwise rotates by a quarter turn anticlockwise
func (c *Component) RotateAntiClockwise() { c.ApplyRotation(90) }

// FlipHorizontal mirrors the component across the vertical axis through its
// origin. The extent is mirrored, which inverts the x scale, and the
// rotation is negated.
func (c *Component) FlipHorizontal() {
	t := c.Transformation()
	for i := range t.Extent {
		t.Extent[i].X = -t.Extent[i].X
	}
	t.Rotation = geom.NormalizeAngle(-t.Rotation)
}

// FlipVertical mirrors the component across the horizontal axis through its
// origin.
func (c *Component) FlipVertical() {
	t := c.Transformation()
	for i := range t.Extent {
		t.Extent[i].Y = -t.Extent[i].Y
	}
	t.Rotation = geom.NormalizeAngle(-t.Rotation)
}

// MoveBy translates the origin
func (c *Component) MoveBy(d geom.Point) {
	t := c.Transformation()
	t.Origin = t.Origin.Add(d)
}

// Move applies one keyboard nudge
func (c *Component) Move(dir shape.Direction, mod shape.Modifier, grid geom.Point, n shape.Nudge) {
	c.MoveBy(n.Offset(dir, mod, grid))
}

// Duplicate deep-copies the component and its subtree with fresh ids, offset
// by one grid step. The copy has no parent.
func (c *Component) Duplicate(grid geom.Point) *Component {
	d := c.clone()
	d.MoveBy(grid)
	return d
}

// Clone deep-copies the component and its subtree, keeping ids
func (c *Component) Clone() *Component {
	return c.cloneWith(func(id uuid.UUID) uuid.UUID { return id })
}

func (c *Component) clone() *Component {
	return c.cloneWith(func(uuid.UUID) uuid.UUID { return uuid.New() })
}

func (c *Component) cloneWith(id func(uuid.UUID) uuid.UUID) *Component {
	d := *c
	d.ID = id(c.ID)
	d.parent = nil
	d.resize = nil
	d.Shapes = c.Shapes.Clone()
	if c.Placement.IconTransformation != nil {
		t := *c.Placement.IconTransformation
		d.Placement.IconTransformation = &t
	}
	d.children = make([]*Component, 0, len(c.children))
	for _, child := range c.children {
		cc := child.cloneWith(id)
		cc.parent = &d
		d.children = append(d.children, cc)
	}
	return &d
}
