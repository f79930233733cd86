package component

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/modelica"
)

// Transformation places a component: the extent is relative to the origin
// and rotation is about the origin. Flip is encoded in the extent order:
// x2 < x1 mirrors horizontally, y2 < y1 vertically.
type Transformation struct {
	Origin   geom.Point
	Extent   [2]geom.Point
	Rotation float64
}

// DefaultTransformation is a 20x20 extent centred on the origin
func DefaultTransformation() Transformation {
	return Transformation{Extent: [2]geom.Point{{X: -10, Y: -10}, {X: 10, Y: 10}}}
}

// Rect returns the normalized extent relative to the origin
func (t Transformation) Rect() geom.Rect {
	return geom.RectFromPoints(t.Extent[0], t.Extent[1])
}

// FlippedHorizontal reports whether the extent runs right to left
func (t Transformation) FlippedHorizontal() bool { return t.Extent[1].X < t.Extent[0].X }

// FlippedVertical reports whether the extent runs top to bottom
func (t Transformation) FlippedVertical() bool { return t.Extent[1].Y < t.Extent[0].Y }

// Scale returns the factors mapping the class coordinate system onto the
// extent. They are negative when flipped.
func (t Transformation) Scale(cs CoordinateSystem) (float64, float64) {
	r := cs.Rect()
	sx, sy := 1.0, 1.0
	if w := r.Width(); w > 0 {
		sx = (t.Extent[1].X - t.Extent[0].X) / w
	}
	if h := r.Height(); h > 0 {
		sy = (t.Extent[1].Y - t.Extent[0].Y) / h
	}
	return sx, sy
}

// Frame maps extent coordinates to the parent layer: rotate about the
// origin, then translate by it.
func (t Transformation) Frame() geom.Matrix {
	return geom.Placement(t.Origin, t.Rotation)
}

// Matrix maps class coordinates to the parent layer: scale about the
// coordinate system centre, move to the extent centre, then apply Frame.
func (t Transformation) Matrix(cs CoordinateSystem) geom.Matrix {
	c := cs.Rect().Center()
	ec := geom.Pt((t.Extent[0].X+t.Extent[1].X)/2, (t.Extent[0].Y+t.Extent[1].Y)/2)
	sx, sy := t.Scale(cs)
	return geom.Translation(-c.X, -c.Y).
		Then(geom.Scaling(sx, sy)).
		Then(geom.Translation(ec.X, ec.Y)).
		Then(t.Frame())
}

// Corners returns the extent corners in the parent layer, in handle order
func (t Transformation) Corners() [4]geom.Point {
	m := t.Frame()
	c := t.Rect().Corners()
	for i := range c {
		c[i] = m.Apply(c[i])
	}
	return c
}

// SceneRect is the bounding box of the placed extent in the parent layer
func (t Transformation) SceneRect() geom.Rect {
	return t.Frame().ApplyRect(t.Rect())
}

func parseTransformation(call *modelica.Call) (Transformation, error) {
	t := DefaultTransformation()
	var errs []error

	if e := call.Named("origin"); e != nil {
		p, err := e.Point()
		if err == nil {
			t.Origin = p
		}
		errs = append(errs, fieldErr("origin", err))
	}
	if e := call.Named("extent"); e != nil {
		pts, err := e.Points()
		if err == nil && len(pts) != 2 {
			err = fmt.Errorf("extent needs two points, got %d", len(pts))
		}
		if err == nil {
			t.Extent = [2]geom.Point{pts[0], pts[1]}
		}
		errs = append(errs, fieldErr("extent", err))
	}
	if e := call.Named("rotation"); e != nil {
		v, err := e.Real()
		if err == nil {
			t.Rotation = geom.NormalizeAngle(v)
		}
		errs = append(errs, fieldErr("rotation", err))
	}
	return t, errors.Join(errs...)
}

func fieldErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return &annotation.FieldError{Field: name, Err: err}
}

func (t Transformation) annotation(name string) string {
	var args []string
	if t.Origin != (geom.Point{}) {
		args = append(args, "origin="+annotation.FormatPoint(t.Origin))
	}
	args = append(args, "extent="+annotation.FormatPoints(t.Extent[:]))
	if t.Rotation != 0 {
		args = append(args, "rotation="+annotation.FormatReal(t.Rotation))
	}
	return name + "(" + strings.Join(args, ",") + ")"
}

// Placement is the Placement annotation of a component declaration.
// IconTransformation is only set for connectors shown on the icon layer.
type Placement struct {
	Visible            bool
	Transformation     Transformation
	IconVisible        bool
	IconTransformation *Transformation
}

// DefaultPlacement is visible with the default transformation
func DefaultPlacement() Placement {
	return Placement{
		Visible:        true,
		Transformation: DefaultTransformation(),
		IconVisible:    true,
	}
}

// ErrNotPlacement is returned for calls other than Placement(...)
var ErrNotPlacement = errors.New("not a Placement annotation")

// ParsePlacement parses `Placement(visible=.., transformation(..),
// iconTransformation(..))`. Members that fail to parse keep their
// defaults and are reported in the joined error.
func ParsePlacement(text string) (Placement, error) {
	p := DefaultPlacement()
	call, err := modelica.ParseCall(text)
	if err != nil {
		return p, err
	}
	if call.Name != "Placement" {
		return p, fmt.Errorf("%w: %s", ErrNotPlacement, call.Name)
	}

	var errs []error
	if e := call.Named("visible"); e != nil {
		v, err := e.Bool()
		if err == nil {
			p.Visible = v
		}
		errs = append(errs, fieldErr("visible", err))
	}
	if e := call.Named("iconVisible"); e != nil {
		v, err := e.Bool()
		if err == nil {
			p.IconVisible = v
		}
		errs = append(errs, fieldErr("iconVisible", err))
	}
	if c := call.Call("transformation"); c != nil {
		t, err := parseTransformation(c)
		p.Transformation = t
		errs = append(errs, err)
	}
	if c := call.Call("iconTransformation"); c != nil {
		t, err := parseTransformation(c)
		p.IconTransformation = &t
		errs = append(errs, err)
	}
	return p, errors.Join(errs...)
}

// Annotation renders the Placement annotation with defaults omitted
func (p Placement) Annotation() string {
	var args []string
	if !p.Visible {
		args = append(args, "visible=false")
	}
	args = append(args, p.Transformation.annotation("transformation"))
	if !p.IconVisible {
		args = append(args, "iconVisible=false")
	}
	if p.IconTransformation != nil {
		args = append(args, p.IconTransformation.annotation("iconTransformation"))
	}
	return "Placement(" + strings.Join(args, ",") + ")"
}
