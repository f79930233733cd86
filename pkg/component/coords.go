// Package component models the placement of component instances inside an
// icon or diagram layer: the class coordinate system, the Placement
// annotation, and the affine transform that maps the class's shapes into
// the enclosing layer. Components form an ownership tree.
package component

import (
	"fmt"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/modelica"
)

// CoordinateSystem is the coordinateSystem record of an Icon or Diagram
// layer
type CoordinateSystem struct {
	Extent              [2]geom.Point
	PreserveAspectRatio bool
	InitialScale        float64
	Grid                geom.Point
}

// DefaultCoordinateSystem returns the grammar defaults
func DefaultCoordinateSystem() CoordinateSystem {
	return CoordinateSystem{
		Extent:              [2]geom.Point{{X: -100, Y: -100}, {X: 100, Y: 100}},
		PreserveAspectRatio: true,
		InitialScale:        0.1,
		Grid:                geom.Pt(2, 2),
	}
}

// Rect returns the normalized extent
func (c CoordinateSystem) Rect() geom.Rect {
	return geom.RectFromPoints(c.Extent[0], c.Extent[1])
}

// GridStep returns the grid spacing, falling back to the default when a
// component is zero.
func (c CoordinateSystem) GridStep() geom.Point {
	g := c.Grid
	if g.X <= 0 {
		g.X = 2
	}
	if g.Y <= 0 {
		g.Y = 2
	}
	return g
}

// Snap rounds p to the nearest grid point
func (c CoordinateSystem) Snap(p geom.Point) geom.Point {
	g := c.GridStep()
	return geom.Pt(roundTo(p.X, g.X), roundTo(p.Y, g.Y))
}

func roundTo(v, step float64) float64 {
	n := v / step
	if n < 0 {
		return -float64(int64(-n+0.5)) * step
	}
	return float64(int64(n+0.5)) * step
}

// ParseCoordinateSystem reads a coordinateSystem(...) call. Missing or
// malformed members keep their defaults; the first problem is returned.
func ParseCoordinateSystem(call *modelica.Call) (CoordinateSystem, error) {
	cs := DefaultCoordinateSystem()
	if call == nil {
		return cs, nil
	}

	var firstErr error
	keep := func(name string, err error) {
		if err != nil && firstErr == nil {
			firstErr = &annotation.FieldError{Field: name, Err: err}
		}
	}

	if e := call.Arg("extent", 0); e != nil {
		pts, err := e.Points()
		if err == nil && len(pts) != 2 {
			err = fmt.Errorf("extent needs two points, got %d", len(pts))
		}
		if err == nil {
			cs.Extent = [2]geom.Point{pts[0], pts[1]}
		}
		keep("extent", err)
	}
	if e := call.Arg("preserveAspectRatio", 1); e != nil {
		v, err := e.Bool()
		if err == nil {
			cs.PreserveAspectRatio = v
		}
		keep("preserveAspectRatio", err)
	}
	if e := call.Arg("initialScale", 2); e != nil {
		v, err := e.Real()
		if err == nil {
			cs.InitialScale = v
		}
		keep("initialScale", err)
	}
	if e := call.Arg("grid", 3); e != nil {
		v, err := e.Point()
		if err == nil {
			cs.Grid = v
		}
		keep("grid", err)
	}
	return cs, firstErr
}

// Annotation renders coordinateSystem(...) with default members omitted,
// or "" when everything is default.
func (c CoordinateSystem) Annotation() string {
	def := DefaultCoordinateSystem()
	var args []string
	if c.Extent != def.Extent {
		args = append(args, "extent="+annotation.FormatPoints(c.Extent[:]))
	}
	if c.PreserveAspectRatio != def.PreserveAspectRatio {
		args = append(args, "preserveAspectRatio="+annotation.FormatBool(c.PreserveAspectRatio))
	}
	if c.InitialScale != def.InitialScale {
		args = append(args, "initialScale="+annotation.FormatReal(c.InitialScale))
	}
	if c.Grid != def.Grid {
		args = append(args, "grid="+annotation.FormatPoint(c.Grid))
	}
	if len(args) == 0 {
		return ""
	}
	return "coordinateSystem(" + strings.Join(args, ",") + ")"
}
