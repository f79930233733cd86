// Package shape provides the graphical primitives of Modelica icon and
// diagram layers (Line, Polygon, Rectangle, Ellipse, Text and Bitmap): their
// parsing from and serialization to annotation text, their geometry and the
// interactive editing operations applied to them.
package shape

import (
	"math"
	"slices"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Kind identifies a shape variant
type Kind int

const (
	KindLine Kind = iota
	KindPolygon
	KindRectangle
	KindEllipse
	KindText
	KindBitmap
)

var kindNames = []string{"Line", "Polygon", "Rectangle", "Ellipse", "Text", "Bitmap"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind maps a record name to its Kind
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// HasExtent reports whether the variant is placed by a two-corner extent
// rather than a point list.
func (k Kind) HasExtent() bool {
	return k != KindLine && k != KindPolygon
}

// Shape is implemented by every shape variant
type Shape interface {
	Kind() Kind
	// Common returns the attributes shared by all variants
	Common() *Base
	// Annotation serializes the shape to annotation text
	Annotation() string
	// BoundingRect is the axis-aligned bounds in local coordinates
	BoundingRect() geom.Rect
	// Clone returns an independent deep copy
	Clone() Shape

	fields() []field
}

// Base holds the state common to every shape
type Base struct {
	GraphicItem
	FilledShape

	Points  []geom.Point // Line and Polygon vertices
	Extents []geom.Point // two corners for extent-based variants

	provisional bool // the last point follows the pointer while drawing

	// members kept verbatim as name=value because they are not literals,
	// re-emitted while the matching field still holds its default
	raw []string
}

func newBase(kind Kind) Base {
	b := Base{}
	b.GraphicItem.SetDefaults()
	b.FilledShape.SetDefaults()
	if kind.HasExtent() {
		b.Extents = make([]geom.Point, 2)
	}
	return b
}

func (b *Base) clone() Base {
	c := *b
	c.Points = slices.Clone(b.Points)
	c.Extents = slices.Clone(b.Extents)
	c.raw = slices.Clone(b.raw)
	return c
}

// Transform maps local coordinates to the parent frame
func (b *Base) Transform() geom.Matrix {
	return geom.Placement(b.Origin, b.Rotation)
}

// ToLocal maps a parent-frame point into the shape's local frame
func (b *Base) ToLocal(p geom.Point) geom.Point {
	inv, _ := b.Transform().Invert()
	return inv.Apply(p)
}

// pointsRect is the bounds of the point list
func (b *Base) pointsRect() geom.Rect {
	r := geom.NewRect()
	for _, p := range b.Points {
		r.Expand(p)
	}
	return r
}

// extentRect is the normalized extent rectangle
func (b *Base) extentRect() geom.Rect {
	if len(b.Extents) < 2 {
		return geom.NewRect()
	}
	return geom.RectFromPoints(b.Extents[0], b.Extents[1])
}

// SelectionRect is the bounding rectangle padded for hit testing
func SelectionRect(s Shape) geom.Rect {
	b := s.Common()
	return s.BoundingRect().Inset(math.Max(b.LineThickness/2, 1))
}

// SceneRect is the bounding rectangle in the parent frame
func SceneRect(s Shape) geom.Rect {
	return s.Common().Transform().ApplyRect(s.BoundingRect())
}

// New returns a fresh shape of the given kind. The stroke and fill
// attributes come from d, or from the grammar defaults when d is nil.
func New(kind Kind, d *Defaults) Shape {
	var s Shape
	switch kind {
	case KindLine:
		s = newLine()
	case KindPolygon:
		s = newPolygon()
	case KindRectangle:
		s = newRectangle()
	case KindEllipse:
		s = newEllipse()
	case KindText:
		s = newText()
	case KindBitmap:
		s = newBitmap()
	default:
		return nil
	}
	if d != nil {
		d.apply(&s.Common().FilledShape)
	}
	return s
}

func annotationText(kind Kind, fields []field, raw []string) string {
	out := serialize(fields)
	for _, r := range raw {
		name, _, _ := annotation.SplitNamed(r)
		if !emitted(fields, name) {
			out = append(out, r)
		}
	}
	return kind.String() + "(" + strings.Join(out, ",") + ")"
}

// emitted reports whether the field called name serializes a value of its
// own
func emitted(fields []field, name string) bool {
	for _, f := range fields {
		if f.matches(name) {
			_, ok := f.format()
			return ok
		}
	}
	return false
}
