package render

import (
	"image"
	"image/color"
	"math"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// OpKind selects how an Op is drawn
type OpKind int

const (
	OpFill           OpKind = iota // fill Path with Color
	OpStroke                       // stroke Path with Color, Width and Dash
	OpLinearGradient               // fill Path with Stops along From..To
	OpRadialGradient               // fill Path with Stops from From out to Radius
	OpText
	OpImage
)

// Stop is one colour stop of a gradient, Offset in [0,1]
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// TextOp is a single line of text. Anchor is the alignment point on the
// vertical centre line of the text box.
type TextOp struct {
	Text      string
	Anchor    geom.Point
	Angle     float64 // radians, screen orientation of the text baseline
	Size      float64 // pixels
	Width     float64 // box width in pixels
	Fit       bool    // shrink Size until the text fits Width
	Align     annotation.TextAlignment
	Bold      bool
	Italic    bool
	Underline bool
}

// Op is one backend-neutral draw operation in screen pixels
type Op struct {
	Kind  OpKind
	Path  Path
	Clip  *Path // restricts a stroke, used for hatching
	Color color.NRGBA
	Width float64
	Dash  []float64

	From, To geom.Point
	Radius   float64
	Stops    []Stop

	Text *TextOp

	Image       image.Image
	ImageMatrix geom.Matrix // image pixels to screen

	Owner  *component.Component // nil for the layer's own graphics
	Handle shape.Handle
}

// Options controls what Build emits besides the shapes
type Options struct {
	Theme      Theme
	Background bool
	Extent     bool // coordinate system border
	Grid       bool
	Vars       map[string]string // text substitutions for the layer's own texts

	// Selected marks shapes drawn with a selection frame and handles
	Selected func(component.SceneShape) bool
}

// DefaultOptions draws the background and the coordinate system border in
// the light theme
func DefaultOptions() Options {
	return Options{Theme: LookupTheme("light"), Background: true, Extent: true}
}

const (
	hatchSpacing = 8.0 // pixels
	handleSize   = 6.0
	minGridPx    = 4.0
	fitRatio     = 0.75 // glyph size relative to an auto-sized text box
)

var (
	bevelLight = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	bevelDark  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// Build converts the visible content of l into draw operations, back to
// front, as seen through cam.
func Build(l *diagram.Layer, cam *Camera, opts Options) []Op {
	view := cam.Matrix()
	var ops []Op

	if opts.Background {
		screen := geom.RectFromPoints(geom.Point{}, geom.Pt(float64(cam.ScreenWidth), float64(cam.ScreenHeight)))
		c := screen.Corners()
		ops = append(ops, Op{Kind: OpFill, Path: Path{Points: c[:], Closed: true}, Color: opts.Theme.Background})
	}
	cs := l.Coords.Rect()
	if opts.Grid {
		ops = append(ops, gridOps(cs, l.GridStep(), view, opts.Theme.Grid, cam.Zoom)...)
	}
	if opts.Extent {
		c := cs.Corners()
		ops = append(ops, Op{Kind: OpStroke, Path: Path{Points: c[:], Closed: true}.Transform(view), Color: opts.Theme.Extent, Width: 1})
	}

	for _, ss := range l.SceneShapes() {
		m := ss.Matrix.Then(view)
		vars := opts.Vars
		if ss.Owner != nil {
			vars = map[string]string{"name": ss.Owner.Name, "class": ss.Owner.ClassName}
		}
		start := len(ops)
		ops = append(ops, ShapeOps(ss.Shape, m, vars)...)
		if opts.Selected != nil && opts.Selected(ss) {
			ops = append(ops, selectionOps(ss.Shape, m, opts.Theme)...)
		}
		for i := start; i < len(ops); i++ {
			ops[i].Owner = ss.Owner
			ops[i].Handle = ss.Handle
		}
	}
	return ops
}

// ShapeOps returns the draw operations of one shape whose local frame maps
// to the screen through m
func ShapeOps(s shape.Shape, m geom.Matrix, vars map[string]string) []Op {
	switch v := s.(type) {
	case *shape.Text:
		if op, ok := textOp(v, m, vars); ok {
			return []Op{op}
		}
		return nil
	case *shape.Bitmap:
		if op, ok := imageOp(v, m); ok {
			return []Op{op}
		}
		return nil
	}

	outline, ok := Outline(s)
	if !ok {
		return nil
	}
	b := s.Common()
	screen := outline.Transform(m)
	scale := matrixScale(m)
	var ops []Op

	if s.Kind() != shape.KindLine {
		ops = append(ops, fillOps(s, screen, m)...)
	}
	if b.LinePattern != annotation.LinePatternNone {
		width := StrokeWidth(b.LineThickness, scale)
		ops = append(ops, Op{
			Kind:  OpStroke,
			Path:  screen,
			Color: b.LineColor.NRGBA(),
			Width: width,
			Dash:  scaleDash(Dash(b.LinePattern), width),
		})
		if l, ok := s.(*shape.Line); ok {
			for _, head := range ArrowHeads(l) {
				kind := OpStroke
				if head.Closed {
					kind = OpFill
				}
				ops = append(ops, Op{Kind: kind, Path: head.Transform(m), Color: b.LineColor.NRGBA(), Width: width})
			}
		}
	}
	if r, ok := s.(*shape.Rectangle); ok {
		for _, e := range Bevel(r.BoundingRect(), r.BorderPattern) {
			c := bevelDark
			if e.Light {
				c = bevelLight
			}
			ops = append(ops, Op{Kind: OpStroke, Path: e.Path.Transform(m), Color: c, Width: 1})
		}
	}
	return ops
}

func fillOps(s shape.Shape, screen Path, m geom.Matrix) []Op {
	b := s.Common()
	fill := b.FillColor.NRGBA()
	line := b.LineColor.NRGBA()
	r := s.BoundingRect()

	switch p := b.FillPattern; {
	case p == annotation.FillPatternNone:
		return nil
	case p == annotation.FillPatternSolid:
		return []Op{{Kind: OpFill, Path: screen, Color: fill}}
	case p == annotation.FillPatternSphere:
		c := m.Apply(r.Center())
		edge := m.Apply(geom.Pt(r.Max.X, r.Center().Y))
		top := m.Apply(geom.Pt(r.Center().X, r.Max.Y))
		radius := max(math.Hypot(edge.X-c.X, edge.Y-c.Y), math.Hypot(top.X-c.X, top.Y-c.Y))
		return []Op{{
			Kind: OpRadialGradient, Path: screen, From: c, Radius: radius,
			Stops: []Stop{{0, fill}, {1, line}},
		}}
	case IsGradient(p):
		c := r.Center()
		from, to := geom.Pt(c.X, r.Min.Y), geom.Pt(c.X, r.Max.Y)
		if p == annotation.FillPatternVerticalCylinder {
			from, to = geom.Pt(r.Min.X, c.Y), geom.Pt(r.Max.X, c.Y)
		}
		return []Op{{
			Kind: OpLinearGradient, Path: screen, From: m.Apply(from), To: m.Apply(to),
			Stops: []Stop{{0, line}, {0.5, fill}, {1, line}},
		}}
	}

	clip := screen
	bounds := geom.NewRect()
	for _, pt := range screen.Points {
		bounds.Expand(pt)
	}
	var ops []Op
	for _, angle := range Hatch(b.FillPattern) {
		// world Y is flipped on screen
		for _, h := range HatchLines(bounds, -angle, hatchSpacing) {
			ops = append(ops, Op{Kind: OpStroke, Path: h, Clip: &clip, Color: fill, Width: 1})
		}
	}
	return ops
}

func textOp(t *shape.Text, m geom.Matrix, vars map[string]string) (Op, bool) {
	r := t.BoundingRect()
	str := t.Substitute(vars)
	if r.IsEmpty() || str == "" {
		return Op{}, false
	}
	sx := math.Hypot(m[0], m[3])
	sy := math.Hypot(m[1], m[4])
	c := r.Center()

	anchor := c
	switch t.HorizontalAlignment {
	case annotation.TextAlignmentLeft:
		anchor.X = r.Min.X
	case annotation.TextAlignmentRight:
		anchor.X = r.Max.X
	}

	op := &TextOp{
		Text:      str,
		Anchor:    m.Apply(anchor),
		Angle:     math.Atan2(m[3], m[0]),
		Width:     r.Width() * sx,
		Align:     t.HorizontalAlignment,
		Bold:      t.HasStyle(annotation.TextStyleBold),
		Italic:    t.HasStyle(annotation.TextStyleItalic),
		Underline: t.HasStyle(annotation.TextStyleUnderLine),
	}
	if t.FontSize > 0 {
		op.Size = t.FontSize * sy
	} else {
		op.Size = r.Height() * sy * fitRatio
		op.Fit = true
	}
	return Op{Kind: OpText, Text: op, Color: t.EffectiveTextColor().NRGBA()}, op.Size > 0
}

// imageOp maps the image into the bitmap extent flipped vertically: pixel
// row 0 lands on the top edge of the extent.
func imageOp(b *shape.Bitmap, m geom.Matrix) (Op, bool) {
	r := b.BoundingRect()
	if b.Image == nil || r.IsEmpty() {
		return Op{}, false
	}
	size := b.Image.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return Op{}, false
	}
	at := b.Image.Bounds().Min
	im := geom.Translation(-float64(at.X), -float64(at.Y)).
		Then(geom.Scaling(r.Width()/float64(size.X), -r.Height()/float64(size.Y))).
		Then(geom.Translation(r.Min.X, r.Max.Y)).
		Then(m)
	return Op{Kind: OpImage, Image: b.Image, ImageMatrix: im}, true
}

func selectionOps(s shape.Shape, m geom.Matrix, theme Theme) []Op {
	box := shape.SelectionRect(s).Corners()
	ops := []Op{{
		Kind: OpStroke, Path: Path{Points: box[:], Closed: true}.Transform(m),
		Color: theme.Selection, Width: 1, Dash: []float64{4, 4},
	}}
	h := handleSize / 2
	for _, p := range shape.Handles(s) {
		c := m.Apply(p)
		sq := geom.RectFromPoints(geom.Pt(c.X-h, c.Y-h), geom.Pt(c.X+h, c.Y+h)).Corners()
		ops = append(ops, Op{Kind: OpFill, Path: Path{Points: sq[:], Closed: true}, Color: theme.Handle})
	}
	return ops
}

func gridOps(cs geom.Rect, step geom.Point, view geom.Matrix, c color.NRGBA, zoom float64) []Op {
	if step.X <= 0 || step.Y <= 0 || step.X*zoom < minGridPx || step.Y*zoom < minGridPx {
		return nil
	}
	var ops []Op
	for x := math.Ceil(cs.Min.X/step.X) * step.X; x <= cs.Max.X; x += step.X {
		p := Path{Points: []geom.Point{{X: x, Y: cs.Min.Y}, {X: x, Y: cs.Max.Y}}}
		ops = append(ops, Op{Kind: OpStroke, Path: p.Transform(view), Color: c, Width: 1})
	}
	for y := math.Ceil(cs.Min.Y/step.Y) * step.Y; y <= cs.Max.Y; y += step.Y {
		p := Path{Points: []geom.Point{{X: cs.Min.X, Y: y}, {X: cs.Max.X, Y: y}}}
		ops = append(ops, Op{Kind: OpStroke, Path: p.Transform(view), Color: c, Width: 1})
	}
	return ops
}

// matrixScale is the mean length of the transformed unit axes
func matrixScale(m geom.Matrix) float64 {
	return (math.Hypot(m[0], m[3]) + math.Hypot(m[1], m[4])) / 2
}

func scaleDash(dash []float64, width float64) []float64 {
	if dash == nil {
		return nil
	}
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * width
	}
	return out
}
