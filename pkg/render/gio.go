package render

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// sphereRings is the number of bands approximating a radial gradient
const sphereRings = 16

// GioRenderer draws ops into a gio operation list
type GioRenderer struct {
	shaper *text.Shaper
}

// NewGioRenderer creates a renderer using the Go fonts
func NewGioRenderer() *GioRenderer {
	return &GioRenderer{shaper: text.NewShaper(text.WithCollection(gofont.Collection()))}
}

// Draw adds every op to gtx.Ops in order
func (r *GioRenderer) Draw(gtx layout.Context, ops []Op) {
	for i := range ops {
		r.drawOp(gtx, &ops[i])
	}
}

func (r *GioRenderer) drawOp(gtx layout.Context, o *Op) {
	switch o.Kind {
	case OpFill:
		if len(o.Path.Points) > 2 {
			paint.FillShape(gtx.Ops, o.Color, clip.Outline{Path: buildPath(gtx.Ops, o.Path, true)}.Op())
		}
	case OpStroke:
		if o.Clip != nil {
			defer clip.Outline{Path: buildPath(gtx.Ops, *o.Clip, true)}.Op().Push(gtx.Ops).Pop()
		}
		for _, p := range dashed(o.Path, o.Dash) {
			renderStroke(gtx, p, o.Width, o.Color)
		}
	case OpLinearGradient:
		renderLinearGradient(gtx, o)
	case OpRadialGradient:
		renderRings(gtx, o)
	case OpText:
		r.renderText(gtx, o.Text, o.Color)
	case OpImage:
		renderImage(gtx, o.Image, o.ImageMatrix)
	}
}

func buildPath(ops *op.Ops, p Path, closed bool) clip.PathSpec {
	var path clip.Path
	path.Begin(ops)
	for i, pt := range p.Points {
		if i == 0 {
			path.MoveTo(f32pt(pt))
			continue
		}
		path.LineTo(f32pt(pt))
	}
	if closed {
		path.Close()
	}
	return path.End()
}

func renderStroke(gtx layout.Context, p Path, width float64, c color.NRGBA) {
	if len(p.Points) < 2 {
		return
	}
	stroke := clip.Stroke{
		Path:  buildPath(gtx.Ops, p, p.Closed),
		Width: float32(width),
	}.Op()
	paint.FillShape(gtx.Ops, c, stroke)
}

// renderLinearGradient paints one band per stop pair, each clipped to the
// outline and to the slab between its two stops.
func renderLinearGradient(gtx layout.Context, o *Op) {
	defer clip.Outline{Path: buildPath(gtx.Ops, o.Path, true)}.Op().Push(gtx.Ops).Pop()

	d := o.To.Sub(o.From)
	n := math.Hypot(d.X, d.Y)
	if n == 0 || len(o.Stops) == 0 {
		return
	}
	perp := geom.Pt(-d.Y/n, d.X/n).Mul(bandReach(o.Path))

	for i := 0; i+1 < len(o.Stops); i++ {
		s0, s1 := o.Stops[i], o.Stops[i+1]
		a := o.From.Add(d.Mul(s0.Offset))
		b := o.From.Add(d.Mul(s1.Offset))
		// extend the outer bands past the gradient ends
		if i == 0 {
			a = a.Sub(d)
		}
		if i+2 == len(o.Stops) {
			b = b.Add(d)
		}
		band := Path{Points: []geom.Point{a.Add(perp), b.Add(perp), b.Sub(perp), a.Sub(perp)}, Closed: true}

		stack := clip.Outline{Path: buildPath(gtx.Ops, band, true)}.Op().Push(gtx.Ops)
		paint.LinearGradientOp{
			Stop1:  f32pt(o.From.Add(d.Mul(s0.Offset))),
			Color1: s0.Color,
			Stop2:  f32pt(o.From.Add(d.Mul(s1.Offset))),
			Color2: s1.Color,
		}.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		stack.Pop()
	}
}

// renderRings approximates a radial gradient with shrinking copies of the
// outline scaled about the centre.
func renderRings(gtx layout.Context, o *Op) {
	if len(o.Stops) == 0 {
		return
	}
	for i := 0; i < sphereRings; i++ {
		t := float64(i) / sphereRings
		k := 1 - t
		m := geom.Translation(-o.From.X, -o.From.Y).
			Then(geom.Scaling(k, k)).
			Then(geom.Translation(o.From.X, o.From.Y))
		c := gradientAt(o.Stops, k)
		paint.FillShape(gtx.Ops, c, clip.Outline{Path: buildPath(gtx.Ops, o.Path.Transform(m), true)}.Op())
	}
}

func gradientAt(stops []Stop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			s0, s1 := stops[i-1], stops[i]
			f := (t - s0.Offset) / (s1.Offset - s0.Offset)
			lerp := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*f) }
			return color.NRGBA{
				R: lerp(s0.Color.R, s1.Color.R),
				G: lerp(s0.Color.G, s1.Color.G),
				B: lerp(s0.Color.B, s1.Color.B),
				A: lerp(s0.Color.A, s1.Color.A),
			}
		}
	}
	return stops[len(stops)-1].Color
}

func bandReach(p Path) float64 {
	r := geom.NewRect()
	for _, pt := range p.Points {
		r.Expand(pt)
	}
	return math.Hypot(r.Width(), r.Height()) + 1
}

func (r *GioRenderer) renderText(gtx layout.Context, t *TextOp, c color.NRGBA) {
	size := t.Size
	if size < 1 {
		return
	}

	// Create isolated rendering context
	macro := op.Record(gtx.Ops)

	transform := f32.Affine2D{}.
		Rotate(f32.Pt(0, 0), float32(t.Angle)).
		Offset(f32pt(t.Anchor))
	stack := op.Affine(transform).Push(gtx.Ops)

	f := font.Font{}
	if t.Bold {
		f.Weight = font.Bold
	}
	if t.Italic {
		f.Style = font.Italic
	}

	// lay the label out in a box centred vertically on the anchor
	w := int(math.Ceil(max(t.Width, 1)))
	h := int(math.Ceil(size * 1.5))
	offX := 0
	alignment := text.Middle
	switch t.Align {
	case annotation.TextAlignmentLeft:
		alignment = text.Start
	case annotation.TextAlignmentCenter:
		offX = -w / 2
	case annotation.TextAlignmentRight:
		alignment = text.End
		offX = -w
	}
	offset := op.Offset(image.Pt(offX, -h/2)).Push(gtx.Ops)

	lgtx := gtx
	lgtx.Constraints = layout.Exact(image.Pt(w, h))
	lgtx.Metric = unit.Metric{PxPerDp: 1, PxPerSp: 1}

	colorMacro := op.Record(gtx.Ops)
	paint.ColorOp{Color: c}.Add(gtx.Ops)
	material := colorMacro.Stop()

	label := widget.Label{Alignment: alignment, MaxLines: 1}
	label.Layout(lgtx, r.shaper, f, unit.Sp(size), t.Text, material)

	offset.Pop()
	stack.Pop()
	call := macro.Stop()
	call.Add(gtx.Ops)
}

func renderImage(gtx layout.Context, img image.Image, m geom.Matrix) {
	stack := op.Affine(f32.NewAffine2D(
		float32(m[0]), float32(m[1]), float32(m[2]),
		float32(m[3]), float32(m[4]), float32(m[5]),
	)).Push(gtx.Ops)
	defer stack.Pop()

	defer clip.Rect(image.Rectangle{Max: img.Bounds().Size()}).Push(gtx.Ops).Pop()
	paint.NewImageOp(img).Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}

func f32pt(p geom.Point) f32.Point {
	return f32.Pt(float32(p.X), float32(p.Y))
}
