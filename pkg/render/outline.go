package render

import (
	"math"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// Segments used to flatten curves
const (
	curveSegments  = 8
	cornerSegments = 6
	ellipseSteps   = 72 // per full turn
)

// Path is a flattened polyline
type Path struct {
	Points []geom.Point
	Closed bool
}

// Transform maps every point of the path through m
func (p Path) Transform(m geom.Matrix) Path {
	out := Path{Points: make([]geom.Point, len(p.Points)), Closed: p.Closed}
	for i, pt := range p.Points {
		out.Points[i] = m.Apply(pt)
	}
	return out
}

// Outline returns the stroked and filled geometry of s in its local frame.
// Text and Bitmap have no outline.
func Outline(s shape.Shape) (Path, bool) {
	switch v := s.(type) {
	case *shape.Line:
		return Path{Points: smooth(v.Points, v.Smooth, false)}, len(v.Points) > 1
	case *shape.Polygon:
		pts := v.ClosedPoints()
		return Path{Points: smooth(pts, v.Smooth, true), Closed: true}, len(pts) > 2
	case *shape.Rectangle:
		r := v.BoundingRect()
		return Path{Points: roundedRect(r, v.Radius), Closed: true}, !r.IsEmpty()
	case *shape.Ellipse:
		r := v.BoundingRect()
		return Path{Points: ellipse(r, v.StartAngle, v.EndAngle), Closed: true}, !r.IsEmpty()
	}
	return Path{}, false
}

// smooth flattens a Bezier-smoothed point list: every interior point is
// the control point of a quadratic curve between the midpoints of its two
// segments.
func smooth(points []geom.Point, mode annotation.Smooth, closed bool) []geom.Point {
	if mode != annotation.SmoothBezier || len(points) < 3 {
		return points
	}
	out := []geom.Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		from := out[len(out)-1]
		ctrl := points[i]
		to := mid(points[i], points[i+1])
		if i == len(points)-2 && !closed {
			to = points[i+1]
		}
		out = append(out, quadratic(from, ctrl, to)...)
	}
	if closed {
		out = append(out, points[len(points)-1])
	}
	return out
}

func mid(a, b geom.Point) geom.Point {
	return geom.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
}

// quadratic returns the points after from on the curve from..to
func quadratic(from, ctrl, to geom.Point) []geom.Point {
	out := make([]geom.Point, 0, curveSegments)
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		out = append(out, geom.Pt(
			u*u*from.X+2*u*t*ctrl.X+t*t*to.X,
			u*u*from.Y+2*u*t*ctrl.Y+t*t*to.Y,
		))
	}
	return out
}

func roundedRect(r geom.Rect, radius float64) []geom.Point {
	radius = min(radius, r.Width()/2, r.Height()/2)
	if radius <= 0 {
		c := r.Corners()
		return c[:]
	}
	centers := []struct {
		c     geom.Point
		start float64
	}{
		{geom.Pt(r.Max.X-radius, r.Max.Y-radius), 0},
		{geom.Pt(r.Min.X+radius, r.Max.Y-radius), 90},
		{geom.Pt(r.Min.X+radius, r.Min.Y+radius), 180},
		{geom.Pt(r.Max.X-radius, r.Min.Y+radius), 270},
	}
	var out []geom.Point
	for _, k := range centers {
		for i := 0; i <= cornerSegments; i++ {
			a := (k.start + 90*float64(i)/cornerSegments) * math.Pi / 180
			out = append(out, geom.Pt(k.c.X+radius*math.Cos(a), k.c.Y+radius*math.Sin(a)))
		}
	}
	return out
}

// ellipse flattens the ellipse inscribed in r from start to end degrees.
// A partial arc is closed through the centre.
func ellipse(r geom.Rect, start, end float64) []geom.Point {
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	sweep := end - start
	full := math.Abs(sweep) >= 360 || sweep == 0
	if full {
		start, sweep = 0, 360
	}

	steps := max(2, int(math.Ceil(math.Abs(sweep)/360*ellipseSteps)))
	out := make([]geom.Point, 0, steps+2)
	for i := 0; i <= steps; i++ {
		if full && i == steps {
			break
		}
		a := (start + sweep*float64(i)/float64(steps)) * math.Pi / 180
		out = append(out, geom.Pt(c.X+rx*math.Cos(a), c.Y+ry*math.Sin(a)))
	}
	if !full {
		out = append(out, c)
	}
	return out
}

// ArrowHead returns the head drawn at tip for a segment arriving from
// from. Filled heads are closed.
func ArrowHead(kind annotation.Arrow, from, tip geom.Point, size float64) (Path, bool) {
	if kind == annotation.ArrowNone || size <= 0 {
		return Path{}, false
	}
	d := tip.Sub(from)
	n := math.Hypot(d.X, d.Y)
	if n == 0 {
		return Path{}, false
	}
	d = d.Mul(1 / n)
	perp := geom.Pt(-d.Y, d.X)
	base := tip.Sub(d.Mul(size))
	left := base.Add(perp.Mul(size / 2))
	right := base.Sub(perp.Mul(size / 2))

	switch kind {
	case annotation.ArrowFilled:
		return Path{Points: []geom.Point{left, tip, right}, Closed: true}, true
	case annotation.ArrowHalf:
		return Path{Points: []geom.Point{left, tip}}, true
	}
	return Path{Points: []geom.Point{left, tip, right}}, true
}

// ArrowHeads returns the heads of a line at its start and end
func ArrowHeads(l *shape.Line) []Path {
	pts := smooth(l.Points, l.Smooth, false)
	if len(pts) < 2 {
		return nil
	}
	var out []Path
	if p, ok := ArrowHead(l.Arrow[0], pts[1], pts[0], l.ArrowSize); ok {
		out = append(out, p)
	}
	n := len(pts)
	if p, ok := ArrowHead(l.Arrow[1], pts[n-2], pts[n-1], l.ArrowSize); ok {
		out = append(out, p)
	}
	return out
}

// HatchLines covers r with parallel segments at angle degrees, spacing
// apart. Callers clip them to the filled outline.
func HatchLines(r geom.Rect, angle, spacing float64) []Path {
	if r.IsEmpty() || spacing <= 0 {
		return nil
	}
	c := r.Center()
	reach := math.Hypot(r.Width(), r.Height())/2 + spacing
	rot := geom.Rotation(angle).Then(geom.Translation(c.X, c.Y))

	var out []Path
	for off := -reach; off <= reach; off += spacing {
		out = append(out, Path{Points: []geom.Point{
			rot.Apply(geom.Pt(-reach, off)),
			rot.Apply(geom.Pt(reach, off)),
		}})
	}
	return out
}

// BevelEdge is one half of a rectangle border pattern
type BevelEdge struct {
	Path  Path
	Light bool
}

// Bevel returns the two-tone border of a rectangle: the top-left and the
// bottom-right halves. BorderPattern.None yields nothing.
func Bevel(r geom.Rect, p annotation.BorderPattern) []BevelEdge {
	if p == annotation.BorderPatternNone || r.IsEmpty() {
		return nil
	}
	c := r.Corners() // BL, TL, TR, BR
	topLeft := Path{Points: []geom.Point{c[0], c[1], c[2]}}
	bottomRight := Path{Points: []geom.Point{c[2], c[3], c[0]}}
	switch p {
	case annotation.BorderPatternRaised:
		return []BevelEdge{{topLeft, true}, {bottomRight, false}}
	case annotation.BorderPatternSunken:
		return []BevelEdge{{topLeft, false}, {bottomRight, true}}
	}
	inner := r.Inset(-min(r.Width(), r.Height()) * 0.02)
	ic := inner.Corners()
	return []BevelEdge{
		{topLeft, false}, {bottomRight, true},
		{Path{Points: []geom.Point{ic[0], ic[1], ic[2]}}, true},
		{Path{Points: []geom.Point{ic[2], ic[3], ic[0]}}, false},
	}
}

// StrokeWidth converts a line thickness in drawing units to pixels at zoom,
// never thinner than one pixel.
func StrokeWidth(thickness, zoom float64) float64 {
	return max(1, thickness*zoom)
}

// dashed splits p into the "on" pieces of a dash pattern. A nil pattern
// returns p unchanged.
func dashed(p Path, dash []float64) []Path {
	total := 0.0
	for _, d := range dash {
		total += d
	}
	if total <= 0 || len(p.Points) < 2 {
		return []Path{p}
	}

	pts := p.Points
	if p.Closed {
		pts = append(append([]geom.Point(nil), pts...), pts[0])
	}

	var out []Path
	var cur []geom.Point
	i, left, on := 0, dash[0], true
	for k := 1; k < len(pts); k++ {
		a, b := pts[k-1], pts[k]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for seg-pos > left {
			pos += left
			q := a.Add(b.Sub(a).Mul(pos / seg))
			if on {
				if len(cur) == 0 {
					cur = append(cur, a)
				}
				out = append(out, Path{Points: append(cur, q)})
				cur = nil
			} else {
				cur = []geom.Point{q}
			}
			on = !on
			i = (i + 1) % len(dash)
			left = dash[i]
		}
		left -= seg - pos
		if on {
			if len(cur) == 0 {
				cur = append(cur, a)
			}
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, Path{Points: cur})
	}
	return out
}
