package shape

import (
	"strings"
	"unicode"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Line is an open polyline with optional arrow heads
type Line struct {
	Base
	Arrow     [2]annotation.Arrow // start, end
	ArrowSize float64
	Smooth    annotation.Smooth
}

func newLine() *Line {
	return &Line{Base: newBase(KindLine), ArrowSize: DefaultArrowSize}
}

func (l *Line) Kind() Kind              { return KindLine }
func (l *Line) Common() *Base           { return &l.Base }
func (l *Line) Annotation() string      { return annotationText(KindLine, l.fields(), l.raw) }
func (l *Line) BoundingRect() geom.Rect { return l.pointsRect() }

func (l *Line) Clone() Shape {
	c := *l
	c.Base = l.Base.clone()
	return &c
}

func (l *Line) fields() []field {
	color := l.lineColorField()
	color.name, color.aliases = "color", []string{"lineColor"}
	thickness := l.thicknessField("thickness")
	thickness.aliases = []string{"lineThickness"}

	return append(l.GraphicItem.fields(),
		pointsField("points", &l.Points),
		color,
		l.patternField(),
		thickness,
		arrowField("arrow", &l.Arrow),
		realField("arrowSize", &l.ArrowSize, DefaultArrowSize),
		enumField("smooth", &l.Smooth, annotation.SmoothNone, annotation.ParseSmooth),
	)
}

// Polygon is a closed polyline. The closing segment is implied when the
// last point differs from the first.
type Polygon struct {
	Base
	Smooth annotation.Smooth
}

func newPolygon() *Polygon {
	return &Polygon{Base: newBase(KindPolygon)}
}

func (p *Polygon) Kind() Kind              { return KindPolygon }
func (p *Polygon) Common() *Base           { return &p.Base }
func (p *Polygon) Annotation() string      { return annotationText(KindPolygon, p.fields(), p.raw) }
func (p *Polygon) BoundingRect() geom.Rect { return p.pointsRect() }

func (p *Polygon) Clone() Shape {
	c := *p
	c.Base = p.Base.clone()
	return &c
}

func (p *Polygon) fields() []field {
	thickness := p.thicknessField("lineThickness")
	thickness.aliases = []string{"thickness"}

	return append(p.GraphicItem.fields(),
		pointsField("points", &p.Points),
		p.lineColorField(),
		p.fillColorField(),
		p.patternField(),
		p.fillPatternField(),
		thickness,
		enumField("smooth", &p.Smooth, annotation.SmoothNone, annotation.ParseSmooth),
	)
}

// ClosedPoints returns the vertices with the first point repeated at the
// end when the polygon is not already closed.
func (p *Polygon) ClosedPoints() []geom.Point {
	return closePoints(p.Points)
}

func closePoints(points []geom.Point) []geom.Point {
	out := append([]geom.Point(nil), points...)
	if len(out) > 1 && !out[0].Eq(out[len(out)-1]) {
		out = append(out, out[0])
	}
	return out
}

// Rectangle is an axis-aligned box in local coordinates, optionally with
// rounded corners.
type Rectangle struct {
	Base
	Radius        float64
	BorderPattern annotation.BorderPattern
}

func newRectangle() *Rectangle {
	return &Rectangle{Base: newBase(KindRectangle)}
}

func (r *Rectangle) Kind() Kind              { return KindRectangle }
func (r *Rectangle) Common() *Base           { return &r.Base }
func (r *Rectangle) Annotation() string      { return annotationText(KindRectangle, r.fields(), r.raw) }
func (r *Rectangle) BoundingRect() geom.Rect { return r.extentRect() }

func (r *Rectangle) Clone() Shape {
	c := *r
	c.Base = r.Base.clone()
	return &c
}

func (r *Rectangle) fields() []field {
	thickness := r.thicknessField("lineThickness")
	thickness.aliases = []string{"thickness"}

	return append(r.GraphicItem.fields(),
		r.lineColorField(),
		r.fillColorField(),
		r.patternField(),
		r.fillPatternField(),
		thickness,
		extentField("extent", &r.Extents),
		realField("radius", &r.Radius, 0),
		enumField("borderPattern", &r.BorderPattern, annotation.BorderPatternNone, annotation.ParseBorderPattern),
	)
}

// Ellipse is an ellipse or elliptic arc inscribed in its extent
type Ellipse struct {
	Base
	StartAngle float64
	EndAngle   float64
}

func newEllipse() *Ellipse {
	return &Ellipse{Base: newBase(KindEllipse), EndAngle: DefaultEndAngle}
}

func (e *Ellipse) Kind() Kind              { return KindEllipse }
func (e *Ellipse) Common() *Base           { return &e.Base }
func (e *Ellipse) Annotation() string      { return annotationText(KindEllipse, e.fields(), e.raw) }
func (e *Ellipse) BoundingRect() geom.Rect { return e.extentRect() }

func (e *Ellipse) Clone() Shape {
	c := *e
	c.Base = e.Base.clone()
	return &c
}

// IsArc reports whether the angles describe less than a full turn
func (e *Ellipse) IsArc() bool {
	return e.EndAngle-e.StartAngle < 360
}

func (e *Ellipse) fields() []field {
	thickness := e.thicknessField("lineThickness")
	thickness.aliases = []string{"thickness"}

	return append(e.GraphicItem.fields(),
		e.lineColorField(),
		e.fillColorField(),
		e.patternField(),
		e.fillPatternField(),
		thickness,
		extentField("extent", &e.Extents),
		realField("startAngle", &e.StartAngle, 0),
		realField("endAngle", &e.EndAngle, DefaultEndAngle),
	)
}

// Text is a string laid out inside its extent. A FontSize of 0 scales the
// text to fit the extent.
type Text struct {
	Base
	TextString          string
	FontSize            float64
	FontName            string
	TextStyles          []annotation.TextStyle
	TextColor           annotation.Color
	TextColorSet        bool // textColor was given; otherwise lineColor is used
	HorizontalAlignment annotation.TextAlignment
}

func newText() *Text {
	return &Text{Base: newBase(KindText), HorizontalAlignment: annotation.TextAlignmentCenter}
}

func (t *Text) Kind() Kind              { return KindText }
func (t *Text) Common() *Base           { return &t.Base }
func (t *Text) Annotation() string      { return annotationText(KindText, t.fields(), t.raw) }
func (t *Text) BoundingRect() geom.Rect { return t.extentRect() }

func (t *Text) Clone() Shape {
	c := *t
	c.Base = t.Base.clone()
	c.TextStyles = append([]annotation.TextStyle(nil), t.TextStyles...)
	return &c
}

// EffectiveTextColor is the colour the glyphs are drawn with
func (t *Text) EffectiveTextColor() annotation.Color {
	if t.TextColorSet {
		return t.TextColor
	}
	return t.LineColor
}

// HasStyle reports whether style is among the text styles
func (t *Text) HasStyle(style annotation.TextStyle) bool {
	for _, s := range t.TextStyles {
		if s == style {
			return true
		}
	}
	return false
}

func (t *Text) fields() []field {
	thickness := t.thicknessField("lineThickness")
	thickness.namedOnly = true
	fontName := stringField("fontName", &t.FontName)
	fontName.namedOnly = true

	textColor := colorField("textColor", &t.TextColor, annotation.Color{})
	parseColor := textColor.parse
	textColor.parse = func(s string) error {
		if err := parseColor(s); err != nil {
			return err
		}
		t.TextColorSet = true
		return nil
	}
	textColor.format = func() (string, bool) {
		return annotation.FormatColor(t.TextColor), t.TextColorSet
	}
	textColor.optional = true

	alignment := enumField("horizontalAlignment", &t.HorizontalAlignment,
		annotation.TextAlignmentCenter, annotation.ParseTextAlignment)
	alignment.optional = true

	return append(t.GraphicItem.fields(),
		t.lineColorField(),
		t.fillColorField(),
		t.patternField(),
		t.fillPatternField(),
		thickness,
		extentField("extent", &t.Extents),
		stringField("textString", &t.TextString),
		realField("fontSize", &t.FontSize, 0),
		fontName,
		textStyleField("textStyle", &t.TextStyles),
		textColor,
		alignment,
	)
}

// Substitute replaces %name style references in the text string with the
// values in vars; unknown references are kept and "%%" yields "%".
func (t *Text) Substitute(vars map[string]string) string {
	s := t.TextString
	if !strings.Contains(s, "%") {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			sb.WriteByte('%')
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isNameRune(rune(s[j])) {
			j++
		}
		name := s[i+1 : j]
		if v, ok := vars[name]; ok && name != "" {
			sb.WriteString(v)
		} else {
			sb.WriteString(s[i:j])
		}
		i = j - 1
	}
	return sb.String()
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func arrowField(name string, p *[2]annotation.Arrow) field {
	return field{
		name: name,
		parse: func(s string) error {
			items, err := annotation.ParseList(s)
			if err != nil {
				return err
			}
			var firstErr error
			for i := 0; i < len(items) && i < 2; i++ {
				a, err := annotation.ParseArrow(items[i])
				if err != nil && firstErr == nil {
					firstErr = err
				}
				p[i] = a
			}
			return firstErr
		},
		format: func() (string, bool) {
			return annotation.FormatList([]string{p[0].String(), p[1].String()}),
				p[0] != annotation.ArrowNone || p[1] != annotation.ArrowNone
		},
	}
}

// textStyleField accepts a list or a single literal as older tools wrote
func textStyleField(name string, p *[]annotation.TextStyle) field {
	return field{
		name: name,
		parse: func(s string) error {
			s = strings.TrimSpace(s)
			items := []string{s}
			if strings.HasPrefix(s, "{") {
				var err error
				if items, err = annotation.ParseList(s); err != nil {
					return err
				}
			}
			var styles []annotation.TextStyle
			var firstErr error
			for _, item := range items {
				if strings.TrimSpace(item) == "" {
					continue
				}
				st, err := annotation.ParseTextStyle(item)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				styles = append(styles, st)
			}
			*p = styles
			return firstErr
		},
		format: func() (string, bool) {
			items := make([]string, len(*p))
			for i, st := range *p {
				items[i] = st.String()
			}
			return annotation.FormatList(items), len(*p) > 0
		},
	}
}
