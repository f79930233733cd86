package shape

import (
	"errors"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Grammar defaults of the Modelica graphical annotation records. A field
// that still holds its grammar default is omitted when serializing.
const (
	DefaultLineThickness = 0.25
	DefaultArrowSize     = 3
	DefaultEndAngle      = 360
)

// GraphicItem holds the placement of a shape's local coordinate frame
type GraphicItem struct {
	Visible  bool
	Origin   geom.Point
	Rotation float64 // degrees, counter-clockwise
}

// SetDefaults resets the item to visible, unrotated at (0,0)
func (g *GraphicItem) SetDefaults() {
	g.Visible = true
	g.Origin = geom.Point{}
	g.Rotation = 0
}

// Parse assigns visible, origin and rotation from positional or named
// tokens. Unknown named tokens are ignored.
func (g *GraphicItem) Parse(tokens []string) error {
	_, errs := assign("GraphicItem", g.fields(), tokens, false)
	return errors.Join(errs...)
}

// Serialize returns the non-default fields as name=value tokens
func (g *GraphicItem) Serialize() []string {
	return serialize(g.fields())
}

// SetOrigin sets the origin
func (g *GraphicItem) SetOrigin(p geom.Point) { g.Origin = p }

// SetRotationAngle sets the rotation, normalized into [0,360)
func (g *GraphicItem) SetRotationAngle(degrees float64) {
	g.Rotation = geom.NormalizeAngle(degrees)
}

func (g *GraphicItem) fields() []field {
	return []field{
		boolField("visible", &g.Visible, true),
		pointField("origin", &g.Origin, geom.Point{}),
		realField("rotation", &g.Rotation, 0),
	}
}

// FilledShape holds the stroke and fill attributes of a shape
type FilledShape struct {
	LineColor     annotation.Color
	FillColor     annotation.Color
	LinePattern   annotation.LinePattern
	FillPattern   annotation.FillPattern
	LineThickness float64
}

// SetDefaults applies the grammar defaults
func (f *FilledShape) SetDefaults() {
	f.LineColor = annotation.Color{}
	f.FillColor = annotation.Color{}
	f.LinePattern = annotation.LinePatternSolid
	f.FillPattern = annotation.FillPatternNone
	f.LineThickness = DefaultLineThickness
}

// Parse assigns lineColor, fillColor, pattern, fillPattern and
// lineThickness from positional or named tokens.
func (f *FilledShape) Parse(tokens []string) error {
	_, errs := assign("FilledShape", f.fields(), tokens, false)
	return errors.Join(errs...)
}

// Serialize returns the non-default fields as name=value tokens
func (f *FilledShape) Serialize() []string {
	return serialize(f.fields())
}

func (f *FilledShape) fields() []field {
	return []field{
		f.lineColorField(),
		f.fillColorField(),
		f.patternField(),
		f.fillPatternField(),
		f.thicknessField("lineThickness"),
	}
}

func (f *FilledShape) lineColorField() field {
	return colorField("lineColor", &f.LineColor, annotation.Color{})
}

func (f *FilledShape) fillColorField() field {
	return colorField("fillColor", &f.FillColor, annotation.Color{})
}

func (f *FilledShape) patternField() field {
	return enumField("pattern", &f.LinePattern, annotation.LinePatternSolid, annotation.ParseLinePattern)
}

func (f *FilledShape) fillPatternField() field {
	return enumField("fillPattern", &f.FillPattern, annotation.FillPatternNone, annotation.ParseFillPattern)
}

func (f *FilledShape) thicknessField(name string) field {
	return realField(name, &f.LineThickness, DefaultLineThickness)
}

// Defaults are user-configured attributes applied to newly created shapes.
// Parsed shapes always start from the grammar defaults.
type Defaults struct {
	LineColor     annotation.Color
	FillColor     annotation.Color
	LinePattern   annotation.LinePattern
	FillPattern   annotation.FillPattern
	LineThickness float64
}

// GrammarDefaults returns Defaults equal to the annotation grammar defaults
func GrammarDefaults() Defaults {
	var f FilledShape
	f.SetDefaults()
	return Defaults(f)
}

func (d Defaults) apply(f *FilledShape) {
	*f = FilledShape(d)
}

// field binds one annotation record member to the struct value it fills
type field struct {
	name      string
	aliases   []string
	namedOnly bool // never assigned positionally
	optional  bool // may be missing from a positional list
	parse     func(value string) error
	format    func() (string, bool) // value text and whether to emit it
}

func (f field) matches(name string) bool {
	if f.name == name {
		return true
	}
	for _, a := range f.aliases {
		if a == name {
			return true
		}
	}
	return false
}

// errUnknownField is reported for named arguments that no field accepts
var errUnknownField = errors.New("unknown field")

// assign parses tokens into fields. Positional tokens fill the fields in
// table order, named tokens are matched by name. Every problem is
// collected and the remaining tokens are still processed. In strict mode
// unknown names, surplus positional tokens and short positional lists are
// reported too.
//
// kept holds, as name=value text, the members that could not be stored:
// unknown names and values that are well-formed expressions but not
// literals, such as DynamicSelect(...). Unknown enumeration literals and
// malformed values are not kept; their fields fall back to the default.
func assign(record string, fields []field, tokens []string, strict bool) (kept []string, errs []error) {
	var positional []field
	for _, f := range fields {
		if !f.namedOnly {
			positional = append(positional, f)
		}
	}

	named := false
	pos := 0
	for _, tok := range tokens {
		var target *field
		value := tok
		name, v, isNamed := annotation.SplitNamed(tok)

		if isNamed {
			named = true
			value = v
			for i := range fields {
				if fields[i].matches(name) {
					target = &fields[i]
					break
				}
			}
			if target == nil {
				if strict {
					errs = append(errs, &annotation.FieldError{Field: name, Err: errUnknownField})
				}
				kept = append(kept, name+"="+v)
				continue
			}
		} else {
			if pos >= len(positional) {
				if strict {
					errs = append(errs, &annotation.FieldError{
						Field: record,
						Err:   errors.New("surplus positional argument " + tok),
					})
				}
				continue
			}
			target = &positional[pos]
			pos++
			name = target.name
		}

		if strings.TrimSpace(value) == "" {
			continue
		}
		if err := target.parse(value); err != nil {
			errs = append(errs, &annotation.FieldError{Field: target.name, Err: err})
			if isExpression(value, err) {
				kept = append(kept, name+"="+strings.TrimSpace(value))
			}
		}
	}

	if strict && !named && len(tokens) > 0 {
		required := len(positional)
		for required > 0 && positional[required-1].optional {
			required--
		}
		if len(tokens) < required {
			errs = append(errs, &annotation.PartialParse{Record: record, Got: len(tokens), Want: required})
		}
	}

	return kept, errs
}

// isExpression reports whether a value that failed to parse as a literal is
// still balanced annotation text worth carrying verbatim
func isExpression(value string, err error) bool {
	var unknown *annotation.UnknownEnumLiteral
	if errors.As(err, &unknown) {
		return false
	}
	_, serr := annotation.GetStrings(value)
	return serr == nil
}

// serialize formats the fields that differ from their defaults
func serialize(fields []field) []string {
	var out []string
	for _, f := range fields {
		if v, ok := f.format(); ok {
			out = append(out, f.name+"="+v)
		}
	}
	return out
}

// Field constructors

func boolField(name string, p *bool, def bool) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParseBool(s)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
		format: func() (string, bool) {
			return annotation.FormatBool(*p), *p != def
		},
	}
}

func realField(name string, p *float64, def float64) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParseReal(s)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
		format: func() (string, bool) {
			return annotation.FormatReal(*p), *p != def
		},
	}
}

func pointField(name string, p *geom.Point, def geom.Point) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParsePoint(s)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
		format: func() (string, bool) {
			return annotation.FormatPoint(*p), *p != def
		},
	}
}

func colorField(name string, p *annotation.Color, def annotation.Color) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParseColor(s)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
		format: func() (string, bool) {
			return annotation.FormatColor(*p), *p != def
		},
	}
}

func stringField(name string, p *string) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParseString(s)
			*p = v
			return err
		},
		format: func() (string, bool) {
			return annotation.FormatString(*p), *p != ""
		},
	}
}

type enum interface {
	comparable
	String() string
}

// enumField substitutes def when the literal is unknown
func enumField[T enum](name string, p *T, def T, parse func(string) (T, error)) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := parse(s)
			if err != nil {
				*p = def
				return err
			}
			*p = v
			return nil
		},
		format: func() (string, bool) {
			return (*p).String(), *p != def
		},
	}
}

func pointsField(name string, p *[]geom.Point) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParsePoints(s)
			*p = v
			return err
		},
		format: func() (string, bool) {
			return annotation.FormatPoints(*p), len(*p) > 0
		},
	}
}

// extentField keeps exactly two corners; missing corners stay at (0,0)
func extentField(name string, p *[]geom.Point) field {
	return field{
		name: name,
		parse: func(s string) error {
			v, err := annotation.ParsePoints(s)
			for i := 0; i < len(v) && i < 2; i++ {
				(*p)[i] = v[i]
			}
			if err == nil && len(v) != 2 {
				err = &annotation.GrammarError{Input: s, Msg: "extent needs two points"}
			}
			return err
		},
		format: func() (string, bool) {
			return annotation.FormatPoints(*p), len(*p) == 2
		},
	}
}
