package annotation

import "strings"

// Enumeration types of the graphical annotation grammar. Each is parsed from
// a fixed literal table; both `Type.Literal` and the bare `Literal` are
// accepted, String always returns the qualified form.

type LinePattern int

const (
	LinePatternNone LinePattern = iota
	LinePatternSolid
	LinePatternDash
	LinePatternDot
	LinePatternDashDot
	LinePatternDashDotDot
)

var linePatternNames = []string{"None", "Solid", "Dash", "Dot", "DashDot", "DashDotDot"}

func (p LinePattern) String() string { return enumString("LinePattern", linePatternNames, int(p)) }

// ParseLinePattern parses a LinePattern literal
func ParseLinePattern(s string) (LinePattern, error) {
	i, err := parseEnum("LinePattern", linePatternNames, s)
	return LinePattern(i), err
}

type FillPattern int

const (
	FillPatternNone FillPattern = iota
	FillPatternSolid
	FillPatternHorizontal
	FillPatternVertical
	FillPatternCross
	FillPatternForward
	FillPatternBackward
	FillPatternCrossDiag
	FillPatternHorizontalCylinder
	FillPatternVerticalCylinder
	FillPatternSphere
)

var fillPatternNames = []string{
	"None", "Solid", "Horizontal", "Vertical", "Cross", "Forward", "Backward",
	"CrossDiag", "HorizontalCylinder", "VerticalCylinder", "Sphere",
}

func (p FillPattern) String() string { return enumString("FillPattern", fillPatternNames, int(p)) }

// ParseFillPattern parses a FillPattern literal
func ParseFillPattern(s string) (FillPattern, error) {
	i, err := parseEnum("FillPattern", fillPatternNames, s)
	return FillPattern(i), err
}

type Arrow int

const (
	ArrowNone Arrow = iota
	ArrowOpen
	ArrowFilled
	ArrowHalf
)

var arrowNames = []string{"None", "Open", "Filled", "Half"}

func (a Arrow) String() string { return enumString("Arrow", arrowNames, int(a)) }

// ParseArrow parses an Arrow literal
func ParseArrow(s string) (Arrow, error) {
	i, err := parseEnum("Arrow", arrowNames, s)
	return Arrow(i), err
}

type Smooth int

const (
	SmoothNone Smooth = iota
	SmoothBezier
)

var smoothNames = []string{"None", "Bezier"}

func (s Smooth) String() string { return enumString("Smooth", smoothNames, int(s)) }

// ParseSmooth parses a Smooth literal
func ParseSmooth(s string) (Smooth, error) {
	i, err := parseEnum("Smooth", smoothNames, s)
	return Smooth(i), err
}

type BorderPattern int

const (
	BorderPatternNone BorderPattern = iota
	BorderPatternRaised
	BorderPatternSunken
	BorderPatternEngraved
)

var borderPatternNames = []string{"None", "Raised", "Sunken", "Engraved"}

func (b BorderPattern) String() string {
	return enumString("BorderPattern", borderPatternNames, int(b))
}

// ParseBorderPattern parses a BorderPattern literal
func ParseBorderPattern(s string) (BorderPattern, error) {
	i, err := parseEnum("BorderPattern", borderPatternNames, s)
	return BorderPattern(i), err
}

type TextAlignment int

const (
	TextAlignmentLeft TextAlignment = iota
	TextAlignmentCenter
	TextAlignmentRight
)

var textAlignmentNames = []string{"Left", "Center", "Right"}

func (a TextAlignment) String() string {
	return enumString("TextAlignment", textAlignmentNames, int(a))
}

// ParseTextAlignment parses a TextAlignment literal
func ParseTextAlignment(s string) (TextAlignment, error) {
	i, err := parseEnum("TextAlignment", textAlignmentNames, s)
	return TextAlignment(i), err
}

type TextStyle int

const (
	TextStyleBold TextStyle = iota
	TextStyleItalic
	TextStyleUnderLine
)

var textStyleNames = []string{"Bold", "Italic", "UnderLine"}

func (s TextStyle) String() string { return enumString("TextStyle", textStyleNames, int(s)) }

// ParseTextStyle parses a TextStyle literal
func ParseTextStyle(s string) (TextStyle, error) {
	i, err := parseEnum("TextStyle", textStyleNames, s)
	return TextStyle(i), err
}

func enumString(typ string, names []string, i int) string {
	if i < 0 || i >= len(names) {
		return typ + ".None"
	}
	return typ + "." + names[i]
}

// parseEnum looks s up in names. On failure it returns index 0 and an
// *UnknownEnumLiteral; callers replace the value with their own default.
func parseEnum(typ string, names []string, s string) (int, error) {
	lit := strings.TrimSpace(s)
	lit = strings.TrimPrefix(lit, typ+".")
	for i, name := range names {
		if name == lit {
			return i, nil
		}
	}
	return 0, &UnknownEnumLiteral{Enum: typ, Literal: strings.TrimSpace(s)}
}
