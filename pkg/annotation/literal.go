package annotation

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Color is an opaque RGB triple as written in annotations ({r,g,b})
type Color struct {
	R, G, B uint8
}

// NRGBA converts to an opaque image/color value
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ParseReal parses a Modelica real literal
func ParseReal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &GrammarError{Input: s, Msg: "invalid real " + strconv.Quote(s)}
	}
	return v, nil
}

// FormatReal formats a real with the shortest representation that parses
// back to the same value.
func FormatReal(v float64) string {
	if v == 0 {
		// also folds -0
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseBool parses true/false
func ParseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &GrammarError{Input: s, Msg: "invalid boolean " + strconv.Quote(s)}
}

// FormatBool formats a Modelica boolean
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParsePoint parses {x,y}
func ParsePoint(s string) (geom.Point, error) {
	parts, err := GetStrings(RemoveFirstLastCurlBrackets(s))
	if err != nil {
		return geom.Point{}, err
	}
	if len(parts) < 2 {
		return geom.Point{}, &GrammarError{Input: s, Msg: "expected {x,y}"}
	}
	x, err := ParseReal(parts[0])
	if err != nil {
		return geom.Point{}, err
	}
	y, err := ParseReal(parts[1])
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

// FormatPoint formats {x,y}
func FormatPoint(p geom.Point) string {
	return "{" + FormatReal(p.X) + "," + FormatReal(p.Y) + "}"
}

// ParsePoints parses {{x1,y1},{x2,y2},...}. Points that fail to parse are
// skipped and the first error is returned alongside the valid points.
func ParsePoints(s string) ([]geom.Point, error) {
	parts, err := GetStrings(RemoveFirstLastCurlBrackets(s))
	var firstErr error = err

	points := make([]geom.Point, 0, len(parts))
	for _, part := range parts {
		p, err := ParsePoint(part)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		points = append(points, p)
	}
	return points, firstErr
}

// FormatPoints formats {{x1,y1},{x2,y2},...}
func FormatPoints(points []geom.Point) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range points {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(FormatPoint(p))
	}
	sb.WriteByte('}')
	return sb.String()
}

// ParseColor parses {r,g,b} with components clamped to 0..255
func ParseColor(s string) (Color, error) {
	parts, err := GetStrings(RemoveFirstLastCurlBrackets(s))
	if err != nil {
		return Color{}, err
	}
	if len(parts) < 3 {
		return Color{}, &GrammarError{Input: s, Msg: "expected {r,g,b}"}
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := ParseReal(parts[i])
		if err != nil {
			return Color{}, err
		}
		rgb[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// FormatColor formats {r,g,b}
func FormatColor(c Color) string {
	return "{" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B)) + "}"
}

// ParseString parses a quoted string literal and resolves its escapes.
// Unquoted input is returned as is.
func ParseString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "\"") {
		return s, nil
	}
	tok, err := NewLexer(s).NextToken()
	if err != nil {
		return RemoveFirstLastQuotes(s), err
	}
	return tok.Value, nil
}

// FormatString quotes s, escaping backslashes, quotes and control
// characters.
func FormatString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, ch := range s {
		switch ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ParseList unwraps {a,b,c} into its elements
func ParseList(s string) ([]string, error) {
	return GetStrings(RemoveFirstLastCurlBrackets(s))
}

// FormatList wraps elements as {a,b,c}
func FormatList(items []string) string {
	return "{" + strings.Join(items, ",") + "}"
}
