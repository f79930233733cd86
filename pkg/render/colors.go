package render

import (
	"image/color"
	"slices"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
)

// Theme holds the colours of everything drawn around the shapes
type Theme struct {
	Name       string
	Background color.NRGBA
	Grid       color.NRGBA
	Extent     color.NRGBA // coordinate system border
	Selection  color.NRGBA
	Handle     color.NRGBA
}

var themes = []Theme{
	{
		Name:       "light",
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Grid:       color.NRGBA{R: 229, G: 229, B: 229, A: 255},
		Extent:     color.NRGBA{R: 160, G: 160, B: 160, A: 255},
		Selection:  color.NRGBA{R: 51, G: 153, B: 255, A: 200},
		Handle:     color.NRGBA{R: 255, G: 0, B: 0, A: 255},
	},
	{
		Name:       "dark",
		Background: color.NRGBA{R: 30, G: 30, B: 30, A: 255},
		Grid:       color.NRGBA{R: 55, G: 55, B: 55, A: 255},
		Extent:     color.NRGBA{R: 110, G: 110, B: 110, A: 255},
		Selection:  color.NRGBA{R: 51, G: 153, B: 255, A: 200},
		Handle:     color.NRGBA{R: 255, G: 80, B: 80, A: 255},
	},
}

// ThemeNames lists the built-in themes
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// LookupTheme returns the named theme, or the light theme
func LookupTheme(name string) Theme {
	if i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == name }); i >= 0 {
		return themes[i]
	}
	return themes[0]
}

// Dash returns the dash lengths of a line pattern in multiples of the line
// width, or nil for a continuous line.
func Dash(p annotation.LinePattern) []float64 {
	switch p {
	case annotation.LinePatternDash:
		return []float64{4, 2}
	case annotation.LinePatternDot:
		return []float64{1, 2}
	case annotation.LinePatternDashDot:
		return []float64{4, 2, 1, 2}
	case annotation.LinePatternDashDotDot:
		return []float64{4, 2, 1, 2, 1, 2}
	}
	return nil
}

// Hatch describes the hatch lines of a fill pattern: angles in degrees
// measured from the X axis.
func Hatch(p annotation.FillPattern) []float64 {
	switch p {
	case annotation.FillPatternHorizontal:
		return []float64{0}
	case annotation.FillPatternVertical:
		return []float64{90}
	case annotation.FillPatternCross:
		return []float64{0, 90}
	case annotation.FillPatternForward:
		return []float64{45}
	case annotation.FillPatternBackward:
		return []float64{135}
	case annotation.FillPatternCrossDiag:
		return []float64{45, 135}
	}
	return nil
}

// IsGradient reports whether the fill pattern shades between line and
// fill colour
func IsGradient(p annotation.FillPattern) bool {
	switch p {
	case annotation.FillPatternHorizontalCylinder,
		annotation.FillPatternVerticalCylinder,
		annotation.FillPatternSphere:
		return true
	}
	return false
}

// Lighter mixes c towards white by t in [0,1]
func Lighter(c color.NRGBA, t float64) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*t) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// Darker mixes c towards black by t in [0,1]
func Darker(c color.NRGBA, t float64) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) * (1 - t)) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}
