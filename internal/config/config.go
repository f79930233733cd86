// Package config loads the user settings of the graphics tools: the
// attributes given to newly drawn shapes, the default grid, keyboard nudge
// steps, the smallest extent a resize can produce and the viewer theme.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// FileName is the settings file inside the config directory
const FileName = "settings.yaml"

// ShapeSettings are the attributes of new shapes
type ShapeSettings struct {
	LineColor     []int   `yaml:"line_color"`
	FillColor     []int   `yaml:"fill_color"`
	LinePattern   string  `yaml:"line_pattern"`
	FillPattern   string  `yaml:"fill_pattern"`
	LineThickness float64 `yaml:"line_thickness"`
}

// NudgeSettings are the grid step multipliers of keyboard moves
type NudgeSettings struct {
	Plain float64 `yaml:"plain"`
	Shift float64 `yaml:"shift"`
	Ctrl  float64 `yaml:"ctrl"`
}

// Settings is the settings file
type Settings struct {
	Shape   ShapeSettings `yaml:"shape"`
	Grid    []float64     `yaml:"grid"`
	Nudge   NudgeSettings `yaml:"nudge"`
	MinSize float64       `yaml:"min_size"`
	MaxUndo int           `yaml:"max_undo"`
	Theme   string        `yaml:"theme"`
}

// Default returns the settings used when no file exists
func Default() *Settings {
	d := shape.GrammarDefaults()
	n := shape.DefaultNudge()
	g := component.DefaultCoordinateSystem().Grid
	return &Settings{
		Shape: ShapeSettings{
			LineColor:     colorSlice(d.LineColor),
			FillColor:     colorSlice(d.FillColor),
			LinePattern:   d.LinePattern.String(),
			FillPattern:   d.FillPattern.String(),
			LineThickness: d.LineThickness,
		},
		Grid:    []float64{g.X, g.Y},
		Nudge:   NudgeSettings{Plain: n.Plain, Shift: n.Shift, Ctrl: n.Ctrl},
		MinSize: shape.DefaultMinSize,
		Theme:   "light",
	}
}

func colorSlice(c annotation.Color) []int {
	return []int{int(c.R), int(c.G), int(c.B)}
}

// DefaultPath returns omgraphics/settings.yaml under the user config
// directory ($XDG_CONFIG_HOME or ~/.config on Linux, %AppData% on Windows)
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "omgraphics", FileName), nil
}

// Load reads the settings at path, or at DefaultPath when path is empty.
// A missing file yields Default(); keys absent from the file keep their
// default values.
func Load(path string) (*Settings, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML settings over the defaults and validates them
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to path, creating its directory
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field
func (s *Settings) Validate() error {
	_, err := s.ShapeDefaults()
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	if len(s.Grid) != 2 || s.Grid[0] <= 0 || s.Grid[1] <= 0 {
		errs = append(errs, fmt.Errorf("config: grid must be two positive numbers, got %v", s.Grid))
	}
	if s.Nudge.Plain <= 0 || s.Nudge.Shift <= 0 || s.Nudge.Ctrl <= 0 {
		errs = append(errs, fmt.Errorf("config: nudge multipliers must be positive"))
	}
	if s.MinSize <= 0 {
		errs = append(errs, fmt.Errorf("config: min_size must be positive, got %v", s.MinSize))
	}
	if s.MaxUndo < 0 {
		errs = append(errs, fmt.Errorf("config: max_undo must not be negative"))
	}
	return errors.Join(errs...)
}

func parseColor(name string, v []int) (annotation.Color, error) {
	if len(v) != 3 {
		return annotation.Color{}, fmt.Errorf("config: %s must be [r, g, b], got %v", name, v)
	}
	c := func(i int) uint8 { return uint8(min(max(v[i], 0), 255)) }
	return annotation.Color{R: c(0), G: c(1), B: c(2)}, nil
}

// ShapeDefaults converts the shape section
func (s *Settings) ShapeDefaults() (shape.Defaults, error) {
	d := shape.GrammarDefaults()
	var errs []error
	var err error
	if d.LineColor, err = parseColor("line_color", s.Shape.LineColor); err != nil {
		errs = append(errs, err)
	}
	if d.FillColor, err = parseColor("fill_color", s.Shape.FillColor); err != nil {
		errs = append(errs, err)
	}
	if d.LinePattern, err = annotation.ParseLinePattern(s.Shape.LinePattern); err != nil {
		errs = append(errs, fmt.Errorf("config: line_pattern: %w", err))
	}
	if d.FillPattern, err = annotation.ParseFillPattern(s.Shape.FillPattern); err != nil {
		errs = append(errs, fmt.Errorf("config: fill_pattern: %w", err))
	}
	if s.Shape.LineThickness < 0 {
		errs = append(errs, fmt.Errorf("config: line_thickness must not be negative"))
	}
	d.LineThickness = s.Shape.LineThickness
	return d, errors.Join(errs...)
}

// GridStep returns the grid as a point
func (s *Settings) GridStep() geom.Point {
	if len(s.Grid) != 2 {
		return component.DefaultCoordinateSystem().Grid
	}
	return geom.Pt(s.Grid[0], s.Grid[1])
}

// CanvasOptions returns the canvas options for these settings. Invalid
// shape attributes fall back to the grammar defaults.
func (s *Settings) CanvasOptions() diagram.Options {
	opts := diagram.DefaultOptions()
	if d, err := s.ShapeDefaults(); err == nil {
		opts.Defaults = d
	}
	opts.Nudge = shape.Nudge{Plain: s.Nudge.Plain, Shift: s.Nudge.Shift, Ctrl: s.Nudge.Ctrl}
	opts.MinSize = s.MinSize
	opts.MaxUndo = s.MaxUndo
	return opts
}

// NewLayer creates an empty layer whose coordinate system uses the
// configured grid
func (s *Settings) NewLayer(kind diagram.LayerKind) *diagram.Layer {
	l := diagram.NewLayer(kind)
	l.Coords.Grid = s.GridStep()
	return l
}
