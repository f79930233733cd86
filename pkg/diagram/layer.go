// Package diagram implements the editable Icon and Diagram layers of a
// Modelica class: the coordinate system, the graphics list and the placed
// components, the edit commands applied to them with undo and redo, and the
// change notifications fired after every committed edit.
package diagram

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/modelica"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// LayerKind selects the Icon or the Diagram layer
type LayerKind int

const (
	IconLayer LayerKind = iota
	DiagramLayer
)

func (k LayerKind) String() string {
	if k == DiagramLayer {
		return "Diagram"
	}
	return "Icon"
}

// ParseLayerKind maps an annotation name to its LayerKind
func ParseLayerKind(name string) (LayerKind, bool) {
	switch name {
	case "Icon":
		return IconLayer, true
	case "Diagram":
		return DiagramLayer, true
	}
	return 0, false
}

// Layer is one graphical layer of a class
type Layer struct {
	Kind       LayerKind
	Coords     component.CoordinateSystem
	Shapes     *shape.Arena
	Components []*component.Component

	// arguments other than coordinateSystem and graphics, kept verbatim
	extra []string
}

// NewLayer creates an empty layer with the default coordinate system
func NewLayer(kind LayerKind) *Layer {
	return &Layer{
		Kind:   kind,
		Coords: component.DefaultCoordinateSystem(),
		Shapes: shape.NewArena(),
	}
}

// ErrNotLayer is returned for annotations other than Icon(...) or
// Diagram(...)
var ErrNotLayer = errors.New("not an Icon or Diagram annotation")

// ParseLayer parses `Icon(coordinateSystem(...), graphics={...})` or the
// Diagram equivalent. Shapes with recoverable problems are still added;
// the problems are joined into the returned error. Only a text that is
// not a layer at all yields a nil layer.
func ParseLayer(text string, opts *shape.Options) (*Layer, error) {
	call, err := modelica.ParseCall(text)
	if err != nil {
		return parseLayerFields(text, err, opts)
	}
	kind, ok := ParseLayerKind(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLayer, call.Name)
	}

	l := NewLayer(kind)
	var errs []error

	for _, arg := range call.Args {
		switch {
		case arg.Value.Call != nil && arg.Value.Call.Name == "coordinateSystem" && arg.Name == "":
			cs, err := component.ParseCoordinateSystem(arg.Value.Call)
			l.Coords = cs
			errs = append(errs, err)
		case arg.Name == "graphics":
			errs = append(errs, l.addGraphics(arg.Value, opts)...)
		default:
			text := arg.Value.String()
			if arg.Name != "" {
				text = arg.Name + "=" + text
			}
			l.extra = append(l.extra, text)
		}
	}
	return l, l.recovered(errs, opts)
}

// parseLayerFields handles layers the expression grammar rejects as a
// whole, for instance because one element uses DynamicSelect(...) or is
// malformed. The text is split with the annotation tokenizer instead, so
// every graphics element is parsed on its own and only the broken ones
// lose fields. Arguments that cannot be read are kept verbatim.
func parseLayerFields(text string, cause error, opts *shape.Options) (*Layer, error) {
	name, args, err := annotation.SplitCall(text)
	if name == "" {
		return nil, cause
	}
	kind, ok := ParseLayerKind(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLayer, name)
	}

	l := NewLayer(kind)
	errs := []error{cause, err}

	fields, tail, err := annotation.GetStringsTail(args)
	errs = append(errs, err)
	if tail != "" {
		fields = append(fields, tail)
	}

	for _, f := range fields {
		argName, value, named := annotation.SplitNamed(f)
		switch {
		case f == "":
		case named && argName == "graphics":
			errs = append(errs, l.addGraphicsText(value, opts)...)
		case !named && strings.HasPrefix(f, "coordinateSystem"):
			cs, err := modelica.ParseCall(f)
			if err != nil {
				l.extra = append(l.extra, f)
				errs = append(errs, fmt.Errorf("coordinateSystem: %w", err))
				continue
			}
			l.Coords, err = component.ParseCoordinateSystem(cs)
			errs = append(errs, err)
		default:
			l.extra = append(l.extra, f)
		}
	}
	return l, l.recovered(errs, opts)
}

func (l *Layer) addGraphics(e *modelica.Expr, opts *shape.Options) []error {
	if e.Array == nil {
		return []error{fmt.Errorf("graphics: expected array, got %s", e.String())}
	}
	var errs []error
	for _, el := range e.Array.Elems {
		if el.Call == nil {
			errs = append(errs, fmt.Errorf("graphics: expected shape, got %s", el.String()))
			continue
		}
		errs = append(errs, l.addShape(el.Call.String(), opts))
	}
	return errs
}

// addGraphicsText adds the elements of a graphics={...} value given as
// source text. An unterminated list keeps the elements read so far and
// passes the unfinished one to the shape parser.
func (l *Layer) addGraphicsText(value string, opts *shape.Options) []error {
	inner := annotation.RemoveFirstLastCurlBrackets(value)
	if inner == value {
		if !strings.HasPrefix(value, "{") {
			return []error{fmt.Errorf("graphics: expected array, got %s", value)}
		}
		inner = strings.TrimSuffix(strings.TrimPrefix(value, "{"), "}")
	}

	elems, tail, err := annotation.GetStringsTail(inner)
	errs := []error{err}
	if tail != "" {
		elems = append(elems, tail)
	}
	for _, el := range elems {
		if el != "" {
			errs = append(errs, l.addShape(el, opts))
		}
	}
	return errs
}

func (l *Layer) addShape(text string, opts *shape.Options) error {
	s, err := shape.ParseWith(text, opts)
	if s != nil {
		l.Shapes.Add(s)
	}
	if err != nil {
		name, _, _ := annotation.SplitCall(text)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// recovered logs the problems absorbed while parsing and joins them
func (l *Layer) recovered(errs []error, opts *shape.Options) error {
	log := logger(opts)
	for _, e := range errs {
		if e != nil {
			log.Debug("recovered layer error", "layer", l.Kind.String(), "error", e)
		}
	}
	return errors.Join(errs...)
}

func logger(opts *shape.Options) *slog.Logger {
	if opts == nil || opts.Logger == nil {
		return slog.Default()
	}
	return opts.Logger
}

// Annotation renders the layer annotation. Components are not part of it;
// their placements live on their declarations.
func (l *Layer) Annotation() string {
	var args []string
	if cs := l.Coords.Annotation(); cs != "" {
		args = append(args, cs)
	}
	if l.Shapes.Len() > 0 {
		items := make([]string, 0, l.Shapes.Len())
		for _, s := range l.Shapes.Shapes() {
			items = append(items, s.Annotation())
		}
		args = append(args, "graphics={"+strings.Join(items, ",")+"}")
	}
	args = append(args, l.extra...)
	return l.Kind.String() + "(" + strings.Join(args, ",") + ")"
}

// GridStep is the grid of the layer's coordinate system
func (l *Layer) GridStep() geom.Point {
	return l.Coords.GridStep()
}

// Component returns the component with the given name, or nil
func (l *Layer) Component(name string) *component.Component {
	for _, c := range l.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SceneShapes returns every visible shape of the layer in the layer frame:
// the layer's own graphics followed by the components' icons.
func (l *Layer) SceneShapes() []component.SceneShape {
	var out []component.SceneShape
	for _, h := range l.Shapes.Handles() {
		s, _ := l.Shapes.Get(h)
		if !s.Common().Visible {
			continue
		}
		out = append(out, component.SceneShape{Handle: h, Shape: s, Matrix: s.Common().Transform()})
	}
	for _, c := range l.Components {
		out = append(out, c.SceneShapes()...)
	}
	return out
}

// Bounds is the union of the coordinate system extent and everything drawn
func (l *Layer) Bounds() geom.Rect {
	r := l.Coords.Rect()
	r.ExpandRect(l.Shapes.Bounds())
	for _, c := range l.Components {
		r.ExpandRect(c.SceneRect())
	}
	return r
}

// Clone deep-copies the layer
func (l *Layer) Clone() *Layer {
	c := &Layer{
		Kind:   l.Kind,
		Coords: l.Coords,
		Shapes: l.Shapes.Clone(),
		extra:  append([]string(nil), l.extra...),
	}
	for _, comp := range l.Components {
		c.Components = append(c.Components, comp.Clone())
	}
	return c
}

// NewComponent creates a component whose icon is parsed from the class's
// Icon annotation and whose placement is parsed from its Placement
// annotation. Either text may be empty.
func NewComponent(name, className, icon, placement string, opts *shape.Options) (*component.Component, error) {
	c := component.New(name, className)
	var errs []error

	if icon != "" {
		l, err := ParseLayer(icon, opts)
		errs = append(errs, err)
		if l != nil {
			c.Coords = l.Coords
			c.Shapes = l.Shapes
		}
	}
	if placement != "" {
		p, err := component.ParsePlacement(placement)
		c.Placement = p
		errs = append(errs, err)
	}
	return c, errors.Join(errs...)
}
