// Package script applies batch edit scripts to a diagram canvas. A script
// is a sequence of s-expressions, one command each:
//
//	(new Rectangle)
//	(move 0 10 0)
//	(rotate R1 90)
//	(resize R1 2 20 20)
//	(undo)
//
// A numeric target is the z-index of one of the layer's own shapes, any
// other target names a placed component.
package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"
	"github.com/google/uuid"

	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgs           = errors.New("wrong arguments")
	ErrNoTarget       = errors.New("no such target")
)

// CommandError reports the failing command of a script
type CommandError struct {
	Index   int // 0-based position in the script
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d (%s): %v", e.Index, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes commands against a canvas
type Runner struct {
	Canvas *diagram.Canvas
	Log    *slog.Logger
}

// New creates a runner for c
func New(c *diagram.Canvas, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{Canvas: c, Log: log}
}

// RunString parses and executes every command in src. Execution stops at
// the first failing command; commands before it stay applied.
func (r *Runner) RunString(src string) (int, error) {
	exprs, err := sexp.ParseString(src)
	if err != nil {
		return 0, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, e := range exprs {
		if err := r.exec(e); err != nil {
			return i, &CommandError{Index: i, Command: fmt.Sprint(e), Err: err}
		}
	}
	return len(exprs), nil
}

// Run reads the whole script from rd and executes it
func (r *Runner) Run(rd io.Reader) (int, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return 0, fmt.Errorf("failed to read script: %w", err)
	}
	return r.RunString(string(data))
}

// toSlice converts an s-expression list to a Go slice
func toSlice(s sexp.Sexp) []sexp.Sexp {
	var items []sexp.Sexp
	if s == nil || s.IsLeaf() {
		return items
	}
	for {
		n := s.LeafCount()
		if n == 0 {
			break
		}
		if head := s.Head(); head != nil {
			items = append(items, head)
		}
		if n <= 1 {
			break
		}
		s = s.Tail()
		if s == nil || s.IsLeaf() {
			break
		}
	}
	return items
}

func leaf(s sexp.Sexp) (string, bool) {
	if s == nil || !s.IsLeaf() {
		return "", false
	}
	return strings.Trim(fmt.Sprint(s), `"`), true
}

// args holds the leaves following the command name
type args []string

func (a args) float(i int) (float64, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrArgs, i+1)
	}
	v, err := strconv.ParseFloat(a[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrArgs, a[i])
	}
	return v, nil
}

func (a args) point(i int) (geom.Point, error) {
	x, err := a.float(i)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := a.float(i + 1)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

// target is either a shape of the layer or a component
type target struct {
	shape     shape.Handle
	component uuid.UUID
	isShape   bool
}

func (r *Runner) target(name string) (target, error) {
	l := r.Canvas.Layer()
	if z, err := strconv.Atoi(name); err == nil {
		hs := l.Shapes.Handles()
		if z < 0 || z >= len(hs) {
			return target{}, fmt.Errorf("%w: shape %d", ErrNoTarget, z)
		}
		return target{shape: hs[z], isShape: true}, nil
	}
	comp := l.Component(name)
	if comp == nil {
		return target{}, fmt.Errorf("%w: component %q", ErrNoTarget, name)
	}
	return target{component: comp.ID}, nil
}

func (r *Runner) exec(e sexp.Sexp) error {
	items := toSlice(e)
	if len(items) == 0 {
		return fmt.Errorf("%w: expected a list", ErrArgs)
	}
	cmd, ok := leaf(items[0])
	if !ok {
		return fmt.Errorf("%w: command name must be a symbol", ErrArgs)
	}
	var a args
	for _, it := range items[1:] {
		v, ok := leaf(it)
		if !ok {
			return fmt.Errorf("%w: nested lists are not supported", ErrArgs)
		}
		a = append(a, v)
	}
	r.Log.Debug("script command", "cmd", cmd, "args", []string(a))

	c := r.Canvas
	switch cmd {
	case "undo":
		c.Undo()
		return nil
	case "redo":
		c.Redo()
		return nil
	case "new":
		if len(a) != 1 {
			return fmt.Errorf("%w: new takes a shape kind", ErrArgs)
		}
		kind, ok := shape.ParseKind(a[0])
		if !ok {
			return fmt.Errorf("%w: unknown shape kind %q", ErrArgs, a[0])
		}
		c.NewShape(kind)
		return nil
	case "grid":
		g, err := a.point(0)
		if err != nil {
			return err
		}
		cs := c.Layer().Coords
		cs.Grid = g
		c.SetCoordinateSystem(cs)
		return nil
	}

	if len(a) == 0 {
		return fmt.Errorf("%w: %s needs a target", ErrArgs, cmd)
	}
	t, err := r.target(a[0])
	if err != nil {
		return err
	}
	a = a[1:]

	switch cmd {
	case "move":
		d, err := a.point(0)
		if err != nil {
			return err
		}
		if t.isShape {
			return c.MoveShape(t.shape, d)
		}
		return c.MoveComponent(t.component, d)

	case "nudge":
		dir, mod, err := nudgeArgs(a)
		if err != nil {
			return err
		}
		if t.isShape {
			return c.NudgeShape(t.shape, dir, mod)
		}
		return c.NudgeComponent(t.component, dir, mod)

	case "rotate":
		deg, err := a.float(0)
		if err != nil {
			return err
		}
		if t.isShape {
			return c.RotateShape(t.shape, deg)
		}
		return c.RotateComponent(t.component, deg)

	case "flip":
		if len(a) != 1 || (a[0] != "h" && a[0] != "v") {
			return fmt.Errorf("%w: flip takes h or v", ErrArgs)
		}
		if t.isShape {
			return c.FlipShape(t.shape, a[0] == "h")
		}
		return c.FlipComponent(t.component, a[0] == "h")

	case "duplicate":
		if t.isShape {
			_, err := c.DuplicateShape(t.shape)
			return err
		}
		_, err := c.DuplicateComponent(t.component)
		return err

	case "delete":
		if t.isShape {
			return c.DeleteShape(t.shape)
		}
		return c.DeleteComponent(t.component)

	case "resize":
		corner, err := a.float(0)
		if err != nil {
			return err
		}
		p, err := a.point(1)
		if err != nil {
			return err
		}
		if t.isShape {
			return resizeShape(c, t.shape, int(corner), p)
		}
		return resizeComponent(c, t.component, int(corner), p)
	}

	if !t.isShape {
		return fmt.Errorf("%w: %s applies to shapes only", ErrArgs, cmd)
	}
	switch cmd {
	case "front":
		return c.BringToFront(t.shape)
	case "back":
		return c.SendToBack(t.shape)
	case "forward":
		return c.BringForward(t.shape)
	case "backward":
		return c.SendBackward(t.shape)
	case "manhattanize":
		return c.ManhattanizeShape(t.shape)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

func nudgeArgs(a args) (shape.Direction, shape.Modifier, error) {
	if len(a) == 0 || len(a) > 2 {
		return 0, 0, fmt.Errorf("%w: nudge takes a direction and an optional modifier", ErrArgs)
	}
	dirs := map[string]shape.Direction{"up": shape.Up, "down": shape.Down, "left": shape.Left, "right": shape.Right}
	dir, ok := dirs[a[0]]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown direction %q", ErrArgs, a[0])
	}
	mod := shape.ModNone
	if len(a) == 2 {
		switch a[1] {
		case "shift":
			mod = shape.ModShift
		case "ctrl":
			mod = shape.ModCtrl
		default:
			return 0, 0, fmt.Errorf("%w: unknown modifier %q", ErrArgs, a[1])
		}
	}
	return dir, mod, nil
}

func resizeShape(c *diagram.Canvas, h shape.Handle, corner int, p geom.Point) error {
	if err := c.BeginCornerDrag(h, corner); err != nil {
		return err
	}
	if err := c.DragCorner(p); err != nil {
		c.CancelCornerDrag()
		return err
	}
	return c.EndCornerDrag()
}

func resizeComponent(c *diagram.Canvas, id uuid.UUID, corner int, p geom.Point) error {
	if err := c.BeginResize(id, corner); err != nil {
		return err
	}
	if err := c.Resize(p); err != nil {
		c.CancelResize()
		return err
	}
	return c.FinishResize()
}
