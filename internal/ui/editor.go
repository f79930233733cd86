package ui

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gioui.org/app"
	"github.com/google/uuid"

	"github.com/OpenModelica/OMGraphics/internal/config"
	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/render"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// handleRadius is the pick distance of a corner handle in pixels
const handleRadius = 5.0

// selection is the selected layer shape or top-level component
type selection struct {
	active bool
	isComp bool
	shape  shape.Handle
	comp   uuid.UUID
}

type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragMove
	dragCorner
	dragResize
)

// Editor holds the editing state behind the window
type Editor struct {
	window   *app.Window
	canvas   *diagram.Canvas
	camera   *render.Camera
	settings *config.Settings
	theme    render.Theme
	path     string
	log      *slog.Logger

	sel    selection
	mode   dragMode
	last   geom.Point // screen position of the previous pointer event
	press  geom.Point // world position at press
	moved  geom.Point // live offset applied during a move drag
	fitted bool

	status string
	dirty  bool
}

// NewEditor creates the editor for opts.Layer. w may be nil.
func NewEditor(w *app.Window, opts Options) *Editor {
	s := opts.Settings
	if s == nil {
		s = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	copts := s.CanvasOptions()
	copts.Logger = log

	e := &Editor{
		window:   w,
		canvas:   diagram.NewCanvas(opts.Layer, copts),
		camera:   render.NewCamera(1200, 800),
		settings: s,
		theme:    render.LookupTheme(s.Theme),
		path:     opts.Path,
		log:      log,
		status:   "Ready",
	}
	e.canvas.Subscribe(e.changed)
	return e
}

func (e *Editor) changed(ev diagram.ChangeEvent) {
	e.status = ev.Op
	e.dirty = true
	e.invalidate()
}

func (e *Editor) invalidate() {
	if e.window != nil {
		e.window.Invalidate()
	}
}

// Canvas returns the edit canvas
func (e *Editor) Canvas() *diagram.Canvas { return e.canvas }

func (e *Editor) layer() *diagram.Layer { return e.canvas.Layer() }

func (e *Editor) selectedComponent() *component.Component {
	if !e.sel.active || !e.sel.isComp {
		return nil
	}
	return e.canvas.FindComponent(e.sel.comp)
}

func (e *Editor) selectedShape() shape.Shape {
	if !e.sel.active || e.sel.isComp {
		return nil
	}
	s, _ := e.layer().Shapes.Get(e.sel.shape)
	return s
}

// isSelected marks the selected layer shape for the scene builder
func (e *Editor) isSelected(ss component.SceneShape) bool {
	return e.sel.active && !e.sel.isComp && ss.Owner == nil && ss.Handle == e.sel.shape
}

// validate drops a selection whose target no longer exists
func (e *Editor) validate() {
	if e.sel.isComp && e.selectedComponent() == nil {
		e.sel = selection{}
	}
	if e.sel.active && !e.sel.isComp && e.selectedShape() == nil {
		e.sel = selection{}
	}
}

// Fit centres the layer in the view
func (e *Editor) Fit() {
	e.camera.Fit(e.layer().Bounds())
	e.fitted = true
	e.invalidate()
}

// ToggleTheme switches between the built-in themes
func (e *Editor) ToggleTheme() {
	names := render.ThemeNames()
	for i, n := range names {
		if n == e.theme.Name {
			e.theme = render.LookupTheme(names[(i+1)%len(names)])
			break
		}
	}
	e.invalidate()
}

// handleAt returns the corner handle of the selection under the screen
// point sp
func (e *Editor) handleAt(sp geom.Point) (int, bool) {
	var pts []geom.Point
	if comp := e.selectedComponent(); comp != nil {
		c := comp.Placement.Transformation.Corners()
		pts = c[:]
	} else if s := e.selectedShape(); s != nil && s.Kind().HasExtent() {
		m := s.Common().Transform()
		for _, p := range shape.Handles(s) {
			pts = append(pts, m.Apply(p))
		}
	}
	for i, p := range pts {
		q := e.camera.WorldToScreen(p)
		if math.Hypot(q.X-sp.X, q.Y-sp.Y) <= handleRadius {
			return i, true
		}
	}
	return 0, false
}

// pick selects what lies under the world point p, topmost first
func (e *Editor) pick(p geom.Point) bool {
	comps := e.layer().Components
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].SceneRect().Contains(p) {
			e.sel = selection{active: true, isComp: true, comp: comps[i].ID}
			return true
		}
	}
	if h, ok := e.canvas.HitShape(p); ok {
		e.sel = selection{active: true, shape: h}
		return true
	}
	e.sel = selection{}
	return false
}

// Press starts a pointer gesture at screen point sp. primary selects and
// drags; otherwise the view pans.
func (e *Editor) Press(sp geom.Point, primary bool) {
	e.last = sp
	if !primary {
		e.mode = dragPan
		return
	}
	if i, ok := e.handleAt(sp); ok {
		if e.startHandleDrag(i) {
			return
		}
	}
	wp := e.camera.ScreenToWorld(sp)
	if e.pick(wp) {
		e.mode = dragMove
		e.press = wp
		e.moved = geom.Point{}
	} else {
		e.mode = dragPan
	}
	e.invalidate()
}

func (e *Editor) startHandleDrag(i int) bool {
	var err error
	if e.sel.isComp {
		if err = e.canvas.BeginResize(e.sel.comp, i); err == nil {
			e.mode = dragResize
		}
	} else {
		if err = e.canvas.BeginCornerDrag(e.sel.shape, i); err == nil {
			e.mode = dragCorner
		}
	}
	if err != nil {
		e.log.Debug("handle drag refused", "error", err)
		return false
	}
	return true
}

// Drag continues the gesture at screen point sp
func (e *Editor) Drag(sp geom.Point) {
	defer func() { e.last = sp }()
	wp := e.camera.ScreenToWorld(sp)

	switch e.mode {
	case dragPan:
		e.camera.Pan(sp.X-e.last.X, sp.Y-e.last.Y)
	case dragMove:
		d := e.layer().Coords.Snap(wp.Sub(e.press))
		step := d.Sub(e.moved)
		if step == (geom.Point{}) {
			return
		}
		e.applyLive(step)
		e.moved = d
	case dragCorner:
		if err := e.canvas.DragCorner(e.layer().Coords.Snap(wp)); err != nil {
			e.log.Debug("corner drag", "error", err)
		}
	case dragResize:
		if err := e.canvas.Resize(e.layer().Coords.Snap(wp)); err != nil {
			e.log.Debug("resize", "error", err)
		}
	default:
		return
	}
	e.invalidate()
}

// applyLive moves the selection without recording an edit
func (e *Editor) applyLive(d geom.Point) {
	if comp := e.selectedComponent(); comp != nil {
		comp.MoveBy(d)
	} else if s := e.selectedShape(); s != nil {
		shape.MoveBy(s, d)
	}
}

// Release ends the gesture and commits it as one edit
func (e *Editor) Release() {
	mode := e.mode
	e.mode = dragNone

	var err error
	switch mode {
	case dragMove:
		d := e.moved
		e.moved = geom.Point{}
		if d == (geom.Point{}) {
			return
		}
		e.applyLive(d.Mul(-1))
		if e.sel.isComp {
			err = e.canvas.MoveComponent(e.sel.comp, d)
		} else {
			err = e.canvas.MoveShape(e.sel.shape, d)
		}
	case dragCorner:
		err = e.canvas.EndCornerDrag()
	case dragResize:
		err = e.canvas.FinishResize()
	}
	if err != nil {
		e.log.Warn("edit failed", "error", err)
		e.status = err.Error()
	}
	e.invalidate()
}

// Cancel aborts the gesture in progress
func (e *Editor) Cancel() {
	switch e.mode {
	case dragMove:
		e.applyLive(e.moved.Mul(-1))
		e.moved = geom.Point{}
	case dragCorner:
		e.canvas.CancelCornerDrag()
	case dragResize:
		e.canvas.CancelResize()
	}
	e.mode = dragNone
	e.invalidate()
}

// Scroll zooms about the screen point sp
func (e *Editor) Scroll(sp geom.Point, dy float64) {
	e.camera.ZoomAt(sp.X, sp.Y, 1-dy*0.1)
	e.invalidate()
}

// Edit commands on the selection

func (e *Editor) report(err error) {
	if err != nil {
		e.log.Warn("edit failed", "error", err)
		e.status = err.Error()
	}
	e.validate()
	e.invalidate()
}

func (e *Editor) Rotate(delta float64) {
	if !e.sel.active {
		return
	}
	if e.sel.isComp {
		e.report(e.canvas.RotateComponent(e.sel.comp, delta))
		return
	}
	e.report(e.canvas.RotateShape(e.sel.shape, delta))
}

func (e *Editor) Flip(horizontal bool) {
	if !e.sel.active {
		return
	}
	if e.sel.isComp {
		e.report(e.canvas.FlipComponent(e.sel.comp, horizontal))
		return
	}
	e.report(e.canvas.FlipShape(e.sel.shape, horizontal))
}

func (e *Editor) Nudge(dir shape.Direction, mod shape.Modifier) {
	if !e.sel.active {
		return
	}
	if e.sel.isComp {
		e.report(e.canvas.NudgeComponent(e.sel.comp, dir, mod))
		return
	}
	e.report(e.canvas.NudgeShape(e.sel.shape, dir, mod))
}

// Duplicate copies the selection and selects the copy
func (e *Editor) Duplicate() {
	if !e.sel.active {
		return
	}
	if e.sel.isComp {
		id, err := e.canvas.DuplicateComponent(e.sel.comp)
		if err == nil {
			e.sel.comp = id
		}
		e.report(err)
		return
	}
	h, err := e.canvas.DuplicateShape(e.sel.shape)
	if err == nil {
		e.sel.shape = h
	}
	e.report(err)
}

func (e *Editor) Delete() {
	if !e.sel.active {
		return
	}
	var err error
	if e.sel.isComp {
		err = e.canvas.DeleteComponent(e.sel.comp)
	} else {
		err = e.canvas.DeleteShape(e.sel.shape)
	}
	e.sel = selection{}
	e.report(err)
}

// Reorder applies a z-order command to a selected layer shape
func (e *Editor) Reorder(fn func(*diagram.Canvas, shape.Handle) error) {
	if !e.sel.active || e.sel.isComp {
		return
	}
	e.report(fn(e.canvas, e.sel.shape))
}

func (e *Editor) Manhattanize() {
	if !e.sel.active || e.sel.isComp {
		return
	}
	e.report(e.canvas.ManhattanizeShape(e.sel.shape))
}

func (e *Editor) Undo() {
	e.canvas.Undo()
	e.validate()
	e.invalidate()
}

func (e *Editor) Redo() {
	e.canvas.Redo()
	e.validate()
	e.invalidate()
}

// Insert adds a new shape of kind at the centre of the view and selects it
func (e *Editor) Insert(kind shape.Kind) {
	h := e.canvas.NewShape(kind)
	e.sel = selection{active: true, shape: h}
	c := e.layer().Coords.Snap(e.camera.Center)
	if c != (geom.Point{}) {
		e.report(e.canvas.MoveShape(h, c))
		return
	}
	e.invalidate()
}

// Save writes the layer annotation back to the file it was read from
func (e *Editor) Save() error {
	if e.path == "" {
		return fmt.Errorf("no file to save to")
	}
	if err := os.WriteFile(e.path, []byte(e.layer().Annotation()+"\n"), 0644); err != nil {
		return err
	}
	e.dirty = false
	e.status = "saved " + e.path
	e.log.Info("saved layer", "path", e.path)
	e.invalidate()
	return nil
}

// Open replaces the edited layer with the one in path
func (e *Editor) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	l, err := diagram.ParseLayer(string(data), &shape.Options{ClassFileName: path, Logger: e.log})
	if l == nil {
		return err
	}
	if err != nil {
		e.log.Warn("layer loaded with problems", "path", path, "error", err)
	}

	copts := e.settings.CanvasOptions()
	copts.Logger = e.log
	e.canvas = diagram.NewCanvas(l, copts)
	e.canvas.Subscribe(e.changed)
	e.path = path
	e.sel = selection{}
	e.dirty = false
	e.Fit()
	if e.window != nil {
		e.window.Option(app.Title(title(l, path)))
	}
	return nil
}
