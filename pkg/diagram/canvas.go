package diagram

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

var (
	ErrNoShape     = errors.New("no such shape")
	ErrNoComponent = errors.New("no such component")
	ErrNoDrag      = errors.New("no drag in progress")
)

// ChangeEvent is posted after every committed edit, undo and redo
type ChangeEvent struct {
	ID         uuid.UUID
	Seq        uint64
	Layer      LayerKind
	Op         string
	Annotation string // layer annotation after the change
}

// Listener receives change events on the editing goroutine
type Listener func(ChangeEvent)

// ChannelListener forwards events to ch without blocking; events are
// dropped while ch is full.
func ChannelListener(ch chan<- ChangeEvent) Listener {
	return func(ev ChangeEvent) {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Options configures a Canvas
type Options struct {
	Defaults shape.Defaults
	Nudge    shape.Nudge
	MinSize  float64
	MaxUndo  int // 0 keeps every edit
	Logger   *slog.Logger
}

// DefaultOptions uses grammar defaults for new shapes and the default nudge
func DefaultOptions() Options {
	return Options{
		Defaults: shape.GrammarDefaults(),
		Nudge:    shape.DefaultNudge(),
		MinSize:  shape.DefaultMinSize,
	}
}

// Canvas applies edit commands to a layer. It owns undo and redo and
// notifies listeners after each committed edit. A Canvas is not safe for
// concurrent use.
type Canvas struct {
	layer *Layer
	opts  Options
	log   *slog.Logger

	undoStack []Action
	redoStack []Action
	maxUndo   int

	listeners []Listener
	seq       uint64

	drag       shape.CornerDrag
	dragHandle shape.Handle
	dragBefore shape.Shape

	resizing     *component.Component
	resizeBefore *component.Component
}

// NewCanvas wraps l for editing
func NewCanvas(l *Layer, opts Options) *Canvas {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Canvas{
		layer:   l,
		opts:    opts,
		log:     log,
		maxUndo: opts.MaxUndo,
		drag:    shape.CornerDrag{MinSize: opts.MinSize},
	}
}

// Layer returns the edited layer
func (c *Canvas) Layer() *Layer { return c.layer }

// Subscribe registers fn for change events
func (c *Canvas) Subscribe(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

func (c *Canvas) notify(op string) {
	c.seq++
	ev := ChangeEvent{
		ID:         uuid.New(),
		Seq:        c.seq,
		Layer:      c.layer.Kind,
		Op:         op,
		Annotation: c.layer.Annotation(),
	}
	c.log.Debug("layer changed", "layer", ev.Layer.String(), "op", op, "seq", ev.Seq)
	for _, fn := range c.listeners {
		fn(ev)
	}
}

func (c *Canvas) grid() geom.Point { return c.layer.GridStep() }

// Shapes

// AddShape places s on top of the layer
func (c *Canvas) AddShape(s shape.Shape) shape.Handle {
	h := c.layer.Shapes.Add(s)
	c.recordAction(ActionAddShape, "add "+s.Kind().String(),
		ShapeState{Handle: h, Shape: s.Clone(), Z: c.layer.Shapes.ZIndex(h)},
		ShapeState{Handle: h})
	return h
}

// NewShape adds a fresh shape of kind seeded from the configured defaults
func (c *Canvas) NewShape(kind shape.Kind) shape.Handle {
	return c.AddShape(shape.New(kind, &c.opts.Defaults))
}

// DeleteShape removes h
func (c *Canvas) DeleteShape(h shape.Handle) error {
	s, ok := c.layer.Shapes.Get(h)
	if !ok {
		return ErrNoShape
	}
	if c.drag.State() != shape.Idle && c.dragHandle == h {
		c.CancelCornerDrag()
	}
	z := c.layer.Shapes.ZIndex(h)
	c.layer.Shapes.Remove(h)
	c.recordAction(ActionDeleteShape, "delete "+s.Kind().String(),
		ShapeState{Handle: h},
		ShapeState{Handle: h, Shape: s.Clone(), Z: z})
	return nil
}

// EditShape runs fn on shape h and records the change as one undoable edit.
// Nothing is recorded when fn fails or leaves the annotation unchanged.
func (c *Canvas) EditShape(h shape.Handle, op string, fn func(shape.Shape) error) error {
	s, ok := c.layer.Shapes.Get(h)
	if !ok {
		return ErrNoShape
	}
	before := s.Clone()
	if err := fn(s); err != nil {
		c.layer.Shapes.Replace(h, before)
		return err
	}
	if before.Annotation() == s.Annotation() {
		return nil
	}
	z := c.layer.Shapes.ZIndex(h)
	c.recordAction(ActionEditShape, op,
		ShapeState{Handle: h, Shape: s.Clone(), Z: z},
		ShapeState{Handle: h, Shape: before, Z: z})
	return nil
}

// MoveShape translates h by d
func (c *Canvas) MoveShape(h shape.Handle, d geom.Point) error {
	return c.EditShape(h, "move", func(s shape.Shape) error {
		shape.MoveBy(s, d)
		return nil
	})
}

// NudgeShape moves h by one keyboard step
func (c *Canvas) NudgeShape(h shape.Handle, dir shape.Direction, mod shape.Modifier) error {
	return c.MoveShape(h, c.opts.Nudge.Offset(dir, mod, c.grid()))
}

// RotateShape rotates h about its origin
func (c *Canvas) RotateShape(h shape.Handle, delta float64) error {
	return c.EditShape(h, "rotate", func(s shape.Shape) error {
		shape.ApplyRotation(s, delta)
		return nil
	})
}

// FlipShape mirrors h horizontally or vertically
func (c *Canvas) FlipShape(h shape.Handle, horizontal bool) error {
	return c.EditShape(h, "flip", func(s shape.Shape) error {
		if horizontal {
			shape.FlipHorizontal(s)
		} else {
			shape.FlipVertical(s)
		}
		return nil
	})
}

// ManhattanizeShape makes every segment of a line or polygon axis-aligned
func (c *Canvas) ManhattanizeShape(h shape.Handle) error {
	return c.EditShape(h, "manhattanize", shape.Manhattanize)
}

// DuplicateShape adds a copy of h one grid step away
func (c *Canvas) DuplicateShape(h shape.Handle) (shape.Handle, error) {
	s, ok := c.layer.Shapes.Get(h)
	if !ok {
		return 0, ErrNoShape
	}
	return c.AddShape(shape.Duplicate(s, c.grid())), nil
}

func (c *Canvas) reorder(h shape.Handle, op string, fn func(shape.Handle) bool) error {
	before := c.layer.Shapes.Handles()
	if !fn(h) {
		return ErrNoShape
	}
	after := c.layer.Shapes.Handles()
	if slices.Equal(before, after) {
		return nil
	}
	c.recordAction(ActionReorderShapes, op, OrderState{Order: after}, OrderState{Order: before})
	return nil
}

// BringToFront moves h on top
func (c *Canvas) BringToFront(h shape.Handle) error {
	return c.reorder(h, "bring to front", c.layer.Shapes.BringToFront)
}

// SendToBack moves h to the bottom
func (c *Canvas) SendToBack(h shape.Handle) error {
	return c.reorder(h, "send to back", c.layer.Shapes.SendToBack)
}

// BringForward moves h up one step
func (c *Canvas) BringForward(h shape.Handle) error {
	return c.reorder(h, "bring forward", c.layer.Shapes.BringForward)
}

// SendBackward moves h down one step
func (c *Canvas) SendBackward(h shape.Handle) error {
	return c.reorder(h, "send backward", c.layer.Shapes.SendBackward)
}

// BeginCornerDrag presses handle i of shape h
func (c *Canvas) BeginCornerDrag(h shape.Handle, i int) error {
	s, ok := c.layer.Shapes.Get(h)
	if !ok {
		return ErrNoShape
	}
	before := s.Clone()
	if err := c.drag.Press(s, i); err != nil {
		return err
	}
	c.dragHandle = h
	c.dragBefore = before
	return nil
}

// DragCorner moves the active handle to p in the layer frame
func (c *Canvas) DragCorner(p geom.Point) error {
	if c.drag.State() == shape.Idle {
		return ErrNoDrag
	}
	s, ok := c.layer.Shapes.Get(c.dragHandle)
	if !ok {
		c.CancelCornerDrag()
		return ErrNoShape
	}
	c.drag.Move(s.Common().ToLocal(p))
	return nil
}

// EndCornerDrag releases the handle and commits the new geometry
func (c *Canvas) EndCornerDrag() error {
	if c.drag.State() == shape.Idle {
		return ErrNoDrag
	}
	h, before := c.dragHandle, c.dragBefore
	s, ok := c.layer.Shapes.Get(h)
	if !ok {
		c.CancelCornerDrag()
		return ErrNoShape
	}
	c.dragBefore = nil
	if !c.drag.Release() {
		return nil
	}
	if before.Annotation() == s.Annotation() {
		return nil
	}
	z := c.layer.Shapes.ZIndex(h)
	c.recordAction(ActionEditShape, "resize",
		ShapeState{Handle: h, Shape: s.Clone(), Z: z},
		ShapeState{Handle: h, Shape: before, Z: z})
	return nil
}

// CancelCornerDrag reverts the active drag
func (c *Canvas) CancelCornerDrag() {
	c.drag.Cancel()
	c.dragBefore = nil
}

// DragState returns the state of the corner drag
func (c *Canvas) DragState() shape.DragState { return c.drag.State() }

// HitShape returns the topmost shape of the layer's own graphics at p
func (c *Canvas) HitShape(p geom.Point) (shape.Handle, bool) {
	return c.layer.Shapes.HitTest(p)
}

// Components

func (c *Canvas) componentIndex(id uuid.UUID) int {
	return slices.IndexFunc(c.layer.Components, func(comp *component.Component) bool {
		return comp.ID == id
	})
}

// FindComponent returns the top-level component with the id
func (c *Canvas) FindComponent(id uuid.UUID) *component.Component {
	if i := c.componentIndex(id); i >= 0 {
		return c.layer.Components[i]
	}
	return nil
}

// AddComponent places comp in the layer
func (c *Canvas) AddComponent(comp *component.Component) {
	c.layer.Components = append(c.layer.Components, comp)
	c.recordAction(ActionAddComponent, "add component "+comp.Name,
		ComponentState{ID: comp.ID, Component: comp.Clone(), Index: len(c.layer.Components) - 1},
		ComponentState{ID: comp.ID})
}

// DeleteComponent removes the component with the id
func (c *Canvas) DeleteComponent(id uuid.UUID) error {
	i := c.componentIndex(id)
	if i < 0 {
		return ErrNoComponent
	}
	comp := c.layer.Components[i]
	if c.resizing == comp {
		c.CancelResize()
	}
	c.layer.Components = slices.Delete(c.layer.Components, i, i+1)
	c.recordAction(ActionDeleteComponent, "delete component "+comp.Name,
		ComponentState{ID: id},
		ComponentState{ID: id, Component: comp.Clone(), Index: i})
	return nil
}

// EditComponent runs fn on the component and records one undoable edit
// when its placement changed.
func (c *Canvas) EditComponent(id uuid.UUID, op string, fn func(*component.Component) error) error {
	i := c.componentIndex(id)
	if i < 0 {
		return ErrNoComponent
	}
	comp := c.layer.Components[i]
	before := comp.Clone()
	if err := fn(comp); err != nil {
		c.layer.Components[i] = before
		return err
	}
	if before.Placement.Annotation() == comp.Placement.Annotation() {
		return nil
	}
	c.recordAction(ActionEditComponent, op,
		ComponentState{ID: id, Component: comp.Clone(), Index: i},
		ComponentState{ID: id, Component: before, Index: i})
	return nil
}

// MoveComponent translates the component origin
func (c *Canvas) MoveComponent(id uuid.UUID, d geom.Point) error {
	return c.EditComponent(id, "move", func(comp *component.Component) error {
		comp.MoveBy(d)
		return nil
	})
}

// NudgeComponent moves the component by one keyboard step
func (c *Canvas) NudgeComponent(id uuid.UUID, dir shape.Direction, mod shape.Modifier) error {
	return c.MoveComponent(id, c.opts.Nudge.Offset(dir, mod, c.grid()))
}

// RotateComponent rotates the component about its origin
func (c *Canvas) RotateComponent(id uuid.UUID, delta float64) error {
	return c.EditComponent(id, "rotate", func(comp *component.Component) error {
		comp.ApplyRotation(delta)
		return nil
	})
}

// FlipComponent mirrors the component horizontally or vertically
func (c *Canvas) FlipComponent(id uuid.UUID, horizontal bool) error {
	return c.EditComponent(id, "flip", func(comp *component.Component) error {
		if horizontal {
			comp.FlipHorizontal()
		} else {
			comp.FlipVertical()
		}
		return nil
	})
}

// DuplicateComponent adds a copy one grid step away and returns its id
func (c *Canvas) DuplicateComponent(id uuid.UUID) (uuid.UUID, error) {
	comp := c.FindComponent(id)
	if comp == nil {
		return uuid.Nil, ErrNoComponent
	}
	d := comp.Duplicate(c.grid())
	c.AddComponent(d)
	return d.ID, nil
}

// BeginResize starts resizing the component by corner handle i
func (c *Canvas) BeginResize(id uuid.UUID, i int) error {
	comp := c.FindComponent(id)
	if comp == nil {
		return ErrNoComponent
	}
	before := comp.Clone()
	if err := comp.PrepareResize(i, c.opts.MinSize); err != nil {
		return err
	}
	c.resizing, c.resizeBefore = comp, before
	return nil
}

// Resize drags the active component handle to p in the layer frame
func (c *Canvas) Resize(p geom.Point) error {
	if c.resizing == nil {
		return ErrNoDrag
	}
	c.resizing.Resize(p)
	return nil
}

// FinishResize commits the component resize
func (c *Canvas) FinishResize() error {
	comp, before := c.resizing, c.resizeBefore
	if comp == nil {
		return ErrNoDrag
	}
	c.resizing, c.resizeBefore = nil, nil
	if !comp.FinishResize() {
		return nil
	}
	c.recordAction(ActionEditComponent, "resize",
		ComponentState{ID: comp.ID, Component: comp.Clone(), Index: c.componentIndex(comp.ID)},
		ComponentState{ID: comp.ID, Component: before, Index: c.componentIndex(comp.ID)})
	return nil
}

// cancelGestures reverts an unfinished corner drag or component resize
func (c *Canvas) cancelGestures() {
	c.CancelCornerDrag()
	c.CancelResize()
}

// CancelResize reverts the component resize
func (c *Canvas) CancelResize() {
	if c.resizing != nil {
		c.resizing.CancelResize()
	}
	c.resizing, c.resizeBefore = nil, nil
}

// SetCoordinateSystem replaces the layer coordinate system
func (c *Canvas) SetCoordinateSystem(cs component.CoordinateSystem) {
	before := c.layer.Coords
	if before == cs {
		return
	}
	c.layer.Coords = cs
	c.recordAction(ActionCoordinateSystem, "coordinate system", CoordsState{Coords: cs}, CoordsState{Coords: before})
}
