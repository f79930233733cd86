package diagram

import (
	"github.com/google/uuid"

	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// ActionType identifies an undoable edit
type ActionType int

const (
	ActionAddShape ActionType = iota
	ActionDeleteShape
	ActionEditShape
	ActionReorderShapes
	ActionAddComponent
	ActionDeleteComponent
	ActionEditComponent
	ActionCoordinateSystem
)

var actionNames = []string{
	"add-shape", "delete-shape", "edit-shape", "reorder-shapes",
	"add-component", "delete-component", "edit-component", "coordinate-system",
}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Action is one entry of the undo stack. Data is the state after the edit,
// Inverse the state before it.
type Action struct {
	Type    ActionType
	Op      string // command that produced the edit, e.g. "rotate"
	Data    interface{}
	Inverse interface{}
}

// ShapeState captures one shape and its z position; a nil Shape means the
// handle is absent.
type ShapeState struct {
	Handle shape.Handle
	Shape  shape.Shape
	Z      int
}

// ComponentState captures one top-level component and its index; a nil
// Component means it is absent.
type ComponentState struct {
	ID        uuid.UUID
	Component *component.Component
	Index     int
}

// OrderState captures the z-order of the shapes
type OrderState struct {
	Order []shape.Handle
}

// CoordsState captures the coordinate system
type CoordsState struct {
	Coords component.CoordinateSystem
}

func (c *Canvas) recordAction(actionType ActionType, op string, data, inverse interface{}) {
	action := Action{
		Type:    actionType,
		Op:      op,
		Data:    data,
		Inverse: inverse,
	}
	c.undoStack = append(c.undoStack, action)
	c.redoStack = c.redoStack[:0]
	if c.maxUndo > 0 && len(c.undoStack) > c.maxUndo {
		c.undoStack = c.undoStack[len(c.undoStack)-c.maxUndo:]
	}
	c.notify(op)
}

// Undo reverts the last edit and reports whether there was one
func (c *Canvas) Undo() bool {
	if len(c.undoStack) == 0 {
		return false
	}
	c.cancelGestures()
	lastIndex := len(c.undoStack) - 1
	action := c.undoStack[lastIndex]
	c.undoStack = c.undoStack[:lastIndex]

	c.apply(action.Inverse)
	c.redoStack = append(c.redoStack, action)
	c.notify("undo " + action.Op)
	return true
}

// Redo reapplies the last undone edit and reports whether there was one
func (c *Canvas) Redo() bool {
	if len(c.redoStack) == 0 {
		return false
	}
	c.cancelGestures()
	lastIndex := len(c.redoStack) - 1
	action := c.redoStack[lastIndex]
	c.redoStack = c.redoStack[:lastIndex]

	c.apply(action.Data)
	c.undoStack = append(c.undoStack, action)
	c.notify("redo " + action.Op)
	return true
}

// CanUndo reports whether Undo would do anything
func (c *Canvas) CanUndo() bool { return len(c.undoStack) > 0 }

// CanRedo reports whether Redo would do anything
func (c *Canvas) CanRedo() bool { return len(c.redoStack) > 0 }

// apply restores a captured state. States hold private clones, so the
// stack entries are cloned again before they reach the layer.
func (c *Canvas) apply(state interface{}) {
	switch s := state.(type) {
	case ShapeState:
		arena := c.layer.Shapes
		if s.Shape == nil {
			arena.Remove(s.Handle)
			return
		}
		if _, ok := arena.Get(s.Handle); ok {
			arena.Replace(s.Handle, s.Shape.Clone())
			return
		}
		arena.Insert(s.Handle, s.Shape.Clone(), s.Z)
	case OrderState:
		c.layer.Shapes.SetOrder(s.Order)
	case ComponentState:
		i := c.componentIndex(s.ID)
		if s.Component == nil {
			if i >= 0 {
				c.layer.Components = append(c.layer.Components[:i], c.layer.Components[i+1:]...)
			}
			return
		}
		comp := s.Component.Clone()
		if i >= 0 {
			c.layer.Components[i] = comp
			return
		}
		at := max(0, min(s.Index, len(c.layer.Components)))
		c.layer.Components = append(c.layer.Components[:at],
			append([]*component.Component{comp}, c.layer.Components[at:]...)...)
	case CoordsState:
		c.layer.Coords = s.Coords
	}
}
