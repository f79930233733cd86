package shape

import (
	"slices"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Handle identifies a shape inside an Arena. The zero Handle is invalid.
type Handle uint32

// Arena owns a set of shapes in z-order (back to front). The zero value is
// an empty arena ready to use.
type Arena struct {
	next  Handle
	items map[Handle]Shape
	order []Handle
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// Add places s on top and returns its handle
func (a *Arena) Add(s Shape) Handle {
	if a.items == nil {
		a.items = make(map[Handle]Shape)
	}
	a.next++
	h := a.next
	a.items[h] = s
	a.order = append(a.order, h)
	return h
}

// Get returns the shape for h
func (a *Arena) Get(h Handle) (Shape, bool) {
	s, ok := a.items[h]
	return s, ok
}

// Remove deletes h and reports whether it existed
func (a *Arena) Remove(h Handle) bool {
	if _, ok := a.items[h]; !ok {
		return false
	}
	delete(a.items, h)
	a.order = slices.DeleteFunc(a.order, func(x Handle) bool { return x == h })
	return true
}

// Replace swaps the shape stored under h, keeping its z position
func (a *Arena) Replace(h Handle, s Shape) bool {
	if _, ok := a.items[h]; !ok {
		return false
	}
	a.items[h] = s
	return true
}

// Insert stores s under a handle previously issued by this arena at z
// position z, as when undoing a removal. It fails if h is in use or was
// never issued.
func (a *Arena) Insert(h Handle, s Shape, z int) bool {
	if h == 0 || h > a.next {
		return false
	}
	if _, ok := a.items[h]; ok {
		return false
	}
	if a.items == nil {
		a.items = make(map[Handle]Shape)
	}
	a.items[h] = s
	z = max(0, min(z, len(a.order)))
	a.order = slices.Insert(a.order, z, h)
	return true
}

// ZIndex returns the z position of h, or -1
func (a *Arena) ZIndex(h Handle) int { return a.indexOf(h) }

// SetOrder replaces the z-order. order must be a permutation of Handles.
func (a *Arena) SetOrder(order []Handle) bool {
	if len(order) != len(a.order) {
		return false
	}
	seen := make(map[Handle]bool, len(order))
	for _, h := range order {
		if _, ok := a.items[h]; !ok || seen[h] {
			return false
		}
		seen[h] = true
	}
	a.order = slices.Clone(order)
	return true
}

// Len returns the number of shapes
func (a *Arena) Len() int { return len(a.order) }

// Handles returns the handles back to front
func (a *Arena) Handles() []Handle { return slices.Clone(a.order) }

// Shapes returns the shapes back to front
func (a *Arena) Shapes() []Shape {
	out := make([]Shape, len(a.order))
	for i, h := range a.order {
		out[i] = a.items[h]
	}
	return out
}

// Clone deep-copies every shape; handles stay valid in the copy
func (a *Arena) Clone() *Arena {
	c := &Arena{
		next:  a.next,
		items: make(map[Handle]Shape, len(a.items)),
		order: slices.Clone(a.order),
	}
	for h, s := range a.items {
		c.items[h] = s.Clone()
	}
	return c
}

func (a *Arena) indexOf(h Handle) int {
	return slices.Index(a.order, h)
}

func (a *Arena) moveTo(h Handle, to int) bool {
	i := a.indexOf(h)
	if i < 0 {
		return false
	}
	to = max(0, min(to, len(a.order)-1))
	a.order = slices.Delete(a.order, i, i+1)
	a.order = slices.Insert(a.order, to, h)
	return true
}

// BringToFront moves h on top of every other shape
func (a *Arena) BringToFront(h Handle) bool { return a.moveTo(h, len(a.order)-1) }

// SendToBack moves h behind every other shape
func (a *Arena) SendToBack(h Handle) bool { return a.moveTo(h, 0) }

// BringForward moves h one step towards the front
func (a *Arena) BringForward(h Handle) bool { return a.moveTo(h, a.indexOf(h)+1) }

// SendBackward moves h one step towards the back
func (a *Arena) SendBackward(h Handle) bool {
	i := a.indexOf(h)
	if i < 0 {
		return false
	}
	return a.moveTo(h, i-1)
}

// HitTest returns the topmost visible shape whose selection rectangle
// contains p, given in the arena's frame.
func (a *Arena) HitTest(p geom.Point) (Handle, bool) {
	for i := len(a.order) - 1; i >= 0; i-- {
		h := a.order[i]
		s := a.items[h]
		b := s.Common()
		if !b.Visible {
			continue
		}
		if SelectionRect(s).Contains(b.ToLocal(p)) {
			return h, true
		}
	}
	return 0, false
}

// Bounds is the union of the scene rectangles of all shapes
func (a *Arena) Bounds() geom.Rect {
	r := geom.NewRect()
	for _, h := range a.order {
		r.ExpandRect(SceneRect(a.items[h]))
	}
	return r
}
