package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

func newCanvas(t *testing.T) *diagram.Canvas {
	t.Helper()
	l, err := diagram.ParseLayer(`Diagram(graphics={Rectangle(extent={{0,0},{10,10}})})`, nil)
	if err != nil {
		t.Fatalf("Failed to parse layer: %v", err)
	}
	comp, err := diagram.NewComponent("R1", "Resistor",
		`Icon(graphics={Rectangle(extent={{-70,30},{70,-30}})})`,
		`Placement(transformation(origin={-20,10}, extent={{-10,-10},{10,10}}))`, nil)
	if err != nil {
		t.Fatalf("Failed to create component: %v", err)
	}
	c := diagram.NewCanvas(l, diagram.DefaultOptions())
	c.AddComponent(comp)
	return c
}

func TestRunScript(t *testing.T) {
	c := newCanvas(t)
	r := New(c, nil)

	n, err := r.RunString(`
		(resize 0 2 20 30)
		(move 0 5 5)
		(rotate R1 90)
		(nudge R1 up)
		(undo)`)
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 commands, got %d", n)
	}

	l := c.Layer()
	s, _ := l.Shapes.Get(l.Shapes.Handles()[0])
	b := s.Common()
	if len(b.Extents) != 2 || b.Extents[1] != geom.Pt(20, 30) {
		t.Errorf("Expected resized extent, got %v", b.Extents)
	}
	if b.Origin != geom.Pt(5, 5) {
		t.Errorf("Expected origin (5,5), got %v", b.Origin)
	}

	tr := l.Component("R1").Placement.Transformation
	if tr.Rotation != 90 {
		t.Errorf("Expected rotation 90, got %v", tr.Rotation)
	}
	if tr.Origin != geom.Pt(-20, 10) {
		t.Errorf("Expected nudge undone, got origin %v", tr.Origin)
	}
}

func TestNewShapeAndGrid(t *testing.T) {
	c := newCanvas(t)
	if _, err := New(c, nil).RunString(`(new Ellipse) (grid 5 5)`); err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if got := c.Layer().Shapes.Len(); got != 2 {
		t.Errorf("Expected 2 shapes, got %d", got)
	}
	if got := c.Layer().Coords.Grid; got != geom.Pt(5, 5) {
		t.Errorf("Expected grid (5,5), got %v", got)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ran  int
		want error
	}{
		{"unknown command", `(move 0 1 1) (spin 0)`, 1, ErrUnknownCommand},
		{"missing component", `(move R9 1 1)`, 0, ErrNoTarget},
		{"shape out of range", `(rotate 3 90)`, 0, ErrNoTarget},
		{"bad number", `(move 0 x 1)`, 0, ErrArgs},
		{"bad flip axis", `(flip R1 z)`, 0, ErrArgs},
		{"reorder component", `(front R1)`, 0, ErrArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(newCanvas(t), nil).RunString(tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			var ce *CommandError
			if !errors.As(err, &ce) || ce.Index != tt.ran {
				t.Errorf("Expected failure at command %d, got %v", tt.ran, err)
			}
			if n != tt.ran {
				t.Errorf("Expected %d commands run, got %d", tt.ran, n)
			}
		})
	}
}

func TestRunReader(t *testing.T) {
	c := newCanvas(t)
	before := c.Layer().Annotation()
	if _, err := New(c, nil).Run(strings.NewReader("(flip 0 h)\n(undo)\n")); err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if got := c.Layer().Annotation(); got != before {
		t.Errorf("Expected annotation restored, got %s", got)
	}
	if !c.CanRedo() {
		t.Error("Expected the flip to be redoable")
	}
}
