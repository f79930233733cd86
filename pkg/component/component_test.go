package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/modelica"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

func assertPoint(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x of %v", got)
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y of %v", got)
}

func TestPlacementRoundTrip(t *testing.T) {
	text := `Placement(visible = false, transformation(origin = {-40, 20}, extent = {{-10, -10}, {10, 10}}, rotation = 90), iconTransformation(extent = {{-110, -10}, {-90, 10}}))`
	p, err := ParsePlacement(text)
	require.NoError(t, err)

	assert.False(t, p.Visible)
	assert.Equal(t, geom.Pt(-40, 20), p.Transformation.Origin)
	assert.Equal(t, 90.0, p.Transformation.Rotation)
	require.NotNil(t, p.IconTransformation)
	assert.Equal(t, geom.Pt(-110, -10), p.IconTransformation.Extent[0])

	out := p.Annotation()
	assert.Equal(t, `Placement(visible=false,transformation(origin={-40,20},extent={{-10,-10},{10,10}},rotation=90),iconTransformation(extent={{-110,-10},{-90,10}}))`, out)

	again, err := ParsePlacement(out)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestParsePlacementErrors(t *testing.T) {
	_, err := ParsePlacement(`Rectangle(extent={{0,0},{1,1}})`)
	assert.ErrorIs(t, err, ErrNotPlacement)

	p, err := ParsePlacement(`Placement(transformation(origin={1,2}, extent={{0,0}}))`)
	assert.Error(t, err)
	assert.Equal(t, geom.Pt(1, 2), p.Transformation.Origin)
	assert.Equal(t, DefaultTransformation().Extent, p.Transformation.Extent)
}

func TestCoordinateSystem(t *testing.T) {
	call, err := modelica.ParseCall(`coordinateSystem(extent={{-50,-50},{50,50}}, preserveAspectRatio=false, grid={1,1})`)
	require.NoError(t, err)

	cs, err := ParseCoordinateSystem(call)
	require.NoError(t, err)
	assert.Equal(t, [2]geom.Point{{X: -50, Y: -50}, {X: 50, Y: 50}}, cs.Extent)
	assert.False(t, cs.PreserveAspectRatio)
	assert.Equal(t, 0.1, cs.InitialScale)
	assert.Equal(t, geom.Pt(1, 1), cs.GridStep())

	assert.Equal(t, `coordinateSystem(extent={{-50,-50},{50,50}},preserveAspectRatio=false,grid={1,1})`, cs.Annotation())
	assert.Equal(t, "", DefaultCoordinateSystem().Annotation())
	assert.Equal(t, geom.Pt(4, -6), DefaultCoordinateSystem().Snap(geom.Pt(3.2, -5.1)))
}

func TestScaleAndMatrix(t *testing.T) {
	c := New("r1", "Modelica.Electrical.Analog.Basic.Resistor")
	c.Placement.Transformation = Transformation{
		Origin: geom.Pt(50, 0),
		Extent: [2]geom.Point{{X: -10, Y: -5}, {X: 10, Y: 5}},
	}

	sx, sy := c.Scale()
	assert.Equal(t, 0.1, sx)
	assert.Equal(t, 0.05, sy)

	m := c.Matrix()
	assertPoint(t, geom.Pt(60, 5), m.Apply(geom.Pt(100, 100)))
	assertPoint(t, geom.Pt(40, -5), m.Apply(geom.Pt(-100, -100)))

	c.RotateAntiClockwise()
	m = c.Matrix()
	assertPoint(t, geom.Pt(45, 10), m.Apply(geom.Pt(100, 100)))
}

func TestRotationNormalized(t *testing.T) {
	c := New("a", "A")
	c.ApplyRotation(370)
	assert.Equal(t, 10.0, c.Placement.Transformation.Rotation)
	c.ApplyRotation(-20)
	assert.Equal(t, 350.0, c.Placement.Transformation.Rotation)
	c.RotateClockwise()
	assert.Equal(t, 260.0, c.Placement.Transformation.Rotation)
}

func TestFlip(t *testing.T) {
	c := New("a", "A")
	c.Placement.Transformation = Transformation{
		Origin:   geom.Pt(10, 20),
		Extent:   [2]geom.Point{{X: -10, Y: -4}, {X: 30, Y: 4}},
		Rotation: 30,
	}
	before := c.Placement.Transformation
	q := geom.Pt(70, -20)
	p0 := c.Matrix().Apply(q)

	c.FlipHorizontal()
	assert.True(t, c.Placement.Transformation.FlippedHorizontal())
	sx, _ := c.Scale()
	assert.Less(t, sx, 0.0)

	// the scene image is mirrored across the vertical axis through the origin
	p1 := c.Matrix().Apply(q)
	assertPoint(t, geom.Pt(2*10-p0.X, p0.Y), p1)

	c.FlipHorizontal()
	assert.Equal(t, before, c.Placement.Transformation)

	c.FlipVertical()
	assert.True(t, c.Placement.Transformation.FlippedVertical())
	p2 := c.Matrix().Apply(q)
	assertPoint(t, geom.Pt(p0.X, 2*20-p0.Y), p2)
}

func TestResize(t *testing.T) {
	c := New("a", "A")
	c.Placement.Transformation.Origin = geom.Pt(100, 100)

	require.NoError(t, c.PrepareResize(shape.TopRight, 1))
	assert.ErrorIs(t, c.PrepareResize(shape.BottomLeft, 1), ErrResizeActive)

	c.Resize(geom.Pt(130, 120))
	assert.Equal(t, [2]geom.Point{{X: -10, Y: -10}, {X: 30, Y: 20}}, c.Placement.Transformation.Extent)
	sx, sy := c.Scale()
	assert.InDelta(t, 0.2, sx, 1e-12)
	assert.InDelta(t, 0.15, sy, 1e-12)

	assert.True(t, c.FinishResize())
	assert.False(t, c.Resizing())

	// opposite corner stays fixed under rotation too
	c.ApplyRotation(90)
	fixed := c.Placement.Transformation.Corners()[shape.TopRight]
	require.NoError(t, c.PrepareResize(shape.BottomLeft, 1))
	c.Resize(geom.Pt(50, 50))
	assertPoint(t, fixed, c.Placement.Transformation.Corners()[shape.TopRight])

	c.CancelResize()
	assert.Equal(t, [2]geom.Point{{X: -10, Y: -10}, {X: 30, Y: 20}}, c.Placement.Transformation.Extent)

	assert.ErrorIs(t, c.PrepareResize(7, 1), ErrNoHandle)
}

func TestResizeClampsToMinimum(t *testing.T) {
	c := New("a", "A")
	require.NoError(t, c.PrepareResize(shape.BottomRight, 2))
	c.Resize(geom.Pt(-100, 100))
	assert.Equal(t, [2]geom.Point{{X: -10, Y: 8}, {X: -8, Y: 10}}, c.Placement.Transformation.Extent)
	c.FinishResize()
}

func TestTreeCycle(t *testing.T) {
	root := New("root", "A")
	child := New("child", "B")
	grandchild := New("gc", "C")

	require.NoError(t, root.AddChild(child))
	require.NoError(t, child.AddChild(grandchild))

	assert.ErrorIs(t, grandchild.AddChild(root), ErrCycle)
	assert.ErrorIs(t, child.AddChild(child), ErrCycle)
	assert.ErrorIs(t, root.AddChild(grandchild), ErrHasParent)

	var names []string
	root.Walk(func(c *Component) bool {
		names = append(names, c.Name)
		return true
	})
	assert.Equal(t, []string{"root", "child", "gc"}, names)

	assert.True(t, child.RemoveChild(grandchild))
	assert.Nil(t, grandchild.Parent())
	assert.NoError(t, root.AddChild(grandchild))
}

func TestSceneShapes(t *testing.T) {
	root := New("r", "A")
	rect, err := shape.Parse(`Rectangle(extent={{-100,-100},{100,100}})`)
	require.NoError(t, err)
	root.Shapes.Add(rect)

	base := New("", "Base")
	base.Inherited = true
	line, err := shape.Parse(`Line(points={{0,0},{100,0}})`)
	require.NoError(t, err)
	base.Shapes.Add(line)
	require.NoError(t, root.AddChild(base))

	hidden, err := shape.Parse(`Ellipse(visible=false, extent={{0,0},{1,1}})`)
	require.NoError(t, err)
	root.Shapes.Add(hidden)

	scene := root.SceneShapes()
	require.Len(t, scene, 2)
	assert.Equal(t, shape.KindLine, scene[0].Shape.Kind())
	assert.Equal(t, shape.KindRectangle, scene[1].Shape.Kind())

	// inherited shapes share the component's frame
	assertPoint(t, geom.Pt(10, 0), scene[0].Matrix.Apply(geom.Pt(100, 0)))
	assertPoint(t, geom.Pt(10, 10), scene[1].Matrix.Apply(geom.Pt(100, 100)))
}

func TestDuplicate(t *testing.T) {
	c := New("a", "A")
	c.Placement.Transformation.Origin = geom.Pt(5, 5)
	s, err := shape.Parse(`Rectangle(extent={{0,0},{10,10}})`)
	require.NoError(t, err)
	h := c.Shapes.Add(s)
	require.NoError(t, c.AddChild(New("sub", "B")))

	d := c.Duplicate(geom.Pt(2, 2))
	assert.Equal(t, geom.Pt(7, 7), d.Placement.Transformation.Origin)
	assert.NotEqual(t, c.ID, d.ID)
	assert.Nil(t, d.Parent())
	require.Len(t, d.Children(), 1)
	assert.Same(t, d, d.Children()[0].Parent())
	assert.NotEqual(t, c.Children()[0].ID, d.Children()[0].ID)

	ds, ok := d.Shapes.Get(h)
	require.True(t, ok)
	shape.MoveBy(ds, geom.Pt(1, 1))
	assert.Equal(t, geom.Point{}, s.Common().Origin)

	clone := c.Clone()
	assert.Equal(t, c.ID, clone.ID)
}
