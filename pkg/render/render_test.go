package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"gioui.org/layout"
	"gioui.org/op"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/component"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestCameraWorldToScreen(t *testing.T) {
	cam := NewCamera(200, 100)
	cam.Zoom = 2

	if got := cam.WorldToScreen(geom.Pt(0, 0)); !near(got, geom.Pt(100, 50)) {
		t.Errorf("Expected origin at screen centre, got %v", got)
	}
	// world Y grows upward
	if got := cam.WorldToScreen(geom.Pt(10, 10)); !near(got, geom.Pt(120, 30)) {
		t.Errorf("Expected (120,30), got %v", got)
	}

	cam.Rotate(90)
	cam.Flip()
	p := geom.Pt(7, -3)
	if got := cam.ScreenToWorld(cam.WorldToScreen(p)); !near(got, p) {
		t.Errorf("Round trip through rotated view gave %v", got)
	}
}

func TestCameraPanAndZoom(t *testing.T) {
	cam := NewCamera(200, 200)
	cam.Zoom = 2

	cam.Pan(10, 10)
	if !near(cam.Center, geom.Pt(-5, 5)) {
		t.Errorf("Expected centre (-5,5) after pan, got %v", cam.Center)
	}

	under := cam.ScreenToWorld(geom.Pt(30, 40))
	cam.ZoomAt(30, 40, 3)
	if cam.Zoom != 6 {
		t.Errorf("Expected zoom 6, got %v", cam.Zoom)
	}
	if got := cam.ScreenToWorld(geom.Pt(30, 40)); math.Abs(got.X-under.X) > 1e-9 || math.Abs(got.Y-under.Y) > 1e-9 {
		t.Errorf("Point under cursor moved from %v to %v", under, got)
	}

	cam.ZoomAt(0, 0, 1e9)
	if cam.Zoom != MaxZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", MaxZoom, cam.Zoom)
	}
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera(400, 200)
	cam.Fit(geom.RectFromPoints(geom.Pt(-100, -100), geom.Pt(100, 100)))

	if math.Abs(cam.Zoom-0.9) > 1e-9 {
		t.Errorf("Expected zoom 0.9, got %v", cam.Zoom)
	}
	b := cam.VisibleBounds()
	if !b.Contains(geom.Pt(-100, -100)) || !b.Contains(geom.Pt(100, 100)) {
		t.Errorf("Fitted rectangle not visible in %v", b)
	}
}

func mustLayer(t *testing.T, text string) *diagram.Layer {
	t.Helper()
	l, err := diagram.ParseLayer(text, nil)
	if err != nil {
		t.Fatalf("Failed to parse layer: %v", err)
	}
	return l
}

func unitCamera() *Camera {
	cam := NewCamera(200, 200)
	cam.Zoom = 1
	return cam
}

func TestBuildSolidRectangle(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={Rectangle(fillColor={255,0,0}, fillPattern=FillPattern.Solid, extent={{-50,-50},{50,50}})})`)
	ops := Build(l, unitCamera(), Options{})

	if len(ops) != 2 {
		t.Fatalf("Expected fill and stroke, got %d ops", len(ops))
	}
	if ops[0].Kind != OpFill || ops[0].Color != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Expected red fill first, got %+v", ops[0])
	}
	if ops[1].Kind != OpStroke || ops[1].Width != 1 || ops[1].Dash != nil {
		t.Errorf("Expected solid one pixel stroke, got %+v", ops[1])
	}
	if got := ops[0].Path.Points[0]; !near(got, geom.Pt(50, 150)) {
		t.Errorf("Expected bottom-left corner at (50,150), got %v", got)
	}
}

func TestBuildOptionsFrame(t *testing.T) {
	l := mustLayer(t, `Icon(coordinateSystem(grid={10,10}))`)
	ops := Build(l, unitCamera(), Options{Background: true, Extent: true, Grid: true, Theme: LookupTheme("dark")})

	if ops[0].Kind != OpFill || ops[0].Color != LookupTheme("dark").Background {
		t.Errorf("Expected background fill first, got %+v", ops[0])
	}
	// 21 vertical and 21 horizontal grid lines, then the border
	if len(ops) != 1+42+1 {
		t.Errorf("Expected 44 ops, got %d", len(ops))
	}
	if last := ops[len(ops)-1]; last.Kind != OpStroke || !last.Path.Closed {
		t.Errorf("Expected closed border last, got %+v", last)
	}
}

func TestBuildLineWithArrow(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={Line(points={{-50,0},{50,0}}, color={0,0,255}, pattern=LinePattern.Dash, thickness=2, arrow={Arrow.None,Arrow.Filled}, arrowSize=10)})`)
	ops := Build(l, unitCamera(), Options{})

	if len(ops) != 2 {
		t.Fatalf("Expected stroke and arrow head, got %d ops", len(ops))
	}
	if ops[0].Kind != OpStroke || ops[0].Width != 2 {
		t.Errorf("Expected 2px stroke, got %+v", ops[0])
	}
	if len(ops[0].Dash) != 2 || ops[0].Dash[0] != 8 {
		t.Errorf("Expected dash scaled by width, got %v", ops[0].Dash)
	}
	head := ops[1]
	if head.Kind != OpFill || !head.Path.Closed {
		t.Fatalf("Expected filled head, got %+v", head)
	}
	if !near(head.Path.Points[1], geom.Pt(150, 100)) {
		t.Errorf("Expected tip at line end, got %v", head.Path.Points[1])
	}
}

func TestBuildHatchAndGradient(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={
		Ellipse(fillPattern=FillPattern.Horizontal, pattern=LinePattern.None, extent={{-50,-50},{50,50}}),
		Rectangle(fillPattern=FillPattern.HorizontalCylinder, pattern=LinePattern.None, extent={{-50,-50},{50,50}}),
		Ellipse(fillPattern=FillPattern.Sphere, pattern=LinePattern.None, extent={{-50,-50},{50,50}})})`)
	ops := Build(l, unitCamera(), Options{})

	var hatch, linear, radial int
	for _, o := range ops {
		switch {
		case o.Kind == OpStroke && o.Clip != nil:
			hatch++
		case o.Kind == OpLinearGradient:
			linear++
			if len(o.Stops) != 3 {
				t.Errorf("Expected three cylinder stops, got %d", len(o.Stops))
			}
		case o.Kind == OpRadialGradient:
			radial++
			if math.Abs(o.Radius-50) > 1e-9 {
				t.Errorf("Expected sphere radius 50, got %v", o.Radius)
			}
		default:
			t.Errorf("Unexpected op %+v", o)
		}
	}
	if hatch == 0 || linear != 1 || radial != 1 {
		t.Errorf("Expected hatching and both gradients, got %d/%d/%d", hatch, linear, radial)
	}
}

func TestBuildComponentText(t *testing.T) {
	l := mustLayer(t, `Diagram(graphics={Text(extent={{-50,-10},{50,10}}, textString="%title", horizontalAlignment=TextAlignment.Left)})`)
	comp, err := diagram.NewComponent("R1", "Resistor",
		`Icon(graphics={Text(extent={{-100,-20},{100,20}}, textString="%name", textStyle={TextStyle.Bold})})`,
		`Placement(transformation(origin={0,50}, extent={{-10,-10},{10,10}}, rotation=90))`, nil)
	if err != nil {
		t.Fatalf("Failed to create component: %v", err)
	}
	l.Components = append(l.Components, comp)

	ops := Build(l, unitCamera(), Options{Vars: map[string]string{"title": "Circuit"}})
	if len(ops) != 2 {
		t.Fatalf("Expected two texts, got %d ops", len(ops))
	}

	own := ops[0].Text
	if own.Text != "Circuit" || own.Align != annotation.TextAlignmentLeft {
		t.Errorf("Unexpected layer text %+v", own)
	}
	if !near(own.Anchor, geom.Pt(50, 100)) {
		t.Errorf("Expected left anchor at (50,100), got %v", own.Anchor)
	}
	if !own.Fit || math.Abs(own.Size-15) > 1e-9 {
		t.Errorf("Expected auto size 15, got %v", own.Size)
	}

	placed := ops[1]
	if placed.Owner != comp || placed.Text.Text != "R1" || !placed.Text.Bold {
		t.Errorf("Unexpected component text %+v", placed.Text)
	}
	if math.Abs(placed.Text.Angle+math.Pi/2) > 1e-9 {
		t.Errorf("Expected text rotated a quarter turn, got %v", placed.Text.Angle)
	}
	if !near(placed.Text.Anchor, geom.Pt(100, 50)) {
		t.Errorf("Expected anchor at placement origin, got %v", placed.Text.Anchor)
	}
}

func TestImageMatrixFlipsRows(t *testing.T) {
	b := shape.New(shape.KindBitmap, nil).(*shape.Bitmap)
	b.Extents = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 20}}
	b.Image = image.NewRGBA(image.Rect(0, 0, 5, 5))

	ops := ShapeOps(b, geom.Identity(), nil)
	if len(ops) != 1 || ops[0].Kind != OpImage {
		t.Fatalf("Expected one image op, got %+v", ops)
	}
	m := ops[0].ImageMatrix
	if got := m.Apply(geom.Pt(0, 0)); !near(got, geom.Pt(0, 20)) {
		t.Errorf("Expected first row at the top edge, got %v", got)
	}
	if got := m.Apply(geom.Pt(5, 5)); !near(got, geom.Pt(10, 0)) {
		t.Errorf("Expected last row at the bottom edge, got %v", got)
	}

	b.Image = nil
	if ops := ShapeOps(b, geom.Identity(), nil); len(ops) != 0 {
		t.Errorf("Expected nothing for a missing image, got %d ops", len(ops))
	}
}

func TestSelectionOps(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={Rectangle(extent={{-50,-50},{50,50}})})`)
	ops := Build(l, unitCamera(), Options{
		Selected: func(component.SceneShape) bool { return true },
	})
	// stroke, selection frame, four handles
	if len(ops) != 6 {
		t.Fatalf("Expected 6 ops, got %d", len(ops))
	}
	if ops[1].Dash == nil {
		t.Error("Expected dashed selection frame")
	}
}

func TestOutlines(t *testing.T) {
	e := shape.New(shape.KindEllipse, nil).(*shape.Ellipse)
	e.Extents = []geom.Point{{X: -10, Y: -10}, {X: 10, Y: 10}}
	p, ok := Outline(e)
	if !ok || len(p.Points) != ellipseSteps || !p.Closed {
		t.Errorf("Expected %d point closed ellipse, got %d", ellipseSteps, len(p.Points))
	}

	e.StartAngle, e.EndAngle = 0, 90
	p, _ = Outline(e)
	if len(p.Points) != 20 || !near(p.Points[len(p.Points)-1], geom.Point{}) {
		t.Errorf("Expected arc closed through the centre, got %d points", len(p.Points))
	}

	l := shape.New(shape.KindLine, nil).(*shape.Line)
	l.Points = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}
	l.Smooth = annotation.SmoothBezier
	p, _ = Outline(l)
	if !near(p.Points[0], l.Points[0]) || !near(p.Points[len(p.Points)-1], l.Points[2]) {
		t.Error("Expected smoothing to keep the endpoints")
	}
	if len(p.Points) <= 3 {
		t.Errorf("Expected flattened curve, got %d points", len(p.Points))
	}

	r := shape.New(shape.KindRectangle, nil).(*shape.Rectangle)
	r.Extents = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 4}}
	r.Radius = 5
	p, _ = Outline(r)
	for _, pt := range p.Points {
		if pt.X < -1e-9 || pt.X > 10+1e-9 || pt.Y < -1e-9 || pt.Y > 4+1e-9 {
			t.Errorf("Rounded corner %v outside the extent", pt)
		}
	}
}

func TestDashed(t *testing.T) {
	p := Path{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	pieces := dashed(p, []float64{2, 2})
	if len(pieces) != 3 {
		t.Fatalf("Expected 3 dashes, got %d", len(pieces))
	}
	if !near(pieces[1].Points[0], geom.Pt(4, 0)) || !near(pieces[1].Points[1], geom.Pt(6, 0)) {
		t.Errorf("Unexpected second dash %v", pieces[1].Points)
	}
	if got := dashed(p, nil); len(got) != 1 {
		t.Errorf("Expected solid path unchanged, got %d pieces", len(got))
	}
}

func TestRasterize(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={Rectangle(fillColor={255,0,0}, fillPattern=FillPattern.Solid, extent={{-50,-50},{50,50}})})`)
	img, err := Rasterize(Build(l, unitCamera(), DefaultOptions()), 200, 200)
	if err != nil {
		t.Fatalf("Failed to rasterize: %v", err)
	}

	r, g, b, _ := img.At(100, 100).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("Expected red centre, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(20, 20).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("Expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}

	if _, err := Rasterize(nil, 0, 10); err == nil {
		t.Error("Expected error for empty image size")
	}
}

func TestEncodePNG(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={Text(extent={{-80,-20},{80,20}}, textString="OM", textStyle={TextStyle.Italic, TextStyle.UnderLine})})`)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, l, 64, 48, DefaultOptions()); err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Unexpected size %v", img.Bounds())
	}
}

func TestGioRendererRecordsOps(t *testing.T) {
	l := mustLayer(t, `Icon(graphics={
		Rectangle(fillPattern=FillPattern.VerticalCylinder, extent={{-50,-50},{50,50}}),
		Ellipse(fillPattern=FillPattern.Sphere, extent={{-20,-20},{20,20}}),
		Polygon(points={{0,0},{10,0},{10,10}}, fillPattern=FillPattern.Cross, pattern=LinePattern.DashDot),
		Text(extent={{-50,-10},{50,10}}, textString="label")})`)
	ops := Build(l, unitCamera(), DefaultOptions())

	gtx := layout.Context{Ops: new(op.Ops), Constraints: layout.Exact(image.Pt(200, 200))}
	NewGioRenderer().Draw(gtx, ops)
}

func TestThemes(t *testing.T) {
	if LookupTheme("nope").Name != "light" {
		t.Error("Expected fallback to the light theme")
	}
	if names := ThemeNames(); len(names) != 2 || names[1] != "dark" {
		t.Errorf("Unexpected themes %v", names)
	}
	if Lighter(color.NRGBA{A: 255}, 1) != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Error("Expected full lightening to white")
	}
}
