package shape

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

func mustParse(t *testing.T, text string) Shape {
	t.Helper()
	s, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		`Line(points={{-100,0},{-40,20},{0,0}}, color={0,0,255}, pattern=LinePattern.Dash, thickness=0.5, arrow={Arrow.None,Arrow.Filled}, arrowSize=5, smooth=Smooth.Bezier)`,
		`Line(true, {10,0}, 45, {{0,0},{10,0}}, {255,0,0}, LinePattern.Dot, 1, {Arrow.Open,Arrow.None}, 3, Smooth.None)`,
		`Polygon(origin={2,3}, rotation=180, points={{0,0},{10,0},{5,8}}, lineColor={0,127,0}, fillColor={0,255,0}, fillPattern=FillPattern.Solid, lineThickness=0.75)`,
		`Rectangle(lineColor={0,0,255}, fillColor={255,255,255}, fillPattern=FillPattern.HorizontalCylinder, extent={{-100,100},{100,-100}}, radius=5, borderPattern=BorderPattern.Raised)`,
		`Ellipse(visible=false, extent={{-20,-20},{20,20}}, startAngle=30, endAngle=300, pattern=LinePattern.None)`,
		`Text(extent={{-150,140},{150,100}}, textString="%name \"R\"", fontSize=12, fontName="DejaVu Sans", textStyle={TextStyle.Bold,TextStyle.Italic}, textColor={0,0,255}, horizontalAlignment=TextAlignment.Left, lineThickness=2)`,
		`Bitmap(extent={{-50,-50},{50,50}}, fileName="")`,
	}

	for _, text := range tests {
		first := mustParse(t, text)
		out := first.Annotation()
		second := mustParse(t, out)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip of %q changed the model:\n first:  %+v\n second: %+v\n via %s", text, first, second, out)
		}
		if again := second.Annotation(); again != out {
			t.Errorf("serialization is not idempotent:\n %s\n %s", out, again)
		}
	}
}

func TestSerializeFormat(t *testing.T) {
	s := mustParse(t, `Rectangle(true, {0,0}, 0, {0,0,255}, {255,255,255}, LinePattern.Solid, FillPattern.Solid, 0.25, {{-10,-10},{10,10}}, 5, BorderPattern.None)`)
	want := `Rectangle(lineColor={0,0,255},fillColor={255,255,255},fillPattern=FillPattern.Solid,extent={{-10,-10},{10,10}},radius=5)`
	if got := s.Annotation(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	l := mustParse(t, `Line(true, {0,0}, 0, {{0,0},{10,0}}, {0,0,255}, LinePattern.Dash, 0.5, {Arrow.None,Arrow.Open}, 3, Smooth.None)`)
	want = `Line(points={{0,0},{10,0}},color={0,0,255},pattern=LinePattern.Dash,thickness=0.5,arrow={Arrow.None,Arrow.Open})`
	if got := l.Annotation(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	if got := New(KindLine, nil).Annotation(); got != "Line()" {
		t.Errorf("Expected Line(), got %s", got)
	}
}

func TestNewWithDefaults(t *testing.T) {
	d := GrammarDefaults()
	d.LineColor = annotation.Color{B: 255}
	d.LineThickness = 0.5

	s := New(KindRectangle, &d)
	want := `Rectangle(lineColor={0,0,255},lineThickness=0.5,extent={{0,0},{0,0}})`
	if got := s.Annotation(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if New(Kind(42), nil) != nil {
		t.Error("unknown kind must yield nil")
	}
}

func TestParseUnknownRecord(t *testing.T) {
	_, err := Parse(`Circle(radius=3)`)
	if !errors.Is(err, ErrUnknownShape) {
		t.Errorf("Expected ErrUnknownShape, got %v", err)
	}
}

func TestUnknownEnumKeepsLaterFields(t *testing.T) {
	s, err := Parse(`Rectangle(true,{0,0},0,{0,0,0},{255,0,0},LinePattern.Solid,FillPattern.Bogus,0.25,{{0,0},{10,10}},2,BorderPattern.Sunken)`)
	var unknown *annotation.UnknownEnumLiteral
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownEnumLiteral, got %v", err)
	}
	if s == nil {
		t.Fatal("shape must be returned")
	}

	r := s.(*Rectangle)
	if r.FillPattern != annotation.FillPatternNone {
		t.Errorf("Expected default fill pattern, got %v", r.FillPattern)
	}
	if r.Radius != 2 || r.BorderPattern != annotation.BorderPatternSunken {
		t.Errorf("later fields not parsed: radius=%v border=%v", r.Radius, r.BorderPattern)
	}
	if r.FillColor != (annotation.Color{R: 255}) {
		t.Errorf("earlier field lost: %v", r.FillColor)
	}
}

func TestPartialParse(t *testing.T) {
	s, err := Parse(`Bitmap(true, {4,5}, 0)`)
	var partial *annotation.PartialParse
	if !errors.As(err, &partial) {
		t.Fatalf("Expected PartialParse, got %v", err)
	}
	if partial.Got != 3 || partial.Want != 5 {
		t.Errorf("unexpected counts %+v", partial)
	}
	b := s.(*Bitmap)
	if b.Origin != geom.Pt(4, 5) {
		t.Errorf("parsed fields must be kept, origin=%v", b.Origin)
	}
	if len(b.Extents) != 2 || b.Extents[0] != (geom.Point{}) {
		t.Errorf("extent must keep its default, got %v", b.Extents)
	}

	// the optional imageSource may be missing
	if _, err := Parse(`Bitmap(true, {0,0}, 0, {{0,0},{1,1}}, "")`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMalformedKeepsParsedFields(t *testing.T) {
	s, err := Parse(`Ellipse(lineColor={255,0,0}, extent={{0,0},{10,10}}, startAngle={`)
	if err == nil {
		t.Fatal("expected error")
	}
	e := s.(*Ellipse)
	if e.LineColor != (annotation.Color{R: 255}) {
		t.Errorf("Expected red line colour, got %v", e.LineColor)
	}
	if e.StartAngle != 0 || e.EndAngle != DefaultEndAngle {
		t.Errorf("unparsed fields must keep defaults, got %v %v", e.StartAngle, e.EndAngle)
	}
}

func TestTextColorFallback(t *testing.T) {
	s := mustParse(t, `Text(extent={{0,0},{10,10}}, textString="a", lineColor={255,0,0})`)
	txt := s.(*Text)
	if txt.EffectiveTextColor() != (annotation.Color{R: 255}) {
		t.Errorf("text colour must fall back to line colour, got %v", txt.EffectiveTextColor())
	}
	if strings.Contains(txt.Annotation(), "textColor") {
		t.Errorf("unset textColor must not be serialized: %s", txt.Annotation())
	}

	s = mustParse(t, `Text(extent={{0,0},{10,10}}, textString="a", textColor={0,0,0})`)
	if !strings.Contains(s.Annotation(), "textColor={0,0,0}") {
		t.Errorf("explicit textColor must be serialized: %s", s.Annotation())
	}

	s = mustParse(t, `Text(extent={{0,0},{1,1}}, textStyle=TextStyle.UnderLine)`)
	if !s.(*Text).HasStyle(annotation.TextStyleUnderLine) {
		t.Error("single text style literal not accepted")
	}
}

func TestTextSubstitute(t *testing.T) {
	txt := New(KindText, nil).(*Text)
	txt.TextString = "%name is 100%% of %class"
	got := txt.Substitute(map[string]string{"name": "R1"})
	if got != "R1 is 100% of %class" {
		t.Errorf("unexpected substitution %q", got)
	}
}

func TestApplyRotation(t *testing.T) {
	s := New(KindRectangle, nil)
	ApplyRotation(s, 370)
	if s.Common().Rotation != 10 {
		t.Errorf("Expected 10, got %v", s.Common().Rotation)
	}

	s = New(KindRectangle, nil)
	ApplyRotation(s, -10)
	if s.Common().Rotation != 350 {
		t.Errorf("Expected 350, got %v", s.Common().Rotation)
	}

	RotateAntiClockwise(s)
	RotateClockwise(s)
	RotateClockwise(s)
	if s.Common().Rotation != 260 {
		t.Errorf("Expected 260, got %v", s.Common().Rotation)
	}
}

func TestDuplicate(t *testing.T) {
	s := mustParse(t, `Rectangle(origin={5,5}, lineColor={1,2,3}, extent={{0,0},{4,4}}, radius=1)`)
	d := Duplicate(s, geom.Pt(2, 2))

	if d.Common().Origin != geom.Pt(7, 7) {
		t.Fatalf("Expected origin (7,7), got %v", d.Common().Origin)
	}

	d.Common().Origin = s.Common().Origin
	if !reflect.DeepEqual(s, d) {
		t.Errorf("duplicate differs beyond origin:\n %+v\n %+v", s, d)
	}

	d.Common().Extents[0] = geom.Pt(-1, -1)
	if s.Common().Extents[0] != (geom.Point{}) {
		t.Error("duplicate shares extents with the original")
	}
}

func TestNudge(t *testing.T) {
	s := New(KindEllipse, nil)
	grid := geom.Pt(2, 2)
	n := DefaultNudge()

	Move(s, Right, ModNone, grid, n)
	Move(s, Up, ModShift, grid, n)
	if s.Common().Origin != geom.Pt(2, 20) {
		t.Errorf("Expected (2,20), got %v", s.Common().Origin)
	}

	Move(s, Left, ModCtrl, grid, n)
	if !s.Common().Origin.Eq(geom.Pt(1.8, 20)) {
		t.Errorf("Expected (1.8,20), got %v", s.Common().Origin)
	}
}

func TestManhattanize(t *testing.T) {
	s := mustParse(t, `Line(points={{0,0},{10,10}})`)
	if err := Manhattanize(s); err != nil {
		t.Fatal(err)
	}

	pts := s.Common().Points
	want := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	if !reflect.DeepEqual(pts, want) {
		t.Fatalf("Expected %v, got %v", want, pts)
	}
	for i, g := range Geometries(pts) {
		if g == Diagonal {
			t.Errorf("segment %d is still diagonal", i)
		}
	}

	p := mustParse(t, `Polygon(points={{0,0},{10,10},{0,10}})`)
	if err := Manhattanize(p); err != nil {
		t.Fatal(err)
	}
	want = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}
	if got := p.Common().Points; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// collinear and repeated points collapse
	l := mustParse(t, `Line(points={{0,0},{5,0},{5,0},{10,0},{10,5}})`)
	_ = Manhattanize(l)
	want = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}}
	if got := l.Common().Points; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if err := Manhattanize(New(KindRectangle, nil)); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Expected ErrNoPoints, got %v", err)
	}
}

func TestLineGeometry(t *testing.T) {
	tests := []struct {
		p1, p2   geom.Point
		kind     LineGeometryType
		straight bool
	}{
		{geom.Pt(0, 0), geom.Pt(10, 0), Horizontal, true},
		{geom.Pt(3, 0), geom.Pt(3, -7), Vertical, true},
		{geom.Pt(0, 0), geom.Pt(1, 1), Diagonal, false},
		{geom.Pt(2, 2), geom.Pt(2, 2), Horizontal, false},
	}
	for _, tt := range tests {
		if got := FindLineGeometryType(tt.p1, tt.p2); got != tt.kind {
			t.Errorf("FindLineGeometryType(%v,%v) = %v, want %v", tt.p1, tt.p2, got, tt.kind)
		}
		if got := IsLineStraight(tt.p1, tt.p2); got != tt.straight {
			t.Errorf("IsLineStraight(%v,%v) = %v, want %v", tt.p1, tt.p2, got, tt.straight)
		}
	}
}

func TestPointEditing(t *testing.T) {
	s := New(KindLine, nil)
	_ = AddPoint(s, geom.Pt(0, 0))
	_ = AddPoint(s, geom.Pt(0, 0))
	UpdateEndExtent(s, geom.Pt(5, 5))
	if !IsDrawing(s) {
		t.Error("Expected provisional end point")
	}
	_ = AddPoint(s, geom.Pt(5, 5))
	CommitPoints(s)

	want := []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}
	if got := s.Common().Points; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if IsDrawing(s) {
		t.Error("commit must end drawing")
	}

	if err := ReplaceExtent(s, 1, geom.Pt(9, 9)); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceExtent(s, 2, geom.Pt(9, 9)); !errors.Is(err, ErrIndex) {
		t.Errorf("Expected ErrIndex, got %v", err)
	}
	ClearPoints(s)
	if len(s.Common().Points) != 0 {
		t.Error("points not cleared")
	}

	r := New(KindRectangle, nil)
	if err := AddPoint(r, geom.Pt(1, 1)); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Expected ErrNoPoints, got %v", err)
	}
	UpdateEndExtent(r, geom.Pt(3, 4))
	if r.Common().Extents[1] != geom.Pt(3, 4) {
		t.Errorf("end extent not updated: %v", r.Common().Extents)
	}
}

func TestFlip(t *testing.T) {
	s := mustParse(t, `Line(origin={5,0}, rotation=30, points={{10,0},{20,5}})`)
	b := s.Common()
	before := b.Transform().Apply(b.Points[1])

	FlipHorizontal(s)
	after := b.Transform().Apply(b.Points[1])
	mirrored := geom.Pt(2*b.Origin.X-before.X, before.Y)
	if !after.Eq(mirrored) {
		t.Errorf("Expected %v, got %v", mirrored, after)
	}

	FlipHorizontal(s)
	if b.Rotation != 30 || b.Points[1] != geom.Pt(20, 5) {
		t.Errorf("flipping twice must restore the shape, got rotation %v points %v", b.Rotation, b.Points)
	}

	FlipVertical(s)
	after = b.Transform().Apply(b.Points[1])
	mirrored = geom.Pt(before.X, 2*b.Origin.Y-before.Y)
	if !after.Eq(mirrored) {
		t.Errorf("Expected %v, got %v", mirrored, after)
	}
}

func TestAdjustExtentsWithOrigin(t *testing.T) {
	s := mustParse(t, `Rectangle(rotation=90, extent={{10,10},{30,20}})`)
	before := SceneRect(s)

	AdjustExtentsWithOrigin(s)
	b := s.Common()
	if b.Extents[0] != geom.Pt(-10, -5) || b.Extents[1] != geom.Pt(10, 5) {
		t.Errorf("unexpected extents %v", b.Extents)
	}
	after := SceneRect(s)
	if !before.Min.Eq(after.Min) || !before.Max.Eq(after.Max) {
		t.Errorf("shape moved in the scene: %v -> %v", before, after)
	}

	l := mustParse(t, `Line(origin={1,1}, points={{0,0},{4,2}})`)
	AdjustPointsWithOrigin(l)
	if l.Common().Origin != geom.Pt(3, 2) || l.Common().Points[0] != geom.Pt(-2, -1) {
		t.Errorf("unexpected origin %v points %v", l.Common().Origin, l.Common().Points)
	}
}

func TestSelectionRect(t *testing.T) {
	s := mustParse(t, `Rectangle(extent={{0,0},{10,20}}, lineThickness=4)`)
	r := SelectionRect(s)
	if r.Min != geom.Pt(-2, -2) || r.Max != geom.Pt(12, 22) {
		t.Errorf("unexpected selection rect %v", r)
	}

	thin := mustParse(t, `Line(points={{0,0},{10,0}})`)
	r = SelectionRect(thin)
	if r.Min != geom.Pt(-1, -1) || r.Max != geom.Pt(11, 1) {
		t.Errorf("minimum padding not applied: %v", r)
	}
}

func TestBitmapFallback(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{ClassFileName: filepath.Join(dir, "Model.mo")}

	s, err := ParseWith(`Bitmap(extent={{0,0},{10,10}}, fileName="images/missing.png", imageSource="")`, opts)
	var missing *annotation.MissingFile
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingFile, got %v", err)
	}
	b := s.(*Bitmap)
	if b.Image != nil {
		t.Error("Expected empty image")
	}
	if b.FileName != "images/missing.png" {
		t.Errorf("fileName changed to %q", b.FileName)
	}
	if !strings.Contains(b.Annotation(), `fileName="images/missing.png"`) {
		t.Errorf("fileName not preserved: %s", b.Annotation())
	}
	if strings.Contains(b.Annotation(), "imageSource") {
		t.Errorf("empty imageSource serialized: %s", b.Annotation())
	}
}

func TestBitmapImageSource(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	src := base64.StdEncoding.EncodeToString(buf.Bytes())

	s, err := Parse(`Bitmap(extent={{0,0},{10,10}}, fileName="ignored.png", imageSource="` + src + `")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := s.(*Bitmap)
	if b.Image == nil || b.Image.Bounds().Dx() != 2 || b.Image.Bounds().Dy() != 3 {
		t.Fatalf("image not decoded: %v", b.Image)
	}

	s, err = Parse(`Bitmap(extent={{0,0},{10,10}}, imageSource="bm90IGFuIGltYWdl")`)
	var decode *annotation.ImageDecodeFailure
	if !errors.As(err, &decode) {
		t.Fatalf("Expected ImageDecodeFailure, got %v", err)
	}
	if s.(*Bitmap).Image != nil {
		t.Error("Expected empty image on decode failure")
	}
}

func TestFileResolver(t *testing.T) {
	r := FileResolver{}
	got, err := r.Resolve("icons/a.png", filepath.FromSlash("/lib/Pkg/Model.mo"))
	if err != nil || got != filepath.FromSlash("/lib/Pkg/icons/a.png") {
		t.Errorf("unexpected resolution %q %v", got, err)
	}

	if _, err := r.Resolve("modelica://Unknown/a.png", ""); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Expected ErrUnresolved, got %v", err)
	}
}

func TestUnparsedMembersKeptVerbatim(t *testing.T) {
	text := `Rectangle(extent={{0,0},{10,10}}, fillColor=DynamicSelect({0,0,0}, if on then {255,0,0} else {0,0,0}), foo=bar, fillPattern=FillPattern.Bogus)`
	s, err := Parse(text)
	if err == nil {
		t.Fatal("Expected recovered errors")
	}

	want := `Rectangle(extent={{0,0},{10,10}},fillColor=DynamicSelect({0,0,0}, if on then {255,0,0} else {0,0,0}),foo=bar)`
	if got := s.Annotation(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if got := s.Clone().Annotation(); got != want {
		t.Errorf("Clone lost kept members: %s", got)
	}

	again, _ := Parse(want)
	if got := again.Annotation(); got != want {
		t.Errorf("Not idempotent: %s", got)
	}

	// an edited field replaces the kept expression
	s.Common().FillColor = annotation.Color{R: 255}
	got := s.Annotation()
	if strings.Contains(got, "DynamicSelect") || !strings.Contains(got, "fillColor={255,0,0}") {
		t.Errorf("Expected edited fill colour, got %s", got)
	}
}
