package annotation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

func TestGetStringsNestedBraces(t *testing.T) {
	fields, err := GetStrings(`extent={{0,0},{10,10}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d: %q", len(fields), fields)
	}

	name, value, ok := SplitNamed(fields[0])
	if !ok || name != "extent" {
		t.Fatalf("expected named field extent, got %q %v", name, ok)
	}

	points, err := GetStrings(RemoveFirstLastCurlBrackets(value))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"{0,0}", "{10,10}"}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("expected %q, got %q", want, points)
	}
}

func TestGetStringsQuotedCommas(t *testing.T) {
	fields, err := GetStrings(`true, {0,0}, "a, \"b\" {c}", LinePattern.Dash`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"true", "{0,0}", `"a, \"b\" {c}"`, "LinePattern.Dash"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("expected %q, got %q", want, fields)
	}

	s, err := ParseString(fields[2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != `a, "b" {c}` {
		t.Errorf("unexpected unescaped string %q", s)
	}
}

func TestGetStringsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unbalanced brace", `1, 2, {3, 4`, []string{"1", "2"}},
		{"unterminated string", `true, "abc`, []string{"true"}},
		{"stray close", `1, }`, []string{"1"}},
		{"mismatched", `{1)`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := GetStrings(tt.input)
			var gerr *GrammarError
			if !errors.As(err, &gerr) {
				t.Fatalf("expected GrammarError, got %v", err)
			}
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, fields)
			}
			for i := range tt.want {
				if fields[i] != tt.want[i] {
					t.Errorf("field %d: expected %q, got %q", i, tt.want[i], fields[i])
				}
			}
		})
	}
}

func TestRemoveFirstLastCurlBrackets(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{{0,0},{1,1}}", "{0,0},{1,1}"},
		{" {1,2} ", "1,2"},
		{"{1,2},{3,4}", "{1,2},{3,4}"},
		{"{}", ""},
		{"abc", "abc"},
		{`{"}"}`, `"}"`},
	}

	for _, tt := range tests {
		if got := RemoveFirstLastCurlBrackets(tt.in); got != tt.want {
			t.Errorf("RemoveFirstLastCurlBrackets(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitCall(t *testing.T) {
	name, args, err := SplitCall(`Bitmap(true, {0,0}, 0, {{-10,-10},{10,10}}, "a.png", "")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Bitmap" {
		t.Errorf("expected Bitmap, got %q", name)
	}
	if args != `true, {0,0}, 0, {{-10,-10},{10,10}}, "a.png", ""` {
		t.Errorf("unexpected args %q", args)
	}

	if _, _, err := SplitCall("Line{1}"); err == nil {
		t.Error("expected error for missing parentheses")
	}
}

func TestSplitNamed(t *testing.T) {
	name, value, ok := SplitNamed(`fileName = "x=y.png"`)
	if !ok || name != "fileName" || value != `"x=y.png"` {
		t.Errorf("unexpected split %q %q %v", name, value, ok)
	}

	if _, _, ok := SplitNamed(`"a=b"`); ok {
		t.Error("quoted positional string must not be named")
	}
	if _, _, ok := SplitNamed(`LinePattern.Dash`); ok {
		t.Error("enum literal must not be named")
	}
}

func TestLiterals(t *testing.T) {
	p, err := ParsePoint("{ -1.5 , 2e1 }")
	if err != nil || p != geom.Pt(-1.5, 20) {
		t.Errorf("ParsePoint gave %v, %v", p, err)
	}

	pts, err := ParsePoints("{{0,0},{bad},{10,10}}")
	if err == nil {
		t.Error("expected error for bad point")
	}
	if len(pts) != 2 {
		t.Errorf("expected 2 valid points, got %d", len(pts))
	}

	c, err := ParseColor("{300, 127.6, -4}")
	if err != nil || c != (Color{R: 255, G: 128, B: 0}) {
		t.Errorf("ParseColor gave %v, %v", c, err)
	}

	if got := FormatReal(math.Copysign(0, -1)); got != "0" {
		t.Errorf("FormatReal(-0) = %q", got)
	}
	a, b := 0.1, 0.2
	if got := FormatReal(a + b); got != "0.30000000000000004" {
		t.Errorf("FormatReal must be exact, got %q", got)
	}
	if got := FormatPoints([]geom.Point{{X: 1, Y: 2}, {X: 3.5, Y: -4}}); got != "{{1,2},{3.5,-4}}" {
		t.Errorf("FormatPoints = %q", got)
	}

	quoted := FormatString("say \"hi\"\\\n")
	back, err := ParseString(quoted)
	if err != nil || back != "say \"hi\"\\\n" {
		t.Errorf("string round trip failed: %q -> %q (%v)", quoted, back, err)
	}
}

func TestEnums(t *testing.T) {
	fp, err := ParseFillPattern("FillPattern.HorizontalCylinder")
	if err != nil || fp != FillPatternHorizontalCylinder {
		t.Errorf("unexpected %v %v", fp, err)
	}

	lp, err := ParseLinePattern("Dash")
	if err != nil || lp != LinePatternDash {
		t.Errorf("unexpected %v %v", lp, err)
	}
	if lp.String() != "LinePattern.Dash" {
		t.Errorf("unexpected String %q", lp.String())
	}

	_, err = ParseFillPattern("Bogus")
	var unknown *UnknownEnumLiteral
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownEnumLiteral, got %v", err)
	}
	if unknown.Enum != "FillPattern" || unknown.Literal != "Bogus" {
		t.Errorf("unexpected error detail %+v", unknown)
	}
}
