package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const iconFile = `Icon(coordinateSystem(extent={{-100,-100},{100,100}}),
  graphics={
    Rectangle(extent={{-50,-50},{50,50}}, fillPattern=FillPattern.Solid),
    Line(points={{-100,0},{-50,0}}),
    Line(points={{50,0},{100,0}})
  })`

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	formatOutput = ""
	editOutput, editInPlace = "", false
	renderOutput, renderTheme, renderGrid, renderVars = "", "", false, nil
	renderWidth, renderHeight = 800, 800
	grepPatterns = nil

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "settings.yaml")}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFormatE2E(t *testing.T) {
	layer := writeFile(t, t.TempDir(), "r.icon", iconFile)

	out, err := execute(t, "format", layer)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := `Icon(graphics={Rectangle(fillPattern=FillPattern.Solid,extent={{-50,-50},{50,50}}),Line(points={{-100,0},{-50,0}}),Line(points={{50,0},{100,0}})})` + "\n"
	if out != want {
		t.Errorf("Unexpected format output:\n got %s\nwant %s", out, want)
	}

	// formatting is stable
	again := writeFile(t, t.TempDir(), "again.icon", out)
	out2, err := execute(t, "format", again)
	if err != nil || out2 != out {
		t.Errorf("Second format differs: %v\n%s", err, out2)
	}
}

func TestInfoE2E(t *testing.T) {
	layer := writeFile(t, t.TempDir(), "r.icon", iconFile)

	out, err := execute(t, "info", layer)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"Icon layer", "Shapes: 3", "Line", "Rectangle", "2 x 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
		}
	}
}

func TestEditE2E(t *testing.T) {
	dir := t.TempDir()
	layer := writeFile(t, dir, "r.icon", iconFile)
	script := writeFile(t, dir, "edit.sexp", "(move 0 4 6)\n(delete 2)\n(rotate 1 90)\n(undo)\n")

	out, err := execute(t, "edit", layer, script)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "origin={4,6}") {
		t.Errorf("Move not applied:\n%s", out)
	}
	if strings.Contains(out, "rotation") {
		t.Errorf("Rotation should have been undone:\n%s", out)
	}
	if strings.Count(out, "Line(") != 1 {
		t.Errorf("Expected one line left:\n%s", out)
	}

	// in place
	if _, err := execute(t, "edit", "-i", layer, script); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, _ := os.ReadFile(layer)
	if string(data) != out {
		t.Errorf("In-place edit differs from stdout edit:\n%s", data)
	}
}

func TestEditFailingScriptE2E(t *testing.T) {
	dir := t.TempDir()
	layer := writeFile(t, dir, "r.icon", iconFile)
	script := writeFile(t, dir, "bad.sexp", "(move 0 1 1)\n(explode 0)\n")

	if _, err := execute(t, "edit", "-i", layer, script); err == nil {
		t.Fatal("Expected error but got none")
	}
	data, _ := os.ReadFile(layer)
	if string(data) != iconFile {
		t.Error("Layer file written despite failing script")
	}
}

func TestRenderE2E(t *testing.T) {
	dir := t.TempDir()
	layer := writeFile(t, dir, "r.icon", iconFile)
	png := filepath.Join(dir, "r.png")

	if _, err := execute(t, "render", layer, "-o", png, "--width", "64", "--height", "48", "--theme", "dark"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(png)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("Output is not a PNG")
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown theme", []string{"render", layer, "-o", png, "--theme", "neon"}},
		{"bad size", []string{"render", layer, "-o", png, "--width", "0"}},
		{"bad var", []string{"render", layer, "-o", png, "--var", "name"}},
		{"missing file", []string{"render", filepath.Join(dir, "nope.icon")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("Expected error but got none")
			}
		})
	}
}

func TestGrepE2E(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mo", "model A\n  annotation(Icon(graphics={Rectangle()}));\nend A;\n")
	writeFile(t, dir, "b.mo", "model B\nend B;\n")

	out, err := execute(t, "grep", "rectangle", dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "a.mo") || !strings.Contains(out, "Rectangle()") {
		t.Errorf("Expected a.mo match:\n%s", out)
	}
	if strings.Contains(out, "b.mo") {
		t.Errorf("Unexpected b.mo match:\n%s", out)
	}
}
