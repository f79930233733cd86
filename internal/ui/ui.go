// Package ui is the gio viewer and editor of a single Icon or Diagram
// layer. Shapes and components are selected with the pointer, moved by
// dragging, resized by their corner handles and edited from the keyboard or
// the toolbar; every edit goes through a diagram.Canvas so it can be undone.
package ui

import (
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/OpenModelica/OMGraphics/internal/config"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
)

// Options configures the viewer
type Options struct {
	Layer    *diagram.Layer
	Path     string // file the layer was read from, saved back with Ctrl+S
	Settings *config.Settings
	Logger   *slog.Logger
}

// Run opens the editor window and blocks until it closes
func Run(opts Options) error {
	if opts.Settings == nil {
		opts.Settings = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Layer == nil {
		opts.Layer = opts.Settings.NewLayer(diagram.DiagramLayer)
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title(title(opts.Layer, opts.Path)), app.Size(unit.Dp(1200), unit.Dp(800)))
		ed := NewEditor(w, opts)
		if err := ed.Loop(); err != nil {
			opts.Logger.Error("ui", "error", err)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}

func title(l *diagram.Layer, path string) string {
	t := "OMGraphics - " + l.Kind.String()
	if path != "" {
		t += " - " + path
	}
	return t
}
