package ui

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/oligo/gioview/theme"

	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
	"github.com/OpenModelica/OMGraphics/pkg/render"
	"github.com/OpenModelica/OMGraphics/pkg/shape"
)

// tool is one toolbar icon button
type tool struct {
	icon  *widget.Icon
	click widget.Clickable
	desc  string
	run   func()
}

// view is the window side of the editor: widgets, input and drawing
type view struct {
	ed       *Editor
	gvTheme  *theme.Theme
	renderer *render.GioRenderer
	explorer *explorer.Explorer
	tools    []*tool
	openBtn  widget.Clickable
	opened   chan string // paths chosen in the file picker
}

func newView(ed *Editor) *view {
	v := &view{
		ed:       ed,
		gvTheme:  theme.NewTheme("", nil, false),
		renderer: render.NewGioRenderer(),
		opened:   make(chan string, 1),
	}
	if ed.window != nil {
		v.explorer = explorer.NewExplorer(ed.window)
	}
	v.applyPalette()

	add := func(data []byte, desc string, run func()) {
		icon, err := widget.NewIcon(data)
		if err != nil {
			ed.log.Debug("icon unavailable", "tool", desc, "error", err)
			return
		}
		v.tools = append(v.tools, &tool{icon: icon, desc: desc, run: run})
	}
	add(icons.ContentUndo, "Undo (Ctrl+Z)", ed.Undo)
	add(icons.ContentRedo, "Redo (Ctrl+Y)", ed.Redo)
	add(icons.ImageRotateLeft, "Rotate anticlockwise (R)", func() { ed.Rotate(90) })
	add(icons.ImageRotateRight, "Rotate clockwise (Shift+R)", func() { ed.Rotate(-90) })
	add(icons.ImageFlip, "Flip horizontal (H)", func() { ed.Flip(true) })
	add(icons.ContentContentCopy, "Duplicate (Ctrl+D)", ed.Duplicate)
	add(icons.ActionDelete, "Delete (Del)", ed.Delete)
	add(icons.ActionZoomIn, "Zoom in (+)", func() { v.zoomCentre(1.2) })
	add(icons.ActionZoomOut, "Zoom out (-)", func() { v.zoomCentre(1 / 1.2) })
	add(icons.ImagePalette, "Theme (T)", func() {
		ed.ToggleTheme()
		v.applyPalette()
	})
	return v
}

func (v *view) applyPalette() {
	t := v.ed.theme
	fg := color.NRGBA{R: 34, G: 37, B: 49, A: 255}
	bg2 := render.Darker(t.Background, 0.08)
	if t.Name == "dark" {
		fg = color.NRGBA{R: 233, G: 236, B: 245, A: 255}
		bg2 = render.Lighter(t.Background, 0.08)
	}
	v.gvTheme.WithPalette(theme.Palette{
		Bg:         t.Background,
		Fg:         fg,
		ContrastBg: t.Selection,
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Bg2:        bg2,
	})
}

func (v *view) zoomCentre(f float64) {
	c := v.ed.camera
	c.ZoomAt(float64(c.ScreenWidth)/2, float64(c.ScreenHeight)/2, f)
	v.ed.invalidate()
}

// Loop runs the window event loop until the window is closed
func (e *Editor) Loop() error {
	v := newView(e)
	var ops op.Ops
	for {
		switch ev := e.window.Event().(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			if v.explorer != nil {
				v.explorer.ListenEvents(ev)
			}
			v.layout(gtx)
			ev.Frame(gtx.Ops)
		default:
			if v.explorer != nil {
				v.explorer.ListenEvents(ev)
			}
		}
	}
}

func (v *view) layout(gtx layout.Context) layout.Dimensions {
	for _, t := range v.tools {
		if t.click.Clicked(gtx) {
			t.run()
		}
	}
	if v.openBtn.Clicked(gtx) {
		v.openFilePicker()
	}
	select {
	case path := <-v.opened:
		if err := v.ed.Open(path); err != nil {
			v.ed.log.Warn("open failed", "path", path, "error", err)
			v.ed.status = err.Error()
		}
	default:
	}

	paint.FillShape(gtx.Ops, v.gvTheme.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(v.layoutToolbar),
		layout.Flexed(1, v.layoutCanvas),
		layout.Rigid(v.layoutStatus),
	)
}

func (v *view) layoutToolbar(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(44)))
	paint.FillShape(gtx.Ops, v.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Button(v.gvTheme.Theme, &v.openBtn, "Open").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: 8}.Layout),
	}
	for _, t := range v.tools {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			btn := material.IconButton(v.gvTheme.Theme, &t.click, t.icon, t.desc)
			btn.Size = unit.Dp(20)
			btn.Inset = layout.UniformInset(unit.Dp(6))
			return btn.Layout(gtx)
		}))
		children = append(children, layout.Rigid(layout.Spacer{Width: 4}.Layout))
	}

	return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

func (v *view) layoutStatus(gtx layout.Context) layout.Dimensions {
	e := v.ed
	l := e.layer()
	sel := "nothing selected"
	if c := e.selectedComponent(); c != nil {
		sel = fmt.Sprintf("%s (%s)", c.Name, c.ClassName)
	} else if s := e.selectedShape(); s != nil {
		sel = s.Kind().String()
	}
	mark := ""
	if e.dirty {
		mark = " *"
	}
	info := fmt.Sprintf("%s%s | %d shapes, %d components | %s | zoom %.2f | %s",
		l.Kind, mark, l.Shapes.Len(), len(l.Components), sel, e.camera.Zoom, e.status)

	return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.Body2(v.gvTheme.Theme, info)
		lbl.Color = v.gvTheme.Palette.Fg
		return lbl.Layout(gtx)
	})
}

func (v *view) layoutCanvas(gtx layout.Context) layout.Dimensions {
	e := v.ed
	size := gtx.Constraints.Max
	e.camera.UpdateScreenSize(size.X, size.Y)
	if !e.fitted {
		e.Fit()
	}

	v.handleKeys(gtx)
	v.handlePointer(gtx)

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, e)

	ops := render.Build(e.layer(), e.camera, render.Options{
		Theme:      e.theme,
		Background: true,
		Extent:     true,
		Grid:       true,
		Selected:   e.isSelected,
	})
	ops = append(ops, v.componentFrame()...)
	v.renderer.Draw(gtx, ops)

	return layout.Dimensions{Size: size}
}

// componentFrame outlines the selected component and its corner handles
func (v *view) componentFrame() []render.Op {
	comp := v.ed.selectedComponent()
	if comp == nil {
		return nil
	}
	cam := v.ed.camera
	corners := comp.Placement.Transformation.Corners()
	frame := render.Path{Points: corners[:], Closed: true}.Transform(cam.Matrix())
	ops := []render.Op{{Kind: render.OpStroke, Path: frame, Color: v.ed.theme.Selection, Width: 1, Dash: []float64{4, 4}}}
	for _, p := range frame.Points {
		sq := geom.RectFromPoints(p.Sub(geom.Pt(handleRadius, handleRadius)), p.Add(geom.Pt(handleRadius, handleRadius))).Corners()
		ops = append(ops, render.Op{Kind: render.OpFill, Path: render.Path{Points: sq[:], Closed: true}, Color: v.ed.theme.Handle})
	}
	return ops
}

func (v *view) handlePointer(gtx layout.Context) {
	e := v.ed
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  e,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		sp := geom.Pt(float64(pe.Position.X), float64(pe.Position.Y))
		switch pe.Kind {
		case pointer.Press:
			gtx.Execute(key.FocusCmd{Tag: e})
			e.Press(sp, pe.Buttons == pointer.ButtonPrimary)
		case pointer.Drag:
			e.Drag(sp)
		case pointer.Release:
			e.Release()
		case pointer.Cancel:
			e.Cancel()
		case pointer.Scroll:
			e.Scroll(sp, float64(pe.Scroll.Y))
		}
	}
}

func (v *view) handleKeys(gtx layout.Context) {
	e := v.ed
	for {
		ev, ok := gtx.Event(
			key.FocusFilter{Target: e},
			key.Filter{Focus: e, Optional: key.ModShift | key.ModShortcut | key.ModCtrl},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		v.key(ke.Name, ke.Modifiers)
	}
}

func modifier(m key.Modifiers) shape.Modifier {
	switch {
	case m.Contain(key.ModShift):
		return shape.ModShift
	case m.Contain(key.ModCtrl), m.Contain(key.ModShortcut):
		return shape.ModCtrl
	}
	return shape.ModNone
}

// key dispatches one key press
func (v *view) key(name key.Name, mods key.Modifiers) {
	e := v.ed
	shortcut := mods.Contain(key.ModShortcut)
	switch {
	case shortcut && name == "Z" && mods.Contain(key.ModShift), shortcut && name == "Y":
		e.Redo()
	case shortcut && name == "Z":
		e.Undo()
	case shortcut && name == "D":
		e.Duplicate()
	case shortcut && name == "S":
		if err := e.Save(); err != nil {
			e.status = err.Error()
			e.invalidate()
		}
	case shortcut && name == "O":
		v.openFilePicker()
	case name == key.NameUpArrow:
		e.Nudge(shape.Up, modifier(mods))
	case name == key.NameDownArrow:
		e.Nudge(shape.Down, modifier(mods))
	case name == key.NameLeftArrow:
		e.Nudge(shape.Left, modifier(mods))
	case name == key.NameRightArrow:
		e.Nudge(shape.Right, modifier(mods))
	case name == "R" && mods.Contain(key.ModShift):
		e.Rotate(-90)
	case name == "R":
		e.Rotate(90)
	case name == "H":
		e.Flip(true)
	case name == "V":
		e.Flip(false)
	case name == "M":
		e.Manhattanize()
	case name == key.NamePageUp:
		e.Reorder((*diagram.Canvas).BringForward)
	case name == key.NamePageDown:
		e.Reorder((*diagram.Canvas).SendBackward)
	case name == key.NameHome:
		e.Reorder((*diagram.Canvas).BringToFront)
	case name == key.NameEnd:
		e.Reorder((*diagram.Canvas).SendToBack)
	case name == key.NameDeleteForward, name == key.NameDeleteBackward:
		e.Delete()
	case name == key.NameEscape:
		e.Cancel()
	case name == "F":
		e.Fit()
	case name == "T":
		e.ToggleTheme()
		v.applyPalette()
	case name == "+", name == "=":
		v.zoomCentre(1.2)
	case name == "-":
		v.zoomCentre(1 / 1.2)
	case name == "L":
		e.Insert(shape.KindLine)
	case name == "P":
		e.Insert(shape.KindPolygon)
	case name == "B":
		e.Insert(shape.KindRectangle)
	case name == "E":
		e.Insert(shape.KindEllipse)
	case name == "X":
		e.Insert(shape.KindText)
	}
}

func (v *view) openFilePicker() {
	if v.explorer == nil {
		return
	}
	go func() {
		file, err := v.explorer.ChooseFile("")
		if err != nil {
			if err != explorer.ErrUserDecline {
				v.ed.log.Warn("file picker", "error", err)
			}
			return
		}
		defer file.Close()

		f, ok := file.(*os.File)
		if !ok {
			return
		}
		v.opened <- f.Name()
		v.ed.invalidate()
	}()
}
