// Package render draws annotation layers: a camera mapping the Y-up
// Modelica frame to the Y-down screen, shared outline geometry for every
// shape variant, a gio op renderer for the interactive viewer and a
// raster backend for PNG export.
package render

import (
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Zoom limits in pixels per unit
const (
	MinZoom = 0.01
	MaxZoom = 1000.0
)

// Camera represents a viewport onto a layer
type Camera struct {
	// Center position in world coordinates
	Center geom.Point

	// Zoom level (pixels per unit)
	Zoom float64

	// Screen dimensions (pixels)
	ScreenWidth  int
	ScreenHeight int

	// View controls, applied about RotationCenter
	FlipView       bool    // mirror the X axis
	Rotation       float64 // degrees, counter-clockwise
	RotationCenter geom.Point
}

// NewCamera creates a camera centred on the world origin
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         2,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// view applies rotation and flip about the rotation center
func (c *Camera) view() geom.Matrix {
	m := geom.Translation(-c.RotationCenter.X, -c.RotationCenter.Y)
	if c.Rotation != 0 {
		m = m.Then(geom.Rotation(c.Rotation))
	}
	if c.FlipView {
		m = m.Then(geom.Scaling(-1, 1))
	}
	return m.Then(geom.Translation(c.RotationCenter.X, c.RotationCenter.Y))
}

// Matrix maps world coordinates to screen pixels. World Y grows upward,
// screen Y downward.
func (c *Camera) Matrix() geom.Matrix {
	return c.view().
		Then(geom.Translation(-c.Center.X, -c.Center.Y)).
		Then(geom.Scaling(c.Zoom, -c.Zoom)).
		Then(geom.Translation(float64(c.ScreenWidth)/2, float64(c.ScreenHeight)/2))
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(p geom.Point) geom.Point {
	return c.Matrix().Apply(p)
}

// ScreenToWorld converts screen pixels to a world position
func (c *Camera) ScreenToWorld(p geom.Point) geom.Point {
	inv, _ := c.Matrix().Invert()
	return inv.Apply(p)
}

// Pan moves the camera by screen pixel offsets
func (c *Camera) Pan(dx, dy float64) {
	before := c.ScreenToWorld(geom.Point{})
	after := c.ScreenToWorld(geom.Pt(dx, dy))
	c.Center = c.Center.Sub(after.Sub(before))
}

// ZoomAt zooms by factor keeping the world point under (sx, sy) fixed.
// factor > 1 zooms in.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	screen := geom.Pt(sx, sy)
	before := c.ScreenToWorld(screen)

	c.Zoom = max(MinZoom, min(c.Zoom*factor, MaxZoom))

	after := c.ScreenToWorld(screen)
	c.Center = c.Center.Add(before.Sub(after))
}

// Fit centres r and zooms so it fills 90% of the screen
func (c *Camera) Fit(r geom.Rect) {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return
	}
	c.Center = r.Center()
	c.RotationCenter = c.Center

	zoomX := float64(c.ScreenWidth) * 0.9 / w
	zoomY := float64(c.ScreenHeight) * 0.9 / h
	c.Zoom = max(MinZoom, min(zoomX, zoomY, MaxZoom))
}

// UpdateScreenSize updates the camera when the window is resized
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// Flip toggles the mirrored view
func (c *Camera) Flip() {
	c.FlipView = !c.FlipView
}

// Rotate rotates the view by degrees
func (c *Camera) Rotate(degrees float64) {
	c.Rotation = geom.NormalizeAngle(c.Rotation + degrees)
}

// VisibleBounds returns the world rectangle covered by the screen
func (c *Camera) VisibleBounds() geom.Rect {
	inv, _ := c.Matrix().Invert()
	return inv.ApplyRect(geom.RectFromPoints(
		geom.Point{},
		geom.Pt(float64(c.ScreenWidth), float64(c.ScreenHeight)),
	))
}
