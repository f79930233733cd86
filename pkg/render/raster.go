package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/diagram"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// minFontPx is the smallest text the rasterizer draws
const minFontPx = 2.0

type fonts struct {
	regular, bold, italic, boldItalic *truetype.Font
}

var loadFonts = sync.OnceValues(func() (*fonts, error) {
	parse := func(name string, data []byte) (*truetype.Font, error) {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
		}
		return f, nil
	}
	var fs fonts
	var err error
	if fs.regular, err = parse("goregular", goregular.TTF); err != nil {
		return nil, err
	}
	if fs.bold, err = parse("gobold", gobold.TTF); err != nil {
		return nil, err
	}
	if fs.italic, err = parse("goitalic", goitalic.TTF); err != nil {
		return nil, err
	}
	if fs.boldItalic, err = parse("gobolditalic", gobolditalic.TTF); err != nil {
		return nil, err
	}
	return &fs, nil
})

func (fs *fonts) pick(bold, italic bool) *truetype.Font {
	switch {
	case bold && italic:
		return fs.boldItalic
	case bold:
		return fs.bold
	case italic:
		return fs.italic
	}
	return fs.regular
}

// Rasterize draws ops into a new width x height image
func Rasterize(ops []Op, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	for i := range ops {
		drawRaster(dc, fs, &ops[i])
	}
	return dc.Image(), nil
}

// RenderLayer fits the layer into a width x height image and rasterizes it
func RenderLayer(l *diagram.Layer, width, height int, opts Options) (image.Image, error) {
	cam := NewCamera(width, height)
	cam.Fit(l.Bounds())
	return Rasterize(Build(l, cam, opts), width, height)
}

// EncodePNG renders the layer and writes it to w as PNG
func EncodePNG(w io.Writer, l *diagram.Layer, width, height int, opts Options) error {
	img, err := RenderLayer(l, width, height, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

func tracePath(dc *gg.Context, p Path) {
	dc.NewSubPath()
	for i, pt := range p.Points {
		if i == 0 {
			dc.MoveTo(pt.X, pt.Y)
			continue
		}
		dc.LineTo(pt.X, pt.Y)
	}
	if p.Closed {
		dc.ClosePath()
	}
}

func drawRaster(dc *gg.Context, fs *fonts, o *Op) {
	switch o.Kind {
	case OpFill:
		if len(o.Path.Points) < 3 {
			return
		}
		tracePath(dc, o.Path)
		dc.SetColor(o.Color)
		dc.Fill()

	case OpStroke:
		if len(o.Path.Points) < 2 {
			return
		}
		dc.Push()
		if o.Clip != nil {
			tracePath(dc, *o.Clip)
			dc.Clip()
		}
		tracePath(dc, o.Path)
		dc.SetColor(o.Color)
		dc.SetLineWidth(o.Width)
		if len(o.Dash) > 0 {
			dc.SetDash(o.Dash...)
		}
		dc.Stroke()
		dc.Pop()

	case OpLinearGradient:
		g := gg.NewLinearGradient(o.From.X, o.From.Y, o.To.X, o.To.Y)
		for _, s := range o.Stops {
			g.AddColorStop(s.Offset, s.Color)
		}
		tracePath(dc, o.Path)
		dc.SetFillStyle(g)
		dc.Fill()

	case OpRadialGradient:
		g := gg.NewRadialGradient(o.From.X, o.From.Y, 0, o.From.X, o.From.Y, o.Radius)
		for _, s := range o.Stops {
			g.AddColorStop(s.Offset, s.Color)
		}
		tracePath(dc, o.Path)
		dc.SetFillStyle(g)
		dc.Fill()

	case OpText:
		drawText(dc, fs, o)

	case OpImage:
		dst, ok := dc.Image().(draw.Image)
		if !ok {
			return
		}
		m := f64.Aff3(o.ImageMatrix)
		draw.BiLinear.Transform(dst, m, o.Image, o.Image.Bounds(), draw.Over, nil)
	}
}

func drawText(dc *gg.Context, fs *fonts, o *Op) {
	t := o.Text
	size := t.Size
	f := fs.pick(t.Bold, t.Italic)

	face := func(size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	dc.SetFontFace(face(size))
	if t.Fit && t.Width > 0 {
		if w, _ := dc.MeasureString(t.Text); w > t.Width {
			size *= t.Width / w
			dc.SetFontFace(face(size))
		}
	}
	if size < minFontPx {
		return
	}

	ax := 0.5
	switch t.Align {
	case annotation.TextAlignmentLeft:
		ax = 0
	case annotation.TextAlignmentRight:
		ax = 1
	}

	dc.Push()
	dc.RotateAbout(t.Angle, t.Anchor.X, t.Anchor.Y)
	dc.SetColor(o.Color)
	dc.DrawStringAnchored(t.Text, t.Anchor.X, t.Anchor.Y, ax, 0.35)
	if t.Underline {
		w, _ := dc.MeasureString(t.Text)
		x := t.Anchor.X - ax*w
		y := t.Anchor.Y + size*0.45
		dc.SetLineWidth(math.Max(1, size/15))
		dc.DrawLine(x, y, x+w, y)
		dc.Stroke()
	}
	dc.Pop()
}

// ScreenRect converts a world rectangle to the pixel rectangle covering it
func ScreenRect(cam *Camera, r geom.Rect) image.Rectangle {
	s := cam.Matrix().ApplyRect(r)
	return image.Rect(
		int(math.Floor(s.Min.X)), int(math.Floor(s.Min.Y)),
		int(math.Ceil(s.Max.X)), int(math.Ceil(s.Max.Y)),
	)
}
