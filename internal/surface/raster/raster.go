// Package raster renders host drawing calls into an in-memory RGBA image
// using the gonum vg image canvas, and encodes the result as PNG.
package raster

import (
	"image"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
)

// Canvas implements host.Surface on top of a vgimg canvas at 72 DPI, so one
// vg point is one pixel. Program coordinates are y-down; the vg canvas is
// y-up, so every y is flipped on the way in.
type Canvas struct {
	c          *vgimg.Canvas
	width      float64
	height     float64
	background color.RGBA
	color      color.RGBA
	fill       bool
	face       font.Face
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithColor sets the initial drawing color.
func WithColor(c color.RGBA) Option {
	return func(cv *Canvas) { cv.color = c }
}

// WithFill sets the initial fill mode.
func WithFill(fill bool) Option {
	return func(cv *Canvas) { cv.fill = fill }
}

// WithFontSize sets the text size in pixels.
func WithFontSize(size float64) Option {
	return func(cv *Canvas) { cv.face = font.DefaultCache.Lookup(plot.DefaultFont, vg.Length(size)) }
}

// New creates a width x height canvas cleared to background. The initial
// drawing color is black with outline mode, a line width of 1 and 16 pixel
// text unless options say otherwise.
func New(width, height int, background color.RGBA, opts ...Option) *Canvas {
	cv := &Canvas{
		c: vgimg.NewWith(
			vgimg.UseWH(vg.Length(width), vg.Length(height)),
			vgimg.UseDPI(72),
			vgimg.UseBackgroundColor(background),
		),
		width:      float64(width),
		height:     float64(height),
		background: background,
		color:      color.RGBA{A: 0xff},
		face:       font.DefaultCache.Lookup(plot.DefaultFont, 16),
	}
	for _, opt := range opts {
		opt(cv)
	}
	cv.c.SetColor(cv.color)
	return cv
}

// Image returns the rendered image.
func (cv *Canvas) Image() image.Image {
	return cv.c.Image()
}

// WritePNG encodes the current image as PNG.
func (cv *Canvas) WritePNG(w io.Writer) error {
	_, err := vgimg.PngCanvas{Canvas: cv.c}.WriteTo(w)
	return err
}

func (cv *Canvas) pt(x, y float64) vg.Point {
	return vg.Point{X: vg.Length(x), Y: vg.Length(cv.height - y)}
}

// paint fills the path in fill mode and always strokes its outline.
func (cv *Canvas) paint(p vg.Path) {
	if cv.fill {
		cv.c.Fill(p)
	}
	cv.c.Stroke(p)
}

// ---------------------------------------------------------------------------
// host.Surface
// ---------------------------------------------------------------------------

func (cv *Canvas) SetColor(c color.RGBA) {
	cv.color = c
	cv.c.SetColor(c)
}

func (cv *Canvas) SetFill(fill bool) { cv.fill = fill }

func (cv *Canvas) SetLineWidth(w float64) {
	if !host.Finite(w) || w < 0 {
		return
	}
	cv.c.SetLineWidth(vg.Length(w))
}

func (cv *Canvas) Clear() {
	var p vg.Path
	p.Move(vg.Point{})
	p.Line(vg.Point{X: vg.Length(cv.width)})
	p.Line(vg.Point{X: vg.Length(cv.width), Y: vg.Length(cv.height)})
	p.Line(vg.Point{Y: vg.Length(cv.height)})
	p.Close()
	cv.c.SetColor(cv.background)
	cv.c.Fill(p)
	cv.c.SetColor(cv.color)
}

func (cv *Canvas) Circle(x, y, r float64) {
	if !host.Finite(x, y, r) || r < 0 {
		return
	}
	var p vg.Path
	p.Arc(cv.pt(x, y), vg.Length(r), 0, 2*math.Pi)
	p.Close()
	cv.paint(p)
}

func (cv *Canvas) Rect(x, y, w, h float64) {
	if !host.Finite(x, y, w, h) {
		return
	}
	var p vg.Path
	p.Move(cv.pt(x, y))
	p.Line(cv.pt(x+w, y))
	p.Line(cv.pt(x+w, y+h))
	p.Line(cv.pt(x, y+h))
	p.Close()
	cv.paint(p)
}

func (cv *Canvas) Line(x1, y1, x2, y2 float64) {
	if !host.Finite(x1, y1, x2, y2) {
		return
	}
	var p vg.Path
	p.Move(cv.pt(x1, y1))
	p.Line(cv.pt(x2, y2))
	cv.c.Stroke(p)
}

func (cv *Canvas) Text(x, y float64, text string) {
	if !host.Finite(x, y) || text == "" {
		return
	}
	cv.c.FillString(cv.face, cv.pt(x, y), text)
}

func (cv *Canvas) Polygon(sides int, cx, cy, r float64) {
	if !host.Finite(cx, cy, r) {
		return
	}
	var p vg.Path
	for i, v := range host.PolygonPoints(sides, cx, cy, r) {
		if i == 0 {
			p.Move(cv.pt(v.X, v.Y))
			continue
		}
		p.Line(cv.pt(v.X, v.Y))
	}
	p.Close()
	cv.paint(p)
}

// Arc sweeps clockwise on screen from startDeg to endDeg. With the y axis
// flipped that is a negative sweep in vg angles.
func (cv *Canvas) Arc(x, y, r, startDeg, endDeg float64) {
	if !host.Finite(x, y, r, startDeg, endDeg) || r < 0 {
		return
	}
	start := -startDeg * math.Pi / 180
	sweep := -host.ArcSweep(startDeg, endDeg) * math.Pi / 180
	var p vg.Path
	p.Arc(cv.pt(x, y), vg.Length(r), start, sweep)
	cv.paint(p)
}
