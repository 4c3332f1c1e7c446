// Package pdfsurface renders host drawing calls onto a single-page PDF whose
// page is exactly the canvas size, one PDF point per canvas pixel.
package pdfsurface

import (
	"image/color"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
)

// Document implements host.Surface with fpdf. Both use a top-left origin,
// so coordinates pass through unchanged.
type Document struct {
	pdf        *fpdf.Fpdf
	width      float64
	height     float64
	background color.RGBA
	fill       bool
}

// New creates a one-page document of width x height points cleared to
// background. Text uses Helvetica at fontSize points.
func New(width, height int, background color.RGBA, fontSize float64) *Document {
	w, h := float64(width), float64(height)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("PureBlocks", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)

	d := &Document{pdf: pdf, width: w, height: h, background: background}
	d.Clear()
	d.SetColor(color.RGBA{A: 0xff})
	d.SetLineWidth(1)
	return d
}

// Output writes the finished PDF. It reports any error fpdf accumulated
// while drawing.
func (d *Document) Output(w io.Writer) error {
	return d.pdf.Output(w)
}

// Err returns the first drawing error, if any.
func (d *Document) Err() error {
	return d.pdf.Error()
}

func (d *Document) style() string {
	if d.fill {
		return "FD"
	}
	return "D"
}

// ---------------------------------------------------------------------------
// host.Surface
// ---------------------------------------------------------------------------

func (d *Document) SetColor(c color.RGBA) {
	r, g, b := int(c.R), int(c.G), int(c.B)
	d.pdf.SetDrawColor(r, g, b)
	d.pdf.SetFillColor(r, g, b)
	d.pdf.SetTextColor(r, g, b)
}

func (d *Document) SetFill(fill bool) { d.fill = fill }

func (d *Document) SetLineWidth(w float64) {
	if !host.Finite(w) || w < 0 {
		return
	}
	d.pdf.SetLineWidth(w)
}

// Clear paints the page with the background and keeps the drawing color.
func (d *Document) Clear() {
	r, g, b := d.pdf.GetFillColor()
	bg := d.background
	d.pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	d.pdf.Rect(0, 0, d.width, d.height, "F")
	d.pdf.SetFillColor(r, g, b)
}

func (d *Document) Circle(x, y, r float64) {
	if !host.Finite(x, y, r) || r < 0 {
		return
	}
	d.pdf.Circle(x, y, r, d.style())
}

func (d *Document) Rect(x, y, w, h float64) {
	if !host.Finite(x, y, w, h) {
		return
	}
	d.pdf.Rect(x, y, w, h, d.style())
}

func (d *Document) Line(x1, y1, x2, y2 float64) {
	if !host.Finite(x1, y1, x2, y2) {
		return
	}
	d.pdf.Line(x1, y1, x2, y2)
}

func (d *Document) Text(x, y float64, text string) {
	if !host.Finite(x, y) || text == "" {
		return
	}
	d.pdf.Text(x, y, text)
}

func (d *Document) Polygon(sides int, cx, cy, r float64) {
	if !host.Finite(cx, cy, r) {
		return
	}
	pts := host.PolygonPoints(sides, cx, cy, r)
	out := make([]fpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = fpdf.PointType{X: p.X, Y: p.Y}
	}
	d.pdf.Polygon(out, d.style())
}

// Arc draws the clockwise on-screen sweep from startDeg to endDeg. fpdf
// measures angles counter-clockwise, so the same sweep is drawn from the
// negated end angle back to the negated start.
func (d *Document) Arc(x, y, r, startDeg, endDeg float64) {
	if !host.Finite(x, y, r, startDeg, endDeg) || r < 0 {
		return
	}
	sweep := host.ArcSweep(startDeg, endDeg)
	if sweep == 0 {
		return
	}
	d.pdf.Arc(x, y, r, r, 0, -(startDeg + sweep), -startDeg, d.style())
}
