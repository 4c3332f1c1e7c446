// Package host defines the drawing capability a program runs against and the
// fixed table of host operations that interpreted code can call by name.
package host

import (
	"image/color"
	"math"
)

// Surface is the drawing capability consumed by the interpreter. Coordinates
// are in canvas pixels with the origin at the top-left corner. Arguments may
// be NaN when a program passes a non-numeric value; implementations must
// tolerate that, typically by skipping the shape.
type Surface interface {
	SetColor(c color.RGBA)
	SetFill(fill bool)
	SetLineWidth(w float64)
	Clear()
	Circle(x, y, r float64)
	Rect(x, y, w, h float64)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, text string)
	Polygon(sides int, cx, cy, r float64)
	Arc(x, y, r, startDeg, endDeg float64)
}

// Point is a canvas coordinate.
type Point struct {
	X, Y float64
}

// PolygonPoints returns the vertices of a regular polygon centred on (cx, cy),
// starting at (cx+r, cy) and proceeding with increasing angle.
func PolygonPoints(sides int, cx, cy, r float64) []Point {
	pts := make([]Point, sides)
	for i := 0; i < sides; i++ {
		angle := float64(i) * 2 * math.Pi / float64(sides)
		pts[i] = Point{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

// Finite reports whether every value is a finite number.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ClampSides limits a polygon side count to [MinSides, MaxSides]. NaN maps to
// MinSides.
func ClampSides(n float64) int {
	switch {
	case math.IsNaN(n) || n < MinSides:
		return MinSides
	case n > MaxSides:
		return MaxSides
	}
	return int(n)
}

// Polygon side limits.
const (
	MinSides = 3
	MaxSides = 20
)

// ArcSweep returns the clockwise sweep in degrees from startDeg to endDeg on a
// y-down canvas. The result lies in [0, 360]; a difference of a full turn or
// more draws the whole circle.
func ArcSweep(startDeg, endDeg float64) float64 {
	d := endDeg - startDeg
	if d >= 360 {
		return 360
	}
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
