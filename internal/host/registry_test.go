package host

import (
	"image/color"
	"math"
	"strings"
	"testing"
)

type call struct {
	op   string
	args []float64
	text string
}

type fakeSurface struct {
	calls []call
	color color.RGBA
	fill  bool
}

func (f *fakeSurface) add(op, text string, args ...float64) {
	f.calls = append(f.calls, call{op, args, text})
}

func (f *fakeSurface) SetColor(c color.RGBA) { f.color = c; f.add("color", HexColor(c)) }
func (f *fakeSurface) SetFill(fill bool) { f.fill = fill; f.add("fill", "") }
func (f *fakeSurface) SetLineWidth(w float64) { f.add("width", "", w) }
func (f *fakeSurface) Clear() { f.add("clear", "") }
func (f *fakeSurface) Circle(x, y, r float64) { f.add("circle", "", x, y, r) }
func (f *fakeSurface) Rect(x, y, w, h float64) { f.add("rect", "", x, y, w, h) }
func (f *fakeSurface) Line(x1, y1, x2, y2 float64) { f.add("line", "", x1, y1, x2, y2) }
func (f *fakeSurface) Text(x, y float64, s string) { f.add("text", s, x, y) }
func (f *fakeSurface) Arc(x, y, r, s, e float64) { f.add("arc", "", x, y, r, s, e) }
func (f *fakeSurface) Polygon(n int, x, y, r float64) { f.add("polygon", "", float64(n), x, y, r) }

// ---------------------------------------------------------------------------
// Default operations
// ---------------------------------------------------------------------------

func TestDefaultDescriptions(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"set_drawing_color", []interface{}{"red"}, "Set drawing color to red"},
		{"set_fill_mode", []interface{}{true}, "Set fill mode to fill"},
		{"set_fill_mode", []interface{}{"true"}, "Set fill mode to fill"},
		{"set_fill_mode", []interface{}{false}, "Set fill mode to outline"},
		{"set_line_width", []interface{}{2.5}, "Set line width to 2.5"},
		{"clear_canvas", nil, "Cleared canvas"},
		{"draw_circle", []interface{}{10.0, 20.0, 5.0}, "Drew circle at (10, 20) with radius 5"},
		{"draw_rectangle", []interface{}{1.0, 2.0, 30.0, 40.0}, "Drew rectangle at (1, 2) with dimensions 30x40"},
		{"draw_line", []interface{}{0.0, 0.0, 5.0, 5.0}, "Drew line from (0, 0) to (5, 5)"},
		{"draw_text", []interface{}{1.0, 2.0, "hi"}, `Drew text "hi" at (1, 2)`},
		{"draw_polygon", []interface{}{6.0, 50.0, 60.0, 10.0}, "Drew 6-sided polygon at (50, 60) with radius 10"},
		{"draw_arc", []interface{}{1.0, 2.0, 3.0, 0.0, 90.0}, "Drew arc at (1, 2) with radius 3 from 0° to 90°"},
	}
	reg := Default()
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			surf := &fakeSurface{}
			got, err := reg.Call(surf, tc.name, tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if len(surf.calls) != 1 {
				t.Errorf("expected 1 surface call, got %d", len(surf.calls))
			}
		})
	}
}

func TestDefaultNames(t *testing.T) {
	want := []string{
		"clear_canvas", "draw_arc", "draw_circle", "draw_line", "draw_polygon",
		"draw_rectangle", "draw_text", "set_drawing_color", "set_fill_mode", "set_line_width",
	}
	got := Default().Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v", got)
	}
}

func TestCallCoercesNumbers(t *testing.T) {
	surf := &fakeSurface{}
	if _, err := Default().Call(surf, "draw_circle", []interface{}{"10", true, "abc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := surf.calls[0].args
	if args[0] != 10 || args[1] != 1 || !math.IsNaN(args[2]) {
		t.Errorf("args = %v", args)
	}
}

func TestCallErrors(t *testing.T) {
	reg := Default()
	surf := &fakeSurface{}
	if _, err := reg.Call(surf, "draw_star", nil); err == nil {
		t.Error("expected unknown operation error")
	}
	if _, err := reg.Call(surf, "draw_line", []interface{}{1.0}); err == nil {
		t.Error("expected arity error")
	}
	if _, err := reg.Call(surf, "set_drawing_color", []interface{}{"notacolor"}); err == nil {
		t.Error("expected color error")
	}
	if len(surf.calls) != 0 {
		t.Errorf("no surface calls expected, got %v", surf.calls)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := Default()
	err := reg.Register(Operation{
		Name:   "draw_circle",
		Invoke: func(Surface, []interface{}) (string, error) { return "", nil },
	})
	if err == nil {
		t.Error("expected duplicate registration error")
	}
	if err := reg.Register(Operation{Name: "x"}); err == nil {
		t.Error("expected missing implementation error")
	}
}

// ---------------------------------------------------------------------------
// Geometry and colors
// ---------------------------------------------------------------------------

func TestClampSides(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{1, 3},
		{3, 3},
		{5.7, 5},
		{20, 20},
		{100, 20},
		{math.NaN(), 3},
		{math.Inf(1), 20},
	}
	for _, tc := range tests {
		if got := ClampSides(tc.in); got != tc.want {
			t.Errorf("ClampSides(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPolygonPoints(t *testing.T) {
	pts := PolygonPoints(4, 10, 10, 5)
	want := []Point{{15, 10}, {10, 15}, {5, 10}, {10, 5}}
	if len(pts) != len(want) {
		t.Fatalf("got %d points", len(pts))
	}
	for i, w := range want {
		if math.Abs(pts[i].X-w.X) > 1e-9 || math.Abs(pts[i].Y-w.Y) > 1e-9 {
			t.Errorf("point %d = %v, want %v", i, pts[i], w)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{"#ff0000", color.RGBA{0xff, 0, 0, 0xff}, false},
		{"#0F0", color.RGBA{0, 0xff, 0, 0xff}, false},
		{"Blue", color.RGBA{0, 0, 0xff, 0xff}, false},
		{" white ", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#12", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
		{"bluish", color.RGBA{}, true},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("ParseColor(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if HexColor(color.RGBA{0x12, 0xab, 0, 0xff}) != "#12ab00" {
		t.Error("HexColor mismatch")
	}
}

func TestArcSweep(t *testing.T) {
	tests := []struct {
		start, end, want float64
	}{
		{0, 90, 90},
		{90, 0, 270},
		{0, 360, 360},
		{0, 720, 360},
		{45, 45, 0},
		{-90, 90, 180},
	}
	for _, tc := range tests {
		if got := ArcSweep(tc.start, tc.end); got != tc.want {
			t.Errorf("ArcSweep(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}
