package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type penState struct {
	color color.RGBA
	fill  bool
	width float64
}

type penSurface struct {
	penState
}

func (p *penSurface) SetColor(c color.RGBA) { p.color = c }
func (p *penSurface) SetFill(f bool) { p.fill = f }
func (p *penSurface) SetLineWidth(w float64) { p.width = w }
func (p *penSurface) Clear() {}
func (p *penSurface) Circle(x, y, r float64) {}
func (p *penSurface) Rect(x, y, w, h float64) {}
func (p *penSurface) Line(x1, y1, x2, y2 float64) {}
func (p *penSurface) Text(x, y float64, s string) {}
func (p *penSurface) Polygon(n int, cx, cy, r float64) {}
func (p *penSurface) Arc(x, y, r, start, end float64) {}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Canvas.Width != 400 || cfg.Canvas.Height != 300 {
		t.Errorf("canvas = %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Interpreter.WhileLimit != 1000 {
		t.Errorf("while_limit = %d", cfg.Interpreter.WhileLimit)
	}
	if cfg.Canvas.PenColor() != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("pen = %v", cfg.Canvas.PenColor())
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
canvas:
  width: 800
  color: navy
interpreter:
  banner: false
server:
  redis: localhost:6379
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 300 {
		t.Errorf("canvas = %dx%d, want 800x300", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Canvas.PenColor() != (color.RGBA{0, 0, 0x80, 0xff}) {
		t.Errorf("pen = %v", cfg.Canvas.PenColor())
	}
	if cfg.Interpreter.Banner {
		t.Error("banner should be off")
	}
	if cfg.Interpreter.MaxRange != 1_000_000 {
		t.Errorf("max_range = %d", cfg.Interpreter.MaxRange)
	}
	if cfg.Server.Redis != "localhost:6379" || cfg.Server.Stream != "pureblocks:console" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "canvas: [", "parsing config"},
		{"zero width", "canvas: {width: 0}", "canvas size"},
		{"bad color", "canvas: {color: blurple}", "color"},
		{"bad background", "canvas: {background: '#12'}", "background"},
		{"negative line width", "canvas: {line_width: -1}", "line_width"},
		{"zero while limit", "interpreter: {while_limit: 0}", "while_limit"},
		{"zero max range", "interpreter: {max_range: 0}", "max_range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pureblocks.yaml")
	if err := os.WriteFile(path, []byte("console:\n  color: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Console.Color {
		t.Error("console color should be off")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrime(t *testing.T) {
	cfg := Default()
	s := &penSurface{}
	cfg.Canvas.Prime(s)
	want := penState{color.RGBA{0xff, 0, 0, 0xff}, true, 2}
	if s.penState != want {
		t.Errorf("pen = %+v, want %+v", s.penState, want)
	}
}
