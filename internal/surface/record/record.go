// Package record implements a host.Surface that keeps every drawing call as
// a serialisable command list. A recorded drawing can be stored, sent over a
// WebSocket and replayed later onto a raster or PDF surface.
package record

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/IKKNIGHT/PureBlocks/internal/host"
)

// Command op names.
const (
	OpColor     = "color"
	OpFill      = "fill"
	OpLineWidth = "line_width"
	OpClear     = "clear"
	OpCircle    = "circle"
	OpRect      = "rect"
	OpLine      = "line"
	OpText      = "text"
	OpPolygon   = "polygon"
	OpArc       = "arc"
)

// Command is one recorded drawing call. Color commands carry "#rrggbb" in
// Text; fill commands carry 1 or 0 in Args.
type Command struct {
	Op   string    `json:"op"`
	Args []float64 `json:"args,omitempty"`
	Text string    `json:"text,omitempty"`
}

// Drawing is a complete recording with its canvas geometry.
type Drawing struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background"`
	Commands   []Command `json:"commands"`
}

// Recorder implements host.Surface. Shapes with non-finite arguments are not
// recorded, matching what the rendering surfaces draw.
type Recorder struct {
	mu         sync.Mutex
	width      int
	height     int
	background color.RGBA
	commands   []Command

	// OnCommand, when set, is called with every recorded command.
	OnCommand func(Command)
}

// New creates an empty recorder for a width x height canvas.
func New(width, height int, background color.RGBA) *Recorder {
	return &Recorder{width: width, height: height, background: background}
}

func (r *Recorder) add(c Command) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	hook := r.OnCommand
	r.mu.Unlock()
	if hook != nil {
		hook(c)
	}
}

func (r *Recorder) shape(op string, args ...float64) {
	if !host.Finite(args...) {
		return
	}
	r.add(Command{Op: op, Args: args})
}

func (r *Recorder) SetColor(c color.RGBA) { r.add(Command{Op: OpColor, Text: host.HexColor(c)}) }

func (r *Recorder) SetFill(fill bool) {
	v := 0.0
	if fill {
		v = 1
	}
	r.add(Command{Op: OpFill, Args: []float64{v}})
}

func (r *Recorder) SetLineWidth(w float64) { r.shape(OpLineWidth, w) }
func (r *Recorder) Clear() { r.add(Command{Op: OpClear}) }
func (r *Recorder) Circle(x, y, rad float64) { r.shape(OpCircle, x, y, rad) }
func (r *Recorder) Rect(x, y, w, h float64) { r.shape(OpRect, x, y, w, h) }
func (r *Recorder) Line(x1, y1, x2, y2 float64) { r.shape(OpLine, x1, y1, x2, y2) }
func (r *Recorder) Arc(x, y, rad, s, e float64) { r.shape(OpArc, x, y, rad, s, e) }

func (r *Recorder) Polygon(sides int, cx, cy, rad float64) {
	r.shape(OpPolygon, float64(sides), cx, cy, rad)
}

func (r *Recorder) Text(x, y float64, text string) {
	if !host.Finite(x, y) {
		return
	}
	r.add(Command{Op: OpText, Args: []float64{x, y}, Text: text})
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Drawing returns the recording with its canvas geometry.
func (r *Recorder) Drawing() Drawing {
	return Drawing{
		Width:      r.width,
		Height:     r.height,
		Background: host.HexColor(r.background),
		Commands:   r.Commands(),
	}
}

// ---------------------------------------------------------------------------
// Replay
// ---------------------------------------------------------------------------

var arity = map[string]int{
	OpColor: 0, OpFill: 1, OpLineWidth: 1, OpClear: 0, OpCircle: 3,
	OpRect: 4, OpLine: 4, OpText: 2, OpPolygon: 4, OpArc: 5,
}

// Replay issues cmds against dst in order. It stops at the first malformed
// command.
func Replay(cmds []Command, dst host.Surface) error {
	for i, c := range cmds {
		n, ok := arity[c.Op]
		if !ok {
			return fmt.Errorf("command %d: unknown op %q", i, c.Op)
		}
		if len(c.Args) != n {
			return fmt.Errorf("command %d: %s takes %d args, got %d", i, c.Op, n, len(c.Args))
		}
		a := c.Args
		switch c.Op {
		case OpColor:
			col, err := host.ParseColor(c.Text)
			if err != nil {
				return fmt.Errorf("command %d: %w", i, err)
			}
			dst.SetColor(col)
		case OpFill:
			dst.SetFill(a[0] != 0)
		case OpLineWidth:
			dst.SetLineWidth(a[0])
		case OpClear:
			dst.Clear()
		case OpCircle:
			dst.Circle(a[0], a[1], a[2])
		case OpRect:
			dst.Rect(a[0], a[1], a[2], a[3])
		case OpLine:
			dst.Line(a[0], a[1], a[2], a[3])
		case OpText:
			dst.Text(a[0], a[1], c.Text)
		case OpPolygon:
			dst.Polygon(host.ClampSides(a[0]), a[1], a[2], a[3])
		case OpArc:
			dst.Arc(a[0], a[1], a[2], a[3], a[4])
		}
	}
	return nil
}
