package host

import (
	"fmt"

	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// Default returns a registry holding the built-in drawing operations.
func Default() *Registry {
	r := NewRegistry()
	for _, op := range defaultOps {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

var num = variable.FormatNumber

var defaultOps = []Operation{
	{
		Name:   "set_drawing_color",
		Params: []Kind{String},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			name := a[0].(string)
			c, err := ParseColor(name)
			if err != nil {
				return "", err
			}
			s.SetColor(c)
			return fmt.Sprintf("Set drawing color to %s", name), nil
		},
	},
	{
		Name:   "set_fill_mode",
		Params: []Kind{Bool},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			fill := a[0].(bool)
			s.SetFill(fill)
			if fill {
				return "Set fill mode to fill", nil
			}
			return "Set fill mode to outline", nil
		},
	},
	{
		Name:   "set_line_width",
		Params: []Kind{Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			w := a[0].(float64)
			s.SetLineWidth(w)
			return fmt.Sprintf("Set line width to %s", num(w)), nil
		},
	},
	{
		Name: "clear_canvas",
		Invoke: func(s Surface, _ []interface{}) (string, error) {
			s.Clear()
			return "Cleared canvas", nil
		},
	},
	{
		Name:   "draw_circle",
		Params: []Kind{Number, Number, Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			x, y, r := a[0].(float64), a[1].(float64), a[2].(float64)
			s.Circle(x, y, r)
			return fmt.Sprintf("Drew circle at (%s, %s) with radius %s", num(x), num(y), num(r)), nil
		},
	},
	{
		Name:   "draw_rectangle",
		Params: []Kind{Number, Number, Number, Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			x, y, w, h := a[0].(float64), a[1].(float64), a[2].(float64), a[3].(float64)
			s.Rect(x, y, w, h)
			return fmt.Sprintf("Drew rectangle at (%s, %s) with dimensions %sx%s", num(x), num(y), num(w), num(h)), nil
		},
	},
	{
		Name:   "draw_line",
		Params: []Kind{Number, Number, Number, Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			x1, y1, x2, y2 := a[0].(float64), a[1].(float64), a[2].(float64), a[3].(float64)
			s.Line(x1, y1, x2, y2)
			return fmt.Sprintf("Drew line from (%s, %s) to (%s, %s)", num(x1), num(y1), num(x2), num(y2)), nil
		},
	},
	{
		Name:   "draw_text",
		Params: []Kind{Number, Number, String},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			x, y, text := a[0].(float64), a[1].(float64), a[2].(string)
			s.Text(x, y, text)
			return fmt.Sprintf("Drew text \"%s\" at (%s, %s)", text, num(x), num(y)), nil
		},
	},
	{
		Name:   "draw_polygon",
		Params: []Kind{Number, Number, Number, Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			sides := ClampSides(a[0].(float64))
			cx, cy, r := a[1].(float64), a[2].(float64), a[3].(float64)
			s.Polygon(sides, cx, cy, r)
			return fmt.Sprintf("Drew %d-sided polygon at (%s, %s) with radius %s", sides, num(cx), num(cy), num(r)), nil
		},
	},
	{
		Name:   "draw_arc",
		Params: []Kind{Number, Number, Number, Number, Number},
		Invoke: func(s Surface, a []interface{}) (string, error) {
			x, y, r := a[0].(float64), a[1].(float64), a[2].(float64)
			start, end := a[3].(float64), a[4].(float64)
			s.Arc(x, y, r, start, end)
			return fmt.Sprintf("Drew arc at (%s, %s) with radius %s from %s° to %s°", num(x), num(y), num(r), num(start), num(end)), nil
		},
	},
}
