package executor

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/host"
	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// ---------------------------------------------------------------------------
// Mock surface
// ---------------------------------------------------------------------------

type drawCall struct {
	op   string
	args []float64
	text string
}

type mockSurface struct {
	calls []drawCall
	color color.RGBA
	fill  bool
	width float64
}

func (m *mockSurface) record(op string, text string, args ...float64) {
	m.calls = append(m.calls, drawCall{op: op, args: args, text: text})
}

func (m *mockSurface) SetColor(c color.RGBA)  { m.color = c; m.record("color", host.HexColor(c)) }
func (m *mockSurface) SetFill(fill bool)      { m.fill = fill; m.record("fill", fmt.Sprint(fill)) }
func (m *mockSurface) SetLineWidth(w float64) { m.width = w; m.record("width", "", w) }
func (m *mockSurface) Clear()                 { m.record("clear", "") }
func (m *mockSurface) Circle(x, y, r float64) { m.record("circle", "", x, y, r) }
func (m *mockSurface) Rect(x, y, w, h float64) {
	m.record("rect", "", x, y, w, h)
}
func (m *mockSurface) Line(x1, y1, x2, y2 float64) {
	m.record("line", "", x1, y1, x2, y2)
}
func (m *mockSurface) Text(x, y float64, text string) { m.record("text", text, x, y) }
func (m *mockSurface) Polygon(sides int, cx, cy, r float64) {
	m.record("polygon", "", float64(sides), cx, cy, r)
}
func (m *mockSurface) Arc(x, y, r, s, e float64) { m.record("arc", "", x, y, r, s, e) }

func (m *mockSurface) ops(op string) []drawCall {
	var out []drawCall
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func run(t *testing.T, source string, opts ...Option) (*Executor, *console.Buffer, *mockSurface) {
	t.Helper()
	buf := &console.Buffer{}
	surf := &mockSurface{}
	opts = append([]Option{WithConsole(buf), WithSurface(surf)}, opts...)
	exec := New(context.Background(), opts...)
	if err := exec.Run(source); err != nil {
		t.Fatalf("run: %v", err)
	}
	return exec, buf, surf
}

func output(buf *console.Buffer) []string {
	return buf.Lines(console.LevelOutput)
}

func warnings(buf *console.Buffer) []string {
	return buf.Lines(console.LevelWarn)
}

func errorLines(buf *console.Buffer) []string {
	return buf.Lines(console.LevelError)
}

func src(lines ...string) string {
	return strings.Join(lines, "\n")
}

func equalLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d lines %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Setup errors
// ---------------------------------------------------------------------------

func TestRunRequiresBindings(t *testing.T) {
	t.Run("no surface", func(t *testing.T) {
		buf := &console.Buffer{}
		err := New(context.Background(), WithConsole(buf)).Run("print(1)")
		if !errors.Is(err, ErrNoSurface) {
			t.Fatalf("expected ErrNoSurface, got %v", err)
		}
		if len(buf.Entries()) != 0 {
			t.Errorf("expected no output before setup check, got %v", buf.Lines())
		}
	})
	t.Run("no console", func(t *testing.T) {
		err := New(context.Background(), WithSurface(&mockSurface{})).Run("print(1)")
		if !errors.Is(err, ErrNoConsole) {
			t.Fatalf("expected ErrNoConsole, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Assignment and print
// ---------------------------------------------------------------------------

func TestAssignmentThenPrint(t *testing.T) {
	_, buf, _ := run(t, src("x = 5", "print(x)"))
	equalLines(t, output(buf), []string{"5"})
}

func TestPrintForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"string", `print("hello")`, []string{"hello"}},
		{"single quotes", `print('hi there')`, []string{"hi there"}},
		{"float", `print(2.5)`, []string{"2.5"}},
		{"integral division", `print(10 / 2)`, []string{"5"}},
		{"fraction", `print(1 / 4)`, []string{"0.25"}},
		{"bool", `print(3 > 2)`, []string{"True"}},
		{"concat", `print("n=" + 4)`, []string{"n=4"}},
		{"multiple args", `print("a", 1, True)`, []string{"a 1 True"}},
		{"empty", `print()`, []string{""}},
		{"list", `print([1, 'a'])`, []string{"[1, 'a']"}},
		{"range", `print(range(3))`, []string{"[0, 1, 2]"}},
		{"comma in string", `print("a,b")`, []string{"a,b"}},
		{"power", `print(2 ** 10)`, []string{"1024"}},
		{"precedence", `print(2 + 3 * 4)`, []string{"14"}},
		{"parens", `print((2 + 3) * 4)`, []string{"20"}},
		{"modulo", `print(17 % 5)`, []string{"2"}},
		{"unary minus", `print(-3 + 1)`, []string{"-2"}},
		{"len", `print(len("hello"))`, []string{"5"}},
		{"str", `print(str(7) + "!")`, []string{"7!"}},
		{"int", `print(int(7.9))`, []string{"7"}},
		{"abs", `print(abs(-4))`, []string{"4"}},
		{"index", `print("abc"[1])`, []string{"b"}},
		{"negative index", `print([1, 2, 3][-1])`, []string{"3"}},
		{"is_prime", `print(is_prime(7))`, []string{"True"}},
		{"not", `print(not False)`, []string{"True"}},
		{"and value", `print(0 and 5)`, []string{"0"}},
		{"or value", `print(0 or 5)`, []string{"5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, buf, _ := run(t, tc.source)
			if errs := errorLines(buf); len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			equalLines(t, output(buf), tc.want)
		})
	}
}

func TestAssignmentOverwritesType(t *testing.T) {
	exec, _, _ := run(t, src("x = 5", `x = "five"`))
	got, ok := exec.GetVar("x")
	if !ok || got != "five" {
		t.Errorf("x = %v (%v), want five", got, ok)
	}
}

func TestAugmentedAssignment(t *testing.T) {
	exec, buf, _ := run(t, src(
		"x = 10",
		"x += 5",
		"x -= 3",
		"x *= 2",
		"x /= 4",
		`s = "a"`,
		`s += "b"`,
	))
	if errs := errorLines(buf); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got, _ := exec.GetVar("x"); got != 6.0 {
		t.Errorf("x = %v, want 6", got)
	}
	if got, _ := exec.GetVar("s"); got != "ab" {
		t.Errorf("s = %v, want ab", got)
	}
}

func TestAssignmentStringWithEquals(t *testing.T) {
	exec, _, _ := run(t, `s = "a=b"`)
	if got, _ := exec.GetVar("s"); got != "a=b" {
		t.Errorf("s = %v, want a=b", got)
	}
}

func TestUndefinedNameIsError(t *testing.T) {
	_, buf, _ := run(t, src("print(missing)", `print("after")`))
	errs := errorLines(buf)
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "Error at line 1:") {
		t.Fatalf("expected one error for line 1, got %v", errs)
	}
	equalLines(t, output(buf), []string{"after"})
}

func TestDivisionByZeroReported(t *testing.T) {
	exec, buf, _ := run(t, src("x = 1 / 0", "y = 2"))
	errs := errorLines(buf)
	if len(errs) != 1 || !strings.Contains(errs[0], "division by zero") {
		t.Fatalf("expected division by zero error, got %v", errs)
	}
	if exec.Env().Exists("x") {
		t.Error("x should not be assigned")
	}
	if got, _ := exec.GetVar("y"); got != 2.0 {
		t.Errorf("y = %v, want 2", got)
	}
	if len(exec.Errors()) != 1 || exec.Errors()[0].Line != 1 {
		t.Errorf("Errors() = %v", exec.Errors())
	}
	var evalErr *EvalError
	if !errors.As(exec.Errors()[0], &evalErr) {
		t.Errorf("expected EvalError inside StatementError, got %T", exec.Errors()[0].Err)
	}
}

// ---------------------------------------------------------------------------
// Conditionals
// ---------------------------------------------------------------------------

func TestIfElifElseRunsOneBranch(t *testing.T) {
	_, buf, _ := run(t, src(
		"if False:",
		`    print("A")`,
		"elif True:",
		`    print("B")`,
		"else:",
		`    print("C")`,
	))
	equalLines(t, output(buf), []string{"B"})
}

func TestIfChains(t *testing.T) {
	chain := func(x string) string {
		return src(
			"x = "+x,
			"if x > 10:",
			`    print("big")`,
			"elif x > 5:",
			`    print("medium")`,
			"elif x > 0:",
			`    print("small")`,
			"else:",
			`    print("none")`,
			`print("done")`,
		)
	}
	tests := []struct {
		x    string
		want []string
	}{
		{"20", []string{"big", "done"}},
		{"7", []string{"medium", "done"}},
		{"3", []string{"small", "done"}},
		{"-1", []string{"none", "done"}},
	}
	for _, tc := range tests {
		t.Run("x="+tc.x, func(t *testing.T) {
			_, buf, _ := run(t, chain(tc.x))
			equalLines(t, output(buf), tc.want)
		})
	}
}

func TestIfWithoutElse(t *testing.T) {
	_, buf, _ := run(t, src(
		"if 1 == 2:",
		`    print("no")`,
		`print("yes")`,
	))
	equalLines(t, output(buf), []string{"yes"})
}

func TestNestedIf(t *testing.T) {
	_, buf, _ := run(t, src(
		"a = 1",
		"b = 2",
		"if a == 1:",
		"    if b == 3:",
		`        print("inner")`,
		"    else:",
		`        print("inner else")`,
		`    print("outer")`,
		"else:",
		`    print("outer else")`,
	))
	equalLines(t, output(buf), []string{"inner else", "outer"})
}

func TestSeparateIfsAreIndependent(t *testing.T) {
	_, buf, _ := run(t, src(
		"if True:",
		`    print("one")`,
		"if True:",
		`    print("two")`,
	))
	equalLines(t, output(buf), []string{"one", "two"})
}

func TestOrphanElseWarns(t *testing.T) {
	_, buf, _ := run(t, src(
		"else:",
		`    print("hidden")`,
		`print("shown")`,
	))
	equalLines(t, output(buf), []string{"shown"})
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "line 1") {
		t.Errorf("warnings = %v", w)
	}
}

func TestConditionErrorSkipsChain(t *testing.T) {
	_, buf, _ := run(t, src(
		"if nope > 1:",
		`    print("a")`,
		"else:",
		`    print("b")`,
		`print("c")`,
	))
	equalLines(t, output(buf), []string{"c"})
	if errs := errorLines(buf); len(errs) != 1 {
		t.Errorf("errors = %v", errs)
	}
}

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

func TestForRange(t *testing.T) {
	tests := []struct {
		name string
		iter string
		want []string
	}{
		{"one arg", "range(3)", []string{"0", "1", "2"}},
		{"two args", "range(2, 5)", []string{"2", "3", "4"}},
		{"step", "range(0, 10, 3)", []string{"0", "3", "6", "9"}},
		{"descending", "range(5, 2, -1)", []string{"5", "4", "3"}},
		{"zero step", "range(0, 5, 0)", nil},
		{"empty", "range(3, 3)", nil},
		{"generator form", "range(1, 3 + 1)", []string{"1", "2", "3"}},
		{"list", "[7, 8]", []string{"7", "8"}},
		{"string", `"ab"`, []string{"a", "b"}},
		{"number", "42", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, buf, _ := run(t, src(
				"for i in "+tc.iter+":",
				"    print(i)",
			))
			if errs := errorLines(buf); len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			equalLines(t, output(buf), tc.want)
		})
	}
}

func TestForLoopVariableVisibleAfter(t *testing.T) {
	exec, _, _ := run(t, src(
		"total = 0",
		"for i in range(1, 5):",
		"    total = total + i",
	))
	if got, _ := exec.GetVar("total"); got != 10.0 {
		t.Errorf("total = %v, want 10", got)
	}
	if got, _ := exec.GetVar("i"); got != 4.0 {
		t.Errorf("i = %v, want 4", got)
	}
}

func TestNestedFor(t *testing.T) {
	_, buf, _ := run(t, src(
		"for i in range(2):",
		"    for j in range(2):",
		"        print(str(i) + str(j))",
		`    print("end " + str(i))`,
	))
	equalLines(t, output(buf), []string{"00", "01", "end 0", "10", "11", "end 1"})
}

func TestWhileTerminates(t *testing.T) {
	_, buf, _ := run(t, src(
		"n = 0",
		"while n < 3:",
		"    print(n)",
		"    n = n + 1",
	))
	equalLines(t, output(buf), []string{"0", "1", "2"})
	if w := warnings(buf); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestWhileCap(t *testing.T) {
	exec, buf, _ := run(t, src(
		"count = 0",
		"while True:",
		"    count = count + 1",
		`print("after")`,
	))
	if got, _ := exec.GetVar("count"); got != 1000.0 {
		t.Errorf("count = %v, want exactly 1000", got)
	}
	w := warnings(buf)
	if len(w) != 1 {
		t.Fatalf("expected exactly one warning, got %v", w)
	}
	want := "Warning: Possible infinite loop at line 2. Execution stopped after 1000 iterations."
	if w[0] != want {
		t.Errorf("warning = %q, want %q", w[0], want)
	}
	equalLines(t, output(buf), []string{"after"})
}

func TestWhileExactlyAtCapDoesNotWarn(t *testing.T) {
	exec, buf, _ := run(t, src(
		"n = 0",
		"while n < 1000:",
		"    n = n + 1",
	))
	if got, _ := exec.GetVar("n"); got != 1000.0 {
		t.Errorf("n = %v, want 1000", got)
	}
	if w := warnings(buf); len(w) != 0 {
		t.Errorf("expected no warning for a loop ending at the cap, got %v", w)
	}
}

func TestWhileLimitOption(t *testing.T) {
	exec, buf, _ := run(t, src(
		"n = 0",
		"while True:",
		"    n = n + 1",
	), WithWhileLimit(5))
	if got, _ := exec.GetVar("n"); got != 5.0 {
		t.Errorf("n = %v, want 5", got)
	}
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "after 5 iterations") {
		t.Errorf("warnings = %v", w)
	}
}

func TestRangeLimit(t *testing.T) {
	_, buf, _ := run(t, src(
		"for i in range(100):",
		"    x = i",
	), WithMaxRange(10))
	if errs := errorLines(buf); len(errs) != 1 || !strings.Contains(errs[0], "exceeds limit") {
		t.Errorf("errors = %v", errs)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := &console.Buffer{}
	exec := New(ctx, WithConsole(buf), WithSurface(&mockSurface{}))
	err := exec.Run("print(1)")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(output(buf)) != 0 {
		t.Errorf("expected no output, got %v", output(buf))
	}
}

// ---------------------------------------------------------------------------
// Host calls
// ---------------------------------------------------------------------------

func TestHostCallDispatch(t *testing.T) {
	_, buf, surf := run(t, "draw_circle(10, 20, 5)")
	circles := surf.ops("circle")
	if len(circles) != 1 {
		t.Fatalf("expected 1 circle call, got %d", len(circles))
	}
	want := []float64{10, 20, 5}
	for i, v := range want {
		if circles[0].args[i] != v {
			t.Errorf("arg %d = %v, want %v", i, circles[0].args[i], v)
		}
	}
	equalLines(t, buf.Lines(console.LevelInfo), []string{"Drew circle at (10, 20) with radius 5"})
}

func TestHostCallTextWithComma(t *testing.T) {
	_, _, surf := run(t, `draw_text(1, 2, "a,b")`)
	texts := surf.ops("text")
	if len(texts) != 1 {
		t.Fatalf("expected 1 text call, got %d", len(texts))
	}
	if texts[0].text != "a,b" {
		t.Errorf("text = %q, want a,b", texts[0].text)
	}
}

func TestHostCallTextWithEquals(t *testing.T) {
	_, buf, surf := run(t, `draw_text(1, 2, "a=b")`)
	if len(surf.ops("text")) != 1 {
		t.Fatalf("expected draw_text to dispatch, warnings: %v", warnings(buf))
	}
}

func TestHostCallsWithVariables(t *testing.T) {
	_, buf, surf := run(t, src(
		`set_drawing_color("#00ff00")`,
		"set_fill_mode(False)",
		"set_line_width(3)",
		"for i in range(3):",
		"    draw_rectangle(i * 10, 0, 5, 5)",
		"draw_polygon(50, 0, 0, 10)",
		"draw_arc(1, 2, 3, 0, 90)",
		"draw_line(0, 0, 1, 1)",
		"clear_canvas()",
	))
	if errs := errorLines(buf); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if surf.color != (color.RGBA{0, 0xff, 0, 0xff}) {
		t.Errorf("color = %v", surf.color)
	}
	if surf.fill {
		t.Error("fill should be off")
	}
	if surf.width != 3 {
		t.Errorf("width = %v", surf.width)
	}
	rects := surf.ops("rect")
	if len(rects) != 3 || rects[2].args[0] != 20 {
		t.Errorf("rects = %v", rects)
	}
	if polys := surf.ops("polygon"); len(polys) != 1 || polys[0].args[0] != 20 {
		t.Errorf("polygon sides should clamp to 20, got %v", polys)
	}
	if len(surf.ops("clear")) != 1 {
		t.Error("expected clear_canvas")
	}
}

func TestHostCallNonNumericBecomesNaN(t *testing.T) {
	_, _, surf := run(t, `draw_circle("x", 1, 2)`)
	circles := surf.ops("circle")
	if len(circles) != 1 || !math.IsNaN(circles[0].args[0]) {
		t.Errorf("circles = %v", circles)
	}
}

func TestHostCallArityError(t *testing.T) {
	_, buf, surf := run(t, "draw_circle(1, 2)")
	if len(surf.calls) != 0 {
		t.Errorf("expected no dispatch, got %v", surf.calls)
	}
	if errs := errorLines(buf); len(errs) != 1 || !strings.Contains(errs[0], "takes 3 arguments") {
		t.Errorf("errors = %v", errs)
	}
}

func TestCustomRegistry(t *testing.T) {
	reg := host.NewRegistry()
	var got []interface{}
	if err := reg.Register(host.Operation{
		Name:   "beep",
		Params: []host.Kind{host.Number, host.String},
		Invoke: func(_ host.Surface, args []interface{}) (string, error) {
			got = args
			return "", nil
		},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, buf, _ := run(t, src(`beep("3", 4)`, "draw_circle(1, 2, 3)"), WithRegistry(reg))
	if len(got) != 2 || got[0] != 3.0 || got[1] != "4" {
		t.Errorf("beep args = %v", got)
	}
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "draw_circle") {
		t.Errorf("expected draw_circle to be unsupported, got %v", w)
	}
}

// ---------------------------------------------------------------------------
// Unsupported and skipped statements
// ---------------------------------------------------------------------------

func TestMalformedStatementWarns(t *testing.T) {
	exec, buf, _ := run(t, src(
		"x = 1",
		"foo bar baz",
		"print(x)",
	))
	w := warnings(buf)
	if len(w) != 1 {
		t.Fatalf("expected one warning, got %v", w)
	}
	if w[0] != "Warning: Unsupported syntax at line 2: foo bar baz" {
		t.Errorf("warning = %q", w[0])
	}
	equalLines(t, output(buf), []string{"1"})
	if exec.Warnings() != 1 {
		t.Errorf("Warnings() = %d", exec.Warnings())
	}
}

func TestDefAndPass(t *testing.T) {
	_, buf, _ := run(t, src(
		"def is_prime(n):",
		"    if n < 2:",
		"        return False",
		"    return True",
		"",
		"def helper():",
		"    pass",
		"if True:",
		"    pass",
		`print("ok")`,
	))
	w := warnings(buf)
	if len(w) != 1 || !strings.Contains(w[0], "def helper") {
		t.Errorf("expected one warning for def helper, got %v", w)
	}
	equalLines(t, output(buf), []string{"ok"})
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	_, buf, _ := run(t, src(
		"# setup",
		"",
		"x = 2",
		"   # indented comment",
		"if x == 2:",
		"",
		"    # inside",
		`    print("two")`,
	))
	equalLines(t, output(buf), []string{"two"})
	if w := warnings(buf); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestInconsistentDedentWarns(t *testing.T) {
	_, buf, _ := run(t, src(
		"if True:",
		`        print("a")`,
		`    print("b")`,
		`print("c")`,
	))
	equalLines(t, output(buf), []string{"a", "c"})
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "line 3") {
		t.Errorf("warnings = %v", w)
	}
}

func TestIndentedFirstLineSkipped(t *testing.T) {
	exec, buf, _ := run(t, src(
		"    x = 1",
		`print("hi")`,
		`print("there")`,
	))
	equalLines(t, output(buf), []string{"hi", "there"})
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "line 1") {
		t.Errorf("warnings = %v", w)
	}
	if _, ok := exec.GetVar("x"); ok {
		t.Error("indented statement should not run")
	}
}

func TestStrayIndentedBlockWarnsOnce(t *testing.T) {
	_, buf, _ := run(t, src(
		`print("a")`,
		`    print("b")`,
		`    print("c")`,
		`print("d")`,
	))
	equalLines(t, output(buf), []string{"a", "d"})
	if w := warnings(buf); len(w) != 1 || !strings.Contains(w[0], "line 2") {
		t.Errorf("warnings = %v", w)
	}
}

func TestOversizedStringIsStatementError(t *testing.T) {
	exec, buf, _ := run(t, src(
		`s = "ab" * 1e19`,
		`t = "a" * 1e9`,
		`print("after")`,
	))
	equalLines(t, output(buf), []string{"after"})
	if errs := exec.Errors(); len(errs) != 2 {
		t.Fatalf("errors = %v", errs)
	}
	for _, err := range exec.Errors() {
		if !errors.Is(err, variable.ErrStringTooLong) {
			t.Errorf("error = %v, want ErrStringTooLong", err)
		}
	}
}

type panicSurface struct{ mockSurface }

func (p *panicSurface) Circle(x, y, r float64) { panic("surface exploded") }

func TestPanicBecomesStatementError(t *testing.T) {
	buf := &console.Buffer{}
	exec := New(context.Background(), WithConsole(buf), WithSurface(&panicSurface{}))
	if err := exec.Run(src(
		"if True:",
		"    draw_circle(1, 2, 3)",
		`    print("same block")`,
		`print("next")`,
	)); err != nil {
		t.Fatalf("run: %v", err)
	}
	equalLines(t, output(buf), []string{"same block", "next"})
	if errs := exec.Errors(); len(errs) != 1 || errs[0].Line != 2 || !strings.Contains(errs[0].Error(), "surface exploded") {
		t.Errorf("errors = %v", errs)
	}
}

func TestBanner(t *testing.T) {
	_, buf, _ := run(t, "print(1)", WithBanner(true))
	equalLines(t, buf.Lines(), []string{BannerStart, "1", BannerEnd})
}

func TestEnvironmentFreshPerRun(t *testing.T) {
	buf := &console.Buffer{}
	exec := New(context.Background(), WithConsole(buf), WithSurface(&mockSurface{}))
	if err := exec.Run("x = 1"); err != nil {
		t.Fatal(err)
	}
	if err := exec.Run("print(x)"); err != nil {
		t.Fatal(err)
	}
	if errs := errorLines(buf); len(errs) != 1 {
		t.Errorf("expected x to be undefined on the second run, got %v", buf.Lines())
	}
}

// ---------------------------------------------------------------------------
// Generated program
// ---------------------------------------------------------------------------

func TestGeneratedProgram(t *testing.T) {
	program := src(
		"def is_prime(n):",
		"    if n <= 1:",
		"        return False",
		"    return True",
		"",
		"set_fill_mode(True)",
		`set_drawing_color("#ff0000")`,
		"count = 0",
		"for i in range(1, 10 + 1):",
		"    if is_prime(i):",
		"        count += 1",
		"        draw_circle(i * 20, 50, 5)",
		"    else:",
		"        pass",
		"print('primes: ' + str(count))",
	)
	_, buf, surf := run(t, program, WithBanner(true))
	if w := warnings(buf); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
	if errs := errorLines(buf); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	equalLines(t, output(buf), []string{"primes: 4"})
	if n := len(surf.ops("circle")); n != 4 {
		t.Errorf("circles = %d, want 4", n)
	}
}
