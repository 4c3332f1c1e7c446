// Package executor runs PureBlocks programs. It walks the statement sequence
// produced by the block splitter, recognizes statement forms by shape, drives
// the expression evaluator and dispatches host calls to a host.Registry
// operating on a host.Surface. Console output goes to a console.Sink.
//
// Per-statement failures never abort a run: they become "Error at line N"
// console lines and execution continues with the next sibling statement.
package executor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/host"
	"github.com/IKKNIGHT/PureBlocks/internal/script/ast"
	"github.com/IKKNIGHT/PureBlocks/internal/script/lexer"
	"github.com/IKKNIGHT/PureBlocks/internal/script/parser"
	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ErrNoSurface is returned by Run when no drawing surface was configured.
var ErrNoSurface = errors.New("no drawing surface available")

// ErrNoConsole is returned by Run when no console sink was configured.
var ErrNoConsole = errors.New("no console sink available")

// StatementError records a statement that failed during a run.
type StatementError struct {
	Line int
	Text string
	Err  error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// DefaultWhileLimit is the number of iterations after which a while loop is
// stopped with a warning.
const DefaultWhileLimit = 1000

// Banner lines written around a run when banners are enabled.
const (
	BannerStart = "Executing code..."
	BannerEnd   = "Code execution completed."
)

// Option configures the executor.
type Option func(*Executor)

// WithSurface sets the drawing surface host operations draw on.
func WithSurface(s host.Surface) Option {
	return func(e *Executor) { e.surface = s }
}

// WithRegistry replaces the default host operation table.
func WithRegistry(r *host.Registry) Option {
	return func(e *Executor) { e.registry = r }
}

// WithConsole sets the sink for print output, warnings and errors.
func WithConsole(c console.Sink) Option {
	return func(e *Executor) { e.console = c }
}

// WithWhileLimit sets the while-loop iteration cap.
func WithWhileLimit(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.whileLimit = n
		}
	}
}

// WithMaxRange sets the largest sequence range() may build.
func WithMaxRange(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxRange = n
		}
	}
}

// WithBanner enables the start and completion banner lines.
func WithBanner(on bool) Option {
	return func(e *Executor) { e.banner = on }
}

// ---------------------------------------------------------------------------
// Executor
// ---------------------------------------------------------------------------

// Executor is the run context: environment, host bindings and console sink.
// It is not safe for concurrent use; run one program at a time.
type Executor struct {
	ctx        context.Context
	env        *variable.Environment
	registry   *host.Registry
	surface    host.Surface
	console    console.Sink
	whileLimit int
	maxRange   int
	banner     bool

	exprs    map[string]ast.Expression
	warnings int
	errs     []*StatementError
}

// New creates a new Executor with the given context and options.
func New(ctx context.Context, opts ...Option) *Executor {
	e := &Executor{
		ctx:        ctx,
		env:        variable.NewEnvironment(),
		registry:   host.Default(),
		whileLimit: DefaultWhileLimit,
		maxRange:   DefaultMaxRange,
		exprs:      make(map[string]ast.Expression),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Env returns the environment of the current or last run.
func (e *Executor) Env() *variable.Environment {
	return e.env
}

// GetVar returns a variable value from the executor's environment.
func (e *Executor) GetVar(name string) (interface{}, bool) {
	return e.env.Get(name)
}

// Warnings returns the number of warnings emitted by the last run.
func (e *Executor) Warnings() int {
	return e.warnings
}

// Errors returns the statements that failed during the last run.
func (e *Executor) Errors() []*StatementError {
	return e.errs
}

// Run splits source into statements and executes them.
func (e *Executor) Run(source string) error {
	return e.Execute(lexer.Split(source))
}

// Execute runs an already split statement sequence. It returns an error only
// for missing host bindings or when the context is cancelled.
func (e *Executor) Execute(stmts []ast.Statement) error {
	if e.console == nil {
		return ErrNoConsole
	}
	if e.surface == nil {
		return ErrNoSurface
	}

	e.env = variable.NewEnvironment()
	e.warnings = 0
	e.errs = nil

	if e.banner {
		e.emit(console.LevelInfo, 0, BannerStart)
	}
	if _, err := e.execBlock(stmts, 0, len(stmts), 0); err != nil {
		return err
	}
	if e.banner {
		e.emit(console.LevelInfo, 0, BannerEnd)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Console helpers
// ---------------------------------------------------------------------------

func (e *Executor) emit(level console.Level, line int, text string) {
	e.console.Emit(console.Entry{Level: level, Line: line, Text: text})
}

func (e *Executor) warnIndented(st ast.Statement) {
	e.warnings++
	e.emit(console.LevelWarn, st.Line, fmt.Sprintf("Warning: Unexpected indentation at line %d, block skipped", st.Line))
}

func (e *Executor) warnUnsupported(st ast.Statement) {
	e.warnings++
	e.emit(console.LevelWarn, st.Line, fmt.Sprintf("Warning: Unsupported syntax at line %d: %s", st.Line, st.Text))
}

func (e *Executor) fail(st ast.Statement, err error) {
	e.errs = append(e.errs, &StatementError{Line: st.Line, Text: st.Text, Err: err})
	e.emit(console.LevelError, st.Line, fmt.Sprintf("Error at line %d: %v", st.Line, err))
}

// ---------------------------------------------------------------------------
// Block structure
// ---------------------------------------------------------------------------

// execBlock executes stmts[start:end] at nesting depth base and returns the
// index at which it stopped: end, or the first statement indented less than
// base. Statements indented deeper than base follow no header that consumed
// them; each such run is skipped with one warning.
func (e *Executor) execBlock(stmts []ast.Statement, start, end, base int) (int, error) {
	i := start
	for i < end {
		if err := e.ctx.Err(); err != nil {
			return i, err
		}
		st := stmts[i]
		if st.Indent < base {
			return i, nil
		}
		if st.Indent > base {
			e.warnIndented(st)
			for i < end && stmts[i].Indent > base {
				i++
			}
			continue
		}
		next, err := e.safeStatement(stmts, i, end)
		if err != nil {
			return next, err
		}
		i = next
	}
	return i, nil
}

// blockEnd returns the index just past the body of the header at stmts[h]:
// the first later statement indented no deeper than the header.
func blockEnd(stmts []ast.Statement, h, end int) int {
	for j := h + 1; j < end; j++ {
		if stmts[j].Indent <= stmts[h].Indent {
			return j
		}
	}
	return end
}

// runBody executes the body of the header at stmts[h], which ends at bodyEnd.
// The body's depth is set by its first statement.
func (e *Executor) runBody(stmts []ast.Statement, h, bodyEnd int) error {
	start := h + 1
	if start >= bodyEnd {
		return nil
	}
	stop, err := e.execBlock(stmts, start, bodyEnd, stmts[start].Indent)
	if err != nil {
		return err
	}
	if stop < bodyEnd {
		st := stmts[stop]
		e.warnings++
		e.emit(console.LevelWarn, st.Line, fmt.Sprintf("Warning: Inconsistent indentation at line %d, rest of block skipped", st.Line))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Statement dispatch
// ---------------------------------------------------------------------------

var (
	forPattern    = regexp.MustCompile(`^for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+(.+):$`)
	defPattern    = regexp.MustCompile(`^def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(.*\)\s*:$`)
	assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*([-+*/]?)=(.*)$`)
	callPattern   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\(.*\)$`)
)

// safeStatement runs execStatement and turns a panic into a statement error,
// resuming after the statement's block.
func (e *Executor) safeStatement(stmts []ast.Statement, i, end int) (next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.fail(stmts[i], fmt.Errorf("internal error: %v", r))
			next, err = blockEnd(stmts, i, end), nil
		}
	}()
	return e.execStatement(stmts, i, end)
}

// execStatement runs the statement at stmts[i] and returns the index of the
// next statement to consider.
func (e *Executor) execStatement(stmts []ast.Statement, i, end int) (int, error) {
	st := stmts[i]
	text := st.Text

	switch {
	case isClause(text, "if"):
		return e.execIf(stmts, i, end)

	case isClause(text, "elif"), isClause(text, "else"):
		// Not preceded by an if at this depth.
		e.warnUnsupported(st)
		return blockEnd(stmts, i, end), nil

	case strings.HasPrefix(text, "for "):
		return e.execFor(stmts, i, end)

	case isClause(text, "while"):
		return e.execWhile(stmts, i, end)

	case strings.HasPrefix(text, "def "):
		if m := defPattern.FindStringSubmatch(text); m == nil || !builtinNames[m[1]] {
			e.warnUnsupported(st)
		}
		return blockEnd(stmts, i, end), nil

	case text == "pass":
		return i + 1, nil

	case strings.HasPrefix(text, "print(") && strings.HasSuffix(text, ")"):
		e.execPrint(st)
		return i + 1, nil
	}

	if m := matchAssignment(text); m != nil {
		e.execAssign(st, m[1], m[2], m[3])
		return i + 1, nil
	}

	if m := callPattern.FindStringSubmatch(text); m != nil {
		if _, ok := e.registry.Lookup(m[1]); ok {
			e.execHostCall(st, m[1])
			return i + 1, nil
		}
	}

	e.warnUnsupported(st)
	return i + 1, nil
}

// isClause reports whether text is the header "kw <something>:" or "kw:".
func isClause(text, kw string) bool {
	if !strings.HasPrefix(text, kw) || !strings.HasSuffix(text, ":") {
		return false
	}
	rest := text[len(kw):]
	return rest == ":" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '('
}

// clauseCondition returns the text between the keyword and the trailing colon.
func clauseCondition(text, kw string) string {
	return strings.TrimSpace(text[len(kw) : len(text)-1])
}

// matchAssignment recognizes "name = expr" and the augmented forms. Any text
// holding "==", ">=" or "<=" is never an assignment.
func matchAssignment(text string) []string {
	if !strings.Contains(text, "=") ||
		strings.Contains(text, "==") || strings.Contains(text, ">=") || strings.Contains(text, "<=") {
		return nil
	}
	return assignPattern.FindStringSubmatch(text)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// eval parses (with caching) and evaluates text. Failures are *EvalError.
func (e *Executor) eval(text string, line int) (interface{}, error) {
	text = strings.TrimSpace(text)
	tree, ok := e.exprs[text]
	if !ok {
		var err error
		tree, err = parser.ParseExpression(text)
		if err != nil {
			return nil, &EvalError{Expr: text, Line: line, Err: err}
		}
		e.exprs[text] = tree
	}
	ev := evaluator{env: e.env, maxRange: e.maxRange}
	val, err := ev.eval(tree)
	if err != nil {
		return nil, &EvalError{Expr: text, Line: line, Err: err}
	}
	return val, nil
}

func (e *Executor) evalArgs(st ast.Statement) ([]interface{}, error) {
	texts := SplitArgs(st.Text)
	args := make([]interface{}, len(texts))
	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("argument %d is empty", i+1)
		}
		val, err := e.eval(t, st.Line)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

// ---------------------------------------------------------------------------
// Simple statements
// ---------------------------------------------------------------------------

func (e *Executor) execPrint(st ast.Statement) {
	args, err := e.evalArgs(st)
	if err != nil {
		e.fail(st, err)
		return
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = variable.ToString(a)
	}
	e.emit(console.LevelOutput, st.Line, strings.Join(parts, " "))
}

func (e *Executor) execAssign(st ast.Statement, name, op, rhs string) {
	if strings.TrimSpace(rhs) == "" {
		e.fail(st, fmt.Errorf("missing value in assignment to %s", name))
		return
	}
	val, err := e.eval(rhs, st.Line)
	if err != nil {
		e.fail(st, err)
		return
	}

	if op != "" {
		cur, lookupErr := e.env.Lookup(name)
		if lookupErr != nil {
			e.fail(st, lookupErr)
			return
		}
		switch op {
		case "+":
			val, err = variable.Add(cur, val)
		case "-":
			val, err = variable.Subtract(cur, val)
		case "*":
			val, err = variable.Multiply(cur, val)
		case "/":
			val, err = variable.Divide(cur, val)
		}
		if err != nil {
			e.fail(st, fmt.Errorf("%s %s= : %w", name, op, err))
			return
		}
	}
	e.env.Set(name, val)
}

func (e *Executor) execHostCall(st ast.Statement, name string) {
	args, err := e.evalArgs(st)
	if err != nil {
		e.fail(st, err)
		return
	}
	desc, err := e.registry.Call(e.surface, name, args)
	if err != nil {
		e.fail(st, err)
		return
	}
	if desc != "" {
		e.emit(console.LevelInfo, st.Line, desc)
	}
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// execIf runs an if/elif/else chain starting at stmts[i]. At most one branch
// runs. A condition that fails to evaluate is reported and ends the chain.
func (e *Executor) execIf(stmts []ast.Statement, i, end int) (int, error) {
	indent := stmts[i].Indent
	taken := false
	kw := "if"
	j := i

	for {
		st := stmts[j]
		bodyEnd := blockEnd(stmts, j, end)

		if !taken {
			run := kw == "else"
			if !run {
				cond, err := e.eval(clauseCondition(st.Text, kw), st.Line)
				if err != nil {
					e.fail(st, err)
					taken = true
				} else {
					run = variable.IsTruthy(cond)
				}
			}
			if run {
				taken = true
				if err := e.runBody(stmts, j, bodyEnd); err != nil {
					return bodyEnd, err
				}
			}
		}

		if kw == "else" || bodyEnd >= end || stmts[bodyEnd].Indent != indent {
			return bodyEnd, nil
		}
		next := stmts[bodyEnd].Text
		switch {
		case isClause(next, "elif"):
			kw = "elif"
		case isClause(next, "else") && clauseCondition(next, "else") == "":
			kw = "else"
		default:
			return bodyEnd, nil
		}
		j = bodyEnd
	}
}

// execFor binds the loop variable to each element of the evaluated iterable
// and runs the body once per element.
func (e *Executor) execFor(stmts []ast.Statement, i, end int) (int, error) {
	st := stmts[i]
	bodyEnd := blockEnd(stmts, i, end)

	m := forPattern.FindStringSubmatch(st.Text)
	if m == nil {
		e.warnUnsupported(st)
		return bodyEnd, nil
	}
	name, iterable := m[1], m[2]

	seq, err := e.eval(iterable, st.Line)
	if err != nil {
		e.fail(st, err)
		return bodyEnd, nil
	}

	for _, item := range iterate(seq) {
		if err := e.ctx.Err(); err != nil {
			return bodyEnd, err
		}
		e.env.Set(name, item)
		if err := e.runBody(stmts, i, bodyEnd); err != nil {
			return bodyEnd, err
		}
	}
	return bodyEnd, nil
}

// execWhile runs the body while the condition holds, up to the iteration cap.
// The cap warning is emitted only when the condition is still true after
// whileLimit iterations.
func (e *Executor) execWhile(stmts []ast.Statement, i, end int) (int, error) {
	st := stmts[i]
	bodyEnd := blockEnd(stmts, i, end)
	condText := clauseCondition(st.Text, "while")

	for count := 0; ; count++ {
		if err := e.ctx.Err(); err != nil {
			return bodyEnd, err
		}
		cond, err := e.eval(condText, st.Line)
		if err != nil {
			e.fail(st, err)
			break
		}
		if !variable.IsTruthy(cond) {
			break
		}
		if count == e.whileLimit {
			e.warnings++
			e.emit(console.LevelWarn, st.Line, fmt.Sprintf(
				"Warning: Possible infinite loop at line %d. Execution stopped after %d iterations.",
				st.Line, e.whileLimit))
			break
		}
		if err := e.runBody(stmts, i, bodyEnd); err != nil {
			return bodyEnd, err
		}
	}
	return bodyEnd, nil
}
