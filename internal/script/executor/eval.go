package executor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/IKKNIGHT/PureBlocks/internal/script/ast"
	"github.com/IKKNIGHT/PureBlocks/internal/script/parser"
	"github.com/IKKNIGHT/PureBlocks/internal/script/token"
	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// EvalError reports an expression that could not be reduced to a value.
type EvalError struct {
	Expr string
	Line int // 0 when evaluated outside a program
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// DefaultMaxRange caps the number of elements range() may produce.
const DefaultMaxRange = 1_000_000

// Evaluate parses and evaluates a single expression against env.
func Evaluate(expr string, env *variable.Environment) (interface{}, error) {
	tree, err := parser.ParseExpression(strings.TrimSpace(expr))
	if err != nil {
		return nil, &EvalError{Expr: expr, Err: err}
	}
	ev := evaluator{env: env, maxRange: DefaultMaxRange}
	val, err := ev.eval(tree)
	if err != nil {
		return nil, &EvalError{Expr: expr, Err: err}
	}
	return val, nil
}

// ---------------------------------------------------------------------------
// Tree walker
// ---------------------------------------------------------------------------

type evaluator struct {
	env      *variable.Environment
	maxRange int
}

func (v *evaluator) eval(expr ast.Expression) (interface{}, error) {
	switch ex := expr.(type) {
	case *ast.EmptyExpr:
		return nil, nil

	case *ast.NumberLit:
		return ex.Value, nil

	case *ast.StringLit:
		return ex.Value, nil

	case *ast.BoolLit:
		return ex.Value, nil

	case *ast.Identifier:
		return v.env.Lookup(ex.Name)

	case *ast.BinaryExpr:
		return v.evalBinary(ex)

	case *ast.UnaryExpr:
		return v.evalUnary(ex)

	case *ast.ListLit:
		elems := make([]interface{}, len(ex.Elements))
		for i, elem := range ex.Elements {
			val, err := v.eval(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			elems[i] = val
		}
		return elems, nil

	case *ast.IndexExpr:
		return v.evalIndex(ex)

	case *ast.CallExpr:
		args := make([]interface{}, len(ex.Args))
		for i, argExpr := range ex.Args {
			val, err := v.eval(argExpr)
			if err != nil {
				return nil, fmt.Errorf("%s() argument %d: %w", ex.Name, i+1, err)
			}
			args[i] = val
		}
		return v.callBuiltin(ex.Name, args)

	default:
		return nil, fmt.Errorf("unknown expression type %T", expr)
	}
}

func (v *evaluator) evalBinary(ex *ast.BinaryExpr) (interface{}, error) {
	// and/or short-circuit and yield the deciding operand.
	if ex.Op == token.TOKEN_AND || ex.Op == token.TOKEN_OR {
		left, err := v.eval(ex.Left)
		if err != nil {
			return nil, err
		}
		if variable.IsTruthy(left) == (ex.Op == token.TOKEN_OR) {
			return left, nil
		}
		return v.eval(ex.Right)
	}

	left, err := v.eval(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := v.eval(ex.Right)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case token.TOKEN_PLUS:
		return variable.Add(left, right)
	case token.TOKEN_MINUS:
		return variable.Subtract(left, right)
	case token.TOKEN_STAR:
		return variable.Multiply(left, right)
	case token.TOKEN_SLASH:
		return variable.Divide(left, right)
	case token.TOKEN_PERCENT:
		return variable.Modulo(left, right)
	case token.TOKEN_POWER:
		return variable.Power(left, right)
	case token.TOKEN_EQ:
		return variable.Equal(left, right), nil
	case token.TOKEN_NEQ:
		return !variable.Equal(left, right), nil
	case token.TOKEN_GT, token.TOKEN_LT, token.TOKEN_GTE, token.TOKEN_LTE:
		cmp, cmpErr := variable.Compare(left, right)
		if errors.Is(cmpErr, variable.ErrUnordered) {
			return false, nil
		}
		if cmpErr != nil {
			return nil, cmpErr
		}
		switch ex.Op {
		case token.TOKEN_GT:
			return cmp > 0, nil
		case token.TOKEN_LT:
			return cmp < 0, nil
		case token.TOKEN_GTE:
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	default:
		return nil, fmt.Errorf("unknown binary operator %s", ex.Op)
	}
}

func (v *evaluator) evalUnary(ex *ast.UnaryExpr) (interface{}, error) {
	val, err := v.eval(ex.Operand)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case token.TOKEN_NOT:
		return !variable.IsTruthy(val), nil
	case token.TOKEN_MINUS:
		return variable.Negate(val)
	case token.TOKEN_PLUS:
		neg, err := variable.Negate(val)
		if err != nil {
			return nil, fmt.Errorf("cannot apply unary + to %s", variable.TypeName(val))
		}
		return -neg.(float64), nil
	default:
		return nil, fmt.Errorf("unknown unary operator %s", ex.Op)
	}
}

func (v *evaluator) evalIndex(ex *ast.IndexExpr) (interface{}, error) {
	obj, err := v.eval(ex.Object)
	if err != nil {
		return nil, err
	}
	idx, err := v.eval(ex.Index)
	if err != nil {
		return nil, err
	}
	i, err := variable.ToInt(idx)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	switch container := obj.(type) {
	case []interface{}:
		pos, ok := normalizeIndex(i, len(container))
		if !ok {
			return nil, fmt.Errorf("list index %d out of range", i)
		}
		return container[pos], nil
	case string:
		runes := []rune(container)
		pos, ok := normalizeIndex(i, len(runes))
		if !ok {
			return nil, fmt.Errorf("string index %d out of range", i)
		}
		return string(runes[pos]), nil
	default:
		return nil, fmt.Errorf("cannot index %s", variable.TypeName(obj))
	}
}

// normalizeIndex maps negative indexes from the end.
func normalizeIndex(i int64, n int) (int, bool) {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

// iterate returns the elements a for loop visits. Anything other than a list
// or string yields nothing.
func iterate(val interface{}) []interface{} {
	switch seq := val.(type) {
	case []interface{}:
		return seq
	case string:
		out := make([]interface{}, 0, utf8.RuneCountInString(seq))
		for _, r := range seq {
			out = append(out, string(r))
		}
		return out
	default:
		return nil
	}
}
