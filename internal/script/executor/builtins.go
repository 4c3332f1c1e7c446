package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// builtinNames lists the functions callable from expressions. A def block
// that redefines one of them is skipped without a warning.
var builtinNames = map[string]bool{
	"is_prime": true,
	"range":    true,
	"len":      true,
	"str":      true,
	"int":      true,
	"float":    true,
	"abs":      true,
}

// callBuiltin evaluates a built-in function call with the given evaluated
// arguments.
func (v *evaluator) callBuiltin(name string, args []interface{}) (interface{}, error) {
	switch name {
	case "is_prime":
		if len(args) != 1 {
			return nil, fmt.Errorf("is_prime() requires 1 argument, got %d", len(args))
		}
		n, _ := variable.ToNumber(args[0])
		return IsPrime(n), nil

	case "range":
		if len(args) < 1 || len(args) > 3 {
			return nil, fmt.Errorf("range() requires 1 to 3 arguments, got %d", len(args))
		}
		bounds := make([]float64, len(args))
		for i, a := range args {
			f, err := variable.ToFloat(a)
			if err != nil {
				return nil, fmt.Errorf("range(): %w", err)
			}
			bounds[i] = f
		}
		return Range(v.maxRange, bounds...)

	case "len":
		if len(args) != 1 {
			return nil, fmt.Errorf("len() requires 1 argument, got %d", len(args))
		}
		switch val := args[0].(type) {
		case string:
			return float64(utf8.RuneCountInString(val)), nil
		case []interface{}:
			return float64(len(val)), nil
		default:
			return nil, fmt.Errorf("len(): cannot get length of %s", variable.TypeName(val))
		}

	case "str":
		if len(args) != 1 {
			return nil, fmt.Errorf("str() requires 1 argument, got %d", len(args))
		}
		return variable.ToString(args[0]), nil

	case "int":
		if len(args) != 1 {
			return nil, fmt.Errorf("int() requires 1 argument, got %d", len(args))
		}
		if s, ok := args[0].(string); ok {
			i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("int(): invalid literal %q", s)
			}
			return float64(i), nil
		}
		i, err := variable.ToInt(args[0])
		if err != nil {
			return nil, fmt.Errorf("int(): %w", err)
		}
		return float64(i), nil

	case "float":
		if len(args) != 1 {
			return nil, fmt.Errorf("float() requires 1 argument, got %d", len(args))
		}
		f, err := variable.ToFloat(args[0])
		if err != nil {
			return nil, fmt.Errorf("float(): %w", err)
		}
		return f, nil

	case "abs":
		if len(args) != 1 {
			return nil, fmt.Errorf("abs() requires 1 argument, got %d", len(args))
		}
		if _, ok := args[0].(string); ok {
			return nil, fmt.Errorf("abs(): bad operand type string")
		}
		f, err := variable.ToFloat(args[0])
		if err != nil {
			return nil, fmt.Errorf("abs(): %w", err)
		}
		return math.Abs(f), nil

	default:
		return nil, fmt.Errorf("unknown function %q", name)
	}
}

// IsPrime reports whether n is a prime integer, using trial division by 2 and
// 3 followed by 6k±1 candidates up to the square root. Non-integers and NaN
// are not prime.
func IsPrime(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if math.Mod(n, 2) == 0 || math.Mod(n, 3) == 0 {
		return false
	}
	for i := 5.0; i*i <= n; i += 6 {
		if math.Mod(n, i) == 0 || math.Mod(n, i+2) == 0 {
			return false
		}
	}
	return true
}

// Range builds the sequence for range(stop), range(start, stop) or
// range(start, stop, step). A positive step ascends while the value is below
// stop, a negative step descends while it is above stop, and a zero or NaN
// step yields an empty sequence. More than limit elements is an error.
func Range(limit int, args ...float64) ([]interface{}, error) {
	start, stop, step := 0.0, 0.0, 1.0
	switch len(args) {
	case 1:
		stop = args[0]
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	default:
		return nil, fmt.Errorf("range() requires 1 to 3 arguments, got %d", len(args))
	}

	if step == 0 || math.IsNaN(step) || math.IsNaN(start) || math.IsNaN(stop) {
		return []interface{}{}, nil
	}

	count := math.Ceil((stop - start) / step)
	if count <= 0 {
		return []interface{}{}, nil
	}
	if math.IsInf(count, 0) || count > float64(limit) {
		return nil, fmt.Errorf("range() of %s elements exceeds limit of %d", variable.FormatNumber(count), limit)
	}

	out := make([]interface{}, int(count))
	for k := range out {
		out[k] = start + float64(k)*step
	}
	return out, nil
}
