// Package variable holds the runtime value model of PureBlocks and the
// variable environment.
//
// Values are plain Go values carried as interface{}:
//
//	float64        number
//	string         text
//	bool           True / False
//	[]interface{}  list (produced by range and list literals)
//	nil            undefined
package variable

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned by Divide and Modulo for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// MaxStringLen is the longest string concatenation or repetition may build.
const MaxStringLen = 1 << 20

// ErrStringTooLong is returned when a string result would exceed MaxStringLen.
var ErrStringTooLong = fmt.Errorf("string longer than %d bytes", MaxStringLen)

// ErrUnordered is returned by Compare when either side is NaN. Every ordering
// comparison involving NaN is false.
var ErrUnordered = errors.New("unordered comparison")

// ---------------------------------------------------------------------------
// Type helpers
// ---------------------------------------------------------------------------

// TypeName returns the type name of a value as used in error messages.
func TypeName(v interface{}) string {
	if v == nil {
		return "undefined"
	}
	switch v.(type) {
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "bool"
	case []interface{}:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ToNumber coerces numbers, booleans and numeric strings to float64. The
// second result is false when v has no numeric reading.
func ToNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToFloat converts v to float64 or returns an error naming its type.
func ToFloat(v interface{}) (float64, error) {
	f, ok := ToNumber(v)
	if !ok {
		if s, isStr := v.(string); isStr {
			return 0, fmt.Errorf("cannot convert string %q to number", s)
		}
		return 0, fmt.Errorf("cannot convert %s to number", TypeName(v))
	}
	return f, nil
}

// ToInt converts v to an integer, truncating toward zero.
func ToInt(v interface{}) (int64, error) {
	f, err := ToFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot convert %s to integer", FormatNumber(f))
	}
	return int64(f), nil
}

// ToString renders a value the way print shows it.
func ToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case string:
		return val
	case float64:
		return FormatNumber(val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case []interface{}:
		return formatList(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Repr renders a value as it would appear inside a list: strings are quoted.
func Repr(v interface{}) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return ToString(v)
}

func formatList(items []interface{}) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Repr(item))
	}
	b.WriteByte(']')
	return b.String()
}

// FormatNumber renders f with no fractional part when integral and with an
// exponent outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IsTruthy reports the truthiness of a value.
// Falsy: undefined, False, 0, NaN, "", [].
func IsTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	default:
		return true
	}
}

// ---------------------------------------------------------------------------
// Arithmetic operations
// ---------------------------------------------------------------------------

// Add adds numbers, concatenates when either side is a string and joins
// two lists.
func Add(a, b interface{}) (interface{}, error) {
	_, aStr := a.(string)
	_, bStr := b.(string)
	if aStr || bStr {
		sa, sb := ToString(a), ToString(b)
		if len(sa)+len(sb) > MaxStringLen {
			return nil, ErrStringTooLong
		}
		return sa + sb, nil
	}
	if la, ok := a.([]interface{}); ok {
		if lb, ok := b.([]interface{}); ok {
			out := make([]interface{}, 0, len(la)+len(lb))
			out = append(out, la...)
			return append(out, lb...), nil
		}
	}
	fa, fb, err := numericPair("add", a, b)
	if err != nil {
		return nil, err
	}
	return fa + fb, nil
}

// Subtract performs subtraction. Numeric only.
func Subtract(a, b interface{}) (interface{}, error) {
	fa, fb, err := numericPair("subtract", a, b)
	if err != nil {
		return nil, err
	}
	return fa - fb, nil
}

// Multiply multiplies numbers. A string times a non-negative whole number
// repeats the string.
func Multiply(a, b interface{}) (interface{}, error) {
	if s, ok := a.(string); ok {
		return repeat(s, b)
	}
	if s, ok := b.(string); ok {
		return repeat(s, a)
	}
	fa, fb, err := numericPair("multiply", a, b)
	if err != nil {
		return nil, err
	}
	return fa * fb, nil
}

func repeat(s string, n interface{}) (interface{}, error) {
	f, ok := n.(float64)
	if !ok || f < 0 || f != math.Trunc(f) {
		return nil, fmt.Errorf("cannot multiply string by %s", TypeName(n))
	}
	if s == "" {
		return "", nil
	}
	if f > float64(MaxStringLen/len(s)) {
		return nil, ErrStringTooLong
	}
	return strings.Repeat(s, int(f)), nil
}

// Divide performs true division. Returns ErrDivisionByZero for a zero divisor.
func Divide(a, b interface{}) (interface{}, error) {
	fa, fb, err := numericPair("divide", a, b)
	if err != nil {
		return nil, err
	}
	if fb == 0 {
		return nil, ErrDivisionByZero
	}
	return fa / fb, nil
}

// Modulo returns the remainder with the sign of the dividend.
func Modulo(a, b interface{}) (interface{}, error) {
	fa, fb, err := numericPair("modulo", a, b)
	if err != nil {
		return nil, err
	}
	if fb == 0 {
		return nil, ErrDivisionByZero
	}
	return math.Mod(fa, fb), nil
}

// Power raises a to the power b.
func Power(a, b interface{}) (interface{}, error) {
	fa, fb, err := numericPair("exponentiate", a, b)
	if err != nil {
		return nil, err
	}
	return math.Pow(fa, fb), nil
}

// Negate performs unary minus on a numeric value.
func Negate(v interface{}) (interface{}, error) {
	f, ok := arithmeticOperand(v)
	if !ok {
		return nil, fmt.Errorf("cannot negate %s", TypeName(v))
	}
	return -f, nil
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Equal reports value equality. Numbers compare numerically, a number equals a
// numeric string with the same value, booleans count as 0 and 1 against
// numbers, and lists compare element by element.
func Equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return va == vb
		}
		if _, ok := b.(float64); ok {
			fa, ok := ToNumber(va)
			return ok && fa == b.(float64)
		}
		return false

	case []interface{}:
		vb, ok := b.([]interface{})
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !Equal(va[i], vb[i]) {
				return false
			}
		}
		return true

	case bool:
		if vb, ok := b.(bool); ok {
			return va == vb
		}
	}

	if _, ok := b.(string); ok {
		return Equal(b, a)
	}

	fa, aok := arithmeticOperand(a)
	fb, bok := arithmeticOperand(b)
	return aok && bok && fa == fb
}

// Compare returns -1, 0, or 1 comparing a and b. Numbers (and booleans)
// compare numerically, strings lexicographically, and a number against a
// numeric string compares numerically.
func Compare(a, b interface{}) (int, error) {
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb), nil
	}

	fa, aok := orderable(a)
	fb, bok := orderable(b)
	if !aok || !bok {
		return 0, fmt.Errorf("cannot compare %s and %s", TypeName(a), TypeName(b))
	}
	switch {
	case fa < fb:
		return -1, nil
	case fa > fb:
		return 1, nil
	case fa == fb:
		return 0, nil
	}
	return 0, ErrUnordered
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// arithmeticOperand accepts numbers and booleans; strings never take part in
// arithmetic other than concatenation and repetition.
func arithmeticOperand(v interface{}) (float64, bool) {
	switch v.(type) {
	case float64, bool:
		return ToNumber(v)
	}
	return 0, false
}

func orderable(v interface{}) (float64, bool) {
	if _, ok := v.(string); ok {
		return ToNumber(v)
	}
	return arithmeticOperand(v)
}

func numericPair(verb string, a, b interface{}) (float64, float64, error) {
	fa, aok := arithmeticOperand(a)
	fb, bok := arithmeticOperand(b)
	if !aok || !bok {
		return 0, 0, fmt.Errorf("cannot %s %s and %s", verb, TypeName(a), TypeName(b))
	}
	return fa, fb, nil
}
