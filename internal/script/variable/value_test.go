package variable

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

func TestToNumber(t *testing.T) {
	cases := []struct {
		name   string
		input  interface{}
		want   float64
		wantOK bool
	}{
		{"from float64", 3.14, 3.14, true},
		{"from true", true, 1, true},
		{"from false", false, 0, true},
		{"from string", " 2.5 ", 2.5, true},
		{"from invalid string", "abc", 0, false},
		{"from empty string", "", 0, false},
		{"from nil", nil, 0, false},
		{"from list", []interface{}{1.0}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToNumber(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	cases := []struct {
		name    string
		input   interface{}
		want    int64
		wantErr bool
	}{
		{"from float64", 3.9, 3, false},
		{"negative truncates toward zero", -3.9, -3, false},
		{"from string", "100", 100, false},
		{"from invalid string", "nope", 0, true},
		{"from NaN", math.NaN(), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToInt(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToString(t *testing.T) {
	// Computed at run time; a constant expression would fold to exactly 0.3.
	tenth, fifth := 0.1, 0.2
	cases := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, "undefined"},
		{"string", "hello", "hello"},
		{"integral", 5.0, "5"},
		{"negative", -12.0, "-12"},
		{"fraction", tenth + fifth, "0.30000000000000004"},
		{"large", 1e21, "1e+21"},
		{"small", 1.5e-7, "1.5e-7"},
		{"just below exponent", 123456789012.0, "123456789012"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"NaN", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"neg inf", math.Inf(-1), "-Infinity"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"list", []interface{}{1.0, "a", true}, "[1, 'a', True]"},
		{"nested list", []interface{}{[]interface{}{}, 2.5}, "[[], 2.5]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToString(tc.input); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		input interface{}
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0.0, false},
		{-1.0, true},
		{math.NaN(), false},
		{"", false},
		{"0", true},
		{[]interface{}{}, false},
		{[]interface{}{0.0}, true},
	}
	for _, tc := range cases {
		if got := IsTruthy(tc.input); got != tc.want {
			t.Errorf("IsTruthy(%#v) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name string
		fn   func(a, b interface{}) (interface{}, error)
		a, b interface{}
		want interface{}
	}{
		{"add numbers", Add, 2.0, 3.0, 5.0},
		{"add string left", Add, "n=", 4.0, "n=4"},
		{"add string right", Add, 4.0, "!", "4!"},
		{"add bool", Add, true, 1.0, 2.0},
		{"add lists", Add, []interface{}{1.0}, []interface{}{2.0}, []interface{}{1.0, 2.0}},
		{"subtract", Subtract, 5.0, 8.0, -3.0},
		{"multiply", Multiply, 2.5, 4.0, 10.0},
		{"repeat string", Multiply, "ab", 3.0, "ababab"},
		{"repeat string reversed", Multiply, 2.0, "x", "xx"},
		{"repeat empty string", Multiply, "", 1e19, ""},
		{"divide", Divide, 7.0, 2.0, 3.5},
		{"modulo", Modulo, 17.0, 5.0, 2.0},
		{"modulo negative dividend", Modulo, -7.0, 3.0, -1.0},
		{"power", Power, 2.0, 10.0, 1024.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(got, tc.want) || TypeName(got) != TypeName(tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	cases := []struct {
		name string
		fn   func(a, b interface{}) (interface{}, error)
		a, b interface{}
		is   error
	}{
		{"divide by zero", Divide, 1.0, 0.0, ErrDivisionByZero},
		{"modulo by zero", Modulo, 1.0, 0.0, ErrDivisionByZero},
		{"subtract string", Subtract, "5", 1.0, nil},
		{"add nil", Add, nil, 1.0, nil},
		{"multiply lists", Multiply, []interface{}{}, 2.0, nil},
		{"repeat fractional", Multiply, "a", 1.5, nil},
		{"power string", Power, 2.0, "3", nil},
		{"repeat overflowing count", Multiply, "ab", 1e19, ErrStringTooLong},
		{"repeat too long", Multiply, "a", float64(MaxStringLen + 1), ErrStringTooLong},
		{"concat too long", Add, strings.Repeat("a", MaxStringLen), "b", ErrStringTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn(tc.a, tc.b)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Errorf("got %v, want %v", err, tc.is)
			}
		})
	}
}

func TestNegate(t *testing.T) {
	if got, err := Negate(4.0); err != nil || got != -4.0 {
		t.Errorf("Negate(4) = %v, %v", got, err)
	}
	if got, err := Negate(true); err != nil || got != -1.0 {
		t.Errorf("Negate(True) = %v, %v", got, err)
	}
	if _, err := Negate("4"); err == nil {
		t.Error("expected error negating a string")
	}
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b interface{}
		want bool
	}{
		{"numbers", 1.0, 1.0, true},
		{"different numbers", 1.0, 2.0, false},
		{"number and numeric string", 5.0, "5", true},
		{"numeric string and number", "5.0", 5.0, true},
		{"number and text", 5.0, "five", false},
		{"strings", "a", "a", true},
		{"string case", "a", "A", false},
		{"bool and number", true, 1.0, true},
		{"false and zero", false, 0.0, true},
		{"bool and string", true, "True", false},
		{"bools", false, false, true},
		{"lists", []interface{}{1.0, "x"}, []interface{}{1.0, "x"}, true},
		{"lists differ", []interface{}{1.0}, []interface{}{1.0, 2.0}, false},
		{"list and string", []interface{}{}, "", false},
		{"nil and nil", nil, nil, true},
		{"nil and zero", nil, 0.0, false},
		{"NaN", math.NaN(), math.NaN(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%#v, %#v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Equal(tc.b, tc.a); got != tc.want {
				t.Errorf("Equal(%#v, %#v) = %v, want %v (symmetry)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b interface{}
		want int
	}{
		{"less", 1.0, 2.0, -1},
		{"greater", 3.0, 2.0, 1},
		{"equal", 2.0, 2.0, 0},
		{"strings", "apple", "banana", -1},
		{"string digits lexicographic", "10", "9", -1},
		{"numeric string vs number", "10", 9.0, 1},
		{"bool vs number", true, 0.5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compare(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCompareErrors(t *testing.T) {
	if _, err := Compare("abc", 1.0); err == nil {
		t.Error("expected error comparing text with number")
	}
	if _, err := Compare([]interface{}{}, 1.0); err == nil {
		t.Error("expected error comparing list with number")
	}
	if _, err := Compare(nil, 1.0); err == nil {
		t.Error("expected error comparing undefined")
	}
	if _, err := Compare(math.NaN(), 1.0); !errors.Is(err, ErrUnordered) {
		t.Errorf("expected ErrUnordered, got %v", err)
	}
}
