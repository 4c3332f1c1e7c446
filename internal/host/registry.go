package host

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/IKKNIGHT/PureBlocks/internal/script/variable"
)

// ---------------------------------------------------------------------------
// Parameter kinds and coercion
// ---------------------------------------------------------------------------

// Kind is the declared type of a host operation parameter.
type Kind int

const (
	Number Kind = iota // coerced to float64, NaN when not numeric
	String             // rendered with variable.ToString
	Bool               // True or the string "true"
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Coerce converts an evaluated argument to the Go type for kind. It never
// fails: a non-numeric value for a Number parameter becomes NaN.
func Coerce(kind Kind, v interface{}) interface{} {
	switch kind {
	case Number:
		if f, ok := variable.ToNumber(v); ok {
			return f
		}
		return math.NaN()
	case Bool:
		if b, ok := v.(bool); ok {
			return b
		}
		s, ok := v.(string)
		return ok && strings.EqualFold(strings.TrimSpace(s), "true")
	default:
		return variable.ToString(v)
	}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Operation is one named host procedure. Invoke receives arguments already
// coerced to the declared Params kinds (float64, string, bool) and returns a
// human-readable description of what it did.
type Operation struct {
	Name   string
	Params []Kind
	Invoke func(s Surface, args []interface{}) (string, error)
}

// Registry maps call names to host operations.
type Registry struct {
	ops map[string]*Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Register adds op. Registering a name twice is an error.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" {
		return fmt.Errorf("host operation has no name")
	}
	if op.Invoke == nil {
		return fmt.Errorf("host operation %q has no implementation", op.Name)
	}
	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("host operation %q already registered", op.Name)
	}
	r.ops[op.Name] = &op
	return nil
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call checks arity, coerces args and invokes the named operation on s.
func (r *Registry) Call(s Surface, name string, args []interface{}) (string, error) {
	op, ok := r.ops[name]
	if !ok {
		return "", fmt.Errorf("unknown host operation %q", name)
	}
	if len(args) != len(op.Params) {
		return "", fmt.Errorf("%s() takes %d arguments, got %d", name, len(op.Params), len(args))
	}
	coerced := make([]interface{}, len(args))
	for i, kind := range op.Params {
		coerced[i] = Coerce(kind, args[i])
	}
	return op.Invoke(s, coerced)
}
