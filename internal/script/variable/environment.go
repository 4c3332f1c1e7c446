package variable

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUndefinedName is returned when reading a name that was never assigned.
var ErrUndefinedName = errors.New("undefined name")

// Environment is the single flat variable store for one program run. There
// are no nested scopes: loop variables and assignments inside blocks are
// visible after the block ends.
type Environment struct {
	vars map[string]interface{}
}

// NewEnvironment creates an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]interface{})}
}

// ---------------------------------------------------------------------------
// Variable operations
// ---------------------------------------------------------------------------

// Get retrieves a variable. Returns (nil, false) if it was never assigned.
func (e *Environment) Get(name string) (interface{}, bool) {
	val, ok := e.vars[name]
	return val, ok
}

// Lookup is Get with an error wrapping ErrUndefinedName for missing names.
func (e *Environment) Lookup(name string) (interface{}, error) {
	val, ok := e.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedName, name)
	}
	return val, nil
}

// Set creates or overwrites a variable.
func (e *Environment) Set(name string, value interface{}) {
	e.vars[name] = value
}

// Delete removes a variable. Returns an error if it does not exist.
func (e *Environment) Delete(name string) error {
	if _, ok := e.vars[name]; !ok {
		return fmt.Errorf("variable %q not found", name)
	}
	delete(e.vars, name)
	return nil
}

// Exists reports whether name has been assigned.
func (e *Environment) Exists(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Names returns the assigned names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns every variable rendered with ToString, keyed by name.
func (e *Environment) Snapshot() map[string]string {
	out := make(map[string]string, len(e.vars))
	for name, val := range e.vars {
		out[name] = ToString(val)
	}
	return out
}
