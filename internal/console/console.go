// Package console carries program-visible output lines from the interpreter
// to wherever they are displayed: a terminal, a buffer, a Redis stream or a
// WebSocket hub.
package console

import (
	"fmt"
	"strings"
	"sync"
)

// Level classifies a console line.
type Level int

const (
	LevelOutput Level = iota // print() output
	LevelInfo                // banners and host operation descriptions
	LevelWarn                // unsupported syntax, loop cap
	LevelError               // per-statement failures
)

var levelNames = [...]string{"output", "info", "warn", "error"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	for i, name := range levelNames {
		if name == string(b) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown console level %q", b)
}

// Entry is one console line. Line is the source line that produced it, or 0
// for run-level messages such as banners.
type Entry struct {
	Level Level  `json:"level"`
	Line  int    `json:"line,omitempty"`
	Text  string `json:"text"`
}

// Sink is an append-only line emitter.
type Sink interface {
	Emit(e Entry)
}

// ---------------------------------------------------------------------------
// Buffer
// ---------------------------------------------------------------------------

// Buffer collects entries in memory. It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
}

// Emit implements Sink.
func (b *Buffer) Emit(e Entry) {
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

// Entries returns a copy of the collected entries.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Lines returns the text of every entry, optionally filtered by level.
func (b *Buffer) Lines(levels ...Level) []string {
	var out []string
	for _, e := range b.Entries() {
		if len(levels) > 0 && !hasLevel(levels, e.Level) {
			continue
		}
		out = append(out, e.Text)
	}
	return out
}

// String joins every line with newlines.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}

func hasLevel(levels []Level, l Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Multi
// ---------------------------------------------------------------------------

type multiSink []Sink

func (m multiSink) Emit(e Entry) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans every entry out to each non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	var m multiSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

// Func adapts a function to the Sink interface.
type Func func(Entry)

// Emit implements Sink.
func (f Func) Emit(e Entry) { f(e) }
