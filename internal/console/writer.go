package console

import (
	"fmt"
	"io"
	"regexp"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var ansiRegex = regexp.MustCompile(`\033\[[0-9;]*m`)

// StripANSI removes all ANSI escape sequences from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// Writer prints one entry per line to an io.Writer, optionally coloring
// warnings yellow, errors red and info lines cyan.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewWriter creates a Writer. When color is false the text is written as is.
func NewWriter(w io.Writer, color bool) *Writer {
	return &Writer{w: w, color: color}
}

// Emit implements Sink.
func (w *Writer) Emit(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.color {
		fmt.Fprintln(w.w, e.Text)
		return
	}
	switch e.Level {
	case LevelWarn:
		fmt.Fprintln(w.w, colorYellow+e.Text+colorReset)
	case LevelError:
		fmt.Fprintln(w.w, colorRed+e.Text+colorReset)
	case LevelInfo:
		fmt.Fprintln(w.w, colorCyan+e.Text+colorReset)
	default:
		fmt.Fprintln(w.w, e.Text)
	}
}
