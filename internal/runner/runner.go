// Package runner executes one PureBlocks program end to end: it prepares a
// recording canvas from the configuration, fans console output out to every
// configured sink, runs the executor and persists the outcome.
package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/IKKNIGHT/PureBlocks/internal/config"
	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/host"
	"github.com/IKKNIGHT/PureBlocks/internal/script/executor"
	"github.com/IKKNIGHT/PureBlocks/internal/store"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/record"
)

// Event types passed to the events callback.
const (
	EventRunStarted  = "run_started"
	EventConsole     = "console"
	EventDraw        = "draw"
	EventRunFinished = "run_finished"
)

// ConsoleEvent is the payload of EventConsole.
type ConsoleEvent struct {
	RunID string        `json:"run_id"`
	Entry console.Entry `json:"entry"`
}

// DrawEvent is the payload of EventDraw.
type DrawEvent struct {
	RunID   string         `json:"run_id"`
	Command record.Command `json:"command"`
}

// Result is the outcome of one run.
type Result struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Error     string            `json:"error,omitempty"`
	Warnings  int               `json:"warnings"`
	Errors    int               `json:"errors"`
	Console   []console.Entry   `json:"console"`
	Drawing   record.Drawing    `json:"drawing"`
	Variables map[string]string `json:"variables"`
}

// Summary is a one-line description of the result.
func (r *Result) Summary() string {
	if r.Error != "" {
		return r.Error
	}
	return fmt.Sprintf("%d warnings, %d errors", r.Warnings, r.Errors)
}

// Runner holds the collaborators shared by every run.
type Runner struct {
	cfg      *config.Config
	registry *host.Registry
	store    *store.Store
	rdb      *redis.Client
	stream   string
	console  console.Sink
	events   func(eventType string, payload interface{})
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists every run and its console lines.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithRedis appends console entries to a Redis stream.
func WithRedis(rdb *redis.Client, stream string) Option {
	return func(r *Runner) {
		r.rdb = rdb
		r.stream = stream
	}
}

// WithConsole adds a sink that sees the console of every run, such as a
// terminal writer.
func WithConsole(s console.Sink) Option {
	return func(r *Runner) { r.console = s }
}

// WithEvents registers a callback for live run events. Hub.BroadcastEvent
// has the right shape.
func WithEvents(fn func(eventType string, payload interface{})) Option {
	return func(r *Runner) { r.events = fn }
}

// WithRegistry replaces the default host operations.
func WithRegistry(reg *host.Registry) Option {
	return func(r *Runner) { r.registry = reg }
}

// New creates a Runner. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{cfg: cfg, registry: host.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the configuration runs are prepared from.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

func (r *Runner) emit(eventType string, payload interface{}) {
	if r.events != nil {
		r.events(eventType, payload)
	}
}

// Run executes source under a fresh run id. Per-statement problems are part
// of the result; the returned error is non-nil only when the run could not
// start or was cancelled, and even then the partial result is returned.
func (r *Runner) Run(ctx context.Context, source string) (*Result, error) {
	id := uuid.NewString()
	canvas := r.cfg.Canvas

	if r.store != nil {
		if err := r.store.CreateRun(id, source); err != nil {
			return nil, fmt.Errorf("creating run: %w", err)
		}
	}
	r.emit(EventRunStarted, map[string]string{"run_id": id})

	rec := record.New(canvas.Width, canvas.Height, canvas.BackgroundColor())
	if r.events != nil {
		rec.OnCommand = func(c record.Command) { r.emit(EventDraw, DrawEvent{RunID: id, Command: c}) }
	}
	canvas.Prime(rec)

	buf := &console.Buffer{}
	sinks := []console.Sink{buf, r.console}
	if r.store != nil {
		sinks = append(sinks, r.store.ConsoleSink(id))
	}
	if r.rdb != nil {
		sinks = append(sinks, console.NewRedisStream(ctx, r.rdb, r.stream, id))
	}
	if r.events != nil {
		sinks = append(sinks, console.Func(func(e console.Entry) {
			r.emit(EventConsole, ConsoleEvent{RunID: id, Entry: e})
		}))
	}

	exec := executor.New(ctx,
		executor.WithSurface(rec),
		executor.WithRegistry(r.registry),
		executor.WithConsole(console.Multi(sinks...)),
		executor.WithWhileLimit(r.cfg.Interpreter.WhileLimit),
		executor.WithMaxRange(r.cfg.Interpreter.MaxRange),
		executor.WithBanner(r.cfg.Interpreter.Banner),
	)
	runErr := exec.Run(source)

	res := &Result{
		ID:        id,
		Status:    store.StatusCompleted,
		Warnings:  exec.Warnings(),
		Errors:    len(exec.Errors()),
		Console:   buf.Entries(),
		Drawing:   rec.Drawing(),
		Variables: exec.Env().Snapshot(),
	}
	if runErr != nil {
		res.Status = store.StatusFailed
		res.Error = runErr.Error()
	}

	if r.store != nil {
		if err := r.store.FinishRun(id, res.Status, res.Warnings, res.Errors, res.Summary(), res.Drawing); err != nil {
			log.Printf("runner: finishing run %s: %v", id, err)
		}
	}
	r.emit(EventRunFinished, map[string]interface{}{
		"run_id":   id,
		"status":   res.Status,
		"warnings": res.Warnings,
		"errors":   res.Errors,
	})
	return res, runErr
}
