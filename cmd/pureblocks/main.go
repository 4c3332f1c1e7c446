// Command pureblocks runs PureBlocks programs from the command line and
// serves the run API.
//
// Usage:
//
//	pureblocks run    [flags] <file>        Execute a program
//	pureblocks check  [flags] <file>        Classify statements and report parse problems (JSON)
//	pureblocks watch  [flags] <file>        Re-run a program whenever it changes
//	pureblocks serve  [flags]               Serve the HTTP/WebSocket API
//	pureblocks render [flags] <run-id>      Export a stored run as PNG or PDF
//	pureblocks tail   [flags]               Follow console output from Redis
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/IKKNIGHT/PureBlocks/internal/config"
	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/runner"
	"github.com/IKKNIGHT/PureBlocks/internal/script/executor"
	"github.com/IKKNIGHT/PureBlocks/internal/script/lexer"
	"github.com/IKKNIGHT/PureBlocks/internal/store"
	"github.com/IKKNIGHT/PureBlocks/internal/surface/record"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "watch":
		cmdWatch(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "render":
		cmdRender(os.Args[2:])
	case "tail":
		cmdTail(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pureblocks run    [flags] <file>     Execute a program")
	fmt.Fprintln(os.Stderr, "  pureblocks check  [flags] <file>     Report statement kinds and parse problems")
	fmt.Fprintln(os.Stderr, "  pureblocks watch  [flags] <file>     Re-run a program whenever it changes")
	fmt.Fprintln(os.Stderr, "  pureblocks serve  [flags]            Serve the HTTP/WebSocket API")
	fmt.Fprintln(os.Stderr, "  pureblocks render [flags] <run-id>   Export a stored run as PNG or PDF")
	fmt.Fprintln(os.Stderr, "  pureblocks tail   [flags]            Follow console output from Redis")
}

// ---------------------------------------------------------------------------
// Shared flags
// ---------------------------------------------------------------------------

// runFlags are accepted by run and watch.
type runFlags struct {
	config  *string
	png     *string
	pdf     *string
	redis   *string
	stream  *string
	db      *string
	noColor *bool
}

func addRunFlags(fs *flag.FlagSet) *runFlags {
	return &runFlags{
		config:  fs.String("config", "", "YAML configuration file"),
		png:     fs.String("png", "", "write the drawing to this PNG file"),
		pdf:     fs.String("pdf", "", "write the drawing to this PDF file"),
		redis:   fs.String("redis", "", "Redis address for the console stream (default: config server.redis)"),
		stream:  fs.String("stream", "", "Redis stream name (default: config server.stream)"),
		db:      fs.String("db", "", "record the run in this SQLite database"),
		noColor: fs.Bool("no-color", false, "disable colored console output"),
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// connectRedis returns nil when addr is empty or the server does not answer.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: %s unreachable (%v), console stream disabled", addr, err)
		rdb.Close()
		return nil
	}
	return rdb
}

func openStore(path string) *store.Store {
	if path == "" {
		return nil
	}
	s, err := store.New(path)
	if err != nil {
		log.Fatalf("store: opening %s: %v", path, err)
	}
	return s
}

func firstOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func readSource(fs *flag.FlagSet, name string) (string, string) {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s requires a file path\n", name)
		os.Exit(1)
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	return path, string(data)
}

// newRunner wires the store and Redis stream selected by flags. A nil out
// keeps console output off the terminal. The returned cleanup closes them.
func newRunner(ctx context.Context, cfg *config.Config, f *runFlags, out console.Sink) (*runner.Runner, func()) {
	opts := []runner.Option{runner.WithConsole(out)}

	s := openStore(*f.db)
	if s != nil {
		opts = append(opts, runner.WithStore(s))
	}
	rdb := connectRedis(ctx, firstOr(*f.redis, cfg.Server.Redis))
	if rdb != nil {
		opts = append(opts, runner.WithRedis(rdb, firstOr(*f.stream, cfg.Server.Stream)))
	}

	return runner.New(cfg, opts...), func() {
		if s != nil {
			s.Close()
		}
		if rdb != nil {
			rdb.Close()
		}
	}
}

func exportDrawing(d record.Drawing, fontSize float64, pngPath, pdfPath string) error {
	if pngPath != "" {
		if err := writeFile(pngPath, func(w *os.File) error {
			return runner.WritePNG(w, d, fontSize)
		}); err != nil {
			return err
		}
	}
	if pdfPath != "" {
		if err := writeFile(pdfPath, func(w *os.File) error {
			return runner.WritePDF(w, d, fontSize)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ---------------------------------------------------------------------------
// run
// ---------------------------------------------------------------------------

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	f := addRunFlags(fs)
	jsonOut := fs.Bool("json", false, "print the run result as JSON instead of the console")
	fs.Parse(args)

	_, source := readSource(fs, "run")
	cfg := loadConfig(*f.config)

	var out console.Sink
	if !*jsonOut {
		out = console.NewWriter(os.Stdout, cfg.Console.Color && !*f.noColor)
	}

	ctx, cancel := signalContext()
	defer cancel()
	r, cleanup := newRunner(ctx, cfg, f, out)
	defer cleanup()

	res, err := r.Run(ctx, source)
	if res == nil {
		fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "execution stopped: %v\n", err)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "json encode: %v\n", err)
			os.Exit(1)
		}
	}
	if err := exportDrawing(res.Drawing, cfg.Canvas.FontSize, *f.png, *f.pdf); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}

	if err != nil || res.Errors > 0 {
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)

	_, source := readSource(fs, "check")
	diags := executor.Check(lexer.Split(source), nil)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diags); err != nil {
		fmt.Fprintf(os.Stderr, "json encode: %v\n", err)
		os.Exit(1)
	}

	for _, d := range diags {
		if len(d.Problems) > 0 || d.Kind == executor.KindUnsupported {
			os.Exit(1)
		}
	}
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	db := fs.String("db", "", "SQLite database holding the run (default: config server.db)")
	png := fs.String("png", "", "PNG output file")
	pdf := fs.String("pdf", "", "PDF output file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "render requires a run id")
		os.Exit(1)
	}
	if *png == "" && *pdf == "" {
		fmt.Fprintln(os.Stderr, "render requires --png and/or --pdf")
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)

	if err := renderRun(firstOr(*db, cfg.Server.DB), fs.Arg(0), cfg.Canvas.FontSize, *png, *pdf); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

// errNoDatabase is returned by renderRun when no database path is configured.
var errNoDatabase = errors.New("no database: pass --db or set server.db")

func renderRun(dbPath, runID string, fontSize float64, pngPath, pdfPath string) error {
	if dbPath == "" {
		return errNoDatabase
	}
	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer s.Close()

	d, err := s.GetDrawing(runID)
	if err != nil {
		return err
	}
	return exportDrawing(*d, fontSize, pngPath, pdfPath)
}

// ---------------------------------------------------------------------------
// tail
// ---------------------------------------------------------------------------

func cmdTail(args []string) {
	fs := flag.NewFlagSet("tail", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	redisAddr := fs.String("redis", "", "Redis address (default: config server.redis, then localhost:6379)")
	stream := fs.String("stream", "", "Redis stream name (default: config server.stream)")
	from := fs.String("from", "$", `start position: "$" for new entries, "0-0" for the whole stream`)
	run := fs.String("run", "", "only show entries of this run id")
	noColor := fs.Bool("no-color", false, "disable colored output")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	addr := firstOr(*redisAddr, firstOr(cfg.Server.Redis, "localhost:6379"))

	ctx, cancel := signalContext()
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Redis at %s: %v\n", addr, err)
		os.Exit(1)
	}

	w := console.NewWriter(os.Stdout, cfg.Console.Color && !*noColor)
	err := console.Tail(ctx, rdb, firstOr(*stream, cfg.Server.Stream), *from, func(m console.StreamMessage) {
		if *run != "" && m.RunID != *run {
			return
		}
		e := m.Entry
		if *run == "" {
			e.Text = fmt.Sprintf("[%.8s] %s", m.RunID, e.Text)
		}
		w.Emit(e)
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "tail: %v\n", err)
		os.Exit(1)
	}
}
