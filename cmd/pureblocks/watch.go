package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/IKKNIGHT/PureBlocks/internal/config"
	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/runner"
)

// watchDebounce is how long the file must stay quiet before a re-run.
// Editors often save with several writes.
const watchDebounce = 500 * time.Millisecond

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	f := addRunFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "watch requires a file path")
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		log.Fatalf("watch: %v", err)
	}
	cfg := loadConfig(*f.config)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	out := console.NewWriter(os.Stdout, cfg.Console.Color && !*f.noColor)
	r, cleanup := newRunner(ctx, cfg, f, out)
	defer cleanup()

	// Watch the directory; editors that save by rename replace the file's inode.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("fsnotify: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Fatalf("watch %s: %v", filepath.Dir(path), err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	trigger := make(chan struct{}, 1)
	var debounce *time.Timer

	runOnce(ctx, r, cfg, f, path)
	log.Printf("watching %s", path)

	for {
		select {
		case sig := <-sigCh:
			log.Printf("received %v, stopping", sig)
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(ev.Name) != path {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			log.Printf("%s changed, re-running", filepath.Base(path))
			runOnce(ctx, r, cfg, f, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// runOnce executes the file and exports the drawing. Problems are reported
// and the watch loop keeps going.
func runOnce(ctx context.Context, r *runner.Runner, cfg *config.Config, f *runFlags, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("watch: %v", err)
		return
	}
	res, err := r.Run(ctx, string(data))
	if res == nil {
		log.Printf("watch: %v", err)
		return
	}
	if err := exportDrawing(res.Drawing, cfg.Canvas.FontSize, *f.png, *f.pdf); err != nil {
		log.Printf("watch: export: %v", err)
	}
	log.Printf("run %s: %s (%s)", res.ID, res.Status, res.Summary())
}
