package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IKKNIGHT/PureBlocks/internal/api"
	"github.com/IKKNIGHT/PureBlocks/internal/console"
	"github.com/IKKNIGHT/PureBlocks/internal/runner"
	"github.com/IKKNIGHT/PureBlocks/internal/store"
)

const serverVersion = "1.0.0"

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	listenAddr := fs.String("addr", "", "HTTP listen address (default: config server.addr)")
	dbPath := fs.String("db", "", "SQLite database path (default: config server.db)")
	redisAddr := fs.String("redis", "", "Redis address for the console stream (default: config server.redis)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	addr := firstOr(*listenAddr, cfg.Server.Addr)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(firstOr(*dbPath, cfg.Server.DB))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Opened database at %s", firstOr(*dbPath, cfg.Server.DB))

	wsHub := api.NewHub()
	opts := []runner.Option{
		runner.WithStore(db),
		runner.WithEvents(wsHub.BroadcastEvent),
	}

	var redisMon *console.HealthMonitor
	if raddr := firstOr(*redisAddr, cfg.Server.Redis); raddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: raddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis at %s not reachable yet: %v", raddr, err)
		} else {
			log.Printf("Connected to Redis at %s", raddr)
		}
		opts = append(opts, runner.WithRedis(rdb, cfg.Server.Stream))
		redisMon = console.NewHealthMonitor(rdb, 5*time.Second, func(h console.StreamHealth) {
			wsHub.BroadcastEvent("redis_health", h)
		})
	}

	handler := &api.Handler{
		Runner:      runner.New(cfg, opts...),
		Store:       db,
		Hub:         wsHub,
		RedisHealth: redisMon,
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"pureblocks","version":"` + serverVersion + `"}`))
	})

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		wsHub.Run(ctx)
	}()

	if redisMon != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			redisMon.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	wg.Wait()
	log.Println("Shutdown complete")
}
