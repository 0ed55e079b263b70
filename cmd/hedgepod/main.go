// Command hedgepod is the program's wiring entry point. It opens the
// store, starts the library, replays command history, registers the
// Prometheus exporter if configured, and reads command lines from
// standard input until told to quit or interrupted. The terminal UI
// (viewport rendering, keymaps, the player) is a separate concern this
// entry point does not build; see internal/library for the subsystem it
// drives.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hedgepod-dev/hedgepod/internal/cmdparser"
	"github.com/hedgepod-dev/hedgepod/internal/config"
	"github.com/hedgepod-dev/hedgepod/internal/history"
	"github.com/hedgepod-dev/hedgepod/internal/library"
	"github.com/hedgepod-dev/hedgepod/internal/statuslog"
	"github.com/hedgepod-dev/hedgepod/internal/store"
)

func main() {
	envFile := flag.String("env-file", "", "optional KEY=value file to load before reading the environment")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus exporter listen address (overrides HEDGEPOD_METRICS_ADDR)")
	flag.Parse()

	if *envFile != "" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			log.Fatalf("load env file: %v", err)
		}
	}

	cfg := config.Load()
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	hist := history.WithCapacity(cfg.HistoryCapacity)
	if err := hist.LoadFile(cfg.HistoryPath); err != nil {
		log.Printf("load history: %v", err)
	}

	status := statuslog.New()
	lib := library.New(cfg, st, store.NewCache(st), status)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	lib.Update(ctx, library.UpdateQuery{Kind: library.UpdatePending})

	sess := &session{lib: lib, hist: hist, status: status}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Printf("hedgepod %s ready; data dir %s\n", config.Version, cfg.DataDir)
	for {
		select {
		case <-sig:
			fmt.Println("shutting down")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			cmd, err := cmdparser.Parse(line)
			if err != nil {
				log.Printf("parse %q: %v", line, err)
				continue
			}
			hist.Push(line)
			sess.dispatch(ctx, cmd)
			if sess.quit {
				return
			}
		}
	}
}
