// Command bridge exposes the live-input resource over a websocket. Clients
// queue press/hold/wait steps and receive the host status as it changes.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/monitor"
	"github.com/younwookim/tickhook/internal/application/remote"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8787", "Listen address")
	root := flag.String("root", "hooks", "Directory holding the host's resources")
	configDir := flag.String("config", "", "Directory with core.json overrides (embedded defaults when empty)")
	steps := flag.String("steps", "", "File of steps to queue at startup, one per line")
	advance := flag.Duration("advance", 5*time.Millisecond, "Sequencer resolution")
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Core.Logging.Level, Format: cfg.Core.Logging.Format})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetLogger(logger)

	fsys, err := storage.NewDir(*root)
	if err != nil {
		log.Fatalf("Failed to open root: %v", err)
	}
	live, err := monitor.NewLiveWriter(fsys, cfg.Core.Live.Path)
	if err != nil {
		log.Fatalf("Failed to create live input: %v", err)
	}

	seq := remote.NewSequencer(live)
	if *steps != "" {
		queued, err := queueFile(seq, *steps)
		if err != nil {
			log.Fatalf("Failed to read steps: %v", err)
		}
		logger.Info("queued startup steps", zap.Int("steps", queued))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := seq.Run(ctx, *advance); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sequencer stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", remote.NewHandler(seq, remote.HandlerConfig{FS: fsys, StatusName: cfg.Core.Status.Path}))
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("bridge listening", zap.String("addr", *addr), zap.String("root", fsys.Root()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		return config.Default()
	}
	return config.NewLoader(dir).LoadAll()
}

// queueFile queues every step in path. Blank lines and '#' comments are skipped.
func queueFile(seq *remote.Sequencer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var steps []remote.Step
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		st, err := remote.ParseStep(line)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", n, err)
		}
		steps = append(steps, st)
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	seq.Enqueue(steps...)
	return len(steps), nil
}
