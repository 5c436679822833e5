// Command skybench builds the baseline and the optimized airline indexes from
// the same dataset, replays a random query workload against both and writes
// a comparison report.
//
// The dataset is either generated or loaded from the configured source (a
// local directory, S3 or MinIO). The report is written to stdout or stored
// next to the dataset.
//
// Usage:
//
//	go run ./cmd/skybench [-config skybench.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults plus SKY_* environment)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("skybench failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the logger described by cfg.Logging. The config is
// validated, so the level always parses.
func newLogger(cfg *config.Config, w io.Writer) *skyindex.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Logging.Format, "json") {
		return skyindex.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return skyindex.NewLogger(slog.NewTextHandler(w, opts))
}
