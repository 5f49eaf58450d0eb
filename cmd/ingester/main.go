package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/nse-data/internal/catalog"
	"github.com/rickgao/nse-data/internal/config"
	"github.com/rickgao/nse-data/internal/database"
	"github.com/rickgao/nse-data/internal/ingest"
	"github.com/rickgao/nse-data/internal/ledger"
	"github.com/rickgao/nse-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	csvRoot := flag.String("dir", "", "directory to scan recursively for CSV files")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if *csvRoot == "" {
		logger.Error("no CSV directory given, pass -dir")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	// Discover work
	sources, err := ingest.FindCSVFiles(*csvRoot)
	if err != nil {
		logger.Error("failed to scan for CSV files", "dir", *csvRoot, "error", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		logger.Warn("no CSV files found", "dir", *csvRoot)
		return
	}
	logger.Info("discovered CSV files", "dir", *csvRoot, "files", len(sources))

	// Wire the pipeline
	cat := catalog.New(pool, logger)
	ticks := ledger.New(ledger.Config{ChunkSize: cfg.Ingest.ChunkSize}, pool, logger)
	pipeline := ingest.New(ingest.Config{Workers: cfg.Ingest.Workers}, cat, ticks, logger)

	start := time.Now()
	results := pipeline.Run(ctx, sources)

	var ok, failed, rows int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		rows += r.Rows
	}

	logger.Info("ingestion finished",
		"files", len(results),
		"succeeded", ok,
		"failed", failed,
		"rows", rows,
		"elapsed", time.Since(start),
	)

	if ok == 0 {
		os.Exit(1)
	}
}
