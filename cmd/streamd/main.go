package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/nse-data/internal/config"
	"github.com/rickgao/nse-data/internal/database"
	"github.com/rickgao/nse-data/internal/metrics"
	"github.com/rickgao/nse-data/internal/model"
	"github.com/rickgao/nse-data/internal/snapshot"
	"github.com/rickgao/nse-data/internal/version"
)

const writeTimeout = 10 * time.Second

// wsPusher writes snapshot pages to one websocket connection as JSON text
// frames.
type wsPusher struct {
	conn *websocket.Conn
}

func (p *wsPusher) Push(page model.SnapshotPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode snapshot page: %w", err)
	}
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func main() {
	configPath := flag.String("config", "configs/streamd.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

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
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Metrics endpoint
	metrics.StartMetricsServer(fmt.Sprintf(":%d", cfg.Metrics.Port), cfg.Metrics.Path)
	logger.Info("metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)

	// Broadcaster
	source := snapshot.NewSource(pool, logger)
	broadcaster := snapshot.NewBroadcaster(snapshot.Config{
		Interval: cfg.Broadcast.Interval,
		PageSize: cfg.Broadcast.PageSize,
	}, source, logger)

	if err := broadcaster.Start(ctx); err != nil {
		logger.Error("failed to start broadcaster", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		broadcaster.Stop(shutdownCtx)
	}()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/ticks", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		sub := broadcaster.Subscribe(&wsPusher{conn: conn})
		logger.Info("client connected", "remote", r.RemoteAddr)

		// Drain the read side; its error is the disconnect signal.
		go func() {
			defer conn.Close()
			defer broadcaster.Unsubscribe(sub)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					logger.Info("client disconnected", "remote", r.RemoteAddr)
					return
				}
			}
		}()
	})

	server := &http.Server{
		Addr:    cfg.Broadcast.Listen,
		Handler: mux,
	}

	go func() {
		logger.Info("websocket listener started", "addr", cfg.Broadcast.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("listener error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("listener shutdown error", "error", err)
	}
	logger.Info("streamd stopped")
}
