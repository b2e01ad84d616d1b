// Command noiseserve streams noise maps over websocket.
//
// Usage:
//
//	go run ./cmd/noiseserve -config config.yaml -addr :8080
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/xnoise/config"
	"github.com/pthm-cable/xnoise/stream"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = use config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	g, root, nodes, err := cfg.Graph.Build()
	if err != nil {
		slog.Error("failed to build graph", "error", err)
		os.Exit(1)
	}

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := stream.New(g, root, nodes, cfg.Server, cfg.Workers)
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped", "passes", srv.Passes())
}
