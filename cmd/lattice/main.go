package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lattice/internal/config"
	"lattice/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./lattice.toml", "Path to config file")
	schemaPath = flag.String("schema", "", "Schema document path (overrides config)")
	actions    = flag.String("actions", "", "Action batch path (overrides config)")
	out        = flag.String("out", "", "Snapshot output path (overrides config, default stdout)")
	watch      = flag.Bool("watch", false, "Re-replay whenever an input file changes")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("lattice v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./lattice.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if *schemaPath != "" {
		cfg.SchemaPath = *schemaPath
	}
	if *actions != "" {
		cfg.ActionsPath = *actions
	}
	if *out != "" {
		cfg.Output.Snapshot = *out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Obs.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	app := NewApp(cfg)

	if !*watch {
		if err := app.RunOnce(ctx); err != nil {
			slog.Error("replay failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Obs.Addr != "" {
		obs := observability.NewServer(cfg.Obs.Addr, app.Health)
		if err := obs.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer obs.Stop(context.Background())
	}

	if err := app.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("watch failed", "error", err)
		os.Exit(1)
	}
}
