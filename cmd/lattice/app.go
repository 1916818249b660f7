package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"lattice/internal/config"
	"lattice/internal/engine/replay"
	"lattice/internal/shared/observability"
	"lattice/internal/shared/util"
	"lattice/internal/watcher"
)

type App struct {
	Config  *config.Config
	Service *replay.Service
	limiter *util.Limiter
}

func NewApp(cfg *config.Config) *App {
	return &App{
		Config:  cfg,
		Service: replay.NewService(),
		limiter: util.NewLimiter(cfg.Limit.Rate, cfg.Limit.Burst),
	}
}

// RunOnce replays the configured action batch against the configured schema
// and writes the snapshot to the configured output, or stdout when none is
// set.
func (a *App) RunOnce(ctx context.Context) error {
	schemaDoc, err := os.ReadFile(a.Config.SchemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	batch, err := os.ReadFile(a.Config.ActionsPath)
	if err != nil {
		return fmt.Errorf("read actions: %w", err)
	}

	snapshot, err := a.Service.Replay(ctx, schemaDoc, batch)
	if err != nil {
		return err
	}

	if a.Config.Output.Snapshot == "" {
		_, err = os.Stdout.Write(append(snapshot, '\n'))
		return err
	}
	return os.WriteFile(a.Config.Output.Snapshot, snapshot, 0644)
}

// Watch replays once, then re-replays whenever the schema or action file
// changes, rate limited so save bursts cannot pile up replays.
func (a *App) Watch(ctx context.Context) error {
	if err := a.RunOnce(ctx); err != nil {
		slog.Error("initial replay failed", "error", err)
	}

	changes := make(chan []string, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Watch.ExcludeFiles, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{a.Config.SchemaPath, a.Config.ActionsPath}); err != nil {
		return err
	}

	slog.Info("watching inputs",
		"schema", a.Config.SchemaPath,
		"actions", a.Config.ActionsPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case paths := <-changes:
			if err := a.limiter.Wait(ctx, 1); err != nil {
				return err
			}
			slog.Debug("inputs changed", "paths", paths)
			if err := a.RunOnce(ctx); err != nil {
				slog.Error("replay failed", "error", err)
			}
		}
	}
}

// Health reports liveness for the observability server.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	return observability.HealthStatus{Status: "up"}
}
