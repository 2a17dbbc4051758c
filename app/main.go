package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/actionslaw/actionslaw-go/app/action"
	"github.com/actionslaw/actionslaw-go/app/cache"
	"github.com/actionslaw/actionslaw-go/app/cfg"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting actionslaw", "version", appCfg.Version, "cache", appCfg.Cache)

	store, err := cache.NewSQLiteStore(appCfg.CacheDir)
	if err != nil {
		slog.Error("Failed to open cache store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	app := action.New(appCfg, store)

	items, err := app.Run(ctx)
	if err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	if err := action.NewOutput().Emit(items); err != nil {
		slog.Error("Failed to emit output", "error", err)
		os.Exit(1)
	}

	// Ledger extension happens after emission and never rolls back on media
	// failures.
	if err := app.SaveCache(ctx, items); err != nil {
		slog.Error("Failed to extend trigger cache", "error", err)
	}

	app.Wait()

	slog.Info("Done", "items", len(items))
}
