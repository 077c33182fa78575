package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/canvaslabs/go-canvas/app"
	"github.com/canvaslabs/go-canvas/config"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dialApp loads configuration and connects a read-only application.
// Write intents need a signer and are served by the HTTP API, not the
// one-shot commands.
func dialApp(ctx context.Context, configPath string, logger *slog.Logger) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.Dial(ctx, cfg, nil, logger)
}
