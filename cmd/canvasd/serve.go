package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/canvaslabs/go-canvas/app"
	"github.com/canvaslabs/go-canvas/config"
	"github.com/canvaslabs/go-canvas/httpapi"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	listen := fs.String("listen", "", "Listen address (overrides configuration)")
	chainID := fs.Int64("chain-id", 0, "Chain ID for transaction signing")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: canvasd serve [options]

Run the JSON HTTP API. Canvases are discovered at startup and the
activity feed is polled in the background. Set CANVAS_PRIVATE_KEY (hex,
with --chain-id) to enable transaction intents; without it the server
is read-only.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Read-only server
  canvasd serve --config canvas.yaml

  # With signing enabled
  CANVAS_PRIVATE_KEY=abc123... canvasd serve --config canvas.yaml --chain-id 31337
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	signer, err := loadSigner(*chainID)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Dial(ctx, cfg, signer, logger)
	if err != nil {
		return err
	}

	if _, err := a.DiscoverCanvases(ctx); err != nil {
		logger.Warn("initial canvas discovery failed", "error", err)
	}

	go a.Run(ctx)

	srv := httpapi.New(a, cfg.ListenAddr, logger)
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadSigner(chainID int64) (*bind.TransactOpts, error) {
	raw := os.Getenv("CANVAS_PRIVATE_KEY")
	if raw == "" {
		return nil, nil
	}
	if chainID == 0 {
		return nil, fmt.Errorf("--chain-id is required when CANVAS_PRIVATE_KEY is set")
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("parse CANVAS_PRIVATE_KEY: %w", err)
	}
	return bind.NewKeyedTransactorWithChainID(key, big.NewInt(chainID))
}
