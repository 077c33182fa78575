package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func canvases(args []string) error {
	fs := flag.NewFlagSet("canvases", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: canvasd canvases [options]

List the canvases deployed through the configured factory.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # List canvases via the indexer
  canvasd canvases --config canvas.yaml

  # Scan the factory event log directly
  CANVAS_DISCOVERY=scan canvasd canvases --config canvas.yaml
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := dialApp(ctx, *configPath, newLogger(*verbose))
	if err != nil {
		return err
	}

	list, err := a.DiscoverCanvases(ctx)
	if err != nil {
		return fmt.Errorf("discover canvases: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No canvases deployed")
		return nil
	}

	for i, d := range list {
		fmt.Printf("%d. %s\n", i+1, d.CanvasContract.Hex())
		fmt.Printf("   size: %dx%d  mint price: %s ETH\n", d.Width, d.Height, d.MintPriceDisplay())
		fmt.Printf("   nft: %s  marketplace: %s\n", d.NFTContract.Hex(), d.MarketplaceContract.Hex())
	}
	return nil
}
