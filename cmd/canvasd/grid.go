package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/canvaslabs/go-canvas/grid"
)

func gridCmd(args []string) error {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	canvasAddr := fs.String("canvas", "", "Canvas contract address (default: first discovered)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: canvasd grid [options]

Reconstruct and print the pixel grid of a canvas. Unminted pixels
render as dots, minted ones as their palette index.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Grid of the first discovered canvas
  canvasd grid --config canvas.yaml

  # A specific canvas
  canvasd grid --config canvas.yaml --canvas 0xabc...
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

	if _, err := a.DiscoverCanvases(ctx); err != nil {
		return fmt.Errorf("discover canvases: %w", err)
	}
	if *canvasAddr != "" {
		if !common.IsHexAddress(*canvasAddr) {
			return fmt.Errorf("--canvas %q is not a hex address", *canvasAddr)
		}
		if err := a.SelectCanvas(ctx, common.HexToAddress(*canvasAddr)); err != nil {
			return err
		}
	}

	desc, ok := a.ActiveCanvas()
	if !ok {
		return fmt.Errorf("no canvas available")
	}
	snap := a.Grid()
	if snap == nil {
		return fmt.Errorf("grid not loaded")
	}

	fmt.Printf("%s (%dx%d, mint price %s ETH)\n\n",
		desc.CanvasContract.Hex(), desc.Width, desc.Height, desc.MintPriceDisplay())

	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if p, ok := snap.Pixels[grid.Coord{X: x, Y: y}]; ok {
				fmt.Printf("%d", p.Color)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
	fmt.Printf("\n%d of %d pixels minted\n", len(snap.Pixels), snap.Width*snap.Height)
	return nil
}
