package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/canvaslabs/go-canvas/activity"
)

func activityCmd(args []string) error {
	fs := flag.NewFlagSet("activity", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	kindFilter := fs.String("kind", "", "Filter by event kind (Mint, Sale, ColorChange)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: canvasd activity [options]

Show the recent activity feed, newest first.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full feed
  canvasd activity --config canvas.yaml

  # Sales only
  canvasd activity --config canvas.yaml --kind Sale
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

	events, err := a.RefreshFeed(ctx)
	if err != nil {
		return fmt.Errorf("fetch activity: %w", err)
	}

	if *kindFilter != "" {
		filtered := events[:0]
		for _, e := range events {
			if string(e.Kind) == *kindFilter {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if len(events) == 0 {
		fmt.Println("No activity")
		return nil
	}

	for _, e := range events {
		ts := time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339)
		switch e.Kind {
		case activity.KindMint:
			fmt.Printf("%s  mint   token %s by %s\n", ts, e.TokenID, e.To)
		case activity.KindSale:
			fmt.Printf("%s  sale   token %s %s -> %s for %s ETH\n", ts, e.TokenID, e.From, e.To, e.Price)
		case activity.KindColorChange:
			fmt.Printf("%s  color  token %s by %s\n", ts, e.TokenID, e.From)
		}
	}
	return nil
}
