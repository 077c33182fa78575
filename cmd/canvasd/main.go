package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "canvases":
		if err := canvases(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "grid":
		if err := gridCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "activity":
		if err := activityCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("canvasd version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`canvasd - collaborative pixel canvas client

Usage:
  canvasd <command> [options]

Commands:
  canvases   List deployed canvases from the factory
  grid       Print the pixel grid of a canvas
  activity   Show the recent activity feed
  serve      Run the JSON HTTP API with background feed polling
  help       Show this help message
  version    Show version information

Examples:
  # List canvases via the indexer
  canvasd canvases --config canvas.yaml

  # Scan the raw event log instead
  CANVAS_DISCOVERY=scan canvasd canvases --config canvas.yaml

  # Render the first canvas's grid
  canvasd grid --config canvas.yaml

  # Serve the HTTP API
  canvasd serve --config canvas.yaml --listen :8787

For command-specific help, run:
  canvasd <command> --help`)
}
