// Package app wires the discovery, reconstruction, activity and
// sequencing components into one application: discover canvases, keep
// one selected with a live grid snapshot, poll the activity feed in the
// background, and route user intents into transactions. Presentation
// layers (the HTTP API, the CLI) only read state and dispatch intents
// through App; they never touch the stores directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/canvaslabs/go-canvas/activity"
	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/config"
	"github.com/canvaslabs/go-canvas/grid"
	"github.com/canvaslabs/go-canvas/registry"
	"github.com/canvaslabs/go-canvas/sequencer"
	"github.com/canvaslabs/go-canvas/state"
	"github.com/canvaslabs/go-canvas/subgraph"
	"github.com/canvaslabs/go-canvas/wei"
)

var (
	ErrNoCanvas      = errors.New("app: no canvas selected")
	ErrNoSelection   = errors.New("app: no pixel selected")
	ErrNoSnapshot    = errors.New("app: grid not loaded yet")
	ErrUnknownCanvas = errors.New("app: canvas not in registry")
	ErrOutOfBounds   = errors.New("app: pixel outside canvas bounds")
	ErrNotForSale    = errors.New("app: pixel is not listed for sale")
)

// Deps are the external collaborators; tests inject fakes here.
type Deps struct {
	Source    registry.Source
	Caller    chain.BatchCaller
	Submitter chain.TxSubmitter
	Subgraph  *subgraph.Client
}

// App owns the application state and the components mutating it.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	source registry.Source
	recon  *grid.Reconstructor
	agg    *activity.Aggregator
	seq    *sequencer.Sequencer

	canvas    *state.CanvasState
	selection *state.Selection

	mu       sync.RWMutex
	canvases []registry.Descriptor
	feed     []activity.Event
}

// New assembles an App from explicit dependencies.
func New(cfg config.Config, deps Deps, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		source:    deps.Source,
		recon:     grid.NewReconstructor(deps.Caller, logger),
		canvas:    state.NewCanvasState(),
		selection: state.NewSelection(),
	}
	if deps.Subgraph != nil {
		a.agg = activity.NewAggregator(deps.Subgraph, cfg.ActivityLimit, logger)
	}

	// A confirmed terminal operation refetches the whole grid rather
	// than patching locally; the displayed state always comes from one
	// consistent batched read.
	a.seq = sequencer.New(deps.Submitter, sequencer.Hook{
		Confirmed: func(op sequencer.Operation) {
			if err := a.RefreshGrid(context.Background()); err != nil {
				logger.Warn("post-confirmation grid refresh failed",
					slog.String("kind", op.Kind),
					slog.String("error", err.Error()))
			}
		},
	}, logger)

	return a
}

// Dial builds an App with production dependencies from configuration.
// signer may be nil for a read-only session; intents will then fail
// with chain.ErrNoSigner.
func Dial(ctx context.Context, cfg config.Config, signer *bind.TransactOpts, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := chain.Dial(ctx, cfg.RPCURL, signer, logger)
	if err != nil {
		return nil, err
	}

	deps := Deps{Caller: client, Submitter: client}
	if cfg.SubgraphURL != "" {
		deps.Subgraph = subgraph.NewClient(cfg.SubgraphURL, subgraph.WithLogger(logger))
	}

	switch cfg.Discovery {
	case config.DiscoveryScan:
		deps.Source = registry.NewScanSource(client, cfg.Factory(), cfg.LogWindow, logger)
	case config.DiscoveryIndexed:
		deps.Source = registry.NewIndexedSource(deps.Subgraph, logger)
	default:
		return nil, fmt.Errorf("app: unknown discovery strategy %q", cfg.Discovery)
	}

	return New(cfg, deps, logger), nil
}

// Run blocks, polling the activity feed until ctx is cancelled. Safe to
// skip when no subgraph is configured.
func (a *App) Run(ctx context.Context) {
	if a.agg == nil {
		<-ctx.Done()
		return
	}
	poller := activity.NewPoller(a.agg, a.cfg.PollInterval, func(events []activity.Event) {
		a.mu.Lock()
		a.feed = events
		a.mu.Unlock()
	}, a.logger)
	poller.Run(ctx)
}

// DiscoverCanvases refreshes the canvas list from the configured
// source. When nothing is selected yet and the list is non-empty, the
// source's first element becomes the default selection and its grid is
// fetched, so a deterministic canvas is always active once one exists.
func (a *App) DiscoverCanvases(ctx context.Context) ([]registry.Descriptor, error) {
	canvases, err := a.source.Canvases(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.canvases = canvases
	a.mu.Unlock()

	if _, selected := a.canvas.Descriptor(); !selected && len(canvases) > 0 {
		if err := a.SelectCanvas(ctx, canvases[0].CanvasContract); err != nil {
			return canvases, err
		}
	}
	return canvases, nil
}

// Canvases returns the last discovered canvas list.
func (a *App) Canvases() []registry.Descriptor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canvases
}

// SelectCanvas activates a discovered canvas and loads its grid.
func (a *App) SelectCanvas(ctx context.Context, canvasAddr common.Address) error {
	a.mu.RLock()
	var desc *registry.Descriptor
	for i := range a.canvases {
		if a.canvases[i].CanvasContract == canvasAddr {
			desc = &a.canvases[i]
			break
		}
	}
	a.mu.RUnlock()

	if desc == nil {
		return ErrUnknownCanvas
	}

	a.canvas.SelectCanvas(*desc)
	return a.RefreshGrid(ctx)
}

// RefreshGrid refetches the active canvas's full grid and swaps in the
// new snapshot.
func (a *App) RefreshGrid(ctx context.Context) error {
	desc, ok := a.canvas.Descriptor()
	if !ok {
		return ErrNoCanvas
	}

	snap, err := a.recon.Fetch(ctx, desc.CanvasContract, desc.NFTContract, desc.Width, desc.Height)
	if err != nil {
		return err
	}
	a.canvas.ReplaceSnapshot(snap)
	return nil
}

// ActiveCanvas returns the selected canvas descriptor.
func (a *App) ActiveCanvas() (registry.Descriptor, bool) {
	return a.canvas.Descriptor()
}

// Grid returns the latest snapshot of the active canvas, or nil before
// the first fetch.
func (a *App) Grid() *grid.Snapshot {
	return a.canvas.Snapshot()
}

// Feed returns the latest activity feed.
func (a *App) Feed() []activity.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.feed
}

// RefreshFeed fetches the activity feed once, outside the poll cadence.
func (a *App) RefreshFeed(ctx context.Context) ([]activity.Event, error) {
	if a.agg == nil {
		return nil, errors.New("app: no subgraph configured")
	}
	events, err := a.agg.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.feed = events
	a.mu.Unlock()
	return events, nil
}

// SelectPixel focuses a pixel on the active canvas.
func (a *App) SelectPixel(x, y int) error {
	desc, ok := a.canvas.Descriptor()
	if !ok {
		return ErrNoCanvas
	}
	coord := grid.Coord{X: x, Y: y}
	if !coord.InBounds(desc.Width, desc.Height) {
		return ErrOutOfBounds
	}
	a.selection.Select(coord)
	return nil
}

// ClearSelection drops the pixel focus.
func (a *App) ClearSelection() {
	a.selection.Clear()
}

// SelectedPixel returns the focused pixel, if any.
func (a *App) SelectedPixel() (grid.Coord, bool) {
	return a.selection.Current()
}

// SequencerState exposes the transaction lifecycle state so callers can
// disable triggering controls while an operation is in flight.
func (a *App) SequencerState() sequencer.State {
	return a.seq.State()
}

// SelectedListing reads the marketplace entry for the focused pixel.
func (a *App) SelectedListing(ctx context.Context) (grid.Listing, error) {
	desc, coord, err := a.target()
	if err != nil {
		return grid.Listing{}, err
	}
	return a.recon.Listing(ctx, desc.MarketplaceContract, grid.TokenID(coord.X, coord.Y, desc.Width))
}

// MintSelected mints the focused pixel at the current mint price.
func (a *App) MintSelected(ctx context.Context, color uint8) error {
	desc, coord, err := a.target()
	if err != nil {
		return err
	}
	snap := a.canvas.Snapshot()
	if snap == nil {
		return ErrNoSnapshot
	}
	op := sequencer.MintOp(desc.CanvasContract, coord.X, coord.Y, color, snap.MintPrice)
	return a.seq.Execute(ctx, op)
}

// ChangeColorSelected recolors the focused pixel.
func (a *App) ChangeColorSelected(ctx context.Context, color uint8) error {
	desc, coord, err := a.target()
	if err != nil {
		return err
	}
	op := sequencer.ChangeColorOp(desc.NFTContract, grid.TokenID(coord.X, coord.Y, desc.Width), color)
	return a.seq.Execute(ctx, op)
}

// BuySelected purchases the focused pixel at its current listing price.
func (a *App) BuySelected(ctx context.Context) error {
	desc, coord, err := a.target()
	if err != nil {
		return err
	}

	tokenID := grid.TokenID(coord.X, coord.Y, desc.Width)
	listing, err := a.recon.Listing(ctx, desc.MarketplaceContract, tokenID)
	if err != nil {
		return err
	}
	if !listing.ForSale() {
		return ErrNotForSale
	}

	op := sequencer.BuyOp(desc.MarketplaceContract, tokenID, listing.Price)
	return a.seq.Execute(ctx, op)
}

// ListSelected lists the focused pixel for sale at a decimal ether
// price, driving the approve-then-list two-step flow.
func (a *App) ListSelected(ctx context.Context, price string) error {
	desc, coord, err := a.target()
	if err != nil {
		return err
	}
	amount, err := wei.Parse(price)
	if err != nil {
		return err
	}
	op := sequencer.ListOp(desc.NFTContract, desc.MarketplaceContract,
		grid.TokenID(coord.X, coord.Y, desc.Width), amount)
	return a.seq.Execute(ctx, op)
}

// CreateCanvas deploys a new canvas through the factory.
func (a *App) CreateCanvas(ctx context.Context, width, height int, mintPrice string, feeBps int) error {
	amount, err := wei.Parse(mintPrice)
	if err != nil {
		return err
	}
	op := sequencer.CreateCanvasOp(a.cfg.Factory(), width, height, amount, feeBps)
	return a.seq.Execute(ctx, op)
}

func (a *App) target() (registry.Descriptor, grid.Coord, error) {
	desc, ok := a.canvas.Descriptor()
	if !ok {
		return registry.Descriptor{}, grid.Coord{}, ErrNoCanvas
	}
	coord, ok := a.selection.Current()
	if !ok {
		return registry.Descriptor{}, grid.Coord{}, ErrNoSelection
	}
	return desc, coord, nil
}
