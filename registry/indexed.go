package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/subgraph"
)

// IndexedSource discovers canvases through the subgraph. The indexer has
// already decoded and deduplicated the factory events and returns them
// newest first, so no sort or dedup pass is needed here.
type IndexedSource struct {
	client *subgraph.Client
	logger *slog.Logger
}

// NewIndexedSource creates a source over the given subgraph client.
func NewIndexedSource(client *subgraph.Client, logger *slog.Logger) *IndexedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexedSource{client: client, logger: logger}
}

// Canvases returns descriptors in the indexer's order, newest first.
func (s *IndexedSource) Canvases(ctx context.Context) ([]Descriptor, error) {
	records, err := s.client.CanvasList(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: indexed canvas list: %w", err)
	}

	found := make([]Descriptor, 0, len(records))
	for _, rec := range records {
		desc, err := descriptorFromRecord(rec)
		if err != nil {
			s.logger.Warn("skipping malformed canvas record",
				slog.String("id", rec.ID),
				slog.String("error", err.Error()))
			continue
		}
		found = append(found, desc)
	}
	return found, nil
}

func descriptorFromRecord(rec subgraph.CanvasCreatedRecord) (Descriptor, error) {
	creator, err := parseAddress(rec.Creator)
	if err != nil {
		return Descriptor{}, fmt.Errorf("creator: %w", err)
	}
	canvasAddr, err := parseAddress(rec.CanvasContract)
	if err != nil {
		return Descriptor{}, fmt.Errorf("canvasContract: %w", err)
	}
	nftAddr, err := parseAddress(rec.NFTContract)
	if err != nil {
		return Descriptor{}, fmt.Errorf("nftContract: %w", err)
	}
	marketAddr, err := parseAddress(rec.MarketplaceContract)
	if err != nil {
		return Descriptor{}, fmt.Errorf("marketplaceContract: %w", err)
	}

	width, err := strconv.Atoi(rec.Width)
	if err != nil || width <= 0 {
		return Descriptor{}, fmt.Errorf("invalid width %q", rec.Width)
	}
	height, err := strconv.Atoi(rec.Height)
	if err != nil || height <= 0 {
		return Descriptor{}, fmt.Errorf("invalid height %q", rec.Height)
	}

	// Prices come as decimal strings of raw base units; parse exactly,
	// never through a float.
	price, err := uint256.FromDecimal(rec.InitialMintPrice)
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid mint price %q: %w", rec.InitialMintPrice, err)
	}

	return Descriptor{
		Creator:             creator,
		CanvasContract:      canvasAddr,
		NFTContract:         nftAddr,
		MarketplaceContract: marketAddr,
		Width:               width,
		Height:              height,
		MintPrice:           price,
	}, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("not a hex address: %q", s)
	}
	return common.HexToAddress(s), nil
}
