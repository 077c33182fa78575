package registry

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/contracts"
)

// ScanSource discovers canvases by replaying the factory's CanvasCreated
// log from genesis. Duplicate emissions for the same canvas address
// collapse to one descriptor (last write wins; the fields are invariant
// per address, so this is set union).
type ScanSource struct {
	reader  chain.LogReader
	fetcher *chain.LogFetcher
	factory common.Address
	logger  *slog.Logger
}

// NewScanSource creates a scan source over the given log reader. window
// is the block span per log query; 0 selects the default.
func NewScanSource(reader chain.LogReader, factory common.Address, window uint64, logger *slog.Logger) *ScanSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanSource{
		reader:  reader,
		fetcher: chain.NewLogFetcher(reader, window, logger),
		factory: factory,
		logger:  logger,
	}
}

// Canvases scans the full factory log and returns descriptors in
// discovery order.
func (s *ScanSource) Canvases(ctx context.Context) ([]Descriptor, error) {
	latest, err := s.reader.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: latest block: %w", err)
	}

	topic := contracts.Factory.Events[contracts.EventCanvasCreated].ID
	logs, err := s.fetcher.Fetch(ctx, s.factory, topic, 0, latest)
	if err != nil {
		return nil, fmt.Errorf("registry: scan factory log: %w", err)
	}

	byAddress := make(map[common.Address]int)
	var found []Descriptor
	for _, log := range logs {
		desc, err := decodeCanvasCreated(log)
		if err != nil {
			// Malformed log entries are skipped, not fatal to the scan.
			s.logger.Warn("skipping undecodable CanvasCreated log",
				slog.Uint64("block", log.BlockNumber),
				slog.String("tx", log.TxHash.Hex()),
				slog.String("error", err.Error()))
			continue
		}

		if i, seen := byAddress[desc.CanvasContract]; seen {
			found[i] = desc
			continue
		}
		byAddress[desc.CanvasContract] = len(found)
		found = append(found, desc)
	}

	s.logger.Info("canvas scan complete",
		slog.Int("logs", len(logs)),
		slog.Int("canvases", len(found)))
	return found, nil
}

// decodeCanvasCreated unpacks one factory log into a descriptor. The
// creator rides in topic 1 (indexed); the remaining fields are in the
// data section.
func decodeCanvasCreated(log types.Log) (Descriptor, error) {
	event := contracts.Factory.Events[contracts.EventCanvasCreated]
	if len(log.Topics) < 2 || log.Topics[0] != event.ID {
		return Descriptor{}, fmt.Errorf("unexpected topics (%d)", len(log.Topics))
	}

	vals, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("unpack data: %w", err)
	}
	if len(vals) != 6 {
		return Descriptor{}, fmt.Errorf("unexpected field count %d", len(vals))
	}

	canvasAddr, ok1 := vals[0].(common.Address)
	nftAddr, ok2 := vals[1].(common.Address)
	marketAddr, ok3 := vals[2].(common.Address)
	widthBig, ok4 := vals[3].(*big.Int)
	heightBig, ok5 := vals[4].(*big.Int)
	priceBig, ok6 := vals[5].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return Descriptor{}, fmt.Errorf("unexpected field types")
	}

	width, height := int(widthBig.Int64()), int(heightBig.Int64())
	if !widthBig.IsInt64() || !heightBig.IsInt64() || width <= 0 || height <= 0 {
		return Descriptor{}, fmt.Errorf("invalid dimensions %s x %s", widthBig, heightBig)
	}

	price, overflow := uint256.FromBig(priceBig)
	if overflow {
		return Descriptor{}, fmt.Errorf("mint price overflows uint256")
	}

	return Descriptor{
		Creator:             common.BytesToAddress(log.Topics[1].Bytes()),
		CanvasContract:      canvasAddr,
		NFTContract:         nftAddr,
		MarketplaceContract: marketAddr,
		Width:               width,
		Height:              height,
		MintPrice:           price,
	}, nil
}
