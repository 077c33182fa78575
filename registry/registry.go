// Package registry discovers deployed canvas instances from the factory
// contract. Two interchangeable sources produce the same descriptor
// sequence: ScanSource walks the factory's raw event log, IndexedSource
// asks the subgraph. Which one serves a deployment is a configuration
// choice, not a code path callers branch on.
package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/wei"
)

// Descriptor identifies one deployed canvas and its satellite contracts.
// It is immutable once created; identity is the canvas contract address.
type Descriptor struct {
	Creator             common.Address
	CanvasContract      common.Address
	NFTContract         common.Address
	MarketplaceContract common.Address
	Width               int
	Height              int
	MintPrice           *uint256.Int
}

// MintPriceDisplay renders the initial mint price as a decimal ether
// string using exact scaling.
func (d Descriptor) MintPriceDisplay() string {
	return wei.Format(d.MintPrice)
}

// Source yields the known canvases. The element order is the source's
// natural order: discovery (block) order for the scan source, newest
// first for the indexed source. Callers use the first element as the
// default selection either way, so some canvas is always selected
// deterministically once the list is non-empty.
type Source interface {
	Canvases(ctx context.Context) ([]Descriptor, error)
}
