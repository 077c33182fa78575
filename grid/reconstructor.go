package grid

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/contracts"
)

// Reconstructor derives the full pixel map of a canvas from per-token
// contract reads.
type Reconstructor struct {
	caller chain.BatchCaller
	logger *slog.Logger
}

// NewReconstructor creates a reconstructor over the given batch caller.
func NewReconstructor(caller chain.BatchCaller, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{caller: caller, logger: logger}
}

// Fetch reads the entire grid in one batched round trip: the global mint
// price, then ownerOf and pixelColors for every linear index. That is
// exactly 2*width*height+1 calls; sequential per-pixel reads would make
// a large canvas unusably slow. A failed item pair means the token does
// not exist yet, which is the normal state for an unclaimed pixel, so
// those indices are simply absent from the result.
func (r *Reconstructor) Fetch(ctx context.Context, canvasAddr, nftAddr common.Address, width, height int) (*Snapshot, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", width, height)
	}

	total := width * height
	calls := make([]chain.Call, 0, 2*total+1)
	calls = append(calls, chain.Call{
		To:     canvasAddr,
		ABI:    &contracts.Canvas,
		Method: contracts.MethodMintPrice,
	})
	for i := 0; i < total; i++ {
		id := big.NewInt(int64(i))
		calls = append(calls,
			chain.Call{To: nftAddr, ABI: &contracts.PixelNFT, Method: contracts.MethodOwnerOf, Args: []any{id}},
			chain.Call{To: nftAddr, ABI: &contracts.PixelNFT, Method: contracts.MethodPixelColors, Args: []any{id}},
		)
	}

	results, err := r.caller.CallBatch(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("grid: batch read: %w", err)
	}
	if len(results) != len(calls) {
		return nil, chain.ErrBatchLength
	}

	snap := &Snapshot{
		Width:     width,
		Height:    height,
		MintPrice: uint256.NewInt(0),
		Pixels:    make(map[Coord]Pixel),
	}

	if results[0].OK {
		price, err := unpackUint256(&contracts.Canvas, contracts.MethodMintPrice, results[0].Data)
		if err != nil {
			r.logger.Warn("undecodable mint price", slog.String("error", err.Error()))
		} else {
			snap.MintPrice = price
		}
	}

	for i := 0; i < total; i++ {
		ownerRes := results[1+2*i]
		colorRes := results[2+2*i]
		if !ownerRes.OK || !colorRes.OK {
			continue // unminted
		}

		owner, err := unpackAddress(&contracts.PixelNFT, contracts.MethodOwnerOf, ownerRes.Data)
		if err != nil {
			r.logger.Warn("undecodable owner", slog.Int("token", i), slog.String("error", err.Error()))
			continue
		}
		color, err := unpackUint8(&contracts.PixelNFT, contracts.MethodPixelColors, colorRes.Data)
		if err != nil {
			r.logger.Warn("undecodable color", slog.Int("token", i), slog.String("error", err.Error()))
			continue
		}

		snap.Pixels[CoordOf(i, width)] = Pixel{Owner: owner, Color: color}
	}

	r.logger.Debug("grid snapshot assembled",
		slog.String("canvas", canvasAddr.Hex()),
		slog.Int("minted", len(snap.Pixels)),
		slog.Int("total", total))
	return snap, nil
}

// Listing is one marketplace listing entry. A zero price means the token
// is not for sale.
type Listing struct {
	Seller common.Address
	Price  *uint256.Int
}

// ForSale reports whether the listing is active.
func (l Listing) ForSale() bool {
	return l.Price != nil && !l.Price.IsZero()
}

// Listing reads the marketplace entry for one token. Used for the
// selected pixel's sale status; not part of the bulk grid read.
func (r *Reconstructor) Listing(ctx context.Context, marketplace common.Address, tokenID int) (Listing, error) {
	calls := []chain.Call{{
		To:     marketplace,
		ABI:    &contracts.Marketplace,
		Method: contracts.MethodListings,
		Args:   []any{big.NewInt(int64(tokenID))},
	}}

	results, err := r.caller.CallBatch(ctx, calls)
	if err != nil {
		return Listing{}, fmt.Errorf("grid: listing read: %w", err)
	}
	if len(results) != 1 || !results[0].OK {
		// No listing entry behaves like not-for-sale.
		return Listing{Price: uint256.NewInt(0)}, nil
	}

	vals, err := contracts.Marketplace.Unpack(contracts.MethodListings, results[0].Data)
	if err != nil || len(vals) != 2 {
		return Listing{}, fmt.Errorf("grid: unpack listing: %w", err)
	}
	seller, ok1 := vals[0].(common.Address)
	priceBig, ok2 := vals[1].(*big.Int)
	if !ok1 || !ok2 {
		return Listing{}, fmt.Errorf("grid: unexpected listing field types")
	}
	price, _ := uint256.FromBig(priceBig)
	return Listing{Seller: seller, Price: price}, nil
}

func unpackAddress(contract *abi.ABI, method string, data []byte) (common.Address, error) {
	vals, err := contract.Unpack(method, data)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("not an address")
	}
	return addr, nil
}

func unpackUint8(contract *abi.ABI, method string, data []byte) (uint8, error) {
	vals, err := contract.Unpack(method, data)
	if err != nil {
		return 0, err
	}
	v, ok := vals[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("not a uint8")
	}
	return v, nil
}

func unpackUint256(contract *abi.ABI, method string, data []byte) (*uint256.Int, error) {
	vals, err := contract.Unpack(method, data)
	if err != nil {
		return nil, err
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("not a uint256")
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("overflows uint256")
	}
	return out, nil
}
