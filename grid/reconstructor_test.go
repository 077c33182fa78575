package grid

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/contracts"
)

// fakeCaller answers batch calls from canned per-token state and records
// every batch it receives.
type fakeCaller struct {
	mintPrice *big.Int
	owners    map[int64]common.Address
	colors    map[int64]uint8
	listings  map[int64][]any // seller, price
	batches   [][]chain.Call
	fail      bool
}

func (f *fakeCaller) CallBatch(_ context.Context, calls []chain.Call) ([]chain.CallResult, error) {
	f.batches = append(f.batches, calls)
	if f.fail {
		return nil, errors.New("rpc unreachable")
	}

	results := make([]chain.CallResult, len(calls))
	for i, call := range calls {
		switch call.Method {
		case contracts.MethodMintPrice:
			data, _ := contracts.Canvas.Methods[contracts.MethodMintPrice].Outputs.Pack(f.mintPrice)
			results[i] = chain.CallResult{OK: true, Data: data}
		case contracts.MethodOwnerOf:
			id := call.Args[0].(*big.Int).Int64()
			owner, ok := f.owners[id]
			if !ok {
				results[i] = chain.CallResult{OK: false}
				continue
			}
			data, _ := contracts.PixelNFT.Methods[contracts.MethodOwnerOf].Outputs.Pack(owner)
			results[i] = chain.CallResult{OK: true, Data: data}
		case contracts.MethodPixelColors:
			id := call.Args[0].(*big.Int).Int64()
			color, ok := f.colors[id]
			if !ok {
				results[i] = chain.CallResult{OK: false}
				continue
			}
			data, _ := contracts.PixelNFT.Methods[contracts.MethodPixelColors].Outputs.Pack(color)
			results[i] = chain.CallResult{OK: true, Data: data}
		case contracts.MethodListings:
			id := call.Args[0].(*big.Int).Int64()
			entry, ok := f.listings[id]
			if !ok {
				results[i] = chain.CallResult{OK: false}
				continue
			}
			data, _ := contracts.Marketplace.Methods[contracts.MethodListings].Outputs.Pack(entry...)
			results[i] = chain.CallResult{OK: true, Data: data}
		}
	}
	return results, nil
}

func TestTokenIDRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 17, 32} {
		height := 9
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				id := TokenID(x, y, width)
				if got := CoordOf(id, width); got.X != x || got.Y != y {
					t.Fatalf("width %d: TokenID(%d,%d)=%d round-trips to %v", width, x, y, id, got)
				}
			}
		}
	}
}

func TestFetchAssemblesSparsePixelMap(t *testing.T) {
	a, b := common.BytesToAddress([]byte{0xA}), common.BytesToAddress([]byte{0xB})
	caller := &fakeCaller{
		mintPrice: big.NewInt(1500000000000000),
		owners:    map[int64]common.Address{0: a, 2: b, 3: b},
		colors:    map[int64]uint8{0: 1, 2: 3, 3: 3},
	}

	recon := NewReconstructor(caller, nil)
	snap, err := recon.Fetch(context.Background(), common.Address{}, common.Address{}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	// 2*W*H+1 calls in a single batch.
	if len(caller.batches) != 1 {
		t.Fatalf("expected one batched round trip, got %d", len(caller.batches))
	}
	if got := len(caller.batches[0]); got != 9 {
		t.Errorf("batch size = %d, want 2*2*2+1 = 9", got)
	}

	if !snap.MintPrice.Eq(uint256.NewInt(1500000000000000)) {
		t.Errorf("mint price = %s", snap.MintPrice.Dec())
	}

	want := map[Coord]Pixel{
		{X: 0, Y: 0}: {Owner: a, Color: 1},
		{X: 0, Y: 1}: {Owner: b, Color: 3},
		{X: 1, Y: 1}: {Owner: b, Color: 3},
	}
	if len(snap.Pixels) != len(want) {
		t.Fatalf("pixel map has %d entries, want %d: %v", len(snap.Pixels), len(want), snap.Pixels)
	}
	for coord, pixel := range want {
		got, ok := snap.Pixels[coord]
		if !ok {
			t.Errorf("missing pixel at %v", coord)
			continue
		}
		if got != pixel {
			t.Errorf("pixel at %v = %+v, want %+v", coord, got, pixel)
		}
	}
	if _, ok := snap.Pixels[Coord{X: 1, Y: 0}]; ok {
		t.Error("token 1 failed its owner read and must be absent")
	}
}

func TestFetchKeysStayInBounds(t *testing.T) {
	caller := &fakeCaller{
		mintPrice: big.NewInt(0),
		owners:    map[int64]common.Address{0: common.BytesToAddress([]byte{1}), 5: common.BytesToAddress([]byte{2})},
		colors:    map[int64]uint8{0: 1, 5: 2},
	}

	recon := NewReconstructor(caller, nil)
	snap, err := recon.Fetch(context.Background(), common.Address{}, common.Address{}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	for coord := range snap.Pixels {
		if !coord.InBounds(3, 2) {
			t.Errorf("pixel key %v out of bounds for 3x2", coord)
		}
	}
}

func TestFetchTransportErrorSurfaces(t *testing.T) {
	recon := NewReconstructor(&fakeCaller{fail: true}, nil)
	if _, err := recon.Fetch(context.Background(), common.Address{}, common.Address{}, 2, 2); err == nil {
		t.Fatal("expected error when batch transport fails")
	}
}

func TestFetchRejectsInvalidDimensions(t *testing.T) {
	recon := NewReconstructor(&fakeCaller{}, nil)
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		if _, err := recon.Fetch(context.Background(), common.Address{}, common.Address{}, dims[0], dims[1]); err == nil {
			t.Errorf("dimensions %v: expected error", dims)
		}
	}
}

func TestListing(t *testing.T) {
	seller := common.BytesToAddress([]byte{0xC})
	caller := &fakeCaller{
		listings: map[int64][]any{7: {seller, big.NewInt(2000000000000000000)}},
	}

	recon := NewReconstructor(caller, nil)
	listing, err := recon.Listing(context.Background(), common.Address{}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !listing.ForSale() {
		t.Error("expected listing to be for sale")
	}
	if listing.Seller != seller {
		t.Errorf("seller = %s", listing.Seller.Hex())
	}

	// Absent entry reads as not-for-sale, not as an error.
	none, err := recon.Listing(context.Background(), common.Address{}, 99)
	if err != nil {
		t.Fatal(err)
	}
	if none.ForSale() {
		t.Error("absent listing must not be for sale")
	}
}
