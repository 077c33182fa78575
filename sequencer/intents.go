package sequencer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/canvaslabs/go-canvas/chain"
	"github.com/canvaslabs/go-canvas/contracts"
)

// Operation kinds.
const (
	KindMint         = "mint"
	KindChangeColor  = "changeColor"
	KindBuy          = "buy"
	KindList         = "list"
	KindCreateCanvas = "createCanvas"
)

// MintOp claims an unminted pixel at the canvas's current mint price.
func MintOp(canvas common.Address, x, y int, color uint8, price *uint256.Int) Operation {
	return Operation{
		ID:   uuid.New(),
		Kind: KindMint,
		First: Step{
			Call: chain.Call{
				To:     canvas,
				ABI:    &contracts.Canvas,
				Method: contracts.MethodMintPixel,
				Args:   []any{big.NewInt(int64(x)), big.NewInt(int64(y)), color},
			},
			Value: price,
		},
	}
}

// ChangeColorOp recolors an owned pixel.
func ChangeColorOp(nft common.Address, tokenID int, color uint8) Operation {
	return Operation{
		ID:   uuid.New(),
		Kind: KindChangeColor,
		First: Step{
			Call: chain.Call{
				To:     nft,
				ABI:    &contracts.PixelNFT,
				Method: contracts.MethodChangeColor,
				Args:   []any{big.NewInt(int64(tokenID)), color},
			},
		},
	}
}

// BuyOp purchases a listed pixel at its listing price.
func BuyOp(marketplace common.Address, tokenID int, price *uint256.Int) Operation {
	return Operation{
		ID:   uuid.New(),
		Kind: KindBuy,
		First: Step{
			Call: chain.Call{
				To:     marketplace,
				ABI:    &contracts.Marketplace,
				Method: contracts.MethodBuyPixel,
				Args:   []any{big.NewInt(int64(tokenID))},
			},
			Value: price,
		},
	}
}

// ListOp puts an owned pixel up for sale. This is the two-step flow:
// approve the marketplace for the token, then list it. The listing
// price is captured here and rides in the continuation unchanged.
func ListOp(nft, marketplace common.Address, tokenID int, price *uint256.Int) Operation {
	return Operation{
		ID:   uuid.New(),
		Kind: KindList,
		First: Step{
			Call: chain.Call{
				To:     nft,
				ABI:    &contracts.PixelNFT,
				Method: contracts.MethodApprove,
				Args:   []any{marketplace, big.NewInt(int64(tokenID))},
			},
		},
		Continuation: &Step{
			Call: chain.Call{
				To:     marketplace,
				ABI:    &contracts.Marketplace,
				Method: contracts.MethodListPixel,
				Args:   []any{big.NewInt(int64(tokenID)), price.ToBig()},
			},
		},
	}
}

// CreateCanvasOp deploys a new canvas through the factory.
func CreateCanvasOp(factory common.Address, width, height int, mintPrice *uint256.Int, feeBps int) Operation {
	return Operation{
		ID:   uuid.New(),
		Kind: KindCreateCanvas,
		First: Step{
			Call: chain.Call{
				To:     factory,
				ABI:    &contracts.Factory,
				Method: contracts.MethodCreateCanvas,
				Args: []any{
					big.NewInt(int64(width)),
					big.NewInt(int64(height)),
					mintPrice.ToBig(),
					big.NewInt(int64(feeBps)),
				},
			},
		},
	}
}
