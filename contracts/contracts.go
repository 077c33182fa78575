// Package contracts holds the ABI surface of the canvas contract suite:
// the factory that deploys canvases, the canvas contract itself, the
// per-pixel NFT contract, and the marketplace. The ABIs are parsed once at
// init and shared; callers reference methods and events by the exported
// name constants rather than raw strings.
package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Event and method names used across the module.
const (
	EventCanvasCreated = "CanvasCreated"

	MethodCreateCanvas = "createCanvas"
	MethodMintPrice    = "mintPrice"
	MethodMintPixel    = "mintPixel"
	MethodOwnerOf      = "ownerOf"
	MethodPixelColors  = "pixelColors"
	MethodChangeColor  = "changeColor"
	MethodApprove      = "approve"
	MethodListings     = "listings"
	MethodListPixel    = "listPixel"
	MethodBuyPixel     = "buyPixel"
)

// Parsed ABIs for the four contracts.
var (
	Factory     abi.ABI
	Canvas      abi.ABI
	PixelNFT    abi.ABI
	Marketplace abi.ABI
)

func init() {
	Factory = mustParse("factory", factoryJSON)
	Canvas = mustParse("canvas", canvasJSON)
	PixelNFT = mustParse("pixelnft", pixelNFTJSON)
	Marketplace = mustParse("marketplace", marketplaceJSON)
}

func mustParse(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("contracts: parse %s abi: %v", name, err))
	}
	return parsed
}

const factoryJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "canvasContract", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "nftContract", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "marketplaceContract", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "width", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "height", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "initialMintPrice", "type": "uint256"}
    ],
    "name": "CanvasCreated",
    "type": "event"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_width", "type": "uint256"},
      {"internalType": "uint256", "name": "_height", "type": "uint256"},
      {"internalType": "uint256", "name": "_initialMintPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "_marketplaceFeeBps", "type": "uint256"}
    ],
    "name": "createCanvas",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const canvasJSON = `[
  {
    "inputs": [],
    "name": "mintPrice",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "x", "type": "uint256"},
      {"internalType": "uint256", "name": "y", "type": "uint256"},
      {"internalType": "uint8", "name": "colorIndex", "type": "uint8"}
    ],
    "name": "mintPixel",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const pixelNFTJSON = `[
  {
    "inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
    "name": "ownerOf",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
    "name": "pixelColors",
    "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"internalType": "uint8", "name": "colorIndex", "type": "uint8"}
    ],
    "name": "changeColor",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"}
    ],
    "name": "approve",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const marketplaceJSON = `[
  {
    "inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
    "name": "listings",
    "outputs": [
      {"internalType": "address", "name": "seller", "type": "address"},
      {"internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "listPixel",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
    "name": "buyPixel",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`
