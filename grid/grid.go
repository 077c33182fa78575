// Package grid reconstructs the full pixel state of one canvas from
// distributed per-token contract storage. The whole grid is read in a
// single batched round trip and assembled into an immutable snapshot;
// a refetch replaces the snapshot wholesale so readers never observe a
// mix of old and new pixels.
package grid

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Coord addresses one pixel within a canvas.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pixel is the owned state of one minted pixel. Color index 0 is
// reserved for the unminted rendering and never appears for a minted
// pixel in practice, but the reconstructor does not enforce that.
type Pixel struct {
	Owner common.Address `json:"owner"`
	Color uint8          `json:"color"`
}

// Snapshot is one consistent full-grid read. Pixels absent from the map
// are unminted. The map is never mutated after Fetch returns.
type Snapshot struct {
	Width     int
	Height    int
	MintPrice *uint256.Int
	Pixels    map[Coord]Pixel
}

// TokenID is the canonical linearization of a pixel coordinate. Every
// contract read or write that references a pixel uses this mapping.
func TokenID(x, y, width int) int {
	return y*width + x
}

// CoordOf inverts TokenID for a canvas of the given width.
func CoordOf(tokenID, width int) Coord {
	return Coord{X: tokenID % width, Y: tokenID / width}
}

// InBounds reports whether the coordinate lies within a width x height
// canvas.
func (c Coord) InBounds(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
