package grid

// Palette is the official canvas color palette, indexed by the on-chain
// color value. Index 0 renders unminted pixels.
var Palette = []string{
	"#FFFFFF", // 0: unminted
	"#000000",
	"#FF4500",
	"#FFD700",
	"#4682B4",
	"#32CD32",
	"#8A2BE2",
	"#FF69B4",
}

// PaletteColor returns the hex color for an index, falling back to the
// unminted color for out-of-range values.
func PaletteColor(index uint8) string {
	if int(index) >= len(Palette) {
		return Palette[0]
	}
	return Palette[index]
}
