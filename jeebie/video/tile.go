package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// TileRow is one 8 pixel row of a tile, stored as two bit planes.
//
// Bit 7 of each plane is the leftmost pixel. Low supplies bit 0 of the colour
// index and High supplies bit 1:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Index:       0 2 3 3 3 3 2 0
//
// The index goes through BGP or OBPx to become a shade. For objects,
// index 0 is transparent.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel returns the colour index (0-3) of pixel x, 0 being leftmost.
func (t TileRow) GetPixel(x int) uint8 {
	return t.pixel(uint8(7 - x))
}

// GetPixelFlipped is GetPixel with the row mirrored horizontally.
func (t TileRow) GetPixelFlipped(x int) uint8 {
	return t.pixel(uint8(x))
}

func (t TileRow) pixel(index uint8) uint8 {
	var p uint8
	if bit.IsSet(index, t.Low) {
		p |= 1
	}
	if bit.IsSet(index, t.High) {
		p |= 2
	}
	return p
}

// VRAM gives the PPU side-effect free access to video memory and OAM.
type VRAM interface {
	Peek(address uint16) byte
}

// fetchRow reads row y (0-7, or 0-15 for tall objects) of the tile at base.
func fetchRow(vram VRAM, base uint16, y int) TileRow {
	a := base + uint16(y*2)
	return TileRow{Low: vram.Peek(a), High: vram.Peek(a + 1)}
}

// tileAddress resolves a tile number from a background or window map.
//
// With unsigned addressing tile n lives at 0x8000+16n. Otherwise the number
// is signed and relative to 0x9000, so 0x80 maps to 0x8800 and 0x7F to 0x97F0.
func tileAddress(tile uint8, unsigned bool) uint16 {
	if unsigned {
		return addr.TileData0 + uint16(tile)*16
	}
	return uint16(int(addr.TileData2) + int(int8(tile))*16)
}
