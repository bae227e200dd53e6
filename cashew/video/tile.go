package video

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
)

// VRAM offsets, relative to the start of video RAM.
const (
	tileBlockLow  = 0x0000 // 0x8000, unsigned tile indices
	tileBlockHigh = 0x0800 // 0x8800, signed tile indices centred on 0x9000
	tileMapLow    = 0x1800
	tileMapHigh   = 0x1C00
	tileBytes     = 16
)

// TileRow is one 8 pixel row of a tile, stored as two bit planes:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// Bit 7 is the leftmost pixel. Low gives bit 0 of the color index, High bit 1.
type TileRow struct {
	Low  byte
	High byte
}

// Pixel returns the color index (0-3) of column x, 0 being the leftmost one.
// flipped mirrors the row horizontally.
func (t TileRow) Pixel(x int, flipped bool) uint8 {
	index := uint8(7 - x)
	if flipped {
		index = uint8(x)
	}
	return bit.Value(index, t.High)<<1 | bit.Value(index, t.Low)
}

// fetchRow reads row y of the tile starting at offset in vram.
func fetchRow(vram []byte, offset int, y uint8) TileRow {
	at := offset + int(y)*2
	return TileRow{Low: vram[at], High: vram[at+1]}
}

// CGB background map attributes, stored in VRAM bank 1 at the same offset as the tile index.
const (
	attrPalette  uint8 = 0x07
	attrBank     uint8 = 0x08
	attrFlipX    uint8 = 0x20
	attrFlipY    uint8 = 0x40
	attrPriority uint8 = 0x80
)

// tileOffset locates a background or window tile selected by LCDC bit 4.
func (g *GPU) tileOffset(index uint8) int {
	if g.lcdc&tileDataLow != 0 {
		return tileBlockLow + int(index)*tileBytes
	}
	return tileBlockHigh + int(index+0x80)*tileBytes
}

// mapPixel returns the color index at (x, y) of the 256x256 map at mapBase,
// along with the tile attributes (always 0 in monochrome mode).
func (g *GPU) mapPixel(mapBase int, x, y uint8) (uint8, uint8) {
	vram := g.mem.VRAM()
	entry := mapBase + int(y>>3)*32 + int(x>>3)

	var attr uint8
	if g.cfg.Color {
		attr = vram[entry+addr.VRAMBankSize]
	}

	offset := g.tileOffset(vram[entry])
	if attr&attrBank != 0 {
		offset += addr.VRAMBankSize
	}

	row := y & 7
	if attr&attrFlipY != 0 {
		row = 7 - row
	}

	return fetchRow(vram, offset, row).Pixel(int(x&7), attr&attrFlipX != 0), attr
}
