package video

import (
	"cmp"
	"slices"

	"github.com/valerio/go-cashew/cashew/addr"
)

const (
	spriteCount    = 40
	spritesPerLine = 10
)

// OAM attribute flags
const (
	flagPalette  uint8 = 0x07 // CGB palette number
	flagBank     uint8 = 0x08 // CGB tile VRAM bank
	flagOBP1     uint8 = 0x10
	flagFlipX    uint8 = 0x20
	flagFlipY    uint8 = 0x40
	flagBehindBG uint8 = 0x80
)

// Sprite is one OAM entry. Coordinates are the raw values: the sprite's top
// left corner is at (X-8, Y-16) on screen.
type Sprite struct {
	Y     uint8
	X     uint8
	Tile  uint8
	Flags uint8
	Index int
}

// parseSprite decodes entry i of the attribute table.
func parseSprite(oam []byte, i int) Sprite {
	entry := oam[i*4 : i*4+4]
	return Sprite{Y: entry[0], X: entry[1], Tile: entry[2], Flags: entry[3], Index: i}
}

// onLine reports whether the sprite covers line ly for the given height.
func (s Sprite) onLine(ly uint8, height int) bool {
	top := int(s.Y) - 16
	return int(ly) >= top && int(ly) < top+height
}

// onScreen is false for sprites hidden past either horizontal edge.
func (s Sprite) onScreen() bool {
	return s.X != 0 && s.X < Width+8
}

// spritesForLine collects the sprites on the current line in drawing priority
// order, highest first. Accurate mode keeps the first 10 found in OAM and, in
// monochrome mode, orders them by X coordinate with ties going to the lower
// OAM index.
// Otherwise every sprite on the line is kept in OAM order.
func (g *GPU) spritesForLine(buffer []Sprite) []Sprite {
	oam := g.mem.OAM()
	height := g.spriteHeight()

	sprites := buffer[:0]
	for i := 0; i < spriteCount; i++ {
		sprite := parseSprite(oam, i)
		if sprite.onLine(g.ly, height) {
			sprites = append(sprites, sprite)
		}
	}

	if !g.cfg.AccurateSprites {
		return sprites
	}

	if len(sprites) > spritesPerLine {
		sprites = sprites[:spritesPerLine]
	}
	if !g.cfg.Color {
		slices.SortStableFunc(sprites, func(a, b Sprite) int {
			return cmp.Compare(a.X, b.X)
		})
	}
	return sprites
}

func (g *GPU) spriteHeight() int {
	if g.lcdc&objTall != 0 {
		return 16
	}
	return 8
}

// row returns the tile row of the sprite crossing line ly, with vertical flip applied.
func (s Sprite) row(vram []byte, ly uint8, height int, color bool) TileRow {
	tile := s.Tile
	if height == 16 {
		tile &= 0xFE
	}

	y := ly - (s.Y - 16)
	if s.Flags&flagFlipY != 0 {
		y = uint8(height-1) - y
	}

	offset := tileBlockLow + int(tile)*tileBytes
	if color && s.Flags&flagBank != 0 {
		offset += addr.VRAMBankSize
	}
	return fetchRow(vram, offset, y)
}
