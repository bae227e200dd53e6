package memory

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
)

const (
	paletteRAMSize = 0x40
	// ObjectPaletteBase is the index of the first object color returned by Palettes.Color.
	ObjectPaletteBase = 0x20
)

// Palettes is the CGB palette RAM: 8 background and 8 object palettes of
// 4 little endian RGB555 colors each.
type Palettes struct {
	bg       [paletteRAMSize]byte
	obj      [paletteRAMSize]byte
	bgIndex  uint8
	objIndex uint8
	bgInc    bool
	objInc   bool

	// colors holds every palette entry converted for output, with red and blue
	// swapped: background entries first, then objects from ObjectPaletteBase.
	colors [paletteRAMSize]uint16
}

// Reset restores the power-on palette RAM contents.
func (p *Palettes) Reset() {
	for i := 0; i < paletteRAMSize/2; i++ {
		p.bg[i<<1], p.bg[i<<1+1] = 0x7F, 0xFF
		p.obj[i<<1], p.obj[i<<1+1] = 0x7F, 0xFF
		p.colors[i] = swapRB(0xFF7F)
		p.colors[ObjectPaletteBase+i] = swapRB(0xFF7F)
	}
	p.bgIndex, p.objIndex = 0, 0
	p.bgInc, p.objInc = false, false
}

// Color returns a converted entry: (palette<<2 | color), plus ObjectPaletteBase for objects.
func (p *Palettes) Color(index uint8) uint16 {
	return p.colors[index&0x3F]
}

func (p *Palettes) Read(address uint16) byte {
	switch address {
	case addr.BCPS:
		return p.bgIndex&0x3F | bit.FromBool(p.bgInc)<<7
	case addr.BCPD:
		return p.bg[p.bgIndex&0x3F]
	case addr.OCPS:
		return p.objIndex&0x3F | bit.FromBool(p.objInc)<<7
	case addr.OCPD:
		return p.obj[p.objIndex&0x3F]
	}
	return 0xFF
}

func (p *Palettes) Write(address uint16, value byte) {
	switch address {
	case addr.BCPS:
		p.bgIndex = value & 0x3F
		p.bgInc = value&0x80 != 0
	case addr.BCPD:
		p.bgIndex = p.store(&p.bg, p.bgIndex, p.bgInc, 0, value)
	case addr.OCPS:
		p.objIndex = value & 0x3F
		p.objInc = value&0x80 != 0
	case addr.OCPD:
		p.objIndex = p.store(&p.obj, p.objIndex, p.objInc, ObjectPaletteBase, value)
	}
}

// store writes a palette byte, refreshes the converted color and returns the next index.
func (p *Palettes) store(ram *[paletteRAMSize]byte, index uint8, inc bool, base int, value byte) uint8 {
	ram[index&0x3F] = value
	entry := index & 0x3E
	raw := uint16(ram[entry+1])<<8 | uint16(ram[entry])
	p.colors[base+int(entry>>1)] = swapRB(raw)
	if inc {
		index = (index + 1) & 0x3F
	}
	return index
}

// swapRB exchanges the red and blue fields of an RGB555 color.
func swapRB(c uint16) uint16 {
	return (c&0x7C00)>>10 | c&0x03E0 | (c&0x001F)<<10
}
