package memory

import (
	"github.com/valerio/go-cashew/cashew/addr"
)

const hdmaBlock = 0x10

// oamDMA copies 160 bytes from page value into OAM.
func (m *MMU) oamDMA(value byte) {
	if m.color {
		value %= 0xF1
	}
	m.io[addr.DMA&0xFF] = value

	src := uint16(value) << 8
	for i := uint16(0); i < addr.OAMSize; i++ {
		m.oam[i] = m.Read(src + i)
	}
}

// hdma is the state of the CGB VRAM DMA.
type hdma struct {
	source uint16
	dest   uint16
	// size counts the 16 byte blocks left.
	size uint8
	// hblank is the mode bit of the last HDMA5 write.
	hblank bool
	// running is set while an HBlank transfer is in progress.
	running bool
}

func (h *hdma) reset() {
	*h = hdma{}
}

func (h *hdma) read(address uint16) byte {
	switch address {
	case addr.HDMA1:
		return byte(h.source >> 8)
	case addr.HDMA2:
		return byte(h.source) & 0xF0
	case addr.HDMA3:
		return byte(h.dest >> 8)
	case addr.HDMA4:
		return byte(h.dest) & 0xF0
	default:
		// bit 7 is low while a transfer runs, 0xFF once complete
		var status byte = 0x80
		if h.running {
			status = 0
		}
		return status | (h.size - 1)
	}
}

func (h *hdma) write(address uint16, value byte) {
	switch address {
	case addr.HDMA1:
		h.source = uint16(value)<<8 | h.source&0x00FF
	case addr.HDMA2:
		h.source = h.source&0xFF00 | uint16(value)
	case addr.HDMA3:
		h.dest = uint16(value)<<8 | h.dest&0x00FF
	case addr.HDMA4:
		h.dest = h.dest&0xFF00 | uint16(value)
	}
}

// startHDMA handles a write to HDMA5. A general purpose transfer completes at once;
// an HBlank transfer moves one block per HBlank. Writing with bit 7 clear
// while an HBlank transfer runs stops it.
func (m *MMU) startHDMA(value byte) {
	m.hdma.size = value&0x7F + 1
	m.hdma.hblank = value&0x80 != 0

	if !m.hdma.running && !m.hdma.hblank {
		m.copyHDMA(uint16(m.hdma.size) * hdmaBlock)
		m.hdma.size = 0
	}
	m.hdma.running = m.hdma.hblank
}

// HBlankDMA moves one block of an HBlank transfer. The display calls it on entering HBlank.
func (m *MMU) HBlankDMA() {
	if !m.color || !m.hdma.running || !m.hdma.hblank {
		return
	}
	m.copyHDMA(hdmaBlock)
	m.hdma.size--
	if m.hdma.size == 0 {
		m.hdma.running = false
	}
}

func (m *MMU) copyHDMA(length uint16) {
	src := m.hdma.source & 0xFFF0
	dst := m.hdma.dest&0x1FF0 | addr.VRAM
	for i := uint16(0); i < length; i++ {
		m.Write(dst+i, m.Read(src+i))
	}
	m.hdma.source += length
	m.hdma.dest += length
}
