package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/cart/carttest"
)

func newTestMMU(t *testing.T, o carttest.Options, colorMemory bool) *MMU {
	t.Helper()
	img := carttest.Image(o)
	m := New(img, img.Header(), colorMemory)
	m.Reset()
	return m
}

type bootROM [0x100]byte

func (b *bootROM) ReadBootROM(address uint16) byte {
	return b[address]
}

type fakeDisplay struct {
	regs map[uint16]byte
}

func (d *fakeDisplay) Read(address uint16) byte {
	return d.regs[address]
}

func (d *fakeDisplay) Write(address uint16, value byte) {
	d.regs[address] = value
}

func TestMMU_Reset(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)

	assert.Equal(t, byte(0xE1), m.Read(addr.IF))
	assert.Equal(t, byte(0x00), m.Read(addr.IE))
	assert.Equal(t, byte(0xCF), m.Read(addr.P1))
	assert.Equal(t, byte(0xAB), m.Read(addr.DIV))
	assert.Equal(t, byte(0xF8), m.Read(addr.TAC))
	assert.Equal(t, byte(0x01), m.Read(addr.BANK))
	assert.False(t, m.Color())
}

func TestMMU_ColorReset(t *testing.T) {
	m := newTestMMU(t, carttest.Options{Color: true}, true)
	assert.True(t, m.Color())
	assert.Equal(t, byte(0xFF), m.Read(addr.DIV))

	dmg := newTestMMU(t, carttest.Options{Color: true}, false)
	assert.False(t, dmg.Color(), "color memory is required for color mode")
}

func TestMMU_WorkRAM(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)

	testCases := []struct {
		desc    string
		address uint16
		mirror  uint16
	}{
		{"bank 0", 0xC123, 0xE123},
		{"bank 1", 0xD456, 0xF456},
		{"echo end", 0xDDFF, 0xFDFF},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m.Write(tC.address, 0x5A)
			assert.Equal(t, byte(0x5A), m.Read(tC.mirror))

			m.Write(tC.mirror, 0xA5)
			assert.Equal(t, byte(0xA5), m.Read(tC.address))
		})
	}
}

func TestMMU_OAMAndUnused(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)

	m.Write(0xFE00, 0x11)
	m.Write(0xFE9F, 0x22)
	m.Write(0xFEA0, 0x33)

	assert.Equal(t, byte(0x11), m.Read(0xFE00))
	assert.Equal(t, byte(0x22), m.Read(0xFE9F))
	assert.Equal(t, byte(0xFF), m.Read(0xFEA0))
	assert.Equal(t, byte(0xFF), m.Read(0xFEFF))
	assert.Equal(t, byte(0x11), m.OAM()[0])
}

func TestMMU_InterruptFlags(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)

	m.Write(addr.IF, 0x00)
	assert.Equal(t, byte(0xE0), m.Read(addr.IF), "upper bits read back as 1")

	m.RequestInterrupt(addr.TimerInterrupt)
	assert.Equal(t, byte(0xE4), m.Read(addr.IF))
	assert.Equal(t, uint8(0), m.PendingInterrupts())

	m.Write(addr.IE, 0x04)
	assert.Equal(t, uint8(0x04), m.PendingInterrupts())
}

func TestMMU_Joypad(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)
	m.SetJoypad(^uint8(ButtonA | ButtonDown))

	m.Write(addr.P1, 0x20)
	assert.Equal(t, byte(0x27), m.Read(addr.P1), "direction keys, down pressed")

	m.Write(addr.P1, 0x10)
	assert.Equal(t, byte(0x1E), m.Read(addr.P1), "action buttons, A pressed")
}

func TestMMU_AudioRegisters(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)

	m.Write(0xFF10, 0x00)
	assert.Equal(t, byte(0x80), m.Read(0xFF10))

	m.Write(0xFF30, 0x12)
	assert.Equal(t, byte(0x12), m.Read(0xFF30), "wave RAM is plain storage")
}

func TestMMU_HRAM(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)
	m.Write(0xFF80, 0x01)
	m.Write(0xFFFE, 0x02)
	assert.Equal(t, byte(0x01), m.Read(0xFF80))
	assert.Equal(t, byte(0x02), m.Read(0xFFFE))
}

func TestMMU_OAMDMA(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)
	for i := uint16(0); i < addr.OAMSize; i++ {
		m.Write(0xC100+i, byte(i))
	}

	m.Write(addr.DMA, 0xC1)

	for i := uint16(0); i < addr.OAMSize; i++ {
		require.Equal(t, byte(i), m.Read(addr.OAMStart+i))
	}
	assert.Equal(t, byte(0xC1), m.Read(addr.DMA))
}

func TestMMU_DisplayRegisters(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)
	d := &fakeDisplay{regs: map[uint16]byte{}}
	m.SetDisplay(d)

	m.Write(addr.LCDC, 0x91)
	m.Write(addr.WX, 0x07)
	assert.Equal(t, byte(0x91), d.regs[addr.LCDC])
	assert.Equal(t, byte(0x07), m.Read(addr.WX))

	m.Write(addr.DMA, 0xC0)
	_, delegated := d.regs[addr.DMA]
	assert.False(t, delegated, "DMA is handled by the bus")
}

func TestMMU_BootROM(t *testing.T) {
	img := carttest.Image(carttest.Options{Code: []byte{0x00}})
	m := New(img, img.Header(), false)

	boot := &bootROM{}
	boot[0x00] = 0x31
	boot[0xFF] = 0xE0
	m.SetBootROM(boot)
	m.Reset()

	assert.Equal(t, byte(0x31), m.Read(0x0000))
	assert.Equal(t, byte(0xE0), m.Read(0x00FF))
	assert.Equal(t, byte(0x00), m.Read(0x0100), "cartridge above the overlay")
	assert.Equal(t, byte(0x00), m.Read(addr.DIV))

	m.Write(addr.BANK, 0x11)
	assert.Equal(t, byte(0x01), m.Read(addr.BANK))
	assert.Equal(t, img.ReadROM(0), m.Read(0x0000))
}

func TestMMU_TimerInterrupt(t *testing.T) {
	m := newTestMMU(t, carttest.Options{}, false)
	m.Write(addr.IF, 0x00)
	m.Write(addr.TMA, 0xF0)
	m.Write(addr.TIMA, 0xFF)
	m.Write(addr.TAC, 0x05)

	m.Tick(16)

	assert.Equal(t, byte(0xF0), m.Read(addr.TIMA))
	assert.Equal(t, byte(0xE4), m.Read(addr.IF))
}

func TestMMU_ColorBanks(t *testing.T) {
	m := newTestMMU(t, carttest.Options{Color: true}, true)

	t.Run("WRAM", func(t *testing.T) {
		m.Write(addr.SVBK, 0x02)
		m.Write(0xD000, 0x22)
		m.Write(addr.SVBK, 0x03)
		m.Write(0xD000, 0x33)
		assert.Equal(t, byte(0x33), m.Read(0xD000))

		m.Write(addr.SVBK, 0x00)
		assert.Equal(t, byte(0x00), m.Read(0xD000), "bank 0 selects bank 1")
		m.Write(addr.SVBK, 0x02)
		assert.Equal(t, byte(0x22), m.Read(0xD000))
		assert.Equal(t, byte(0x02), m.Read(addr.SVBK))

		m.Write(0xC000, 0x44)
		assert.Equal(t, byte(0x44), m.Read(0xC000), "bank 0 is fixed")
	})

	t.Run("VRAM", func(t *testing.T) {
		m.Write(addr.VBK, 0x01)
		m.Write(0x8000, 0xAA)
		assert.Equal(t, byte(0xFF), m.Read(addr.VBK))
		m.Write(addr.VBK, 0x00)
		m.Write(0x8000, 0x55)
		assert.Equal(t, byte(0xFE), m.Read(addr.VBK))

		assert.Equal(t, byte(0x55), m.VRAM()[0])
		assert.Equal(t, byte(0xAA), m.VRAM()[0x2000])
	})

	t.Run("speed switch", func(t *testing.T) {
		m.SpeedSwitch()
		assert.False(t, m.DoubleSpeed(), "not prepared")

		m.Write(addr.KEY1, 0x01)
		assert.Equal(t, byte(0x01), m.Read(addr.KEY1))
		m.SpeedSwitch()
		assert.True(t, m.DoubleSpeed())
		assert.Equal(t, byte(0x80), m.Read(addr.KEY1))
	})
}

func TestMMU_HDMA(t *testing.T) {
	setup := func(t *testing.T) *MMU {
		m := newTestMMU(t, carttest.Options{Color: true}, true)
		for i := uint16(0); i < 0x40; i++ {
			m.Write(0xC000+i, byte(i+1))
		}
		m.Write(addr.HDMA1, 0xC0)
		m.Write(addr.HDMA2, 0x00)
		m.Write(addr.HDMA3, 0x01)
		m.Write(addr.HDMA4, 0x00)
		return m
	}

	t.Run("general purpose", func(t *testing.T) {
		m := setup(t)
		m.Write(addr.HDMA5, 0x01)

		for i := uint16(0); i < 0x20; i++ {
			require.Equal(t, byte(i+1), m.Read(0x8100+i))
		}
		assert.Equal(t, byte(0x00), m.Read(0x8120))
		assert.Equal(t, byte(0xFF), m.Read(addr.HDMA5), "complete")
		assert.Equal(t, byte(0x20), m.Read(addr.HDMA2))
	})

	t.Run("hblank", func(t *testing.T) {
		m := setup(t)
		m.Write(addr.HDMA5, 0x81)
		assert.Equal(t, byte(0x01), m.Read(addr.HDMA5), "running, 2 blocks left")
		assert.Equal(t, byte(0x00), m.Read(0x8100))

		m.HBlankDMA()
		assert.Equal(t, byte(0x01), m.Read(0x8100))
		assert.Equal(t, byte(0x00), m.Read(0x8110))
		assert.Equal(t, byte(0x00), m.Read(addr.HDMA5))

		m.HBlankDMA()
		assert.Equal(t, byte(0x11), m.Read(0x8110))
		assert.Equal(t, byte(0xFF), m.Read(addr.HDMA5))

		m.HBlankDMA()
		assert.Equal(t, byte(0x00), m.Read(0x8120), "stopped")
	})

	t.Run("hblank cancelled", func(t *testing.T) {
		m := setup(t)
		m.Write(addr.HDMA5, 0x81)
		m.Write(addr.HDMA5, 0x00)
		m.HBlankDMA()
		assert.Equal(t, byte(0x00), m.Read(0x8100))
	})
}

func TestMMU_Palettes(t *testing.T) {
	m := newTestMMU(t, carttest.Options{Color: true}, true)

	m.Write(addr.BCPS, 0x82)
	m.Write(addr.BCPD, 0x1F) // red
	m.Write(addr.BCPD, 0x00)
	assert.Equal(t, byte(0x84), m.Read(addr.BCPS), "auto increment")
	assert.Equal(t, uint16(0x7C00), m.Palettes().Color(1), "red moves to the high field")

	m.Write(addr.OCPS, 0x3E)
	m.Write(addr.OCPD, 0x7C)
	assert.Equal(t, byte(0x3E), m.Read(addr.OCPS), "no increment")
	assert.Equal(t, byte(0x7C), m.Read(addr.OCPD))
	assert.Equal(t, swapRB(0xFF7C), m.Palettes().Color(ObjectPaletteBase+31))
	assert.Equal(t, uint16(0x737F), swapRB(0xFF7C))
}
