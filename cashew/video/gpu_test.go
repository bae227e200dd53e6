package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cashew/cashew/addr"
)

type fakeMemory struct {
	vram       []byte
	oam        [addr.OAMSize]byte
	interrupts []addr.Interrupt
	hblankDMA  int
}

func newFakeMemory(color bool) *fakeMemory {
	size := addr.VRAMBankSize
	if color {
		size *= 2
	}
	return &fakeMemory{vram: make([]byte, size)}
}

func (m *fakeMemory) VRAM() []byte { return m.vram }
func (m *fakeMemory) OAM() []byte  { return m.oam[:] }
func (m *fakeMemory) HBlankDMA()   { m.hblankDMA++ }

func (m *fakeMemory) RequestInterrupt(interrupt addr.Interrupt) {
	m.interrupts = append(m.interrupts, interrupt)
}

func (m *fakeMemory) requested(interrupt addr.Interrupt) bool {
	for _, i := range m.interrupts {
		if i == interrupt {
			return true
		}
	}
	return false
}

type lineRecorder struct {
	lines map[uint8][Width]uint8
	order []uint8
}

func newLineRecorder() *lineRecorder {
	return &lineRecorder{lines: map[uint8][Width]uint8{}}
}

func (r *lineRecorder) DrawLine(pixels *[Width]uint8, line uint8) {
	r.lines[line] = *pixels
	r.order = append(r.order, line)
}

func newTestGPU(cfg Config) (*GPU, *fakeMemory, *lineRecorder) {
	mem := newFakeMemory(cfg.Color)
	rec := newLineRecorder()
	g := New(mem, rec, cfg)
	g.Reset(false)
	return g, mem, rec
}

// step advances to the next mode transition.
func step(g *GPU) {
	g.Tick(g.Pending())
}

func stepUntil(t *testing.T, g *GPU, done func() bool) {
	t.Helper()
	for i := 0; i < 4*lines*3; i++ {
		if done() {
			return
		}
		step(g)
	}
	require.FailNow(t, "condition never reached")
}

func TestGPU_Reset(t *testing.T) {
	testCases := []struct {
		desc    string
		bootROM bool
		lcdc    byte
		stat    byte
	}{
		{desc: "after boot program", bootROM: false, lcdc: 0x91, stat: 0x85},
		{desc: "boot rom pending", bootROM: true, lcdc: 0x00, stat: 0x84},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g := New(newFakeMemory(false), nil, Config{})
			g.Reset(tC.bootROM)

			assert.Equal(t, tC.lcdc, g.Read(addr.LCDC))
			assert.Equal(t, tC.stat, g.Read(addr.STAT))
			assert.Equal(t, byte(0xFC), g.Read(addr.BGP))
			assert.Equal(t, byte(0xFF), g.Read(addr.OBP0))
			assert.Equal(t, byte(0xFF), g.Read(addr.OBP1))
			assert.Equal(t, byte(0), g.Read(addr.LY))
			assert.Equal(t, [4]uint8{0, 3, 3, 3}, g.bgPalette)
			assert.False(t, g.Frame())
		})
	}
}

func TestGPU_Registers(t *testing.T) {
	g, _, _ := newTestGPU(Config{})

	g.Write(addr.STAT, 0xFF)
	assert.Equal(t, byte(0xF9), g.Read(addr.STAT), "mode bits are read only")

	g.Write(addr.LY, 0x42)
	assert.Equal(t, byte(0), g.Read(addr.LY), "LY is read only")

	g.Write(addr.OBP1, 0x1B)
	assert.Equal(t, [4]uint8{3, 2, 1, 0}, [4]uint8(g.spPalette[4:]))
	assert.Equal(t, byte(0x1B), g.Read(addr.OBP1))

	g.Write(addr.WX, 0x50)
	g.Write(addr.WY, 0x20)
	g.Write(addr.SCX, 0x11)
	g.Write(addr.SCY, 0x22)
	assert.Equal(t, byte(0x50), g.Read(addr.WX))
	assert.Equal(t, byte(0x20), g.Read(addr.WY))
	assert.Equal(t, byte(0x11), g.Read(addr.SCX))
	assert.Equal(t, byte(0x22), g.Read(addr.SCY))
	assert.Equal(t, byte(0xFF), g.Read(addr.DMA))
}

func TestGPU_LineTiming(t *testing.T) {
	g, _, rec := newTestGPU(Config{})

	assert.Equal(t, ModeVBlank, g.Mode())
	assert.Equal(t, scanlineCycles, g.Pending())

	g.Tick(scanlineCycles)
	assert.Equal(t, byte(1), g.Read(addr.LY))
	assert.Equal(t, ModeHBlank, g.Mode())
	assert.Equal(t, 204, g.Pending())

	g.Tick(204)
	assert.Equal(t, ModeOAMSearch, g.Mode())
	assert.Equal(t, 80, g.Pending())

	g.Tick(80)
	assert.Equal(t, ModeTransfer, g.Mode())
	assert.Equal(t, 172, g.Pending())
	assert.Equal(t, []uint8{1}, rec.order)

	g.Tick(172)
	assert.Equal(t, byte(2), g.Read(addr.LY))
	assert.Equal(t, ModeHBlank, g.Mode())
}

func TestGPU_VBlank(t *testing.T) {
	g, mem, rec := newTestGPU(Config{})
	g.Write(addr.STAT, statVBlankIRQ)

	stepUntil(t, g, func() bool { return g.Read(addr.LY) == Height })

	assert.Equal(t, ModeVBlank, g.Mode())
	assert.True(t, g.Frame())
	assert.True(t, mem.requested(addr.VBlankInterrupt))
	assert.True(t, mem.requested(addr.LCDSTATInterrupt))
	assert.Len(t, rec.order, Height-1, "line 0 was in VBlank at reset")

	g.ClearFrame()
	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 0 })
	assert.False(t, g.Frame())
	assert.Equal(t, ModeHBlank, g.Mode())
}

func TestGPU_LYCompare(t *testing.T) {
	g, mem, _ := newTestGPU(Config{})
	g.Write(addr.LYC, 3)
	g.Write(addr.STAT, statLYCIRQ)

	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 3 })
	assert.NotZero(t, g.Read(addr.STAT)&statCoincident)
	assert.True(t, mem.requested(addr.LCDSTATInterrupt))

	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 4 })
	assert.Zero(t, g.Read(addr.STAT)&statCoincident)
}

func TestGPU_ModeInterrupts(t *testing.T) {
	testCases := []struct {
		desc   string
		enable uint8
		mode   Mode
	}{
		{desc: "hblank", enable: statHBlankIRQ, mode: ModeHBlank},
		{desc: "oam search", enable: statOAMIRQ, mode: ModeOAMSearch},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			g, mem, _ := newTestGPU(Config{})
			g.Write(addr.STAT, tC.enable)

			stepUntil(t, g, func() bool { return g.Mode() == tC.mode })
			assert.Equal(t, []addr.Interrupt{addr.LCDSTATInterrupt}, mem.interrupts)
		})
	}
}

func TestGPU_HBlankDMA(t *testing.T) {
	g, mem, _ := newTestGPU(Config{Color: true})
	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 3 })
	assert.Equal(t, 3, mem.hblankDMA)

	g, mem, _ = newTestGPU(Config{})
	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 3 })
	assert.Zero(t, mem.hblankDMA)
}

func TestGPU_LCDOff(t *testing.T) {
	g, mem, rec := newTestGPU(Config{})
	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 5 })
	rec.order = nil

	g.Write(addr.LCDC, 0x11)
	assert.Equal(t, byte(0), g.Read(addr.LY))
	assert.Equal(t, ModeHBlank, g.Mode())
	assert.Equal(t, FrameCycles, g.Pending())

	mem.interrupts = nil
	g.Tick(FrameCycles)
	assert.True(t, g.Frame(), "blank frames still complete")
	assert.Empty(t, mem.interrupts)
	assert.Equal(t, byte(0), g.Read(addr.LY))

	// the first frame after switching on is not drawn
	g.ClearFrame()
	g.Write(addr.LCDC, 0x91)
	stepUntil(t, g, g.Frame)
	assert.Empty(t, rec.order)

	stepUntil(t, g, func() bool { return g.Mode() == ModeTransfer })
	assert.Equal(t, []uint8{0}, rec.order)
}

func TestGPU_LCDReenable(t *testing.T) {
	g, _, _ := newTestGPU(Config{})
	stepUntil(t, g, func() bool { return g.Read(addr.LY) == 20 })

	g.Write(addr.LCDC, 0x11)
	g.Tick(40000)
	g.Write(addr.LCDC, 0x91)

	for i := 0; i < 100; i++ {
		g.Tick(4)
	}
	assert.Equal(t, byte(0), g.Read(addr.LY), "line 0 restarts from its first cycle")
	assert.Equal(t, ModeTransfer, g.Mode())
	assert.NotZero(t, g.Read(addr.STAT)&statCoincident)

	g.Tick(56)
	assert.Equal(t, byte(1), g.Read(addr.LY))
	assert.Equal(t, ModeHBlank, g.Mode())
}

func TestGPU_FrameSkip(t *testing.T) {
	g, _, rec := newTestGPU(Config{FrameSkip: true})

	g.ly = 10
	g.drawLine()
	assert.Empty(t, rec.order)

	// the counter flips at every VBlank
	stepUntil(t, g, g.Frame)
	assert.True(t, g.frameSkipCount)

	g.ly = 10
	g.drawLine()
	assert.Equal(t, []uint8{10}, rec.order)
}

func TestGPU_Interlace(t *testing.T) {
	g, _, rec := newTestGPU(Config{Interlace: true})
	g.Write(addr.LCDC, 0x91|windowEnable)

	for ly := uint8(0); ly < 4; ly++ {
		g.ly = ly
		g.drawLine()
	}
	assert.Equal(t, []uint8{1, 3}, rec.order)
	assert.Equal(t, uint8(4), g.windowLine, "skipped lines still move the window")

	g.interlaceCount = true
	rec.order = nil
	for ly := uint8(0); ly < 4; ly++ {
		g.ly = ly
		g.drawLine()
	}
	assert.Equal(t, []uint8{0, 2}, rec.order)
}

func TestGPU_NoDrawer(t *testing.T) {
	g := New(newFakeMemory(false), nil, Config{})
	g.Reset(false)

	assert.NotPanics(t, func() {
		for i := 0; i < 4*lines; i++ {
			step(g)
		}
	})
}
