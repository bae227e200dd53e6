package video

import (
	"github.com/valerio/go-cashew/cashew/addr"
)

// Mode is the LCD state reported in the low 2 bits of STAT.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMSearch
	ModeTransfer
)

// Screen geometry.
const (
	Width  = 160
	Height = 144
	lines  = 154
)

// Per line timing. A line starts in HBlank, then OAM search and transfer.
const (
	oamSearchStart = 204
	transferStart  = 284
	scanlineCycles = 456
	// FrameCycles is the length of a full frame, VBlank included.
	FrameCycles = scanlineCycles * lines
)

// LCDC flags
const (
	bgEnable      uint8 = 0x01
	objEnable     uint8 = 0x02
	objTall       uint8 = 0x04
	bgMapHigh     uint8 = 0x08
	tileDataLow   uint8 = 0x10
	windowEnable  uint8 = 0x20
	windowMapHigh uint8 = 0x40
	lcdEnable     uint8 = 0x80
)

// STAT bits
const (
	statMode       uint8 = 0x03
	statCoincident uint8 = 0x04
	statHBlankIRQ  uint8 = 0x08
	statVBlankIRQ  uint8 = 0x10
	statOAMIRQ     uint8 = 0x20
	statLYCIRQ     uint8 = 0x40
	statUserBits   uint8 = 0xF8
)

// Palette tags ORed into monochrome pixels when Config.TaggedPalette is set.
const (
	TagOBJ1 uint8 = 0x10
	TagBG   uint8 = 0x20
)

// ObjectPaletteBase is added to sprite pixels in color mode, matching the
// layout of the 64 entry color table.
const ObjectPaletteBase = 0x20

// Memory is what the GPU needs from the bus.
type Memory interface {
	VRAM() []byte
	OAM() []byte
	RequestInterrupt(interrupt addr.Interrupt)
	// HBlankDMA moves one block of a running CGB HBlank transfer.
	HBlankDMA()
}

// LineDrawer receives every rendered row: 160 palette indices and the line number.
type LineDrawer interface {
	DrawLine(pixels *[Width]uint8, line uint8)
}

// Config selects the rendering policies, fixed at construction.
type Config struct {
	// Color renders with tile attributes and the 64 entry color table.
	Color bool
	// AccurateSprites orders sprites by X then OAM index, 10 per line.
	AccurateSprites bool
	// FrameSkip renders every other frame.
	FrameSkip bool
	// Interlace renders alternating halves of the lines each frame.
	Interlace bool
	// TaggedPalette ORs TagBG/TagOBJ1 into monochrome pixels.
	TaggedPalette bool
}

// GPU owns the LCD registers and runs the per line mode machine.
type GPU struct {
	mem    Memory
	drawer LineDrawer
	cfg    Config

	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	// decoded BGP, then OBP0 and OBP1
	bgPalette [4]uint8
	spPalette [8]uint8

	cycles int
	// offCycles paces the frames delivered while the LCD is switched off.
	offCycles int
	// blank suppresses drawing for the first frame after the LCD is switched on.
	blank bool
	frame bool

	// window state: WY latched at line 0 and the window's own line counter
	windowY    uint8
	windowLine uint8

	frameSkipCount bool
	interlaceCount bool

	line lineBuffer
}

// New returns a GPU reading video memory from mem. drawer may be nil, in
// which case nothing is rendered.
func New(mem Memory, drawer LineDrawer, cfg Config) *GPU {
	return &GPU{mem: mem, drawer: drawer, cfg: cfg}
}

// Reset restores the register values left by the boot program, or the
// power-on values when a boot ROM will run.
func (g *GPU) Reset(bootROM bool) {
	g.lcdc, g.stat = 0x91, 0x85
	if bootROM {
		g.lcdc, g.stat = 0x00, 0x84
	}
	g.scy, g.scx, g.ly, g.lyc = 0, 0, 0, 0
	g.wy, g.wx = 0, 0
	g.Write(addr.BGP, 0xFC)
	g.Write(addr.OBP0, 0xFF)
	g.Write(addr.OBP1, 0xFF)

	g.cycles = 0
	g.offCycles = 0
	g.blank = false
	g.frame = false
	g.windowY = 0
	g.windowLine = 0
	g.frameSkipCount = false
	g.interlaceCount = false
}

func (g *GPU) enabled() bool {
	return g.lcdc&lcdEnable != 0
}

// Mode returns the current LCD mode.
func (g *GPU) Mode() Mode {
	return Mode(g.stat & statMode)
}

func (g *GPU) setMode(mode Mode) {
	g.stat = g.stat&^statMode | uint8(mode)
}

// Frame reports whether VBlank has been entered since the last ClearFrame.
func (g *GPU) Frame() bool {
	return g.frame
}

// ClearFrame resets the frame complete flag.
func (g *GPU) ClearFrame() {
	g.frame = false
}

// Tick advances the LCD by cycles, measured at single speed.
// At most one mode transition happens per call; Pending bounds the step
// size of callers that skip ahead.
func (g *GPU) Tick(cycles int) {
	if !g.enabled() {
		// keep frames coming while the display is off
		g.offCycles += cycles
		if g.offCycles >= FrameCycles {
			g.offCycles -= FrameCycles
			g.frame = true
		}
		return
	}

	g.cycles += cycles

	switch {
	case g.cycles >= scanlineCycles:
		g.cycles -= scanlineCycles
		g.nextLine()
	case g.Mode() == ModeHBlank && g.cycles >= oamSearchStart:
		g.setMode(ModeOAMSearch)
		g.statInterrupt(statOAMIRQ)
	case g.Mode() == ModeOAMSearch && g.cycles >= transferStart:
		g.setMode(ModeTransfer)
		if !g.blank {
			g.drawLine()
		}
	}
}

func (g *GPU) nextLine() {
	g.ly = (g.ly + 1) % lines
	g.compareLY()

	switch {
	case g.ly == Height:
		g.setMode(ModeVBlank)
		g.frame = true
		g.blank = false
		g.mem.RequestInterrupt(addr.VBlankInterrupt)
		g.statInterrupt(statVBlankIRQ)

		if g.cfg.FrameSkip {
			g.frameSkipCount = !g.frameSkipCount
		}
		if g.cfg.Interlace && (!g.cfg.FrameSkip || g.frameSkipCount) {
			g.interlaceCount = !g.interlaceCount
		}
	case g.ly < Height:
		if g.ly == 0 {
			g.windowY = g.wy
			g.windowLine = 0
		}
		g.setMode(ModeHBlank)
		if g.cfg.Color {
			g.mem.HBlankDMA()
		}
		g.statInterrupt(statHBlankIRQ)
	}
}

// compareLY updates the coincidence flag, raising STAT when LY reaches LYC.
func (g *GPU) compareLY() {
	if g.ly == g.lyc {
		g.stat |= statCoincident
		g.statInterrupt(statLYCIRQ)
	} else {
		g.stat &^= statCoincident
	}
}

func (g *GPU) statInterrupt(source uint8) {
	if g.stat&source != 0 {
		g.mem.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// Pending returns the cycles left until the next mode transition, 0 when one is due.
func (g *GPU) Pending() int {
	if !g.enabled() {
		return FrameCycles - g.offCycles
	}

	var next int
	switch g.Mode() {
	case ModeHBlank:
		next = oamSearchStart
	case ModeOAMSearch:
		next = transferStart
	default:
		next = scanlineCycles
	}
	if g.cycles >= next {
		return 0
	}
	return next - g.cycles
}

func (g *GPU) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		return g.stat
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.ly
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	}
	return 0xFF
}

func (g *GPU) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		wasEnabled := g.enabled()
		g.lcdc = value
		if !wasEnabled && g.enabled() {
			// line 0 starts over
			g.blank = true
			g.ly = 0
			g.cycles = 0
			g.compareLY()
		} else if wasEnabled && !g.enabled() {
			g.setMode(ModeHBlank)
			g.ly = 0
			g.cycles = 0
			g.offCycles = 0
		}
	case addr.STAT:
		g.stat = value&statUserBits | g.stat&statMode
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.LY:
		// read only
	case addr.LYC:
		g.lyc = value
	case addr.BGP:
		g.bgp = value
		decodePalette(g.bgPalette[:], value)
	case addr.OBP0:
		g.obp0 = value
		decodePalette(g.spPalette[:4], value)
	case addr.OBP1:
		g.obp1 = value
		decodePalette(g.spPalette[4:], value)
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	}
}

// decodePalette splits a monochrome palette register into 4 shades.
func decodePalette(dst []uint8, value byte) {
	for i := range dst {
		dst[i] = (value >> (uint(i) * 2)) & 0x03
	}
}

// windowVisible reports whether the window covers the current line.
func (g *GPU) windowVisible() bool {
	return g.lcdc&windowEnable != 0 && g.ly >= g.windowY && g.wx <= 166
}
