package memory

import (
	"log/slog"

	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
	"github.com/valerio/go-cashew/cashew/cart"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

const (
	dmgWRAMSize = 0x2000
	dmgVRAMSize = 0x2000
	cgbWRAMSize = 0x8000
	cgbVRAMSize = 0x4000
)

// audioMask holds the bits of 0xFF10-0xFF3F that always read back as 1.
var audioMask = [48]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, 0xFF, 0x3F, 0x00, 0xFF, 0xBF, 0x7F, 0xFF,
	0x9F, 0xFF, 0xBF, 0xFF, 0xFF, 0x00, 0x00, 0xBF, 0x00, 0x00, 0x70, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// Cartridge is the host side of the cartridge: ROM reads and battery RAM access.
type Cartridge interface {
	cart.ROMReader
	ReadCartRAM(address uint32) byte
	WriteCartRAM(address uint32, value byte)
}

// BootROM provides the boot program overlaid on 0x0000-0x00FF until 0xFF50 is written.
type BootROM interface {
	ReadBootROM(address uint16) byte
}

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// The MMU only routes addr.SB and addr.SC to it.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
	// Pending returns the cycles left before the transfer in progress completes.
	Pending() (int, bool)
}

// Display owns the LCD registers 0xFF40-0xFF4B, except DMA.
type Display interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	mbc       MBC
	header    cart.Header
	boot      BootROM
	regionMap [256]memRegion

	vram []byte
	wram []byte
	oam  [addr.OAMSize]byte
	// io holds the I/O registers not owned by a device, HRAM and IE.
	io [0x100]byte

	// color is set when the cartridge runs in CGB mode.
	color bool

	joypad uint8 // inverted: a cleared bit is a pressed button

	vramBank    uint8
	wramBank    uint8
	doubleSpeed bool
	speedPrep   bool
	hdma        hdma
	palettes    Palettes

	serial  SerialPort
	timer   Timer
	display Display
}

// New creates the memory bus for a cartridge. colorMemory sizes VRAM and WRAM
// for the color console; the bus runs in color mode only if the cartridge
// also asks for it.
func New(cartridge Cartridge, header cart.Header, colorMemory bool) *MMU {
	m := &MMU{
		header: header,
		mbc:    newMBC(cartridge, header),
		color:  colorMemory && header.Color,
		joypad: 0xFF,
	}

	if colorMemory {
		m.vram = make([]byte, cgbVRAMSize)
		m.wram = make([]byte, cgbWRAMSize)
	} else {
		m.vram = make([]byte, dmgVRAMSize)
		m.wram = make([]byte, dmgWRAMSize)
	}

	m.timer.TimerInterruptHandler = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(m)
	return m
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// SetSerialPort connects the device behind SB/SC.
func (m *MMU) SetSerialPort(port SerialPort) {
	m.serial = port
}

// SetDisplay connects the owner of the LCD registers.
func (m *MMU) SetDisplay(display Display) {
	m.display = display
}

// SetBootROM attaches a boot ROM. It is only visible after a Reset with the overlay enabled.
func (m *MMU) SetBootROM(boot BootROM) {
	m.boot = boot
}

// Reset restores the power-on state of the bus and of the devices it owns.
// With a boot ROM attached, the overlay is enabled and DIV starts at 0.
func (m *MMU) Reset() {
	m.mbc.Reset()

	div := byte(0xAB)
	if m.color {
		div = 0xFF
	}
	m.io[addr.BANK&0xFF] = 0x01
	if m.boot != nil {
		div = 0x00
		m.io[addr.BANK&0xFF] = 0x00
	} else {
		clear(m.vram)
	}

	m.timer.Reset(div)
	if m.serial != nil {
		m.serial.Reset()
	}

	m.joypad = 0xFF
	m.io[addr.P1&0xFF] = 0xCF
	m.io[addr.IF&0xFF] = 0xE1
	m.io[addr.IE&0xFF] = 0x00

	m.doubleSpeed = false
	m.speedPrep = false
	m.wramBank = 1
	m.vramBank = 0
	m.palettes.Reset()
	m.hdma.reset()
}

// Color reports whether the bus runs in CGB mode.
func (m *MMU) Color() bool {
	return m.color
}

// Header returns the header of the inserted cartridge.
func (m *MMU) Header() cart.Header {
	return m.header
}

// DoubleSpeed reports whether the CGB double speed mode is active.
func (m *MMU) DoubleSpeed() bool {
	return m.doubleSpeed
}

// SpeedSwitch is triggered by STOP: toggles double speed if it was prepared through KEY1.
func (m *MMU) SpeedSwitch() {
	if !m.color || !m.speedPrep {
		return
	}
	m.speedPrep = false
	m.doubleSpeed = !m.doubleSpeed
	slog.Debug("Speed switch", "double_speed", m.doubleSpeed)
}

// Tick advances the devices clocked by the bus: timer, cartridge clock and serial port.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if clock, ok := m.mbc.(clocked); ok {
		clock.Tick(cycles)
	}
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
}

// Timer exposes the divider/timer unit.
func (m *MMU) Timer() *Timer {
	return &m.timer
}

// RTC returns the cartridge clock, nil if the cartridge has none.
func (m *MMU) RTC() *RTC {
	if mbc3, ok := m.mbc.(*MBC3); ok {
		return &mbc3.rtc
	}
	return nil
}

// VRAM returns the whole video RAM, both banks in color mode.
func (m *MMU) VRAM() []byte {
	return m.vram
}

// OAM returns the sprite attribute table.
func (m *MMU) OAM() []byte {
	return m.oam[:]
}

// Palettes returns the CGB palette RAM.
func (m *MMU) Palettes() *Palettes {
	return &m.palettes
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.io[addr.IF&0xFF] |= uint8(interrupt)
}

// PendingInterrupts returns the interrupts both requested and enabled.
func (m *MMU) PendingInterrupts() uint8 {
	return m.io[addr.IF&0xFF] & m.io[addr.IE&0xFF] & addr.AnyInterrupt
}

// SetJoypad stores the button state, a cleared bit meaning pressed.
// It is composed into P1 on the next select write.
func (m *MMU) SetJoypad(state uint8) {
	m.joypad = state
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		if address < addr.BootROMEnd && m.boot != nil && m.io[addr.BANK&0xFF] == 0 {
			return m.boot.ReadBootROM(address)
		}
		return m.mbc.Read(address)
	case regionExtRAM:
		return m.mbc.Read(address)
	case regionVRAM:
		return m.vram[m.vramIndex(address)]
	case regionWRAM:
		return m.wram[m.wramIndex(address)]
	case regionEcho:
		return m.wram[m.wramIndex(address-0x2000)]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.oam[address-addr.OAMStart]
		}
		return 0xFF
	default:
		return m.readIO(address)
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.mbc.Write(address, value)
	case regionVRAM:
		m.vram[m.vramIndex(address)] = value
	case regionWRAM:
		m.wram[m.wramIndex(address)] = value
	case regionEcho:
		m.wram[m.wramIndex(address-0x2000)] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.oam[address-addr.OAMStart] = value
		}
	default:
		m.writeIO(address, value)
	}
}

func (m *MMU) vramIndex(address uint16) int {
	index := int(address - addr.VRAM)
	if m.color {
		index += int(m.vramBank) * addr.VRAMBankSize
	}
	return index
}

func (m *MMU) wramIndex(address uint16) int {
	if address < addr.WRAMN {
		return int(address - addr.WRAM0)
	}
	bank := 1
	if m.color && m.wramBank&0x07 != 0 {
		bank = int(m.wramBank & 0x07)
	}
	return bank*addr.WRAMBankSize + int(address-addr.WRAMN)
}

func (m *MMU) isDisplayRegister(address uint16) bool {
	return m.display != nil && address >= addr.LCDC && address <= addr.WX && address != addr.DMA
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.io[address&0xFF] | audioMask[address-addr.AudioStart]
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			return m.serial.Read(address)
		}
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case m.isDisplayRegister(address):
		return m.display.Read(address)
	case m.color:
		if value, ok := m.readColorIO(address); ok {
			return value
		}
	}

	return m.io[address&0xFF]
}

func (m *MMU) readColorIO(address uint16) (byte, bool) {
	switch address {
	case addr.KEY1:
		return bit.FromBool(m.doubleSpeed)<<7 | bit.FromBool(m.speedPrep), true
	case addr.VBK:
		return m.vramBank | 0xFE, true
	case addr.HDMA1, addr.HDMA2, addr.HDMA3, addr.HDMA4, addr.HDMA5:
		return m.hdma.read(address), true
	case addr.BCPS, addr.BCPD, addr.OCPS, addr.OCPD:
		return m.palettes.Read(address), true
	case addr.SVBK:
		return m.wramBank, true
	}
	return 0, false
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address >= addr.HRAM && address < addr.IE:
		m.io[address&0xFF] = value
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.io[address&0xFF] = value
	case address == addr.P1:
		m.io[address&0xFF] = value | m.joypadLines(value)
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.io[address&0xFF] = value | 0xE0
	case address == addr.DMA:
		m.oamDMA(value)
	case m.isDisplayRegister(address):
		m.display.Write(address, value)
	case address == addr.BANK:
		m.io[address&0xFF] = 0x01
	case address == addr.IE:
		m.io[address&0xFF] = value
	case m.color:
		m.writeColorIO(address, value)
	default:
		slog.Debug("Ignored I/O write", "addr", address, "value", value)
	}
}

func (m *MMU) writeColorIO(address uint16, value byte) {
	switch address {
	case addr.KEY1:
		m.speedPrep = value&0x01 != 0
	case addr.VBK:
		m.vramBank = value & 0x01
	case addr.HDMA1, addr.HDMA2, addr.HDMA3, addr.HDMA4:
		m.hdma.write(address, value)
	case addr.HDMA5:
		m.startHDMA(value)
	case addr.RP:
		m.io[address&0xFF] = value
	case addr.BCPS, addr.BCPD, addr.OCPS, addr.OCPD:
		m.palettes.Write(address, value)
	case addr.SVBK:
		m.wramBank = value
	}
}
