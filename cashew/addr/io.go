package addr

// memory map
const (
	// ROM0 is the fixed ROM bank, always mapped to the first 16KiB of the cartridge.
	ROM0 uint16 = 0x0000
	// ROMN is the switchable ROM bank window.
	ROMN uint16 = 0x4000
	// VRAM is the (banked, on CGB) video RAM.
	VRAM uint16 = 0x8000
	// CartRAM is the external cartridge RAM window, also used for the MBC3 clock registers.
	CartRAM uint16 = 0xA000
	// WRAM0 is the fixed work RAM bank.
	WRAM0 uint16 = 0xC000
	// WRAMN is the work RAM bank that can be switched on CGB.
	WRAMN uint16 = 0xD000
	// Echo mirrors work RAM up to OAMStart.
	Echo uint16 = 0xE000
	// Unused area between OAM and I/O, reads return 0xFF.
	Unused uint16 = 0xFEA0
	// IO is the start of the memory mapped I/O registers.
	IO uint16 = 0xFF00
	// HRAM is the high RAM area.
	HRAM uint16 = 0xFF80

	// BootROMEnd is the first address no longer covered by the boot ROM overlay.
	BootROMEnd uint16 = 0x0100

	ROMBankSize  = 0x4000
	VRAMBankSize = 0x2000
	WRAMBankSize = 0x1000
	RAMBankSize  = 0x2000
	OAMSize      = 0xA0
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// color (CGB) registers, only active when the emulator runs in color mode.
const (
	// KEY1 prepares the speed switch, bit 7 reads the current speed.
	KEY1 uint16 = 0xFF4D
	// VBK selects the VRAM bank.
	VBK uint16 = 0xFF4F
	// HDMA1-HDMA5 drive the general purpose and HBlank VRAM DMA.
	HDMA1 uint16 = 0xFF51
	HDMA2 uint16 = 0xFF52
	HDMA3 uint16 = 0xFF53
	HDMA4 uint16 = 0xFF54
	HDMA5 uint16 = 0xFF55
	// RP is the infrared port, stored but otherwise unused.
	RP uint16 = 0xFF56
	// BCPS/BCPD index and write background palette RAM.
	BCPS uint16 = 0xFF68
	BCPD uint16 = 0xFF69
	// OCPS/OCPD index and write object palette RAM.
	OCPS uint16 = 0xFF6A
	OCPD uint16 = 0xFF6B
	// SVBK selects the WRAM bank mapped at WRAMN.
	SVBK uint16 = 0xFF70
)

// BANK disables the boot ROM overlay once written.
const BANK uint16 = 0xFF50

// Audio registers. There is no sound core, the range is plain storage
// with the unused bits reading back as 1.
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F
)

// OAM (Object Attribute Memory) - sprite data
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory
	OAMEnd uint16 = 0xFE9F
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB (Serial transfer data, 0xFF01)
	//
	// Holds the byte to transmit. When a transfer completes it holds the byte
	// received from the peer, 0xFF when nothing is connected and the clock is internal.
	SB uint16 = 0xFF01
	// SC (Serial transfer control, 0xFF02)
	//  - Bit 7 (Start): Writing 1 starts a transfer; cleared when the byte is done.
	//  - Bit 1 (Speed): CGB only, selects the fast clock.
	//  - Bit 0 (Clock): 1=internal clock, 0=external clock.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented every 256 cycles, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt is an enum that represents one of the possible interrupts.
// The value is the interrupt's bit in IF and IE.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt Interrupt = 1 << 1
	// TimerInterrupt is fired when the timer register (TIMA) overflows (i.e. goes from 0xFF to 0x00).
	TimerInterrupt Interrupt = 1 << 2
	// SerialInterrupt is fired when a serial transfer has completed on the game link port.
	SerialInterrupt Interrupt = 1 << 3
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt Interrupt = 1 << 4

	// AnyInterrupt masks the five usable bits of IF/IE.
	AnyInterrupt uint8 = 0x1F
)

// Interrupts lists every source from highest to lowest priority.
var Interrupts = [...]Interrupt{
	VBlankInterrupt,
	LCDSTATInterrupt,
	TimerInterrupt,
	SerialInterrupt,
	JoypadInterrupt,
}

// Vector returns the address of the handler for the interrupt.
// Handlers are 8 bytes apart: 0x40 - 0x48 - 0x50 - 0x58 - 0x60.
func (i Interrupt) Vector() uint16 {
	vector := uint16(0x40)
	for mask := Interrupt(1); mask < i; mask <<= 1 {
		vector += 8
	}
	return vector
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "VBlank"
	case LCDSTATInterrupt:
		return "LCDSTAT"
	case TimerInterrupt:
		return "Timer"
	case SerialInterrupt:
		return "Serial"
	case JoypadInterrupt:
		return "Joypad"
	default:
		return "Unknown"
	}
}
