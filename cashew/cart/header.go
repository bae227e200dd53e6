package cart

import (
	"errors"
	"fmt"
)

const (
	titleAddress          = 0x134
	titleEndAddress       = 0x143
	cgbFlagAddress        = 0x143
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	checksumStartAddress  = 0x134
	checksumEndAddress    = 0x14C
	headerChecksumAddress = 0x14D
)

var (
	// ErrInvalidChecksum is returned when the header checksum at 0x14D does not
	// match the one computed over 0x134-0x14C.
	ErrInvalidChecksum = errors.New("invalid header checksum")
	// ErrCartridgeUnsupported is returned for cartridge types without a supported mapper.
	ErrCartridgeUnsupported = errors.New("cartridge unsupported")
)

// ROMReader gives access to the cartridge ROM, addressed linearly across all banks.
type ROMReader interface {
	ReadROM(address uint32) byte
}

// MBC identifies the memory bank controller on the cartridge.
type MBC int8

const (
	NoMBC MBC = 0
	MBC1  MBC = 1
	MBC2  MBC = 2
	MBC3  MBC = 3
	MBC5  MBC = 5

	unsupportedMBC MBC = -1
)

func (m MBC) String() string {
	switch m {
	case NoMBC:
		return "ROM"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	default:
		return fmt.Sprintf("MBC(%d)", int8(m))
	}
}

// cartridgeMBC maps the cartridge type byte to its controller.
var cartridgeMBC = [32]MBC{
	NoMBC, MBC1, MBC1, MBC1, unsupportedMBC, MBC2, MBC2, unsupportedMBC,
	NoMBC, NoMBC, unsupportedMBC, NoMBC, NoMBC, NoMBC, unsupportedMBC, MBC3,
	MBC3, MBC3, MBC3, MBC3, unsupportedMBC, unsupportedMBC, unsupportedMBC, unsupportedMBC,
	unsupportedMBC, MBC5, MBC5, MBC5, MBC5, MBC5, MBC5, unsupportedMBC,
}

// cartridgeRAM reports which cartridge types carry external RAM.
var cartridgeRAM = [32]bool{
	false, false, true, true, false, true, true, false,
	true, true, false, false, false, false, false, false,
	true, false, true, true, false, false, false, false,
	false, false, true, true, false, false, false, false,
}

var romBanks = [...]uint16{2, 4, 8, 16, 32, 64, 128, 256, 512}

var ramBanks = [...]uint8{0, 1, 1, 4, 16, 8}

var saveSizes = [...]int{0, 0x800, 0x2000, 0x8000, 0x20000, 0x10000}

// mbc2SaveSize is the size of the MBC2 built-in RAM: 512 half-bytes.
const mbc2SaveSize = 0x200

// Header holds the cartridge metadata consumed at construction.
type Header struct {
	Title       string
	Color       bool
	Type        byte
	MBC         MBC
	HasRAM      bool
	ROMSizeCode byte
	RAMSizeCode byte
	// ROMBankMask is the number of ROM banks minus one.
	ROMBankMask uint16
	RAMBanks    uint8
	Checksum    byte
}

// Checksum computes the header checksum over 0x134-0x14C.
func Checksum(rom ROMReader) byte {
	var x byte
	for address := uint32(checksumStartAddress); address <= checksumEndAddress; address++ {
		x = x - rom.ReadROM(address) - 1
	}
	return x
}

// Title reads the game title, stopping at the first byte outside ' '..'_'.
func Title(rom ROMReader) string {
	title := make([]byte, 0, titleEndAddress-titleAddress+1)
	for address := uint32(titleAddress); address <= titleEndAddress; address++ {
		c := rom.ReadROM(address)
		if c < ' ' || c > '_' {
			break
		}
		title = append(title, c)
	}
	return string(title)
}

// ParseHeader validates the checksum and decodes the mapper and memory sizes.
func ParseHeader(rom ROMReader) (Header, error) {
	h := Header{
		Title:       Title(rom),
		Color:       rom.ReadROM(cgbFlagAddress)&0x80 != 0,
		Type:        rom.ReadROM(cartridgeTypeAddress),
		ROMSizeCode: rom.ReadROM(romSizeAddress),
		RAMSizeCode: rom.ReadROM(ramSizeAddress),
		Checksum:    rom.ReadROM(headerChecksumAddress),
	}

	if computed := Checksum(rom); computed != h.Checksum {
		return h, fmt.Errorf("%w: computed 0x%02X, header 0x%02X", ErrInvalidChecksum, computed, h.Checksum)
	}

	if int(h.Type) >= len(cartridgeMBC) || cartridgeMBC[h.Type] == unsupportedMBC {
		return h, fmt.Errorf("%w: type 0x%02X", ErrCartridgeUnsupported, h.Type)
	}
	h.MBC = cartridgeMBC[h.Type]
	h.HasRAM = cartridgeRAM[h.Type]

	if int(h.ROMSizeCode) >= len(romBanks) {
		return h, fmt.Errorf("%w: ROM size code 0x%02X", ErrCartridgeUnsupported, h.ROMSizeCode)
	}
	h.ROMBankMask = romBanks[h.ROMSizeCode] - 1

	if int(h.RAMSizeCode) >= len(ramBanks) {
		return h, fmt.Errorf("%w: RAM size code 0x%02X", ErrCartridgeUnsupported, h.RAMSizeCode)
	}
	h.RAMBanks = ramBanks[h.RAMSizeCode]

	return h, nil
}

// SaveSize returns the number of bytes of battery RAM the host must provide.
func (h Header) SaveSize() int {
	if h.MBC == MBC2 {
		return mbc2SaveSize
	}
	return saveSizes[h.RAMSizeCode]
}

// ROMSize returns the size of the ROM as declared by the header.
func (h Header) ROMSize() int {
	return int(h.ROMBankMask+1) * 0x4000
}
