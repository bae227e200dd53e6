package memory

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/cart"
)

// MBC is a memory bank controller. It serves the ROM window (0x0000-0x7FFF)
// and the cartridge RAM window (0xA000-0xBFFF), and interprets writes to ROM as commands.
type MBC interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Reset()
}

// clocked is implemented by controllers with a clock driven by CPU cycles.
type clocked interface {
	Tick(cycles int)
}

func newMBC(cartridge Cartridge, header cart.Header) MBC {
	b := banks{
		cart:     cartridge,
		romMask:  header.ROMBankMask,
		ramBanks: header.RAMBanks,
		hasRAM:   header.HasRAM,
	}
	b.reset()

	switch header.MBC {
	case cart.MBC1:
		return &MBC1{banks: b}
	case cart.MBC2:
		return &MBC2{banks: b}
	case cart.MBC3:
		return &MBC3{banks: b}
	case cart.MBC5:
		return &MBC5{banks: b}
	default:
		return &NoMBC{banks: b}
	}
}

// banks holds the selection state common to every controller.
type banks struct {
	cart       Cartridge
	romMask    uint16
	romBank    uint16
	ramBank    uint8
	ramBanks   uint8
	hasRAM     bool
	ramEnabled bool
	mode       uint8
}

func (b *banks) reset() {
	b.romBank = 1
	b.ramBank = 0
	b.ramEnabled = false
	b.mode = 0
}

// selectROM masks the bank to the ROM size. Bank 0 is never mapped at ROMN.
func (b *banks) selectROM(bank uint16) {
	bank &= b.romMask
	if bank == 0 {
		bank = 1
	}
	b.romBank = bank
}

func (b *banks) readROM(address uint16, bank uint16) byte {
	if address < addr.ROMN {
		return b.cart.ReadROM(uint32(address))
	}
	return b.cart.ReadROM(uint32(bank)*addr.ROMBankSize + uint32(address-addr.ROMN))
}

// ramOffset returns the linear cartridge RAM address for the window address.
// Banks past the cartridge RAM size fall back to bank 0.
func (b *banks) ramOffset(address uint16, banked bool) uint32 {
	offset := uint32(address - addr.CartRAM)
	if banked && b.ramBank < b.ramBanks {
		offset += uint32(b.ramBank) * addr.RAMBankSize
	}
	return offset
}

func (b *banks) readRAM(address uint16, banked bool) byte {
	if !b.hasRAM || !b.ramEnabled {
		return 0xFF
	}
	return b.cart.ReadCartRAM(b.ramOffset(address, banked))
}

func (b *banks) writeRAM(address uint16, value byte, banked bool) {
	if !b.hasRAM || !b.ramEnabled {
		return
	}
	b.cart.WriteCartRAM(b.ramOffset(address, banked), value)
}

func (b *banks) enableRAM(value byte) {
	b.ramEnabled = b.hasRAM && value&0x0F == 0x0A
}

// ROMBank returns the bank mapped at ROMN.
func (b *banks) ROMBank() uint16 {
	return b.romBank
}

// RAMBank returns the selected cartridge RAM bank.
func (b *banks) RAMBank() uint8 {
	return b.ramBank
}

// NoMBC is a plain 32KiB cartridge. Its RAM, if any, is always accessible.
type NoMBC struct {
	banks
}

func (m *NoMBC) Reset() {
	m.reset()
	m.ramEnabled = m.hasRAM
}

func (m *NoMBC) Read(address uint16) byte {
	if address >= addr.CartRAM {
		return m.readRAM(address, false)
	}
	return m.cart.ReadROM(uint32(address))
}

func (m *NoMBC) Write(address uint16, value byte) {
	if address >= addr.CartRAM {
		m.writeRAM(address, value, false)
	}
}

// MBC1 supports up to 2MiB of ROM and 32KiB of RAM. The two upper select bits
// feed the ROM bank in mode 0 and the RAM bank in mode 1.
type MBC1 struct {
	banks
}

func (m *MBC1) Reset() {
	m.reset()
}

func (m *MBC1) Read(address uint16) byte {
	switch {
	case address >= addr.CartRAM:
		return m.readRAM(address, m.mode != 0)
	case address >= addr.ROMN && m.mode != 0:
		bank := m.romBank & 0x1F
		if bank == 0 {
			bank = 1
		}
		return m.readROM(address, bank)
	default:
		return m.readROM(address, m.romBank)
	}
}

func (m *MBC1) Write(address uint16, value byte) {
	switch {
	case address < 0x2000:
		m.enableRAM(value)
	case address < 0x4000:
		bank := uint16(value&0x1F) | (m.romBank & 0x60)
		if bank&0x1F == 0 {
			bank++
		}
		m.selectROM(bank)
	case address < 0x6000:
		m.ramBank = value & 0x03
		m.selectROM(uint16(value&0x03)<<5 | (m.romBank & 0x1F))
	case address < 0x8000:
		m.mode = value & 0x01
	default:
		m.writeRAM(address, value, m.mode != 0)
	}
}

// MBC2 has up to 256KiB of ROM and 512 half-bytes of built-in RAM.
// Address bit 8 tells RAM enable writes from bank selects.
type MBC2 struct {
	banks
}

func (m *MBC2) Reset() {
	m.reset()
}

func (m *MBC2) Read(address uint16) byte {
	if address >= addr.CartRAM {
		if !m.hasRAM || !m.ramEnabled {
			return 0xFF
		}
		return m.cart.ReadCartRAM(uint32(address & 0x1FF))
	}
	return m.readROM(address, m.romBank)
}

func (m *MBC2) Write(address uint16, value byte) {
	switch {
	case address < 0x4000:
		if address&0x100 == 0 {
			m.enableRAM(value)
			return
		}
		m.selectROM(uint16(value & 0x0F))
	case address >= addr.CartRAM:
		if m.hasRAM && m.ramEnabled {
			m.cart.WriteCartRAM(uint32(address&0x1FF), value&0x0F)
		}
	}
}

// MBC3 supports 2MiB of ROM, 32KiB of RAM and the real time clock,
// mapped in the RAM window when banks 0x08-0x0C are selected.
type MBC3 struct {
	banks
	rtc RTC
}

func (m *MBC3) Reset() {
	m.reset()
	m.rtc.count = 0
}

func (m *MBC3) Tick(cycles int) {
	m.rtc.Tick(cycles)
}

func (m *MBC3) Read(address uint16) byte {
	if address < addr.CartRAM {
		return m.readROM(address, m.romBank)
	}
	if m.ramBank >= rtcBankBase {
		return m.rtc.Read(m.ramBank - rtcBankBase)
	}
	return m.readRAM(address, true)
}

func (m *MBC3) Write(address uint16, value byte) {
	switch {
	case address < 0x2000:
		m.enableRAM(value)
	case address < 0x4000:
		m.selectROM(uint16(value & 0x7F))
	case address < 0x6000:
		m.ramBank = value
	case address < 0x8000:
		if value&0x01 != 0 && m.mode == 0 {
			m.rtc.Latch()
		}
		m.mode = value & 0x01
	case m.ramBank >= rtcBankBase:
		m.rtc.Write(m.ramBank-rtcBankBase, value)
	default:
		m.writeRAM(address, value, true)
	}
}

// MBC5 supports 8MiB of ROM with a 9 bit bank number and 128KiB of RAM.
type MBC5 struct {
	banks
}

func (m *MBC5) Reset() {
	m.reset()
}

func (m *MBC5) Read(address uint16) byte {
	if address >= addr.CartRAM {
		return m.readRAM(address, true)
	}
	return m.readROM(address, m.romBank)
}

func (m *MBC5) Write(address uint16, value byte) {
	switch {
	case address < 0x2000:
		m.enableRAM(value)
	case address < 0x3000:
		m.selectROM(m.romBank&0x100 | uint16(value))
	case address < 0x4000:
		m.selectROM(uint16(value&0x01)<<8 | m.romBank&0xFF)
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address < 0x8000:
	default:
		m.writeRAM(address, value, true)
	}
}
