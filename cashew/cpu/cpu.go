package cpu

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
)

// Bus provides the interface for component communication
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	// CyclesUntilEvent returns how long the clocked devices can run before
	// one of them may raise an interrupt. HALT uses it to skip ahead.
	CyclesUntilEvent() int
	// SpeedSwitch is signalled by STOP.
	SpeedSwitch()
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// minHaltCycles is used when no device has a pending event.
const minHaltCycles = 4

// CPU is the main struct holding the SM83 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	eiPending         bool // EI delay: interrupts enable after next instruction
	currentOpcode     uint16
	cycles            uint64
	halted            bool

	// fault is set by a fatal instruction; the CPU refuses to run until Reset.
	fault *Fault

	bus Bus
}

// Registers is a snapshot of the register file.
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
}

// New returns a CPU wired to bus. Call Reset before running it.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset loads the state the boot program leaves behind. The half carry and
// carry flags are set when the header checksum is non zero.
func (c *CPU) Reset(color bool, headerChecksum byte) {
	c.resetState()

	c.a = 0x01
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	if color {
		c.a = 0x11
		c.setBC(0x0000)
		c.setDE(0x0008)
		c.setHL(0x007C)
	}

	c.f = uint8(zeroFlag)
	c.setFlagToCondition(halfCarryFlag, headerChecksum != 0)
	c.setFlagToCondition(carryFlag, headerChecksum != 0)

	c.sp = 0xFFFE
	c.pc = 0x0100
}

// ResetForBootROM starts execution at 0x0000, where the boot ROM is mapped.
func (c *CPU) ResetForBootROM() {
	c.resetState()
	c.pc = 0x0000
}

func (c *CPU) resetState() {
	c.halted = false
	c.interruptsEnabled = true
	c.eiPending = false
	c.fault = nil
	c.cycles = 0
	c.currentOpcode = 0
}

// Exec services interrupts, then executes a single CPU instruction without
// ticking components. Returns the amount of cycles that execution has taken.
// A non nil error is always a *Fault.
func (c *CPU) Exec() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	c.handleInterrupts()

	// still halted: nothing pending, keep skipping ahead
	if c.halted {
		cycles := c.haltCycles()
		c.cycles += uint64(cycles)
		return cycles, nil
	}

	eiPending := c.eiPending

	opcode := c.readImmediate()
	var cycles int
	if opcode == 0xCB {
		cb := c.readImmediate()
		c.currentOpcode = bit.Combine(0xCB, cb)
		cycles = opcodesCB[cb](c)
	} else {
		c.currentOpcode = uint16(opcode)
		cycles = opcodes[opcode](c)
	}

	if c.fault != nil {
		return cycles, c.fault
	}

	// EI takes effect after the instruction that follows it
	if eiPending && c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	c.cycles += uint64(cycles)
	return cycles, nil
}

// handleInterrupts checks for an interrupt and handles it if necessary.
// A pending interrupt always ends HALT, but is only dispatched with IME set:
// the highest priority source is serviced and only its IF bit is cleared.
func (c *CPU) handleInterrupts() {
	fired := c.bus.Read(addr.IF)
	pending := fired & c.bus.Read(addr.IE) & addr.AnyInterrupt
	if pending == 0 {
		return
	}

	c.halted = false
	if !c.interruptsEnabled {
		return
	}

	c.interruptsEnabled = false
	c.eiPending = false
	c.pushStack(c.pc)

	for _, interrupt := range addr.Interrupts {
		if pending&uint8(interrupt) != 0 {
			c.bus.Write(addr.IF, fired^uint8(interrupt))
			c.pc = interrupt.Vector()
			return
		}
	}
}

// haltCycles is how long HALT can skip ahead: up to the next device event.
func (c *CPU) haltCycles() int {
	cycles := c.bus.CyclesUntilEvent()
	if cycles <= 0 {
		return minHaltCycles
	}
	return cycles
}

func (c *CPU) raise(kind ErrorKind, address uint16) {
	c.fault = &Fault{Kind: kind, Addr: address}
}

// Fault returns the fatal condition that stopped the CPU, if any.
func (c *CPU) Fault() *Fault {
	return c.fault
}

// readImmediate returns the byte pointed by the PC and increments it.
// This value is known as immediate ('n' in mnemonics), some opcodes use it as a parameter
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the little endian word pointed by the PC ('nn' in mnemonics)
// and increments the PC twice.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// readSignedImmediate returns the signed displacement pointed by the PC ('e' in mnemonics).
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &= uint8(flag ^ 0xFF)
}

func (c CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}

	c.setFlag(flag)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers {
	return Registers{
		A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
	}
}

// SetRegisters overwrites the register file.
func (c *CPU) SetRegisters(r Registers) {
	c.a, c.b, c.c, c.d, c.e, c.h, c.l = r.A, r.B, r.C, r.D, r.E, r.H, r.L
	c.f = r.F & 0xF0
	c.sp, c.pc = r.SP, r.PC
}

func (c *CPU) GetCycles() uint64 { return c.cycles }

// Interrupt state getters
func (c *CPU) GetIME() bool   { return c.interruptsEnabled }
func (c *CPU) IsHalted() bool { return c.halted }

// CurrentOpcode returns the last fetched opcode, 0xCBxx for prefixed ones.
func (c *CPU) CurrentOpcode() uint16 { return c.currentOpcode }

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := []byte("----")
	for i, f := range [...]struct {
		flag Flag
		name byte
	}{{zeroFlag, 'Z'}, {subFlag, 'N'}, {halfCarryFlag, 'H'}, {carryFlag, 'C'}} {
		if c.isSetFlag(f.flag) {
			flags[i] = f.name
		}
	}
	return string(flags)
}
