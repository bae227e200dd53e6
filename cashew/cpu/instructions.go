package cpu

import (
	"github.com/valerio/go-cashew/cashew/bit"
)

// inc increments the register by 1 and sets flags accordingly.
// carry is untouched.
func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0x00)
}

// dec decrements the register by 1 and sets flags accordingly.
// carry is untouched.
func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0x0F)
}

// addWithCarry sums value and the optional carry into A.
func (c *CPU) addWithCarry(value uint8, carry uint8) {
	result := uint16(c.a) + uint16(value) + uint16(carry)

	c.f = 0
	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlagToCondition(halfCarryFlag, (c.a^value^uint8(result))&0x10 != 0)
	c.setFlagToCondition(carryFlag, result > 0xFF)

	c.a = uint8(result)
}

func (c *CPU) add(value uint8) {
	c.addWithCarry(value, 0)
}

func (c *CPU) adc(value uint8) {
	c.addWithCarry(value, c.flagToBit(carryFlag))
}

// subWithCarry subtracts value and the optional carry from A, returning the result.
func (c *CPU) subWithCarry(value uint8, carry uint8) uint8 {
	result := int16(c.a) - int16(value) - int16(carry)

	c.f = uint8(subFlag)
	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlagToCondition(halfCarryFlag, (c.a^value^uint8(result))&0x10 != 0)
	c.setFlagToCondition(carryFlag, result < 0)

	return uint8(result)
}

func (c *CPU) sub(value uint8) {
	c.a = c.subWithCarry(value, 0)
}

func (c *CPU) sbc(value uint8) {
	c.a = c.subWithCarry(value, c.flagToBit(carryFlag))
}

// cp compares A with value: a subtraction that only keeps the flags.
func (c *CPU) cp(value uint8) {
	c.subWithCarry(value, 0)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.f = uint8(halfCarryFlag)
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

// addToHL adds a 16 bit value to HL. Zero is untouched, half carry is from bit 11.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (uint16(result)^hl^value)&0x1000 != 0)
	c.setFlagToCondition(carryFlag, result > 0xFFFF)

	c.setHL(uint16(result))
}

// offsetSP returns SP plus a signed immediate, flags computed on the low byte.
// Shared by ADD SP, e and LD HL, SP+e.
func (c *CPU) offsetSP() uint16 {
	value := c.readSignedImmediate()
	result := uint16(int32(c.sp) + int32(value))

	c.f = 0
	c.setFlagToCondition(halfCarryFlag, (c.sp&0x0F)+(uint16(uint8(value))&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, (c.sp&0xFF)+uint16(uint8(value)) > 0xFF)

	return result
}

// daa adjusts A into a packed BCD number after an addition or subtraction.
func (c *CPU) daa() {
	a := int16(c.a)

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			a = (a - 0x06) & 0xFF
		}
		if c.isSetFlag(carryFlag) {
			a -= 0x60
		}
	} else {
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
		if c.isSetFlag(carryFlag) || a > 0x9F {
			a += 0x60
		}
	}

	if a&0x100 != 0 {
		c.setFlag(carryFlag)
	}

	c.a = uint8(a)
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(halfCarryFlag)
}

// rotations and shifts, all of them return the result and set the flags
// like their CB prefixed versions: Z from the result, N and H cleared.

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setShiftFlags(result, value&0x80 != 0)
	return result
}

// sra keeps bit 7.
func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setShiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setShiftFlags(result, false)
	return result
}

func (c *CPU) setShiftFlags(result uint8, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(carryFlag, carry)
}

// rotateA runs a rotation on A for the unprefixed RLCA, RRCA, RLA, RRA: Z is always cleared.
func (c *CPU) rotateA(rotation func(*CPU, uint8) uint8) {
	c.a = rotation(c, c.a)
	c.resetFlag(zeroFlag)
}

// bitTest sets Z if the bit at index is 0, carry is untouched.
func (c *CPU) bitTest(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// jr jumps relative to the byte after the displacement when the condition holds.
// Cycles are the base cost plus 4 for a taken branch.
func (c *CPU) jr(condition bool, cycles int) int {
	offset := c.readSignedImmediate()
	if !condition {
		return cycles
	}
	c.pc = uint16(int32(c.pc) + int32(offset))
	return cycles + 4
}

func (c *CPU) jp(condition bool, cycles int) int {
	target := c.readImmediateWord()
	if !condition {
		return cycles
	}
	c.pc = target
	return cycles + 4
}

func (c *CPU) call(condition bool, cycles int) int {
	target := c.readImmediateWord()
	if !condition {
		return cycles
	}
	c.pushStack(c.pc)
	c.pc = target
	return cycles + 12
}

func (c *CPU) ret(condition bool, cycles int) int {
	if !condition {
		return cycles
	}
	c.pc = c.popStack()
	return cycles + 12
}

func (c *CPU) rst(vector uint16) int {
	c.pushStack(c.pc)
	c.pc = vector
	return 16
}
