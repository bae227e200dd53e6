// Package disasm turns SM83 machine code back into mnemonics for debug views.
package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/go-cashew/cashew/bit"
)

// Reader is the memory the instructions are read from.
type Reader interface {
	Read(address uint16) byte
}

// Line represents a single disassembled instruction
type Line struct {
	Address     uint16
	Instruction string
	Length      int
}

var registers = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var aluOps = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

var cbOps = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// irregular holds the opcodes outside 0x40-0xBF. %02X takes an 8 bit
// immediate, %04X a 16 bit one, %s a signed offset.
var irregular = map[byte]string{
	0x00: "NOP", 0x01: "LD BC,$%04X", 0x02: "LD (BC),A", 0x03: "INC BC",
	0x04: "INC B", 0x05: "DEC B", 0x06: "LD B,$%02X", 0x07: "RLCA",
	0x08: "LD ($%04X),SP", 0x09: "ADD HL,BC", 0x0A: "LD A,(BC)", 0x0B: "DEC BC",
	0x0C: "INC C", 0x0D: "DEC C", 0x0E: "LD C,$%02X", 0x0F: "RRCA",
	0x10: "STOP", 0x11: "LD DE,$%04X", 0x12: "LD (DE),A", 0x13: "INC DE",
	0x14: "INC D", 0x15: "DEC D", 0x16: "LD D,$%02X", 0x17: "RLA",
	0x18: "JR %s", 0x19: "ADD HL,DE", 0x1A: "LD A,(DE)", 0x1B: "DEC DE",
	0x1C: "INC E", 0x1D: "DEC E", 0x1E: "LD E,$%02X", 0x1F: "RRA",
	0x20: "JR NZ,%s", 0x21: "LD HL,$%04X", 0x22: "LD (HL+),A", 0x23: "INC HL",
	0x24: "INC H", 0x25: "DEC H", 0x26: "LD H,$%02X", 0x27: "DAA",
	0x28: "JR Z,%s", 0x29: "ADD HL,HL", 0x2A: "LD A,(HL+)", 0x2B: "DEC HL",
	0x2C: "INC L", 0x2D: "DEC L", 0x2E: "LD L,$%02X", 0x2F: "CPL",
	0x30: "JR NC,%s", 0x31: "LD SP,$%04X", 0x32: "LD (HL-),A", 0x33: "INC SP",
	0x34: "INC (HL)", 0x35: "DEC (HL)", 0x36: "LD (HL),$%02X", 0x37: "SCF",
	0x38: "JR C,%s", 0x39: "ADD HL,SP", 0x3A: "LD A,(HL-)", 0x3B: "DEC SP",
	0x3C: "INC A", 0x3D: "DEC A", 0x3E: "LD A,$%02X", 0x3F: "CCF",

	0x76: "HALT",

	0xC0: "RET NZ", 0xC1: "POP BC", 0xC2: "JP NZ,$%04X", 0xC3: "JP $%04X",
	0xC4: "CALL NZ,$%04X", 0xC5: "PUSH BC", 0xC6: "ADD A,$%02X", 0xC7: "RST $00",
	0xC8: "RET Z", 0xC9: "RET", 0xCA: "JP Z,$%04X",
	0xCC: "CALL Z,$%04X", 0xCD: "CALL $%04X", 0xCE: "ADC A,$%02X", 0xCF: "RST $08",
	0xD0: "RET NC", 0xD1: "POP DE", 0xD2: "JP NC,$%04X",
	0xD4: "CALL NC,$%04X", 0xD5: "PUSH DE", 0xD6: "SUB $%02X", 0xD7: "RST $10",
	0xD8: "RET C", 0xD9: "RETI", 0xDA: "JP C,$%04X",
	0xDC: "CALL C,$%04X", 0xDE: "SBC A,$%02X", 0xDF: "RST $18",
	0xE0: "LDH ($FF%02X),A", 0xE1: "POP HL", 0xE2: "LD ($FF00+C),A",
	0xE5: "PUSH HL", 0xE6: "AND $%02X", 0xE7: "RST $20",
	0xE8: "ADD SP,%s", 0xE9: "JP HL", 0xEA: "LD ($%04X),A",
	0xEE: "XOR $%02X", 0xEF: "RST $28",
	0xF0: "LDH A,($FF%02X)", 0xF1: "POP AF", 0xF2: "LD A,($FF00+C)", 0xF3: "DI",
	0xF5: "PUSH AF", 0xF6: "OR $%02X", 0xF7: "RST $30",
	0xF8: "LD HL,SP%s", 0xF9: "LD SP,HL", 0xFA: "LD A,($%04X)", 0xFB: "EI",
	0xFE: "CP $%02X", 0xFF: "RST $38",
}

// Length returns the size in bytes of the instruction starting with opcode.
func Length(opcode byte) int {
	if opcode == 0xCB {
		return 2
	}
	if opcode == 0x10 {
		// STOP is followed by a padding byte
		return 2
	}
	return 1 + operandBytes(irregular[opcode])
}

func operandBytes(template string) int {
	i := strings.IndexByte(template, '%')
	if i < 0 {
		return 0
	}
	if strings.HasPrefix(template[i+1:], "04") {
		return 2
	}
	return 1
}

// At disassembles the instruction at the given program counter
func At(pc uint16, mem Reader) Line {
	opcode := mem.Read(pc)
	line := Line{Address: pc, Length: Length(opcode)}

	switch {
	case opcode == 0xCB:
		line.Instruction = decodeCB(mem.Read(pc + 1))
	case opcode >= 0x40 && opcode < 0x80 && opcode != 0x76:
		line.Instruction = fmt.Sprintf("LD %s,%s", registers[opcode>>3&7], registers[opcode&7])
	case opcode >= 0x80 && opcode < 0xC0:
		line.Instruction = aluOps[opcode>>3&7] + registers[opcode&7]
	default:
		line.Instruction = decodeIrregular(pc, opcode, mem)
	}

	return line
}

func decodeCB(op byte) string {
	reg := registers[op&7]
	n := op >> 3 & 7
	switch op >> 6 {
	case 0:
		return fmt.Sprintf("%s %s", cbOps[n], reg)
	case 1:
		return fmt.Sprintf("BIT %d,%s", n, reg)
	case 2:
		return fmt.Sprintf("RES %d,%s", n, reg)
	default:
		return fmt.Sprintf("SET %d,%s", n, reg)
	}
}

func decodeIrregular(pc uint16, opcode byte, mem Reader) string {
	template, ok := irregular[opcode]
	if !ok {
		return fmt.Sprintf("DB $%02X", opcode)
	}

	n := mem.Read(pc + 1)
	switch opcode {
	case 0x18, 0x20, 0x28, 0x30, 0x38:
		target := pc + 2 + uint16(int8(n))
		return fmt.Sprintf(template, fmt.Sprintf("$%04X", target))
	case 0xE8:
		return fmt.Sprintf(template, fmt.Sprintf("%d", int8(n)))
	case 0xF8:
		return fmt.Sprintf(template, fmt.Sprintf("%+d", int8(n)))
	}

	switch operandBytes(template) {
	case 1:
		return fmt.Sprintf(template, n)
	case 2:
		return fmt.Sprintf(template, bit.Combine(mem.Read(pc+2), n))
	}
	return template
}

// Range disassembles count instructions starting from the given PC
func Range(startPC uint16, count int, mem Reader) []Line {
	lines := make([]Line, 0, count)
	pc := startPC

	for i := 0; i < count; i++ {
		line := At(pc, mem)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}

	return lines
}

// Format formats a disassembly line for display
func Format(line Line, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = ">"
	}

	return fmt.Sprintf("%s%04X: %s", prefix, line.Address, line.Instruction)
}
