package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cashew/cashew/addr"
)

// flatBus is 64KB of RAM with a fixed distance to the next device event.
type flatBus struct {
	memory      [0x10000]byte
	untilEvent  int
	speedSwitch int
}

func (b *flatBus) Read(address uint16) byte         { return b.memory[address] }
func (b *flatBus) Write(address uint16, value byte) { b.memory[address] = value }
func (b *flatBus) CyclesUntilEvent() int            { return b.untilEvent }
func (b *flatBus) SpeedSwitch()                     { b.speedSwitch++ }

// loadProgram places a program at 0x0100 and returns a CPU ready to run it.
func loadProgram(t *testing.T, program ...byte) (*CPU, *flatBus) {
	t.Helper()
	bus := &flatBus{}
	copy(bus.memory[0x0100:], program)
	bus.memory[addr.IE] = 0x1F

	cpu := New(bus)
	cpu.Reset(false, 0x00)
	return cpu, bus
}

func TestCPU_Reset(t *testing.T) {
	testCases := []struct {
		desc     string
		color    bool
		checksum byte
		want     Registers
	}{
		{
			desc: "monochrome zero checksum",
			want: Registers{A: 0x01, F: 0x80, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE, PC: 0x0100},
		},
		{
			desc: "monochrome non zero checksum", checksum: 0x3C,
			want: Registers{A: 0x01, F: 0xB0, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE, PC: 0x0100},
		},
		{
			desc: "color", color: true, checksum: 0x01,
			want: Registers{A: 0x11, F: 0xB0, B: 0x00, C: 0x00, D: 0x00, E: 0x08, H: 0x00, L: 0x7C, SP: 0xFFFE, PC: 0x0100},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu := New(&flatBus{})
			cpu.halted = true
			cpu.Reset(tC.color, tC.checksum)

			assert.Equal(t, tC.want, cpu.Registers())
			assert.True(t, cpu.GetIME())
			assert.False(t, cpu.IsHalted())
		})
	}
}

func TestCPU_ResetForBootROM(t *testing.T) {
	cpu, _ := loadProgram(t)
	cpu.ResetForBootROM()
	assert.Equal(t, uint16(0x0000), cpu.pc)
}

func TestCPU_stack(t *testing.T) {
	cpu := New(&flatBus{})

	cpu.sp = 0xFFFF
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFD), cpu.sp)

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFF), cpu.sp)
}

func TestCPU_popAFMasksFlags(t *testing.T) {
	cpu, bus := loadProgram(t, 0xF1) // POP AF
	cpu.sp = 0xC000
	bus.memory[0xC000] = 0xFF
	bus.memory[0xC001] = 0x12

	_, err := cpu.Exec()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x12F0), cpu.getAF())
}

func TestCPU_Exec_cycles(t *testing.T) {
	// branches depend on flags, the rest must match the table
	conditional := map[byte]bool{
		0x20: true, 0x28: true, 0x30: true, 0x38: true,
		0xC0: true, 0xC2: true, 0xC4: true, 0xC8: true, 0xCA: true, 0xCC: true,
		0xD0: true, 0xD2: true, 0xD4: true, 0xD8: true, 0xDA: true, 0xDC: true,
	}

	for op := 0; op < 0x100; op++ {
		opcode := byte(op)
		if conditional[opcode] || opcode == 0x76 || opcode == 0xCB || opCycles[opcode] == 0 {
			continue
		}

		cpu, _ := loadProgram(t, opcode)
		cpu.sp = 0xD000
		cycles, err := cpu.Exec()
		require.NoError(t, err, "opcode 0x%02X", opcode)
		assert.Equal(t, int(opCycles[opcode]), cycles, "opcode 0x%02X", opcode)
	}
}

func TestCPU_Exec_branchCycles(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode byte
		flags  Flag
		want   int
		pc     uint16
	}{
		{desc: "JR NZ taken", opcode: 0x20, want: 12, pc: 0x0102 + 0x05},
		{desc: "JR NZ not taken", opcode: 0x20, flags: zeroFlag, want: 8, pc: 0x0102},
		{desc: "JP C taken", opcode: 0xDA, flags: carryFlag, want: 16, pc: 0x0605},
		{desc: "JP C not taken", opcode: 0xDA, want: 12, pc: 0x0103},
		{desc: "CALL Z taken", opcode: 0xCC, flags: zeroFlag, want: 24, pc: 0x0605},
		{desc: "CALL Z not taken", opcode: 0xCC, want: 12, pc: 0x0103},
		{desc: "RET NC taken", opcode: 0xD0, want: 20, pc: 0x0000},
		{desc: "RET NC not taken", opcode: 0xD0, flags: carryFlag, want: 8, pc: 0x0101},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu, _ := loadProgram(t, tC.opcode, 0x05, 0x06)
			cpu.sp = 0xD000
			cpu.f = uint8(tC.flags)

			cycles, err := cpu.Exec()
			require.NoError(t, err)
			assert.Equal(t, tC.want, cycles)
			assert.Equal(t, tC.pc, cpu.pc)
		})
	}
}

func TestCPU_Exec_cbCycles(t *testing.T) {
	testCases := []struct {
		desc string
		cb   byte
		want int
	}{
		{"RLC B", 0x00, 8},
		{"RLC (HL)", 0x06, 16},
		{"BIT 0, (HL)", 0x46, 12},
		{"BIT 7, A", 0x7F, 8},
		{"RES 0, (HL)", 0x86, 16},
		{"SET 7, (HL)", 0xFE, 16},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu, _ := loadProgram(t, 0xCB, tC.cb)
			cpu.setHL(0xC000)

			cycles, err := cpu.Exec()
			require.NoError(t, err)
			assert.Equal(t, tC.want, cycles)
			assert.Equal(t, uint16(0xCB00)|uint16(tC.cb), cpu.CurrentOpcode())
		})
	}
}

func TestCPU_invalidOpcode(t *testing.T) {
	for _, opcode := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		cpu, _ := loadProgram(t, 0x00, opcode)

		_, err := cpu.Exec()
		require.NoError(t, err)

		_, err = cpu.Exec()
		var fault *Fault
		require.True(t, errors.As(err, &fault), "opcode 0x%02X", opcode)
		assert.Equal(t, InvalidOpcode, fault.Kind)
		assert.Equal(t, uint16(0x0101), fault.Addr)

		// stays stopped
		_, err = cpu.Exec()
		assert.Equal(t, fault, err)
	}
}

func TestCPU_haltForever(t *testing.T) {
	cpu, bus := loadProgram(t, 0x76)
	bus.memory[addr.IE] = 0x00

	_, err := cpu.Exec()
	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, HaltForever, fault.Kind)
	assert.Equal(t, uint16(0x0100), fault.Addr)
	assert.Equal(t, "halt forever at 0x0100", fault.Error())
}

func TestCPU_halt(t *testing.T) {
	t.Run("skips to the next event", func(t *testing.T) {
		cpu, bus := loadProgram(t, 0x76)
		bus.untilEvent = 300

		cycles, err := cpu.Exec()
		require.NoError(t, err)
		assert.Equal(t, 300, cycles)
		assert.True(t, cpu.IsHalted())

		bus.untilEvent = 0
		cycles, err = cpu.Exec()
		require.NoError(t, err)
		assert.Equal(t, minHaltCycles, cycles)
		assert.True(t, cpu.IsHalted())
	})

	t.Run("pending interrupt with IME cleared resumes", func(t *testing.T) {
		cpu, bus := loadProgram(t, 0xF3, 0x76, 0x3C) // DI, HALT, INC A
		_, _ = cpu.Exec()
		_, _ = cpu.Exec()
		require.True(t, cpu.IsHalted())

		bus.memory[addr.IF] = uint8(addr.TimerInterrupt)
		_, err := cpu.Exec()
		require.NoError(t, err)
		assert.False(t, cpu.IsHalted())
		assert.Equal(t, uint8(0x02), cpu.a)
		assert.Equal(t, uint8(addr.TimerInterrupt), bus.memory[addr.IF], "not serviced")
	})
}

func TestCPU_interrupts(t *testing.T) {
	t.Run("priority order", func(t *testing.T) {
		cpu, bus := loadProgram(t)
		bus.memory[addr.IF] = uint8(addr.TimerInterrupt | addr.VBlankInterrupt)

		cpu.handleInterrupts()

		assert.Equal(t, uint16(0x0040), cpu.pc)
		assert.Equal(t, uint8(addr.TimerInterrupt), bus.memory[addr.IF])
		assert.False(t, cpu.GetIME())
		assert.Equal(t, uint16(0x0100), cpu.popStack())
	})

	t.Run("masked by IE", func(t *testing.T) {
		cpu, bus := loadProgram(t)
		bus.memory[addr.IE] = uint8(addr.SerialInterrupt)
		bus.memory[addr.IF] = 0xE0 | uint8(addr.VBlankInterrupt|addr.SerialInterrupt)

		cpu.handleInterrupts()

		assert.Equal(t, uint16(0x0058), cpu.pc)
		assert.Equal(t, 0xE0|uint8(addr.VBlankInterrupt), bus.memory[addr.IF])
	})

	t.Run("upper bits are not interrupts", func(t *testing.T) {
		cpu, bus := loadProgram(t)
		bus.memory[addr.IE] = 0xFF
		bus.memory[addr.IF] = 0xE0

		cpu.handleInterrupts()
		assert.Equal(t, uint16(0x0100), cpu.pc)
		assert.True(t, cpu.GetIME())
	})

	t.Run("EI enables interrupts with delay", func(t *testing.T) {
		cpu, bus := loadProgram(t, 0xF3, 0xFB, 0x00, 0x00) // DI, EI, NOP, NOP
		_, _ = cpu.Exec()
		require.False(t, cpu.GetIME())
		bus.memory[addr.IF] = uint8(addr.JoypadInterrupt)

		_, _ = cpu.Exec()
		assert.False(t, cpu.GetIME())
		assert.Equal(t, uint16(0x0102), cpu.pc)

		// the instruction after EI still runs with interrupts off
		_, _ = cpu.Exec()
		assert.True(t, cpu.GetIME())
		assert.Equal(t, uint16(0x0103), cpu.pc)
		assert.Equal(t, uint8(addr.JoypadInterrupt), bus.memory[addr.IF])

		_, _ = cpu.Exec()
		assert.Equal(t, uint16(0x0061), cpu.pc, "joypad vector plus the fetched byte")
		assert.Zero(t, bus.memory[addr.IF])
		assert.Equal(t, uint16(0x0103), cpu.popStack())
	})

	t.Run("DI cancels a pending EI", func(t *testing.T) {
		cpu, _ := loadProgram(t, 0xFB, 0xF3, 0x00)
		for i := 0; i < 3; i++ {
			_, _ = cpu.Exec()
		}
		assert.False(t, cpu.GetIME())
	})

	t.Run("RETI enables immediately", func(t *testing.T) {
		cpu, _ := loadProgram(t, 0xD9)
		cpu.interruptsEnabled = false
		cpu.sp = 0xD000
		cpu.pushStack(0x1234)

		_, _ = cpu.Exec()
		assert.True(t, cpu.GetIME())
		assert.Equal(t, uint16(0x1234), cpu.pc)
	})
}

func TestCPU_stop(t *testing.T) {
	cpu, bus := loadProgram(t, 0x10, 0x00)
	cycles, err := cpu.Exec()
	require.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, 1, bus.speedSwitch)
	assert.Equal(t, uint16(0x0101), cpu.pc)
}

func TestCPU_GetFlagString(t *testing.T) {
	cpu := New(&flatBus{})
	cpu.f = uint8(zeroFlag | carryFlag)
	assert.Equal(t, "Z--C", cpu.GetFlagString())
}
