package cashew

import (
	"github.com/valerio/go-cashew/cashew/memory"
	"github.com/valerio/go-cashew/cashew/serial"
	"github.com/valerio/go-cashew/cashew/video"
)

// minStepCycles is used when a device reports an event already due.
const minStepCycles = 4

// Bus connects the CPU to memory and clocks every other device.
type Bus struct {
	*memory.MMU
	gpu  *video.GPU
	port *serial.Port
}

// Tick advances the devices by the cycles an instruction took. The LCD runs
// at single speed, so it gets half the cycles in double speed mode.
func (b *Bus) Tick(cycles int) {
	b.MMU.Tick(cycles)

	lcdCycles := cycles
	if b.DoubleSpeed() && cycles > 1 {
		lcdCycles >>= 1
	}
	b.gpu.Tick(lcdCycles)
}

// CyclesUntilEvent returns the cycles before the LCD, timer or serial port
// next change state.
func (b *Bus) CyclesUntilEvent() int {
	next := b.gpu.Pending()
	if b.DoubleSpeed() {
		next <<= 1
	}

	if cycles, ok := b.Timer().Pending(); ok {
		next = min(next, cycles)
	}
	if cycles, ok := b.port.Pending(); ok {
		next = min(next, cycles)
	}
	return next
}

// skipCycles is the step taken while the CPU is halted.
func (b *Bus) skipCycles() int {
	if cycles := b.CyclesUntilEvent(); cycles > 0 {
		return cycles
	}
	return minStepCycles
}
