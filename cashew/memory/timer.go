package memory

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
)

// divCycles is the number of cycles between two DIV increments.
const divCycles = 256

// tacCycles maps TAC input clock select (bits 1-0) to the number of cycles
// per TIMA increment:
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var tacCycles = [4]int{1024, 16, 64, 256}

// Timer encapsulates the Game Boy timer/DIV/TIMA/TMA/TAC behavior.
type Timer struct {
	divCount  int
	timaCount int

	div  byte
	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

// Reset restores the power-on registers, with DIV starting at div.
func (t *Timer) Reset(div byte) {
	t.div = div
	t.tima = 0
	t.tma = 0
	t.tac = 0xF8
	t.divCount = 0
	t.timaCount = 0
}

func (t *Timer) Tick(cycles int) {
	t.divCount += cycles
	for t.divCount >= divCycles {
		t.divCount -= divCycles
		t.div++
	}

	if !bit.IsSet(2, t.tac) {
		return
	}

	t.timaCount += cycles
	period := tacCycles[t.tac&0x03]
	for t.timaCount >= period {
		t.timaCount -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			if t.TimerInterruptHandler != nil {
				t.TimerInterruptHandler()
			}
		}
	}
}

// Pending returns the cycles left before the next TIMA increment,
// false when the timer is stopped.
func (t *Timer) Pending() (int, bool) {
	if !bit.IsSet(2, t.tac) {
		return 0, false
	}
	return tacCycles[t.tac&0x03] - t.timaCount, true
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// the sub-DIV counter keeps running
		t.div = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
