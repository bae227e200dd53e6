package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-cashew/cashew/addr"
)

func TestTimer_DIV(t *testing.T) {
	timer := &Timer{}
	timer.Reset(0xAB)

	timer.Tick(255)
	assert.Equal(t, byte(0xAB), timer.Read(addr.DIV))
	timer.Tick(1)
	assert.Equal(t, byte(0xAC), timer.Read(addr.DIV))

	timer.Tick(256 * 0x54)
	assert.Equal(t, byte(0x00), timer.Read(addr.DIV), "wraps")

	timer.Write(addr.DIV, 0x42)
	assert.Equal(t, byte(0x00), timer.Read(addr.DIV))
}

func TestTimer_TIMA(t *testing.T) {
	testCases := []struct {
		desc   string
		tac    byte
		cycles int
		want   byte
	}{
		{"disabled", 0x00, 4096, 0x00},
		{"4096 Hz", 0x04, 4096, 0x04},
		{"262144 Hz", 0x05, 4096, 0x00}, // 256 increments wrap to TMA
		{"65536 Hz", 0x06, 640, 0x0A},
		{"16384 Hz", 0x07, 1000, 0x03},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			timer := &Timer{}
			timer.Reset(0)
			timer.Write(addr.TAC, tC.tac)
			timer.Tick(tC.cycles)
			assert.Equal(t, tC.want, timer.Read(addr.TIMA))
		})
	}
}

func TestTimer_Overflow(t *testing.T) {
	interrupts := 0
	timer := &Timer{TimerInterruptHandler: func() { interrupts++ }}
	timer.Reset(0)

	timer.Write(addr.TMA, 0xFE)
	timer.Write(addr.TIMA, 0xFF)
	timer.Write(addr.TAC, 0x05)

	timer.Tick(16)
	assert.Equal(t, byte(0xFE), timer.Read(addr.TIMA))
	assert.Equal(t, 1, interrupts)

	timer.Tick(32)
	assert.Equal(t, byte(0xFE), timer.Read(addr.TIMA))
	assert.Equal(t, 2, interrupts)
}

func TestTimer_Pending(t *testing.T) {
	timer := &Timer{}
	timer.Reset(0)

	_, ok := timer.Pending()
	assert.False(t, ok)

	timer.Write(addr.TAC, 0x04)
	timer.Tick(24)
	cycles, ok := timer.Pending()
	assert.True(t, ok)
	assert.Equal(t, 1000, cycles)
}
