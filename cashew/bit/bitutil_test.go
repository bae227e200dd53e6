package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		assert.Equal(t, tt.expected, result)
		assert.Equal(t, tt.high, High(result))
		assert.Equal(t, tt.low, Low(result))
	}
}

func TestSetReset(t *testing.T) {
	for i := uint8(0); i < 8; i++ {
		set := Set(i, 0)
		assert.True(t, IsSet(i, set))
		assert.Equal(t, uint8(1), Value(i, set))
		assert.Equal(t, uint8(0), Reset(i, set))
		assert.Equal(t, uint8(0xFF)&^(1<<i), Reset(i, 0xFF))
	}
}

func TestFromBool(t *testing.T) {
	assert.Equal(t, uint8(1), FromBool(true))
	assert.Equal(t, uint8(0), FromBool(false))
}

func TestNibbles(t *testing.T) {
	high, low := Nibbles(0xA5)
	assert.Equal(t, uint8(0x0A), high)
	assert.Equal(t, uint8(0x05), low)
}
