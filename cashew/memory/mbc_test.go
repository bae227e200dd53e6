package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cashew/cashew/cart"
	"github.com/valerio/go-cashew/cashew/cart/carttest"
)

func newTestMBC(t *testing.T, o carttest.Options) (MBC, *cart.Image) {
	t.Helper()
	img := carttest.Image(o)
	mbc := newMBC(img, img.Header())
	mbc.Reset()
	return mbc, img
}

// mappedBank reads the bank marker of the bank mapped at 0x4000.
func mappedBank(mbc MBC) int {
	low := mbc.Read(0x4000 + carttest.BankMarkerOffset)
	high := mbc.Read(0x4000 + carttest.BankMarkerOffset + 1)
	return int(high)<<8 | int(low)
}

func TestNewMBC_Type(t *testing.T) {
	testCases := []struct {
		desc     string
		cartType byte
		want     MBC
	}{
		{"ROM only", 0x00, &NoMBC{}},
		{"MBC1", 0x01, &MBC1{}},
		{"MBC2+BATTERY", 0x06, &MBC2{}},
		{"MBC3+TIMER+RAM+BATTERY", 0x10, &MBC3{}},
		{"MBC5+RAM", 0x1A, &MBC5{}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			mbc, _ := newTestMBC(t, carttest.Options{Type: tC.cartType})
			assert.IsType(t, tC.want, mbc)
		})
	}
}

func TestMBC1(t *testing.T) {
	t.Run("ROM Bank 0 (Fixed)", func(t *testing.T) {
		mbc, img := newTestMBC(t, carttest.Options{Type: 0x01, ROMSizeCode: 2})
		for address := uint16(0x0000); address < 0x4000; address += 0x101 {
			assert.Equal(t, img.ReadROM(uint32(address)), mbc.Read(address))
		}
	})

	t.Run("ROM Bank Switching", func(t *testing.T) {
		mbc, _ := newTestMBC(t, carttest.Options{Type: 0x01, ROMSizeCode: 2})
		testCases := []struct {
			desc  string
			value byte
			want  int
		}{
			{"bank 2", 2, 2},
			{"bank 7", 7, 7},
			{"bank 0 selects 1", 0, 1},
			{"masked to ROM size", 0x09, 1},
			{"masked to bank 0 selects 1", 0x08, 1},
		}
		for _, tC := range testCases {
			t.Run(tC.desc, func(t *testing.T) {
				mbc.Write(0x2000, tC.value)
				assert.Equal(t, tC.want, mappedBank(mbc))
			})
		}
	})

	t.Run("Upper Bank Bits", func(t *testing.T) {
		// 64 banks
		mbc, _ := newTestMBC(t, carttest.Options{Type: 0x01, ROMSizeCode: 5})
		mbc.Write(0x2000, 0x05)
		mbc.Write(0x4000, 0x01)
		assert.Equal(t, 0x25, mappedBank(mbc))

		mbc.Write(0x6000, 0x01)
		assert.Equal(t, 0x05, mappedBank(mbc), "mode 1 maps only the low 5 bits")
	})

	t.Run("RAM Enable/Disable", func(t *testing.T) {
		mbc, _ := newTestMBC(t, carttest.Options{Type: 0x03, RAMSizeCode: 3})
		assert.Equal(t, byte(0xFF), mbc.Read(0xA000), "disabled by default")

		mbc.Write(0x0000, 0x0A)
		mbc.Write(0xA000, 0x42)
		assert.Equal(t, byte(0x42), mbc.Read(0xA000))

		mbc.Write(0x0000, 0x00)
		assert.Equal(t, byte(0xFF), mbc.Read(0xA000))
	})

	t.Run("Multiple RAM Banks", func(t *testing.T) {
		mbc, img := newTestMBC(t, carttest.Options{Type: 0x03, RAMSizeCode: 3})
		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x6000, 0x01)

		values := []byte{0x42, 0x43, 0x44, 0x45}
		for bank, v := range values {
			mbc.Write(0x4000, byte(bank))
			mbc.Write(0xA010, v)
		}
		for bank, v := range values {
			mbc.Write(0x4000, byte(bank))
			assert.Equal(t, v, mbc.Read(0xA010), "bank %d", bank)
			assert.Equal(t, v, img.ReadCartRAM(uint32(bank*0x2000+0x10)))
		}
	})

	t.Run("Mode 0 Uses RAM Bank 0", func(t *testing.T) {
		mbc, img := newTestMBC(t, carttest.Options{Type: 0x03, RAMSizeCode: 3})
		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x4000, 0x02)
		mbc.Write(0xA000, 0x99)
		assert.Equal(t, byte(0x99), img.ReadCartRAM(0))
		assert.Equal(t, byte(0x99), mbc.Read(0xA000))
	})
}

func TestMBC2(t *testing.T) {
	mbc, img := newTestMBC(t, carttest.Options{Type: 0x06, ROMSizeCode: 3})

	mbc.Write(0x2100, 0x05)
	assert.Equal(t, 5, mappedBank(mbc))

	mbc.Write(0x2100, 0x00)
	assert.Equal(t, 1, mappedBank(mbc))

	// bit 8 clear: RAM enable
	mbc.Write(0x0000, 0x0A)
	mbc.Write(0xA001, 0xAB)
	assert.Equal(t, byte(0x0B), img.ReadCartRAM(1), "only the low nibble is stored")
	assert.Equal(t, byte(0x0B), mbc.Read(0xA201), "512 bytes mirrored over the window")
}

func TestMBC3(t *testing.T) {
	t.Run("ROM Bank Switching", func(t *testing.T) {
		mbc, _ := newTestMBC(t, carttest.Options{Type: 0x11, ROMSizeCode: 6})
		mbc.Write(0x2000, 0x45)
		assert.Equal(t, 0x45, mappedBank(mbc))
		mbc.Write(0x2000, 0x00)
		assert.Equal(t, 1, mappedBank(mbc))
	})

	t.Run("RTC Registers", func(t *testing.T) {
		mbc, _ := newTestMBC(t, carttest.Options{Type: 0x10, RAMSizeCode: 3})
		m3 := mbc.(*MBC3)

		mbc.Write(0x4000, 0x08)
		mbc.Write(0xA000, 0xFF)
		assert.Equal(t, byte(0x3F), m3.rtc.Registers()[RTCSeconds], "write is masked")
		assert.Equal(t, byte(0x00), mbc.Read(0xA000), "reads come from the latched copy")

		mbc.Write(0x6000, 0x00)
		mbc.Write(0x6000, 0x01)
		assert.Equal(t, byte(0x3F), mbc.Read(0xA000))

		mbc.Write(0x4000, 0x0C)
		mbc.Write(0xA000, 0xFF)
		assert.Equal(t, byte(0xC1), m3.rtc.Registers()[RTCDayHigh])
	})

	t.Run("RAM Banks", func(t *testing.T) {
		mbc, img := newTestMBC(t, carttest.Options{Type: 0x13, RAMSizeCode: 3})
		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x4000, 0x03)
		mbc.Write(0xA000, 0x77)
		assert.Equal(t, byte(0x77), img.ReadCartRAM(3*0x2000))
	})
}

func TestMBC5(t *testing.T) {
	mbc, img := newTestMBC(t, carttest.Options{Type: 0x1B, ROMSizeCode: 8, RAMSizeCode: 4})

	mbc.Write(0x2000, 0x34)
	assert.Equal(t, 0x34, mappedBank(mbc))

	mbc.Write(0x3000, 0x01)
	assert.Equal(t, 0x134, mappedBank(mbc))

	mbc.Write(0x2000, 0xFF)
	assert.Equal(t, 0x1FF, mappedBank(mbc))

	mbc.Write(0x0000, 0x0A)
	mbc.Write(0x4000, 0x0F)
	mbc.Write(0xBFFF, 0x12)
	assert.Equal(t, byte(0x12), img.ReadCartRAM(15*0x2000+0x1FFF))
}

func TestNoMBC(t *testing.T) {
	mbc, img := newTestMBC(t, carttest.Options{Type: 0x09, RAMSizeCode: 2})

	mbc.Write(0x2000, 0x03)
	assert.Equal(t, 1, mappedBank(mbc), "bank writes are ignored")

	mbc.Write(0xA123, 0x5A)
	require.Equal(t, byte(0x5A), img.ReadCartRAM(0x123))
	assert.Equal(t, byte(0x5A), mbc.Read(0xA123))
}
