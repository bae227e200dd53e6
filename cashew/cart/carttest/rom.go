// Package carttest builds synthetic cartridge images for tests.
package carttest

import "github.com/valerio/go-cashew/cashew/cart"

// BankMarkerOffset is where every ROM bank stores its own bank number
// (low byte, then high byte), so tests can tell which bank is mapped.
const BankMarkerOffset = 0x2000

// Options describes the synthetic cartridge.
type Options struct {
	Title       string
	Type        byte
	ROMSizeCode byte
	RAMSizeCode byte
	Color       bool
	// Code is copied at the entry point 0x0100. Defaults to a JR -2 loop.
	Code []byte
	// Patches writes extra bytes at the given ROM offsets, e.g. code past 0x0150.
	Patches map[int][]byte
	// BadChecksum stores a wrong header checksum.
	BadChecksum bool
}

// ROM returns a ROM image of the declared size with a valid header.
func ROM(o Options) []byte {
	size := 0x8000 << o.ROMSizeCode
	rom := make([]byte, size)

	for bank := 0; bank*0x4000 < size; bank++ {
		rom[bank*0x4000+BankMarkerOffset] = byte(bank)
		rom[bank*0x4000+BankMarkerOffset+1] = byte(bank >> 8)
	}

	code := o.Code
	if code == nil {
		code = []byte{0x18, 0xFE}
	}
	copy(rom[0x100:0x134], code)

	title := o.Title
	if title == "" {
		title = "TEST"
	}
	copy(rom[0x134:0x143], title)

	for offset, data := range o.Patches {
		copy(rom[offset:], data)
	}

	if o.Color {
		rom[0x143] = 0x80
	}
	rom[0x147] = o.Type
	rom[0x148] = o.ROMSizeCode
	rom[0x149] = o.RAMSizeCode

	img := romBytes(rom)
	rom[0x14D] = cart.Checksum(img)
	if o.BadChecksum {
		rom[0x14D]++
	}

	return rom
}

// Image is ROM followed by cart.NewImage, panicking on a bad header.
func Image(o Options) *cart.Image {
	img, err := cart.NewImage(ROM(o))
	if err != nil {
		panic(err)
	}
	return img
}

type romBytes []byte

func (r romBytes) ReadROM(address uint32) byte {
	return r[address]
}
