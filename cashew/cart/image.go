package cart

import (
	"log/slog"
	"sync"
)

// Image is a cartridge held in host memory: the ROM bytes plus the
// battery backed RAM. It provides the cartridge side of the host interface.
type Image struct {
	rom    []byte
	header Header

	mu  sync.RWMutex
	ram []byte
}

// NewImage parses the header of rom and allocates cartridge RAM for it.
func NewImage(rom []byte) (*Image, error) {
	img := &Image{rom: rom}

	header, err := ParseHeader(img)
	if err != nil {
		return nil, err
	}

	img.header = header
	img.ram = make([]byte, header.SaveSize())

	if len(rom) < header.ROMSize() {
		slog.Warn("ROM is smaller than its header declares", "size", len(rom), "declared", header.ROMSize())
	}

	return img, nil
}

// Header returns the parsed cartridge header.
func (i *Image) Header() Header {
	return i.header
}

// ReadROM returns 0xFF past the end of the ROM, like an open bus.
func (i *Image) ReadROM(address uint32) byte {
	if int(address) >= len(i.rom) {
		return 0xFF
	}
	return i.rom[address]
}

func (i *Image) ReadCartRAM(address uint32) byte {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if int(address) >= len(i.ram) {
		return 0xFF
	}
	return i.ram[address]
}

func (i *Image) WriteCartRAM(address uint32, value byte) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if int(address) >= len(i.ram) {
		return
	}
	i.ram[address] = value
}

// RAM returns a copy of the cartridge RAM, suitable for writing a save file.
func (i *Image) RAM() []byte {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ram := make([]byte, len(i.ram))
	copy(ram, i.ram)
	return ram
}

// LoadRAM replaces the cartridge RAM contents. Extra bytes are ignored,
// missing bytes keep their current value.
func (i *Image) LoadRAM(data []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()

	copy(i.ram, data)
}
