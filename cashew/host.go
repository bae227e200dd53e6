package cashew

import (
	"github.com/valerio/go-cashew/cashew/memory"
	"github.com/valerio/go-cashew/cashew/serial"
	"github.com/valerio/go-cashew/cashew/video"
)

// Host provides the cartridge: ROM reads and battery backed RAM access.
// Calls are synchronous and happen on the goroutine running the emulator.
// cart.Image is the stock implementation.
type Host interface {
	ReadROM(address uint32) byte
	ReadCartRAM(address uint32) byte
	WriteCartRAM(address uint32, value byte)
}

// BootROM provides the boot program mapped over 0x0000-0x00FF after Reset.
type BootROM = memory.BootROM

// LineDrawer receives each rendered line, see video.FrameBuffer.
type LineDrawer = video.LineDrawer

// SerialLink is the other end of the link cable, see serial.LogSink and link.Peer.
type SerialLink = serial.Link

// ErrorHandler is told about the fatal condition that stopped the emulator.
type ErrorHandler func(kind ErrorKind, address uint16)

// BootImage is a boot program dump. Bytes past its end read as 0xFF.
type BootImage []byte

func (b BootImage) ReadBootROM(address uint16) byte {
	if int(address) >= len(b) {
		return 0xFF
	}
	return b[address]
}
