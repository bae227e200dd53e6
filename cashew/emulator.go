package cashew

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/cart"
	"github.com/valerio/go-cashew/cashew/cpu"
	"github.com/valerio/go-cashew/cashew/memory"
	"github.com/valerio/go-cashew/cashew/serial"
	"github.com/valerio/go-cashew/cashew/video"
)

// Emulator represents the root struct and entry point for running the emulation.
// It is not safe for concurrent use.
type Emulator struct {
	cfg    Config
	header cart.Header

	cpu  *cpu.CPU
	gpu  *video.GPU
	mem  *memory.MMU
	port *serial.Port
	bus  *Bus

	boot    bool
	onError ErrorHandler
	// reported is set once the current fault went to onError.
	reported bool
}

// New creates an emulator for the cartridge provided by host and resets it.
// It fails with ErrInvalidChecksum or ErrCartridgeUnsupported when the
// header cannot be used.
func New(host Host, cfg Config, opts ...Option) (*Emulator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	header, err := cart.ParseHeader(host)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge header: %w", err)
	}

	e := &Emulator{
		cfg:     cfg,
		header:  header,
		mem:     memory.New(host, header, cfg.Color),
		boot:    o.boot != nil,
		onError: o.onError,
	}
	color := e.mem.Color()

	e.port = serial.NewPort(
		func() { e.mem.RequestInterrupt(addr.SerialInterrupt) },
		serial.WithColor(color),
		serial.WithLink(o.link),
	)
	e.mem.SetSerialPort(e.port)

	e.gpu = video.New(e.mem, o.drawer, video.Config{
		Color:           color,
		AccurateSprites: cfg.AccurateSprites,
		FrameSkip:       cfg.FrameSkip,
		Interlace:       cfg.Interlace,
		TaggedPalette:   cfg.TaggedPalette,
	})
	e.mem.SetDisplay(e.gpu)

	if o.boot != nil {
		e.mem.SetBootROM(o.boot)
	}

	e.bus = &Bus{MMU: e.mem, gpu: e.gpu, port: e.port}
	e.cpu = cpu.New(e.bus)

	slog.Info("Loaded ROM",
		"title", header.Title,
		"mbc", header.MBC,
		"color", color,
		"rom_size", header.ROMSize(),
		"save_size", header.SaveSize())

	e.Reset()
	return e, nil
}

// Reset restarts the console, keeping the cartridge RAM.
func (e *Emulator) Reset() {
	e.mem.Reset()
	e.gpu.Reset(e.boot)
	if e.boot {
		e.cpu.ResetForBootROM()
	} else {
		e.cpu.Reset(e.mem.Color(), e.header.Checksum)
	}
	e.reported = false
}

// RunFrame executes instructions until the LCD enters VBlank. While the LCD
// is off a frame still completes every 70224 cycles.
// A fatal error stops the emulator until Reset and is returned as a *Fault.
func (e *Emulator) RunFrame() error {
	e.gpu.ClearFrame()
	for !e.gpu.Frame() {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes one instruction, or one skip ahead while halted, and clocks
// the devices. Returns the cycles elapsed.
func (e *Emulator) Step() (int, error) {
	cycles, err := e.cpu.Exec()
	if err != nil {
		return 0, e.fail(err)
	}

	total := 0
	for {
		e.bus.Tick(cycles)
		total += cycles

		if !e.cpu.IsHalted() || e.mem.PendingInterrupts() != 0 || e.gpu.Frame() {
			return total, nil
		}
		cycles = e.bus.skipCycles()
	}
}

func (e *Emulator) fail(err error) error {
	var fault *Fault
	if !errors.As(err, &fault) || e.reported {
		return err
	}

	e.reported = true
	slog.Error("Emulation stopped",
		"error", fault.Kind,
		"address", fmt.Sprintf("0x%04X", fault.Addr),
		"opcode", fmt.Sprintf("0x%02X", e.cpu.CurrentOpcode()))
	if e.onError != nil {
		e.onError(fault.Kind, fault.Addr)
	}
	return err
}

// SetJoypad sets the buttons currently held, see Button.
func (e *Emulator) SetJoypad(pressed uint8) {
	e.mem.SetJoypad(^pressed)
}

// SaveSize returns the size of the battery backed RAM the host must keep.
func (e *Emulator) SaveSize() int {
	return e.header.SaveSize()
}

// Title returns the game title from the cartridge header.
func (e *Emulator) Title() string {
	return e.header.Title
}

// Header returns the parsed cartridge header.
func (e *Emulator) Header() cart.Header {
	return e.header
}

// Color reports whether the cartridge runs in color mode.
func (e *Emulator) Color() bool {
	return e.mem.Color()
}

// Palette returns the 64 entry color table used by color mode pixels:
// 8 background palettes then 8 object palettes of 4 colors, red in bits
// 10-14 and blue in bits 0-4.
func (e *Emulator) Palette() [0x40]uint16 {
	var table [0x40]uint16
	palettes := e.mem.Palettes()
	for i := range table {
		table[i] = palettes.Color(uint8(i))
	}
	return table
}

// ColorTable returns the live color table for video.FrameBuffer, nil in monochrome mode.
func (e *Emulator) ColorTable() video.ColorTable {
	if !e.mem.Color() {
		return nil
	}
	return e.mem.Palettes()
}

// SetRTC sets the cartridge clock. day is 9 bits wide.
func (e *Emulator) SetRTC(seconds, minutes, hours uint8, day uint16) error {
	rtc := e.mem.RTC()
	if rtc == nil {
		return ErrNoClock
	}
	rtc.Set(seconds, minutes, hours, day)
	return nil
}

// Registers returns the CPU registers.
func (e *Emulator) Registers() cpu.Registers {
	return e.cpu.Registers()
}

// Read returns the byte at address as seen by the CPU.
func (e *Emulator) Read(address uint16) byte {
	return e.mem.Read(address)
}
