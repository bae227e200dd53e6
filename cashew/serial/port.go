package serial

import (
	"github.com/valerio/go-cashew/cashew/addr"
	"github.com/valerio/go-cashew/cashew/bit"
)

const (
	// transferCycles is the time to shift a whole byte at 8192 Hz.
	transferCycles = 4096
	// fastTransferCycles is the CGB fast clock (SC bit 1) rate.
	fastTransferCycles = transferCycles / 32

	scStart    = 7
	scSpeed    = 1
	scInternal = 0
)

// Link is the other end of the cable. Transmit is called once at the start of
// every transfer, Receive is polled when the byte boundary is reached and
// must not block: false means no byte is available.
type Link interface {
	Transmit(value byte)
	Receive() (byte, bool)
}

// Port is the serial controller behind SB and SC.
type Port struct {
	irqHandler func()
	link       Link
	color      bool

	sb, sc byte
	count  int
	// sent is set once the outgoing byte of the current transfer went out on the link.
	sent bool
}

type PortOption func(*Port)

// WithLink connects a cable to the port.
func WithLink(link Link) PortOption { return func(p *Port) { p.link = link } }

// WithColor enables the CGB fast clock and CGB reset values.
func WithColor(color bool) PortOption { return func(p *Port) { p.color = color } }

// NewPort creates the serial controller.
// The passed function is called when a transfer is completed, should be wired
// to request the Serial interrupt.
func NewPort(irq func(), opts ...PortOption) *Port {
	p := &Port{irqHandler: irq}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// SetLink replaces the cable, nil disconnects it.
func (p *Port) SetLink(link Link) {
	p.link = link
}

func (p *Port) Reset() {
	p.sb = 0x00
	p.sc = 0x7E
	if p.color {
		p.sc = 0x7F
	}
	p.count = 0
	p.sent = false
}

func (p *Port) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
		p.sent = false
	}
}

func (p *Port) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc
	}
	return 0xFF
}

func (p *Port) threshold() int {
	if p.color && bit.IsSet(scSpeed, p.sc) {
		return fastTransferCycles
	}
	return transferCycles
}

// Tick advances the transfer in progress, if any.
func (p *Port) Tick(cycles int) {
	if !bit.IsSet(scStart, p.sc) {
		return
	}

	if !p.sent && p.link != nil {
		p.link.Transmit(p.sb)
		p.sent = true
	}

	p.count += cycles
	if p.count < p.threshold() {
		return
	}
	p.count = 0

	if p.link != nil {
		if rx, ok := p.link.Receive(); ok {
			p.complete(rx)
			return
		}
	}

	// With the external clock and nobody on the other end no bit is shifted.
	if bit.IsSet(scInternal, p.sc) {
		p.complete(0xFF)
	}
}

// Pending returns the cycles left before the transfer in progress reaches the byte boundary.
func (p *Port) Pending() (int, bool) {
	if !bit.IsSet(scStart, p.sc) {
		return 0, false
	}
	return p.threshold() - p.count, true
}

func (p *Port) complete(rx byte) {
	p.sent = false
	p.sb = rx
	p.sc &= 0x01
	if p.irqHandler != nil {
		p.irqHandler()
	}
}
