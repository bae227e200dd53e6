package cashew

import (
	"errors"

	"github.com/valerio/go-cashew/cashew/cart"
	"github.com/valerio/go-cashew/cashew/cpu"
)

// Construction errors, test with errors.Is.
var (
	ErrInvalidChecksum      = cart.ErrInvalidChecksum
	ErrCartridgeUnsupported = cart.ErrCartridgeUnsupported
	// ErrNoClock is returned by SetRTC for cartridges without a real time clock.
	ErrNoClock = errors.New("cartridge has no real time clock")
)

// ErrorKind classifies a fatal emulation error.
type ErrorKind = cpu.ErrorKind

const (
	UnknownError  = cpu.UnknownError
	InvalidOpcode = cpu.InvalidOpcode
	InvalidRead   = cpu.InvalidRead
	InvalidWrite  = cpu.InvalidWrite
	HaltForever   = cpu.HaltForever
	InvalidMax    = cpu.InvalidMax
)

// Fault is the error returned by RunFrame and Step once the CPU stopped.
// Use errors.As to retrieve the kind and address.
type Fault = cpu.Fault
