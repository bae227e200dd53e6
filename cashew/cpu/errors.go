package cpu

import "fmt"

// ErrorKind classifies a fatal emulation condition.
type ErrorKind uint8

const (
	UnknownError ErrorKind = iota
	// InvalidOpcode is an opcode with no instruction behind it.
	InvalidOpcode
	// InvalidRead and InvalidWrite are addresses outside the 16 bit space.
	// With uint16 addresses they cannot happen, they exist for hosts matching on every kind.
	InvalidRead
	InvalidWrite
	// HaltForever is HALT with IE cleared: nothing can ever wake the CPU.
	HaltForever
	InvalidMax
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownError:
		return "unknown error"
	case InvalidOpcode:
		return "invalid opcode"
	case InvalidRead:
		return "invalid read"
	case InvalidWrite:
		return "invalid write"
	case HaltForever:
		return "halt forever"
	default:
		return fmt.Sprintf("error kind %d", uint8(k))
	}
}

// Fault is a fatal condition raised while executing, with the faulting address.
type Fault struct {
	Kind ErrorKind
	Addr uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at 0x%04X", f.Kind, f.Addr)
}
