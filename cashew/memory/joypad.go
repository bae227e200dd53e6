package memory

// Button is a joypad key, as a bit of the byte passed to SetJoypad.
// The low nibble holds the action buttons, the high nibble the direction pad.
type Button uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	case ButtonRight:
		return "Right"
	case ButtonLeft:
		return "Left"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// joypadLines returns the low nibble of P1 for the select value being written:
// direction keys when bit 4 is low, action buttons otherwise.
func (m *MMU) joypadLines(selectValue byte) byte {
	if selectValue&0x10 == 0 {
		return m.joypad >> 4
	}
	return m.joypad & 0x0F
}
