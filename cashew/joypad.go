package cashew

import "github.com/valerio/go-cashew/cashew/memory"

// Button is one bit of the joypad mask passed to SetJoypad, set when pressed.
type Button = memory.Button

const (
	ButtonA      = memory.ButtonA
	ButtonB      = memory.ButtonB
	ButtonSelect = memory.ButtonSelect
	ButtonStart  = memory.ButtonStart
	ButtonRight  = memory.ButtonRight
	ButtonLeft   = memory.ButtonLeft
	ButtonUp     = memory.ButtonUp
	ButtonDown   = memory.ButtonDown
)
