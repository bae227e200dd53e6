package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-cashew/cashew"
)

// command is a non-joypad key binding.
type command int

const (
	commandNone command = iota
	commandQuit
	commandReset
	commandSnapshot
	commandDebugToggle
	commandLogMore
	commandLogLess
)

var keyButtons = map[tcell.Key]cashew.Button{
	tcell.KeyUp:    cashew.ButtonUp,
	tcell.KeyDown:  cashew.ButtonDown,
	tcell.KeyLeft:  cashew.ButtonLeft,
	tcell.KeyRight: cashew.ButtonRight,
	tcell.KeyEnter: cashew.ButtonStart,
}

var runeButtons = map[rune]cashew.Button{
	'z': cashew.ButtonA,
	'x': cashew.ButtonB,
	'w': cashew.ButtonUp,
	's': cashew.ButtonDown,
	'a': cashew.ButtonLeft,
	'd': cashew.ButtonRight,
	' ': cashew.ButtonSelect,
}

var keyCommands = map[tcell.Key]command{
	tcell.KeyEscape: commandQuit,
	tcell.KeyCtrlC:  commandQuit,
	tcell.KeyF10:    commandDebugToggle,
	tcell.KeyF12:    commandSnapshot,
}

var runeCommands = map[rune]command{
	'q': commandQuit,
	'r': commandReset,
	'+': commandLogMore,
	'=': commandLogMore,
	'-': commandLogLess,
	'_': commandLogLess,
}

// directions are exclusive: a terminal only reports the last key held.
const directions = cashew.ButtonUp | cashew.ButtonDown | cashew.ButtonLeft | cashew.ButtonRight

func lookupKey(ev *tcell.EventKey) (cashew.Button, command) {
	if ev.Key() == tcell.KeyRune {
		return runeButtons[ev.Rune()], runeCommands[ev.Rune()]
	}
	return keyButtons[ev.Key()], keyCommands[ev.Key()]
}
