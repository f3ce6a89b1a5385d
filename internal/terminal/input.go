package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/JackWReid/peek/internal/viewer"
)

// EventKind distinguishes input events.
type EventKind int

const (
	EventNone    EventKind = iota // Unbound key or event we ignore
	EventCommand                  // A key bound to a navigation command
	EventResize                   // The terminal changed size
	EventClosed                   // The screen was finalised
)

// InputEvent is a decoded terminal event.
type InputEvent struct {
	Kind    EventKind
	Command viewer.Command
	Name    string // Key name as tcell reports it, for logging
	Width   int    // Set for EventResize
	Height  int
}

var keyCommands = map[tcell.Key]viewer.Command{
	tcell.KeyUp:     viewer.CmdUp,
	tcell.KeyDown:   viewer.CmdDown,
	tcell.KeyLeft:   viewer.CmdLeft,
	tcell.KeyRight:  viewer.CmdRight,
	tcell.KeyPgUp:   viewer.CmdPageUp,
	tcell.KeyPgDn:   viewer.CmdPageDown,
	tcell.KeyHome:   viewer.CmdHome,
	tcell.KeyEnd:    viewer.CmdEnd,
	tcell.KeyCtrlQ:  viewer.CmdQuit,
	tcell.KeyEscape: viewer.CmdQuit,
}

// Pager-style letter bindings.
var runeCommands = map[rune]viewer.Command{
	'q': viewer.CmdQuit,
	'k': viewer.CmdUp,
	'j': viewer.CmdDown,
	'h': viewer.CmdLeft,
	'l': viewer.CmdRight,
	'b': viewer.CmdPageUp,
	' ': viewer.CmdPageDown,
	'g': viewer.CmdHome,
	'G': viewer.CmdEnd,
}

func decodeEvent(ev tcell.Event) InputEvent {
	switch ev := ev.(type) {
	case nil:
		return InputEvent{Kind: EventClosed}
	case *tcell.EventResize:
		w, h := ev.Size()
		return InputEvent{Kind: EventResize, Width: w, Height: h}
	case *tcell.EventKey:
		cmd, ok := keyCommands[ev.Key()]
		if ev.Key() == tcell.KeyRune {
			cmd, ok = runeCommands[ev.Rune()]
		}
		if !ok {
			return InputEvent{Kind: EventNone, Name: ev.Name()}
		}
		return InputEvent{Kind: EventCommand, Command: cmd, Name: ev.Name()}
	}
	return InputEvent{Kind: EventNone}
}
