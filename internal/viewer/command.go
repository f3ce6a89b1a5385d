package viewer

import (
	"slices"
)

// Command is a navigation command.
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdLeft
	CmdRight
	CmdPageUp
	CmdPageDown
	CmdHome
	CmdEnd
	CmdQuit
)

var commandNames = [...]string{
	CmdNone:     "none",
	CmdUp:       "up",
	CmdDown:     "down",
	CmdLeft:     "left",
	CmdRight:    "right",
	CmdPageUp:   "page_up",
	CmdPageDown: "page_down",
	CmdHome:     "home",
	CmdEnd:      "end",
	CmdQuit:     "quit",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Dirty is a sorted set of viewport row indices that need redrawing.
type Dirty []int

// All returns the dirty set covering rows 0..n-1.
func All(n int) Dirty {
	d := make(Dirty, n)
	for i := range d {
		d[i] = i
	}
	return d
}

// Add returns d with the given indices added, keeping it sorted and unique.
// Negative indices are ignored.
func (d Dirty) Add(idx ...int) Dirty {
	for _, i := range idx {
		if i < 0 {
			continue
		}
		if pos, found := slices.BinarySearch(d, i); !found {
			d = slices.Insert(d, pos, i)
		}
	}
	return d
}

// Contains reports whether row i is in the set.
func (d Dirty) Contains(i int) bool {
	_, found := slices.BinarySearch(d, i)
	return found
}
