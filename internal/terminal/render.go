package terminal

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Whitespace symbols drawn when show_whitespace is on.
const (
	SymbolNewline     = '¶'
	SymbolReturn      = '↲'
	SymbolTab         = '˽'
	SymbolSpace       = '_'
	SymbolPlaceholder = '?' // Stands in for characters that are not one cell wide.
)

var (
	colorCursor  = tcell.ColorLightSteelBlue
	colorCurrent = tcell.Color236

	styleText          = tcell.StyleDefault
	styleCurrentLine   = tcell.StyleDefault.Background(colorCurrent)
	styleMargin        = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorDarkSlateGray)
	styleMarginCurrent = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkCyan)
	styleBar           = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// cell maps a file character to the rune and style drawn for it. Every
// character takes exactly one cell so that viewport columns and screen
// columns agree.
func cell(c rune, eof, showWhitespace bool, base tcell.Style) (rune, tcell.Style) {
	if eof {
		return c, base.Foreground(tcell.ColorRed)
	}
	switch c {
	case '\n':
		return whitespace(SymbolNewline, tcell.ColorBlue, showWhitespace, base)
	case '\r':
		return whitespace(SymbolReturn, tcell.ColorTurquoise, showWhitespace, base)
	case '\t':
		return whitespace(SymbolTab, tcell.ColorPurple, showWhitespace, base)
	case ' ':
		return whitespace(SymbolSpace, tcell.ColorGreen, showWhitespace, base)
	}
	if runeWidth(c) != 1 {
		return SymbolPlaceholder, base.Foreground(tcell.ColorOrange)
	}
	return c, base
}

func whitespace(sym rune, color tcell.Color, show bool, base tcell.Style) (rune, tcell.Style) {
	if !show {
		return ' ', base
	}
	return sym, base.Foreground(color)
}

func runeWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

func padLeft(s string, width int) string {
	if n := width - runewidth.StringWidth(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
