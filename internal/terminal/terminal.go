package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/JackWReid/peek/internal/config"
	"github.com/JackWReid/peek/internal/viewer"
)

const footerRows = 2

// Terminal owns the tcell screen and the layout of header, text area and
// footer. It implements viewer.Sink for the text area.
type Terminal struct {
	screen tcell.Screen
	cfg    config.Config
	width  int
	height int
}

// NewTerminal initialises the controlling terminal.
func NewTerminal(cfg config.Config) (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(s, cfg)
}

// NewWithScreen initialises s and wraps it. Tests pass a simulation screen.
func NewWithScreen(s tcell.Screen, cfg config.Config) (*Terminal, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(styleText)
	s.HideCursor()
	s.Clear()

	t := &Terminal{screen: s, cfg: cfg}
	t.width, t.height = s.Size()
	return t, nil
}

// Resize re-queries terminal dimensions and clears the screen. Returns true
// if the size changed.
func (t *Terminal) Resize() bool {
	w, h := t.screen.Size()
	changed := w != t.width || h != t.height
	t.width = w
	t.height = h
	t.screen.Clear()
	return changed
}

// Width returns the current terminal width.
func (t *Terminal) Width() int { return t.width }

// Height returns the current terminal height.
func (t *Terminal) Height() int { return t.height }

// TextSize returns the columns and rows left for file text once the margin,
// header and footer are taken out. Both are at least one.
func (t *Terminal) TextSize() (width, height int) {
	width = t.width - t.cfg.Margin()
	height = t.height - t.top()
	if t.cfg.Footer {
		height -= footerRows
	}
	return max(width, 1), max(height, 1)
}

// PollEvent blocks for the next input event. It returns EventClosed once the
// terminal has been restored.
func (t *Terminal) PollEvent() InputEvent {
	return decodeEvent(t.screen.PollEvent())
}

// Show flushes pending drawing to the terminal.
func (t *Terminal) Show() { t.screen.Show() }

// Restore returns the terminal to its original state. PollEvent unblocks.
func (t *Terminal) Restore() { t.screen.Fini() }

// DrawHeader writes the file path on the first row.
func (t *Terminal) DrawHeader(path string) {
	if !t.cfg.Header {
		return
	}
	t.drawBar(0, FormatHeader(path, t.width))
}

// DrawFooter writes the two status rows at the bottom.
func (t *Terminal) DrawFooter(st Status) {
	if !t.cfg.Footer || t.height < footerRows {
		return
	}
	top, bottom := FormatFooter(st)
	t.drawBar(t.height-2, top)
	t.drawBar(t.height-1, bottom)
}

// DrawRow draws one viewport row with its line-number margin.
func (t *Terminal) DrawRow(v viewer.RowView) {
	y := t.top() + v.Index
	if !t.inText(y) {
		return
	}

	base := styleText
	if v.CurrentLine {
		base = styleCurrentLine
	}

	margin := t.cfg.Margin()
	if margin > 0 {
		label := ""
		if v.StartsLine {
			label = FormatLineNumber(v.Row.Line)
		}
		ms := styleMargin
		if v.CurrentLine {
			ms = styleMarginCurrent
		}
		t.drawText(0, y, margin, padLeft(label+" ", margin), ms)
	}

	x := margin
	last := len(v.Row.Chars) - 1
	for col, c := range v.Row.Chars {
		if x >= t.width {
			break
		}
		glyph, style := cell(c, v.Row.EOF && col == last, t.cfg.ShowWhitespace, base)
		if col == v.CursorX {
			style = style.Background(colorCursor)
		}
		t.screen.SetContent(x, y, glyph, nil, style)
		x++
	}
	t.fill(x, y, base)
}

// ClearRow blanks a text row that has no file content.
func (t *Terminal) ClearRow(index int) {
	y := t.top() + index
	if !t.inText(y) {
		return
	}
	t.fill(0, y, styleText)
}

func (t *Terminal) top() int {
	if t.cfg.Header {
		return 1
	}
	return 0
}

func (t *Terminal) inText(y int) bool {
	_, h := t.TextSize()
	return y >= t.top() && y < t.top()+h && y < t.height
}

func (t *Terminal) drawBar(y int, text string) {
	x := t.drawText(0, y, t.width, text, styleBar)
	t.fill(x, y, styleBar)
}

// drawText writes text from x, stopping before limit cells. It returns the
// column after the last cell written.
func (t *Terminal) drawText(x, y, limit int, text string, style tcell.Style) int {
	for _, r := range text {
		w := max(runeWidth(r), 1)
		if x+w > limit {
			break
		}
		t.screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func (t *Terminal) fill(x, y int, style tcell.Style) {
	for ; x < t.width; x++ {
		t.screen.SetContent(x, y, ' ', nil, style)
	}
}
