package viewer

import (
	"slices"

	"github.com/JackWReid/peek/internal/textfile"
)

// Source is what the viewport reads rows and line boundaries from.
type Source interface {
	Row(width int, start int64, stop rune) (textfile.Row, error)
	Line(n int) textfile.LineRecord
	LineOfByte(b int64) int
}

// Viewport is a sliding window of wrapped display rows over a Source. Rows
// are contiguous and ordered by byte offset. There are exactly Height rows
// unless the end of the file is reached first.
type Viewport struct {
	Width  int
	Height int

	src    Source
	rows   []textfile.Row
	redraw bool // every row needs drawing
}

// NewViewport returns an empty viewport. Call Reset before using it.
func NewViewport(src Source, width, height int) *Viewport {
	return &Viewport{
		Width:  max(width, 1),
		Height: max(height, 1),
		src:    src,
	}
}

// Reset rebuilds the window starting at the logical line containing b. On
// error the previous rows are kept.
func (v *Viewport) Reset(b int64) error {
	start := v.src.Line(v.src.LineOfByte(b)).Start

	rows := make([]textfile.Row, 0, v.Height)
	for len(rows) < v.Height {
		row, err := v.src.Row(v.Width, start, textfile.Newline)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		if row.EOF {
			break
		}
		start = row.End
	}
	v.rows = rows
	v.redraw = true
	return nil
}

// ScrollDown drops the first row and appends the next one. It reports
// whether the window moved; at the end of the file it does nothing.
func (v *Viewport) ScrollDown() (bool, error) {
	if v.AtEndOfFile() {
		return false, nil
	}
	next, err := v.src.Row(v.Width, v.LastByte(), textfile.Newline)
	if err != nil {
		return false, err
	}
	v.rows = append(v.rows[1:], next)
	v.redraw = true
	return true, nil
}

// ScrollUp prepends the row before the first one and drops the last row if
// the window is full. Wrap boundaries cannot be found backwards from an
// arbitrary byte, so the preceding row is found by re-wrapping forward from
// the start of its logical line. That makes the cost proportional to the
// line's length divided by the width.
func (v *Viewport) ScrollUp() (bool, error) {
	if v.AtStartOfFile() {
		return false, nil
	}
	top := v.rows[0]
	start := v.src.Line(top.Line).Start
	if start >= top.Start {
		start = v.src.Line(top.Line - 1).Start
	}

	var prev textfile.Row
	for start < top.Start {
		row, err := v.src.Row(v.Width, start, textfile.Newline)
		if err != nil {
			return false, err
		}
		if row.End <= start {
			break
		}
		prev = row
		start = row.End
	}

	rows := v.rows
	if len(rows) >= v.Height {
		rows = rows[:len(rows)-1]
	}
	v.rows = append([]textfile.Row{prev}, rows...)
	v.redraw = true
	return true, nil
}

// save returns a copy of the window that restore can put back.
func (v *Viewport) save() []textfile.Row { return slices.Clone(v.rows) }

// restore puts back rows taken by save, undoing any scrolls since.
func (v *Viewport) restore(rows []textfile.Row) {
	v.rows = rows
	v.redraw = false
}

// Rows returns the rows currently in the window. The slice must not be
// modified.
func (v *Viewport) Rows() []textfile.Row { return v.rows }

// Len returns the number of rows in the window.
func (v *Viewport) Len() int { return len(v.rows) }

// Row returns row i of the window.
func (v *Viewport) Row(i int) textfile.Row { return v.rows[i] }

// First returns the top row.
func (v *Viewport) First() textfile.Row { return v.rows[0] }

// Last returns the bottom row.
func (v *Viewport) Last() textfile.Row { return v.rows[len(v.rows)-1] }

// FirstByte returns the offset of the first byte shown.
func (v *Viewport) FirstByte() int64 { return v.First().Start }

// LastByte returns the offset one past the last byte shown.
func (v *Viewport) LastByte() int64 { return v.Last().End }

// FirstLine returns the logical line of the top row.
func (v *Viewport) FirstLine() int { return v.First().Line }

// LastLine returns the logical line of the bottom row.
func (v *Viewport) LastLine() int { return v.Last().Line }

// AtStartOfFile reports whether the top row starts at byte 0.
func (v *Viewport) AtStartOfFile() bool { return v.FirstByte() == 0 }

// AtEndOfFile reports whether the bottom row reaches the end of the file.
func (v *Viewport) AtEndOfFile() bool { return v.Last().EOF }

// StartsLine reports whether row begins its logical line.
func (v *Viewport) StartsLine(row textfile.Row) bool {
	return row.Start == v.src.Line(row.Line).Start
}

// Contains reports whether byte b is shown by one of the rows.
func (v *Viewport) Contains(b int64) bool {
	for _, row := range v.rows {
		if row.ColumnOf(b) >= 0 {
			return true
		}
	}
	return false
}

// takeRedraw reports and clears the whole-window redraw flag.
func (v *Viewport) takeRedraw() bool {
	r := v.redraw
	v.redraw = false
	return r
}
