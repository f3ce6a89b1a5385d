package viewer

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackWReid/peek/internal/textfile"
)

func newTestSession(t *testing.T, s string, width, height int) *Session {
	t.Helper()
	sess, err := NewSession(newSource(t, s), Options{Width: width, Height: height})
	require.NoError(t, err)
	return sess
}

func press(t *testing.T, s *Session, cmds ...Command) Dirty {
	t.Helper()
	var d Dirty
	for _, c := range cmds {
		var err error
		d, err = s.Handle(c)
		require.NoError(t, err, "command %s", c)
	}
	return d
}

func repeat(c Command, n int) []Command {
	out := make([]Command, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestEndToEndPaging(t *testing.T) {
	s := newTestSession(t, strings.Repeat("abc\n", 10), 10, 5)
	rows := s.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, 0, rows[0].Line)
	assert.Equal(t, 4, rows[4].Line)

	d := press(t, s, CmdPageDown)
	assert.Equal(t, All(5), d)
	w := s.Window()
	assert.Equal(t, int64(20), w.FirstByte)
	assert.Equal(t, 5, w.FirstLine)
	assert.Equal(t, 9, w.LastLine)

	// The trailing newline leaves an empty EOF line that one more page
	// reveals; after that paging down only moves the cursor.
	press(t, s, CmdPageDown)
	w = s.Window()
	assert.Equal(t, 10, w.LastLine)
	assert.True(t, s.Rows()[4].EOF)

	press(t, s, CmdPageDown)
	assert.Equal(t, w, s.Window())
	assert.Equal(t, Position{X: 0, Y: 4, Byte: 40, Line: 10}, s.Position())
}

func TestEndToEndPagingLastLineIsEOF(t *testing.T) {
	s := newTestSession(t, strings.Repeat("abc\n", 9)+"abc", 10, 5)
	press(t, s, CmdPageDown)
	w := s.Window()
	require.Equal(t, int64(20), w.FirstByte)
	require.Equal(t, 9, w.LastLine)
	require.True(t, s.Rows()[4].EOF)

	press(t, s, CmdPageDown)
	assert.Equal(t, w, s.Window())
	assert.Equal(t, Position{X: 3, Y: 4, Byte: 39, Line: 9}, s.Position())
}

func TestPageUp(t *testing.T) {
	s := newTestSession(t, strings.Repeat("abc\n", 20), 10, 5)
	press(t, s, CmdPageDown, CmdPageDown)
	require.Equal(t, 10, s.Window().FirstLine)

	press(t, s, CmdPageUp)
	assert.Equal(t, 5, s.Window().FirstLine)
	press(t, s, CmdPageUp)
	assert.Equal(t, 0, s.Window().FirstLine)

	press(t, s, CmdDown, CmdRight, CmdPageUp)
	assert.Equal(t, Position{X: 0, Y: 0, Byte: 0, Line: 0}, s.Position())
}

func TestPageAcrossWrappedLine(t *testing.T) {
	long := strings.Repeat("0123456789", 7) + "\n"
	s := newTestSession(t, "a\n"+long+"b\n", 10, 3)
	press(t, s, CmdPageDown)
	press(t, s, CmdPageUp)
	assert.Equal(t, int64(0), s.Window().FirstByte)
}

func TestStickyColumn(t *testing.T) {
	text := strings.Repeat("a", 30) + "\n" + "bcde\n" + strings.Repeat("f", 30) + "\n"
	s := newTestSession(t, text, 40, 5)
	press(t, s, repeat(CmdRight, 20)...)
	require.Equal(t, 20, s.Position().X)

	press(t, s, CmdDown)
	assert.Equal(t, 4, s.Position().X)
	assert.Equal(t, 20, s.XMemory())

	press(t, s, CmdDown)
	assert.Equal(t, 20, s.Position().X)
	assert.Equal(t, 2, s.Position().Y)
}

func TestHomeEndSingleRowLine(t *testing.T) {
	s := newTestSession(t, "zero\nhello\nthird\n", 20, 5)
	press(t, s, CmdDown, CmdRight, CmdRight)
	w := s.Window()

	press(t, s, CmdHome)
	assert.Equal(t, 0, s.Position().X)
	press(t, s, CmdEnd)
	assert.Equal(t, 5, s.Position().X) // the newline column
	press(t, s, CmdHome)
	assert.Equal(t, 0, s.Position().X)
	d := press(t, s, CmdEnd, CmdHome)
	assert.Equal(t, 0, s.Position().X)

	assert.Equal(t, w, s.Window())
	assert.Equal(t, Dirty{1}, d)
}

func TestHomeJumpsToOffscreenLineStart(t *testing.T) {
	long := strings.Repeat("0123456789", 5) + "\n"
	s := newTestSession(t, long+"next\n", 10, 2)
	// Scroll until the top row is a continuation of the long line.
	press(t, s, CmdDown, CmdDown, CmdDown)
	require.False(t, s.vp.StartsLine(s.vp.First()))
	require.Equal(t, 0, s.Position().X)

	d := press(t, s, CmdHome)
	assert.Equal(t, All(2), d)
	assert.Equal(t, int64(0), s.Window().FirstByte)
	assert.Equal(t, Position{X: 0, Y: 0, Byte: 0, Line: 0}, s.Position())
}

func TestHomeJumpsToVisibleLineStart(t *testing.T) {
	long := strings.Repeat("0123456789", 3) + "\n"
	s := newTestSession(t, long, 10, 5)
	press(t, s, CmdDown, CmdDown, CmdRight)

	press(t, s, CmdHome)
	assert.Equal(t, Position{X: 0, Y: 2, Byte: 20, Line: 0}, s.Position())
	press(t, s, CmdHome)
	assert.Equal(t, Position{X: 0, Y: 0, Byte: 0, Line: 0}, s.Position())
}

func TestEndScrollsToLineEnd(t *testing.T) {
	long := strings.Repeat("0123456789", 5) + "\n"
	s := newTestSession(t, long+"next\n", 10, 2)

	press(t, s, CmdEnd)
	require.Equal(t, 9, s.Position().X)
	press(t, s, CmdEnd)

	last := s.Rows()[1]
	assert.True(t, last.EndsLine())
	assert.Equal(t, Position{X: 0, Y: 1, Byte: 50, Line: 0}, s.Position())
}

func TestEndJumpsToVisibleLineEnd(t *testing.T) {
	long := strings.Repeat("0123456789", 2) + "abc\n"
	s := newTestSession(t, long+"x\n", 10, 5)
	press(t, s, CmdEnd, CmdEnd)
	assert.Equal(t, Position{X: 3, Y: 2, Byte: 23, Line: 0}, s.Position())
}

func TestEmptyFile(t *testing.T) {
	s := newTestSession(t, "", 10, 5)
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Len())
	assert.True(t, rows[0].EOF)

	for _, c := range []Command{CmdUp, CmdDown, CmdLeft, CmdRight, CmdPageUp, CmdPageDown, CmdHome, CmdEnd} {
		press(t, s, c)
		assert.Equal(t, Position{}, s.Position(), "after %s", c)
	}
}

func TestCursorNeverPassesEOF(t *testing.T) {
	s := newTestSession(t, "ab", 10, 5)
	press(t, s, repeat(CmdRight, 10)...)
	assert.Equal(t, Position{X: 2, Y: 0, Byte: 2, Line: 0}, s.Position())
	press(t, s, CmdDown)
	assert.Equal(t, 2, s.Position().X)
}

func TestLeftWrapsToPreviousRow(t *testing.T) {
	s := newTestSession(t, "abc\nde\n", 10, 5)
	press(t, s, CmdDown)
	require.Equal(t, 1, s.Position().Y)

	press(t, s, CmdLeft)
	assert.Equal(t, Position{X: 3, Y: 0, Byte: 3, Line: 0}, s.Position())
	assert.Equal(t, 3, s.XMemory())

	press(t, s, CmdLeft, CmdLeft, CmdLeft, CmdLeft)
	assert.Equal(t, Position{}, s.Position())
}

func TestRightWrapsToNextRow(t *testing.T) {
	s := newTestSession(t, "ab\ncd\n", 10, 5)
	press(t, s, CmdRight, CmdRight, CmdRight)
	assert.Equal(t, Position{X: 0, Y: 1, Byte: 3, Line: 1}, s.Position())
}

func TestDownScrollsAtBottomEdge(t *testing.T) {
	s := newTestSession(t, strings.Repeat("row\n", 10), 10, 3)
	d := press(t, s, CmdDown, CmdDown)
	assert.Equal(t, Dirty{1, 2}, d)

	d = press(t, s, CmdDown)
	assert.Equal(t, All(3), d)
	assert.Equal(t, 1, s.Window().FirstLine)
	assert.Equal(t, 2, s.Position().Y)
	assert.Equal(t, 3, s.Position().Line)

	press(t, s, CmdUp, CmdUp)
	d = press(t, s, CmdUp)
	assert.Equal(t, All(3), d)
	assert.Equal(t, 0, s.Window().FirstLine)
}

func TestDirtyIncludesWholeLogicalLine(t *testing.T) {
	long := strings.Repeat("0123456789", 2) + "\n"
	s := newTestSession(t, long+"next\n", 10, 5)
	d := press(t, s, CmdDown, CmdDown, CmdDown)
	require.Equal(t, 1, s.Position().Line)
	assert.Equal(t, Dirty{0, 1, 2, 3}, d)
}

func TestUpAtTopGoesToColumnZero(t *testing.T) {
	s := newTestSession(t, "hello\n", 10, 5)
	press(t, s, CmdRight, CmdRight, CmdUp)
	assert.Equal(t, 0, s.Position().X)
}

func TestDownAtEOFGoesToMarker(t *testing.T) {
	s := newTestSession(t, "hello", 10, 5)
	press(t, s, CmdDown)
	assert.Equal(t, 5, s.Position().X)
}

func TestNavigationInvariants(t *testing.T) {
	text := "short\n" + strings.Repeat("wrapped text ", 8) + "\n\n日本語のテキスト\n" + strings.Repeat("z\n", 12) + "tail"
	cmds := []Command{CmdUp, CmdDown, CmdLeft, CmdRight, CmdPageUp, CmdPageDown, CmdHome, CmdEnd}
	r := rand.New(rand.NewPCG(3, 5))

	for _, size := range [][2]int{{7, 3}, {10, 5}, {1, 1}, {40, 2}} {
		s := newTestSession(t, text, size[0], size[1])
		b := BoundsFor(size[0], size[1])
		for range 3000 {
			c := cmds[r.IntN(len(cmds))]
			press(t, s, c)

			p := s.Position()
			rows := s.Rows()
			require.GreaterOrEqual(t, p.X, 0)
			require.LessOrEqual(t, p.X, b.MaxX)
			require.GreaterOrEqual(t, p.Y, 0)
			require.Less(t, p.Y, len(rows))
			require.LessOrEqual(t, p.X, rows[p.Y].Len()-1, "after %s", c)
			require.LessOrEqual(t, len(rows), size[1])
			require.True(t, len(rows) == size[1] || rows[len(rows)-1].EOF, "short window without EOF after %s", c)
			for i := 1; i < len(rows); i++ {
				require.Equal(t, rows[i-1].End, rows[i].Start)
			}
			for _, row := range rows {
				requireWrapBoundary(t, s.src, size[0], row)
			}
			require.GreaterOrEqual(t, p.Byte, int64(0))
			require.LessOrEqual(t, p.Byte, int64(len(text)))
		}
	}
}

// requireWrapBoundary checks that row starts where wrapping its logical line
// from the line start would start a row.
func requireWrapBoundary(t *testing.T, src Source, width int, row textfile.Row) {
	t.Helper()
	start := src.Line(row.Line).Start
	for start < row.Start {
		r, err := src.Row(width, start, textfile.Newline)
		require.NoError(t, err)
		start = r.End
	}
	require.Equal(t, row.Start, start, "row at byte %d is not on a wrap boundary of line %d", row.Start, row.Line)
}

func TestQuit(t *testing.T) {
	s := newTestSession(t, "abc\n", 10, 5)
	d := press(t, s, CmdQuit)
	assert.Nil(t, d)
	assert.True(t, s.Done())

	before := s.Position()
	press(t, s, CmdDown)
	assert.Equal(t, before, s.Position())
}

func TestClosed(t *testing.T) {
	s := newTestSession(t, "abc\n", 10, 5)
	require.NoError(t, s.Close())
	_, err := s.Handle(CmdDown)
	require.ErrorIs(t, err, ErrClosed)
	_, err = s.Resize(20, 10)
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, s.Close())
}

func TestOpenAtOffset(t *testing.T) {
	s, err := NewSession(newSource(t, "one\ntwo\nthree\n"), Options{Width: 10, Height: 5, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(8), s.Window().FirstByte)
	assert.Equal(t, Position{X: 2, Y: 0, Byte: 10, Line: 2}, s.Position())
	assert.Equal(t, 2, s.XMemory())
}

func TestResizeKeepsCursorByte(t *testing.T) {
	s := newTestSession(t, strings.Repeat("0123456789", 3)+"\nnext line\n", 10, 5)
	press(t, s, CmdDown, CmdDown, CmdRight, CmdRight, CmdRight)
	require.Equal(t, int64(23), s.Position().Byte)

	d, err := s.Resize(15, 4)
	require.NoError(t, err)
	assert.Equal(t, All(4), d)
	assert.Equal(t, Position{X: 8, Y: 1, Byte: 23, Line: 0}, s.Position())
	w, h := s.Size()
	assert.Equal(t, 15, w)
	assert.Equal(t, 4, h)
}

func TestResizeReanchorsHiddenCursor(t *testing.T) {
	s := newTestSession(t, strings.Repeat("line\n", 10), 10, 6)
	press(t, s, repeat(CmdDown, 5)...)
	require.Equal(t, 5, s.Position().Line)

	_, err := s.Resize(10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Position().Line)
	assert.Equal(t, 5, s.Window().FirstLine)
}

var errFlaky = errors.New("read failed")

type flakySource struct {
	*textfile.File
	fail bool
}

func (f *flakySource) Row(width int, start int64, stop rune) (textfile.Row, error) {
	if f.fail {
		return textfile.Row{}, errFlaky
	}
	return f.File.Row(width, start, stop)
}

func TestReadErrorKeepsViewport(t *testing.T) {
	src := &flakySource{File: newSource(t, strings.Repeat("row\n", 10))}
	s, err := NewSession(src, Options{Width: 10, Height: 3})
	require.NoError(t, err)
	press(t, s, CmdDown, CmdDown)
	before := s.Rows()
	pos := s.Position()

	src.fail = true
	_, err = s.Handle(CmdDown)
	require.ErrorIs(t, err, errFlaky)
	_, err = s.Handle(CmdPageDown)
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, before, s.Rows())
	assert.Equal(t, pos, s.Position())

	src.fail = false
	press(t, s, CmdDown)
	assert.Equal(t, 1, s.Window().FirstLine)
}

// countingSource allows left more row reads, then fails. A negative left
// never fails.
type countingSource struct {
	*textfile.File
	left int
}

func (c *countingSource) Row(width int, start int64, stop rune) (textfile.Row, error) {
	if c.left == 0 {
		return textfile.Row{}, errFlaky
	}
	c.left--
	return c.File.Row(width, start, stop)
}

func TestFailedMultiRowScrollRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		height int
		offset int64
		setup  []Command
		cmd    Command
	}{
		{
			name:   "page down",
			text:   strings.Repeat("abcdefghi\n", 3) + strings.Repeat("a\n", 10),
			width:  10,
			height: 3,
			setup:  []Command{CmdDown, CmdDown, CmdEnd},
			cmd:    CmdPageDown,
		},
		{
			name:   "page up",
			text:   strings.Repeat("a\n", 4) + strings.Repeat("abcdefghi\n", 6),
			width:  10,
			height: 3,
			offset: 20,
			setup:  []Command{CmdEnd},
			cmd:    CmdPageUp,
		},
		{
			name:   "end of long line",
			text:   strings.Repeat("x", 50) + "\n",
			width:  10,
			height: 2,
			setup:  []Command{CmdEnd},
			cmd:    CmdEnd,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{File: newSource(t, tt.text), left: -1}
			s, err := NewSession(src, Options{Width: tt.width, Height: tt.height, Offset: tt.offset})
			require.NoError(t, err)
			press(t, s, tt.setup...)
			before := s.Rows()
			pos := s.Position()
			mem := s.XMemory()

			// One scroll succeeds, the next one fails.
			src.left = 1
			d, err := s.Handle(tt.cmd)
			require.ErrorIs(t, err, errFlaky)
			assert.Nil(t, d)
			assert.Equal(t, before, s.Rows())
			assert.Equal(t, pos, s.Position())
			assert.Equal(t, mem, s.XMemory())
			assert.LessOrEqual(t, s.Position().X, s.Rows()[s.Position().Y].Len()-1)

			src.left = -1
			_, err = s.Handle(tt.cmd)
			require.NoError(t, err)
			assert.NotEqual(t, before, s.Rows())
		})
	}
}

func TestNewSessionReadError(t *testing.T) {
	src := &flakySource{File: newSource(t, "abc\n"), fail: true}
	_, err := NewSession(src, Options{Width: 10, Height: 3})
	require.ErrorIs(t, err, errFlaky)
}

type recordingSink struct {
	drawn   []RowView
	cleared []int
}

func (r *recordingSink) DrawRow(v RowView)  { r.drawn = append(r.drawn, v) }
func (r *recordingSink) ClearRow(index int) { r.cleared = append(r.cleared, index) }

func TestRender(t *testing.T) {
	s := newTestSession(t, "0123456789abc\nxy", 10, 5)
	press(t, s, CmdDown, CmdRight)

	sink := &recordingSink{}
	s.Render(sink, All(5))
	require.Len(t, sink.drawn, 3)
	assert.Equal(t, []int{3, 4}, sink.cleared)

	assert.True(t, sink.drawn[0].StartsLine)
	assert.True(t, sink.drawn[0].CurrentLine)
	assert.Equal(t, -1, sink.drawn[0].CursorX)

	assert.False(t, sink.drawn[1].StartsLine)
	assert.True(t, sink.drawn[1].CurrentLine)
	assert.Equal(t, 1, sink.drawn[1].CursorX)

	assert.True(t, sink.drawn[2].StartsLine)
	assert.False(t, sink.drawn[2].CurrentLine)
	assert.True(t, sink.drawn[2].Row.EOF)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644))

	s, err := Open(context.Background(), path, Options{Width: 20, Height: 10})
	require.NoError(t, err)
	require.NotNil(t, s.File())
	assert.Equal(t, "f.txt", s.File().Name)
	assert.Len(t, s.Rows(), 3)
	require.NoError(t, s.Close())
}

func TestOpenFileMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{Width: 20, Height: 10})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "page_down", CmdPageDown.String())
	assert.Equal(t, "unknown", Command(99).String())
}

func TestDirtyAdd(t *testing.T) {
	d := Dirty{}.Add(3, 1, 3, -1, 2)
	assert.Equal(t, Dirty{1, 2, 3}, d)
	assert.True(t, d.Contains(2))
	assert.False(t, d.Contains(0))
}
