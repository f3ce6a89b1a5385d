package viewer

import (
	"context"
	"errors"

	"github.com/JackWReid/peek/internal/textfile"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Options configures a new session.
type Options struct {
	Width  int   // Text columns per row
	Height int   // Rows in the viewport
	Offset int64 // Byte to open at
}

// Position is the cursor in viewport and file coordinates.
type Position struct {
	X    int
	Y    int
	Byte int64
	Line int
}

// Window describes the byte and line span of the viewport.
type Window struct {
	FirstByte int64
	LastByte  int64
	FirstLine int
	LastLine  int
}

// RowView is one row handed to a Sink.
type RowView struct {
	Index       int
	Row         textfile.Row
	StartsLine  bool // Row is the first row of its logical line
	CurrentLine bool // Row belongs to the cursor's logical line
	CursorX     int  // Cursor column, or -1 if the cursor is on another row
}

// Sink draws viewport rows onto a character grid.
type Sink interface {
	DrawRow(v RowView)
	ClearRow(index int)
}

// Session is one open file being viewed: its viewport and cursor. Commands
// are handled one at a time; a Session is not safe for concurrent use.
type Session struct {
	src  Source
	file *textfile.File
	vp   *Viewport
	cur  *Cursor

	done   bool
	closed bool
}

// Open opens path, indexes it and builds the initial viewport. No session is
// returned if any step fails.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	f, err := textfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return OpenFile(f, opts)
}

// OpenFile builds a session over an already indexed file and takes ownership
// of it: the file is closed with the session, or right away if the initial
// viewport cannot be built.
func OpenFile(f *textfile.File, opts Options) (*Session, error) {
	s, err := NewSession(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.file = f
	return s, nil
}

// NewSession builds a session over src with the viewport anchored at the
// line containing opts.Offset and the cursor on that byte.
func NewSession(src Source, opts Options) (*Session, error) {
	vp := NewViewport(src, opts.Width, opts.Height)
	if err := vp.Reset(opts.Offset); err != nil {
		return nil, err
	}
	vp.takeRedraw()

	s := &Session{
		src: src,
		vp:  vp,
		cur: NewCursor(BoundsFor(vp.Width, vp.Height)),
	}
	s.place(opts.Offset)
	return s, nil
}

// File returns the file given to Open or OpenFile, or nil for sessions built
// with NewSession.
func (s *Session) File() *textfile.File { return s.file }

// Rows returns a copy of the viewport rows.
func (s *Session) Rows() []textfile.Row {
	rows := make([]textfile.Row, s.vp.Len())
	copy(rows, s.vp.Rows())
	return rows
}

// Size returns the viewport width and height.
func (s *Session) Size() (width, height int) { return s.vp.Width, s.vp.Height }

// Window returns the span of the file currently on screen.
func (s *Session) Window() Window {
	return Window{
		FirstByte: s.vp.FirstByte(),
		LastByte:  s.vp.LastByte(),
		FirstLine: s.vp.FirstLine(),
		LastLine:  s.vp.LastLine(),
	}
}

// Position returns the cursor position.
func (s *Session) Position() Position {
	row := s.currentRow()
	return Position{
		X:    s.cur.X,
		Y:    s.cur.Y,
		Byte: row.ByteAt(s.cur.X),
		Line: row.Line,
	}
}

// XMemory returns the column vertical movement returns to.
func (s *Session) XMemory() int { return s.cur.XMemory }

// Done reports whether the session has received CmdQuit.
func (s *Session) Done() bool { return s.done }

// Handle applies one navigation command and returns the rows to redraw.
// Navigation clamps instead of failing; an error means a row could not be
// read, in which case the viewport and cursor are left as they were before
// the command.
func (s *Session) Handle(cmd Command) (Dirty, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.done {
		return nil, nil
	}

	prevY := s.cur.Y
	prevLine := s.currentRow().Line
	rows, cur := s.vp.save(), *s.cur

	var err error
	switch cmd {
	case CmdUp:
		err = s.up()
	case CmdDown:
		err = s.down()
	case CmdLeft:
		err = s.left()
	case CmdRight:
		err = s.right()
	case CmdPageUp:
		err = s.pageUp()
	case CmdPageDown:
		err = s.pageDown()
	case CmdHome:
		err = s.home()
	case CmdEnd:
		err = s.end()
	case CmdQuit:
		s.done = true
		return nil, nil
	default:
		return nil, nil
	}

	if err != nil {
		// Commands that scroll several rows may fail part way through.
		s.vp.restore(rows)
		*s.cur = cur
		return nil, err
	}

	if s.cur.Y >= s.vp.Len() {
		s.cur.GotoY(s.vp.Len() - 1)
	}
	return s.dirty(prevY, prevLine), nil
}

// Render draws the rows in dirty. Indices past the end of the file are
// cleared.
func (s *Session) Render(sink Sink, dirty Dirty) {
	curLine := s.currentRow().Line
	for _, i := range dirty {
		if i < 0 || i >= s.vp.Height {
			continue
		}
		if i >= s.vp.Len() {
			sink.ClearRow(i)
			continue
		}
		row := s.vp.Row(i)
		v := RowView{
			Index:       i,
			Row:         row,
			StartsLine:  s.vp.StartsLine(row),
			CurrentLine: row.Line == curLine,
			CursorX:     -1,
		}
		if i == s.cur.Y {
			v.CursorX = s.cur.X
		}
		sink.DrawRow(v)
	}
}

// Resize rebuilds the viewport for a new size, anchored at the start of the
// first visible logical line. The cursor stays on the same byte if it is
// still visible, otherwise the viewport is re-anchored at the cursor.
func (s *Session) Resize(width, height int) (Dirty, error) {
	if s.closed {
		return nil, ErrClosed
	}
	b := s.Position().Byte

	vp := NewViewport(s.src, width, height)
	if err := vp.Reset(s.vp.FirstByte()); err != nil {
		return nil, err
	}
	if !vp.Contains(b) {
		if err := vp.Reset(b); err != nil {
			return nil, err
		}
	}
	vp.takeRedraw()

	s.vp = vp
	s.cur.SetBounds(BoundsFor(vp.Width, vp.Height))
	s.place(b)
	return All(vp.Height), nil
}

// Close releases the file if the session opened it.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *Session) currentRow() textfile.Row {
	return s.vp.Row(min(s.cur.Y, s.vp.Len()-1))
}

// place puts the cursor on the character containing b, or at the top-left
// corner if b is not on screen.
func (s *Session) place(b int64) {
	for i, row := range s.vp.Rows() {
		if x := row.ColumnOf(b); x >= 0 {
			s.cur.Goto(x, i)
			s.cur.SetXMemory()
			return
		}
	}
	s.cur.Goto(0, 0)
	s.cur.SetXMemory()
}

func (s *Session) dirty(prevY, prevLine int) Dirty {
	var d Dirty
	if s.vp.takeRedraw() {
		d = All(s.vp.Height)
	} else {
		curLine := s.currentRow().Line
		for i, row := range s.vp.Rows() {
			if row.Line == prevLine || row.Line == curLine {
				d = d.Add(i)
			}
		}
	}
	return d.Add(prevY, s.cur.Y)
}
