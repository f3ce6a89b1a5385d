package viewer

func (s *Session) lastColumn() int {
	return s.currentRow().Len() - 1
}

func (s *Session) up() error {
	switch {
	case s.currentRow().Start == 0:
		// Already on the first row of the file: go to its first column.
		s.cur.SetXMemoryTo(0)
	case s.cur.Y == 0:
		if _, err := s.vp.ScrollUp(); err != nil {
			return err
		}
	default:
		s.cur.MoveY(-1)
	}
	s.cur.SnapX(s.lastColumn())
	return nil
}

func (s *Session) down() error {
	switch {
	case s.currentRow().EOF:
		// Already on the last row of the file: go to the EOF marker.
		s.cur.SetXMemoryTo(s.lastColumn())
	case s.cur.Y == s.vp.Len()-1:
		if _, err := s.vp.ScrollDown(); err != nil {
			return err
		}
	default:
		s.cur.MoveY(1)
	}
	s.cur.SnapX(s.lastColumn())
	return nil
}

func (s *Session) left() error {
	defer s.cur.SetXMemory()
	if s.cur.X == 0 {
		s.cur.SetXMemoryTo(s.cur.Bounds().MaxX)
		return s.up()
	}
	s.cur.MoveX(-1)
	return nil
}

func (s *Session) right() error {
	defer s.cur.SetXMemory()
	if s.cur.X >= s.lastColumn() {
		s.cur.SetXMemoryTo(0)
		return s.down()
	}
	s.cur.MoveX(1)
	return nil
}

// pageUp scrolls back one screen a row at a time so every step re-aligns on
// logical line starts.
func (s *Session) pageUp() error {
	if s.vp.AtStartOfFile() {
		s.cur.Goto(0, 0)
		s.cur.SetXMemory()
		return nil
	}
	for range s.vp.Height {
		moved, err := s.vp.ScrollUp()
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	s.cur.SnapX(s.lastColumn())
	return nil
}

func (s *Session) pageDown() error {
	if s.vp.AtEndOfFile() {
		s.cur.GotoY(s.vp.Len() - 1)
		s.cur.GotoX(s.vp.Last().Len() - 1)
		s.cur.SetXMemory()
		return nil
	}
	for range s.vp.Height {
		moved, err := s.vp.ScrollDown()
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	s.cur.SnapX(s.lastColumn())
	return nil
}

// home goes to column 0, then on a second press to the start of the logical
// line, rebuilding the viewport if that start is above the window.
func (s *Session) home() error {
	defer s.cur.SetXMemory()
	if s.cur.X != 0 {
		s.cur.GotoX(0)
		return nil
	}
	row := s.currentRow()
	if s.vp.StartsLine(row) {
		return nil
	}
	if first := s.vp.First(); first.Line == row.Line && !s.vp.StartsLine(first) {
		if err := s.vp.Reset(s.src.Line(row.Line).Start); err != nil {
			return err
		}
		s.cur.Goto(0, 0)
		return nil
	}
	for i, r := range s.vp.Rows() {
		if r.Line == row.Line {
			s.cur.Goto(0, i)
			break
		}
	}
	return nil
}

// end goes to the last column, then on a second press to the end of the
// logical line, scrolling down until that end is on screen.
func (s *Session) end() error {
	defer s.cur.SetXMemory()
	if s.cur.X != s.lastColumn() {
		s.cur.GotoX(s.lastColumn())
		return nil
	}
	row := s.currentRow()
	if row.EndsLine() {
		return nil
	}
	if last := s.vp.Last(); last.Line == row.Line && !last.EndsLine() {
		for !s.vp.Last().EndsLine() {
			moved, err := s.vp.ScrollDown()
			if err != nil {
				return err
			}
			if !moved {
				break
			}
		}
		s.cur.Goto(s.vp.Last().Len()-1, s.vp.Len()-1)
		return nil
	}
	for i := s.vp.Len() - 1; i > s.cur.Y; i-- {
		if r := s.vp.Row(i); r.Line == row.Line {
			s.cur.Goto(r.Len()-1, i)
			break
		}
	}
	return nil
}
