package viewer

// Bounds limits where the cursor may be placed within the viewport.
type Bounds struct {
	MaxX int // Last column, width-1
	MaxY int // Last row, height-1
}

// BoundsFor returns the bounds of a width x height viewport.
func BoundsFor(width, height int) Bounds {
	return Bounds{MaxX: max(width-1, 0), MaxY: max(height-1, 0)}
}

// Cursor is a position within the viewport plus the column vertical moves
// try to return to. Setters clamp to the bounds; clamping to the length of a
// particular row is done with SnapX.
type Cursor struct {
	X       int
	Y       int
	XMemory int

	bounds Bounds
}

// NewCursor returns a cursor at the top-left corner.
func NewCursor(b Bounds) *Cursor {
	return &Cursor{bounds: b}
}

// Bounds returns the current bounds.
func (c *Cursor) Bounds() Bounds { return c.bounds }

// SetBounds replaces the bounds and re-clamps the position.
func (c *Cursor) SetBounds(b Bounds) {
	c.bounds = b
	c.Goto(c.X, c.Y)
}

// Goto moves to (x, y), clamped to the bounds.
func (c *Cursor) Goto(x, y int) {
	c.GotoX(x)
	c.GotoY(y)
}

// GotoX moves to column x, clamped to [0, MaxX].
func (c *Cursor) GotoX(x int) {
	c.X = clamp(x, 0, c.bounds.MaxX)
}

// GotoY moves to row y, clamped to [0, MaxY].
func (c *Cursor) GotoY(y int) {
	c.Y = clamp(y, 0, c.bounds.MaxY)
}

// Move moves by (dx, dy), clamped to the bounds.
func (c *Cursor) Move(dx, dy int) {
	c.Goto(c.X+dx, c.Y+dy)
}

// MoveX moves by dx columns.
func (c *Cursor) MoveX(dx int) { c.GotoX(c.X + dx) }

// MoveY moves by dy rows.
func (c *Cursor) MoveY(dy int) { c.GotoY(c.Y + dy) }

// SetXMemory remembers the current column as the vertical-movement target.
func (c *Cursor) SetXMemory() { c.XMemory = c.X }

// SetXMemoryTo remembers column m as the vertical-movement target.
func (c *Cursor) SetXMemoryTo(m int) { c.XMemory = m }

// SnapX places the cursor on the remembered column if the row is long
// enough, otherwise on the row's last column. last is the row's last valid
// column (its length minus one).
func (c *Cursor) SnapX(last int) {
	if last > c.XMemory {
		c.GotoX(c.XMemory)
		return
	}
	c.GotoX(last)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
