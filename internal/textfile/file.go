package textfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// EOFMarker is appended to the row that reaches the end of the file, giving
// the cursor one addressable column past the last real character.
const EOFMarker = '␃'

var (
	// ErrIsDirectory is returned when Open is given a directory.
	ErrIsDirectory = errors.New("is a directory")
	// ErrOffsetRange is returned for row extraction outside [0, size].
	ErrOffsetRange = errors.New("byte offset out of range")
)

// Row is one wrapped display row: a width-bounded run of decoded characters
// belonging to a single logical line.
type Row struct {
	Line  int    // Logical line the row belongs to
	Start int64  // First byte of the row
	End   int64  // One past the last byte consumed
	Chars []rune // Decoded characters, EOF marker included
	EOF   bool   // Row reached the end of the file

	sizes []uint8 // Encoded length of each char; invalid bytes count as 1
}

// Len returns the number of addressable columns in the row.
func (r Row) Len() int { return len(r.Chars) }

// Text returns the row's characters without the EOF marker.
func (r Row) Text() string {
	if r.EOF && len(r.Chars) > 0 {
		return string(r.Chars[:len(r.Chars)-1])
	}
	return string(r.Chars)
}

// EndsLine reports whether the row is the last row of its logical line.
func (r Row) EndsLine() bool {
	if r.EOF {
		return true
	}
	return len(r.Chars) > 0 && r.Chars[len(r.Chars)-1] == Newline
}

// ByteAt returns the file offset of column x in the row. Columns past the
// last real character map to End.
func (r Row) ByteAt(x int) int64 {
	off := r.Start
	for i := range r.Chars {
		if i >= x {
			return off
		}
		off += r.size(i)
	}
	return r.End
}

// ColumnOf returns the column of the character containing byte b, or -1 if b
// is outside the row.
func (r Row) ColumnOf(b int64) int {
	if b < r.Start || b > r.End {
		return -1
	}
	if b == r.End {
		if r.EOF {
			return len(r.Chars) - 1
		}
		return -1
	}
	off := r.Start
	for i := range r.Chars {
		next := off + r.size(i)
		if b < next {
			return i
		}
		off = next
	}
	return -1
}

func (r Row) size(i int) int64 {
	if i < len(r.sizes) {
		return int64(r.sizes[i])
	}
	return 0
}

// File is an open text file with its line index. Rows are read on demand and
// nothing beyond the index is held in memory.
type File struct {
	Path string // Absolute path
	Name string // Base name
	Dir  string // Directory containing the file

	r      io.ReaderAt
	closer io.Closer
	index  *Index
}

// Open opens path and builds its line index. The index is complete before the
// File is returned; any I/O error aborts the open.
func Open(ctx context.Context, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("open %s: %w", path, ErrIsDirectory)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	tf, err := New(ctx, f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	tf.Path = abs
	tf.Name = filepath.Base(abs)
	tf.Dir = filepath.Dir(abs)
	tf.closer = f
	return tf, nil
}

// New indexes the first size bytes of r. Closing the returned File closes r
// if it implements io.Closer.
func New(ctx context.Context, r io.ReaderAt, size int64) (*File, error) {
	index, err := BuildIndex(ctx, io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	tf := &File{r: r, index: index}
	if c, ok := r.(io.Closer); ok {
		tf.closer = c
	}
	return tf, nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// Index returns the line index.
func (f *File) Index() *Index { return f.index }

// Size returns the indexed size of the file in bytes.
func (f *File) Size() int64 { return f.index.size }

// NumLines returns the number of logical lines.
func (f *File) NumLines() int { return f.index.NumLines() }

// Line returns the record for line n.
func (f *File) Line(n int) LineRecord { return f.index.Line(n) }

// LineOfByte returns the logical line containing byte b.
func (f *File) LineOfByte(b int64) int { return f.index.LineOfByte(b) }

// Row reads up to width characters starting at start. Reading stops after
// stop (which is kept in the row) or at the end of the file, in which case
// the row is flagged EOF and closed with EOFMarker. Multi-byte characters are
// never split; bytes that are not valid UTF-8 decode one at a time as
// utf8.RuneError.
func (f *File) Row(width int, start int64, stop rune) (Row, error) {
	size := f.index.size
	if start < 0 || start > size {
		return Row{}, fmt.Errorf("row at byte %d of %d: %w", start, size, ErrOffsetRange)
	}
	if width < 1 {
		width = 1
	}

	want := int64(width * utf8.UTFMax)
	if rem := size - start; want > rem {
		want = rem
	}
	buf := make([]byte, want)
	n, err := f.r.ReadAt(buf, start)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == want) {
		return Row{}, fmt.Errorf("row at byte %d: %w", start, err)
	}
	buf = buf[:n]

	row := Row{
		Line:  f.index.LineOfByte(start),
		Start: start,
		Chars: make([]rune, 0, width),
		sizes: make([]uint8, 0, width),
	}
	pos := 0
	for len(row.Chars) < width {
		if pos >= len(buf) {
			row.EOF = true
			row.Chars = append(row.Chars, EOFMarker)
			row.sizes = append(row.sizes, 0)
			break
		}
		c, sz := utf8.DecodeRune(buf[pos:])
		pos += sz
		row.Chars = append(row.Chars, c)
		row.sizes = append(row.sizes, uint8(sz))
		if c == stop {
			break
		}
	}
	row.End = start + int64(pos)
	return row, nil
}
