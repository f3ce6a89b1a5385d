package textfile

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
)

// Newline is the stop character that terminates a logical line.
const Newline = '\n'

const scanChunkSize = 64 * 1024

// LineRecord is the byte range of one logical line, terminator included.
type LineRecord struct {
	Number int   // 0-based line number
	Start  int64 // First byte of the line
	End    int64 // One past the last byte (exclusive)
	EOF    bool  // Last line of the file
}

// Len returns the number of bytes in the line.
func (l LineRecord) Len() int64 { return l.End - l.Start }

// Index maps logical line numbers to byte ranges. It is immutable once built.
type Index struct {
	lines []LineRecord
	size  int64
}

// BuildIndex scans r once from the start and records every line boundary.
// A file always has at least one line: an empty file yields a single empty
// EOF line, and a trailing newline yields a final empty EOF line.
func BuildIndex(ctx context.Context, r io.Reader) (*Index, error) {
	br := bufio.NewReaderSize(r, scanChunkSize)
	buf := make([]byte, scanChunkSize)

	var (
		lines []LineRecord
		start int64
		pos   int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building line index: %w", err)
		}
		n, err := br.Read(buf)
		chunk := buf[:n]
		for len(chunk) > 0 {
			i := bytes.IndexByte(chunk, Newline)
			if i < 0 {
				pos += int64(len(chunk))
				break
			}
			pos += int64(i + 1)
			lines = append(lines, LineRecord{Number: len(lines), Start: start, End: pos})
			start = pos
			chunk = chunk[i+1:]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("building line index at byte %d: %w", pos, err)
		}
	}
	lines = append(lines, LineRecord{Number: len(lines), Start: start, End: pos, EOF: true})

	return &Index{lines: lines, size: pos}, nil
}

// NumLines returns the number of logical lines. It is never less than 1.
func (x *Index) NumLines() int { return len(x.lines) }

// Size returns the number of bytes covered by the index.
func (x *Index) Size() int64 { return x.size }

// Line returns the record for line n, clamped to the valid range.
func (x *Index) Line(n int) LineRecord {
	if n < 0 {
		n = 0
	}
	if n >= len(x.lines) {
		n = len(x.lines) - 1
	}
	return x.lines[n]
}

// LineOfByte returns the line whose range contains b. A byte sitting on a
// boundary belongs to the line that starts there; b at or past the end of
// the file belongs to the last line.
func (x *Index) LineOfByte(b int64) int {
	i := sort.Search(len(x.lines), func(i int) bool {
		return x.lines[i].End > b
	})
	if i == len(x.lines) {
		return len(x.lines) - 1
	}
	return i
}
