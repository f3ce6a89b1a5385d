package terminal

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/JackWReid/peek/internal/viewer"
)

// Status is what the footer shows about the session.
type Status struct {
	Window     viewer.Window
	Cursor     viewer.Position
	TotalBytes int64
	TotalLines int
	Last       viewer.Command
	Message    string // Temporary notice, e.g. a read error or file change.
}

// FormatHeader returns the header text for path, shortened from the left to
// fit width cells.
func FormatHeader(path string, width int) string {
	if path == "" {
		path = "[stdin]"
	}
	text := " " + path
	if runewidth.StringWidth(text) <= width {
		return text
	}
	short := " " + truncatePath(path)
	if runewidth.StringWidth(short) <= width {
		return short
	}
	if width <= 1 {
		return ""
	}
	return runewidth.TruncateLeft(short, runewidth.StringWidth(short)-width+1, "…")
}

// FormatFooter returns the two footer rows: the visible span first, then the
// file totals with the last command and any notice.
func FormatFooter(st Status) (top, bottom string) {
	w := st.Window
	top = fmt.Sprintf(" b(%d, %d)  l(%d, %d)  @%d",
		w.FirstByte, w.LastByte, w.FirstLine+1, w.LastLine+1, st.Cursor.Byte)

	var b strings.Builder
	fmt.Fprintf(&b, " total bytes:%d  total lines:%d", st.TotalBytes, st.TotalLines)
	if st.Last != viewer.CmdNone {
		b.WriteString("  ")
		b.WriteString(st.Last.String())
	}
	if st.Message != "" {
		b.WriteString("  ")
		b.WriteString(st.Message)
	}
	return top, b.String()
}

// FormatLineNumber renders the 1-based number of line n so that it fits in
// four cells, abbreviating thousands, millions and billions.
func FormatLineNumber(n int) string {
	num := strconv.Itoa(n + 1)
	switch d := len(num); {
	case d <= 4:
		return num
	case d <= 6:
		return num[:d-3] + "K"
	case d == 7:
		if num[1:3] == "00" {
			return num[:1] + "M"
		}
		return num[:1] + "." + num[1:3] + "M"
	case d <= 9:
		return num[:d-6] + "M"
	case d <= 11:
		if strings.Trim(num[d-9:], "0") == "" {
			return num[:d-9] + "B"
		}
		return ">" + num[:d-9] + "B"
	default:
		return "????"
	}
}

// truncatePath shortens a file path to parent/basename.
func truncatePath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	base := filepath.Base(path)
	if dir == "." || dir == string(filepath.Separator) {
		return base
	}
	return dir + "/" + base
}
