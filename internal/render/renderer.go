package render

import (
	"fmt"
	"strings"

	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/source"
)

// Placeholder replaces non-printable bytes in the ASCII column
const Placeholder = '.'

// Row geometry: a label, then " HH" per byte, a gutter, then one ASCII
// column per byte. MarginColumns and ColumnsPerByte drive the auto width.
const (
	gutter         = "  "
	MarginColumns  = 10
	ColumnsPerByte = 4
)

// DisplayConfig selects the offset base and the number of bytes per row
type DisplayConfig struct {
	Base     Base
	RowWidth int
}

// Validate rejects configurations that must never reach Render
func (c DisplayConfig) Validate() error {
	if !c.Base.Valid() {
		return fmt.Errorf("offset base %d: %w", c.Base, fault.ErrInvalidConfig)
	}
	if c.RowWidth < 1 {
		return fmt.Errorf("row width %d: %w", c.RowWidth, fault.ErrInvalidConfig)
	}
	return nil
}

// AutoRowWidth derives a row width from the terminal column count
func AutoRowWidth(terminalWidth int) int {
	w := (terminalWidth-MarginColumns)/ColumnsPerByte - 1
	if w < 1 {
		return 1
	}
	return w
}

// ModifiedFunc reports whether the byte at an absolute offset changed since load
type ModifiedFunc func(offset int64) bool

// Cell is one byte column. Padding cells past the end of a short row have
// Present unset.
type Cell struct {
	Value    byte
	Present  bool
	Modified bool
}

// Hex returns the two-digit byte value, or blanks for a padding cell
func (c Cell) Hex() string {
	if !c.Present {
		return "  "
	}
	return fmt.Sprintf("%02X", c.Value)
}

// Row is one formatted display row
type Row struct {
	Offset int64
	Label  string
	Cells  []Cell
	ASCII  string
}

// Len returns the number of real bytes in the row
func (r Row) Len() int {
	n := 0
	for _, c := range r.Cells {
		if c.Present {
			n++
		}
	}
	return n
}

// String returns the plain-text line used by dump output
func (r Row) String() string {
	var b strings.Builder
	b.WriteString(r.Label)
	for _, c := range r.Cells {
		b.WriteByte(' ')
		b.WriteString(c.Hex())
	}
	b.WriteString(gutter)
	b.WriteString(r.ASCII)
	return b.String()
}

// Printable reports whether b is shown as itself in the ASCII column
func Printable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// Render partitions the window into rows of cfg.RowWidth bytes.
// It has no state: equal arguments always give equal rows. modified may be nil.
// A config that fails Validate yields no rows.
func Render(window source.Window, cfg DisplayConfig, modified ModifiedFunc) []Row {
	if cfg.Validate() != nil || window.Len() == 0 {
		return nil
	}

	w := cfg.RowWidth
	count := (window.Len() + w - 1) / w
	lastStart := window.Offset + int64((count-1)*w)
	width := LabelWidth(lastStart, cfg.Base)

	rows := make([]Row, 0, count)
	for i := 0; i < count; i++ {
		start := i * w
		end := start + w
		if end > window.Len() {
			end = window.Len()
		}
		offset := window.Offset + int64(start)
		rows = append(rows, renderRow(offset, window.Bytes[start:end], w, cfg.Base, width, modified))
	}
	return rows
}

func renderRow(offset int64, data []byte, w int, base Base, labelWidth int, modified ModifiedFunc) Row {
	cells := make([]Cell, w)
	var ascii strings.Builder
	ascii.Grow(w)

	for i := 0; i < w; i++ {
		if i >= len(data) {
			ascii.WriteByte(' ')
			continue
		}
		b := data[i]
		cells[i] = Cell{
			Value:    b,
			Present:  true,
			Modified: modified != nil && modified(offset+int64(i)),
		}
		if Printable(b) {
			ascii.WriteByte(b)
		} else {
			ascii.WriteByte(Placeholder)
		}
	}

	return Row{
		Offset: offset,
		Label:  FormatOffset(offset, base, labelWidth),
		Cells:  cells,
		ASCII:  ascii.String(),
	}
}
