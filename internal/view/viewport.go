package view

import (
	"errors"
	"fmt"

	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/history"
	"github.com/TimelordUK/hexdd/internal/render"
)

// State is the cursor mode
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "EDIT"
	}
	return "VIEW"
}

// ErrEditing is returned for commands that are only valid while viewing
var ErrEditing = errors.New("finish or cancel the edit first")

// ErrNotEditing is returned for edit commands issued while viewing
var ErrNotEditing = errors.New("not editing")

// Viewport manages the cursor and the visible window over a fixed-length file.
// It knows nothing about how bytes are read or drawn; it only tracks
// positions and records which screen rows went stale.
//
// The cursor always lies inside the visible window and top is always a
// multiple of the row width.
type Viewport struct {
	length int64
	cfg    render.DisplayConfig

	// Cursor and window
	offset int64
	top    int64
	rows   int

	// Edit state
	state    State
	original byte
	pending  byte
	nibbles  int

	damage damageSet
}

// NewViewport creates a viewport in the Viewing state at offset 0
func NewViewport(length int64, cfg render.DisplayConfig, rows int) (*Viewport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rows < 1 {
		return nil, fmt.Errorf("visible rows %d: %w", rows, fault.ErrInvalidConfig)
	}

	v := &Viewport{
		length: length,
		cfg:    cfg,
		rows:   rows,
	}
	v.damage.markAll()
	return v, nil
}

// Offset returns the cursor's absolute file offset
func (v *Viewport) Offset() int64 {
	return v.offset
}

// Top returns the absolute offset of the first visible row
func (v *Viewport) Top() int64 {
	return v.top
}

// Rows returns the number of visible rows
func (v *Viewport) Rows() int {
	return v.rows
}

// Config returns the active display configuration
func (v *Viewport) Config() render.DisplayConfig {
	return v.cfg
}

// State returns the cursor mode
func (v *Viewport) State() State {
	return v.state
}

// Length returns the file length the viewport was built for
func (v *Viewport) Length() int64 {
	return v.length
}

// WindowSize returns the number of bytes the visible rows can hold
func (v *Viewport) WindowSize() int {
	return v.rows * v.cfg.RowWidth
}

// CursorRow returns the cursor's screen row
func (v *Viewport) CursorRow() int {
	return int((v.offset - v.top) / int64(v.cfg.RowWidth))
}

// CursorCol returns the cursor's column within its row
func (v *Viewport) CursorCol() int {
	return int(v.offset % int64(v.cfg.RowWidth))
}

// ScreenRow returns the screen row showing off, or -1 when it is not visible
func (v *Viewport) ScreenRow(off int64) int {
	if off < v.top || off >= v.top+int64(v.WindowSize()) {
		return -1
	}
	return int((off - v.top) / int64(v.cfg.RowWidth))
}

// PercentThrough returns how far through the file the cursor is
func (v *Viewport) PercentThrough() float64 {
	last := v.lastOffset()
	if last == 0 {
		return 100
	}
	return float64(v.offset) / float64(last) * 100
}

// lastOffset is the highest valid cursor position
func (v *Viewport) lastOffset() int64 {
	if v.length == 0 {
		return 0
	}
	return v.length - 1
}

// MoveBytes moves the cursor by n bytes, clamping at either end of the file
func (v *Viewport) MoveBytes(n int64) error {
	if v.state != Viewing {
		return ErrEditing
	}

	target := v.offset + n
	if target < 0 {
		target = 0
	}
	if last := v.lastOffset(); target > last {
		target = last
	}
	v.setCursor(target)
	return nil
}

// MoveRows moves the cursor by n rows
func (v *Viewport) MoveRows(n int) error {
	return v.MoveBytes(int64(n) * int64(v.cfg.RowWidth))
}

// MovePages moves the cursor by n screens
func (v *Viewport) MovePages(n int) error {
	return v.MoveRows(n * v.rows)
}

// GotoTop moves the cursor to the first byte
func (v *Viewport) GotoTop() error {
	return v.MoveBytes(-v.offset)
}

// GotoBottom moves the cursor to the last byte
func (v *Viewport) GotoBottom() error {
	return v.MoveBytes(v.lastOffset() - v.offset)
}

// JumpTo moves the cursor to an absolute offset. Unlike relative moves it
// does not clamp: an offset outside the file fails and changes nothing.
func (v *Viewport) JumpTo(off int64) error {
	if v.state != Viewing {
		return ErrEditing
	}
	if off < 0 || off > v.lastOffset() {
		return fmt.Errorf("jump to %d in %d-byte file: %w", off, v.length, fault.ErrOutOfRange)
	}
	v.setCursor(off)
	return nil
}

// SetBase switches the offset label base
func (v *Viewport) SetBase(b render.Base) error {
	if v.state != Viewing {
		return ErrEditing
	}
	cfg := v.cfg
	cfg.Base = b
	if err := cfg.Validate(); err != nil {
		return err
	}
	v.cfg = cfg
	v.damage.markAll()
	return nil
}

// CycleBase switches to the next offset base
func (v *Viewport) CycleBase() error {
	return v.SetBase(v.cfg.Base.Next())
}

// SetRowWidth changes the number of bytes per row. The cursor keeps its
// screen row where the file allows it.
func (v *Viewport) SetRowWidth(w int) error {
	if v.state != Viewing {
		return ErrEditing
	}
	cfg := v.cfg
	cfg.RowWidth = w
	if err := cfg.Validate(); err != nil {
		return err
	}

	screenRow := int64(v.CursorRow())
	v.cfg = cfg

	rowStart := v.offset - v.offset%int64(w)
	v.top = rowStart - screenRow*int64(w)
	if v.top < 0 {
		v.top = 0
	}
	v.ensureVisible()
	v.damage.markAll()
	return nil
}

// SetRows changes the number of visible rows, keeping the cursor in view
func (v *Viewport) SetRows(rows int) {
	if rows < 1 {
		rows = 1
	}
	if rows == v.rows {
		return
	}
	v.rows = rows
	v.ensureVisible()
	v.damage.markAll()
}

// BeginEdit enters the Editing state on the cursor byte, whose current
// value is current
func (v *Viewport) BeginEdit(current byte) error {
	if v.state != Viewing {
		return ErrEditing
	}
	if v.length == 0 {
		return fmt.Errorf("edit empty file: %w", fault.ErrOutOfRange)
	}

	v.state = Editing
	v.original = current
	v.pending = current
	v.nibbles = 0
	v.damage.mark(v.CursorRow())
	return nil
}

// InputNibble types one hex digit into the pending byte, high nibble first
func (v *Viewport) InputNibble(n byte) error {
	if v.state != Editing {
		return ErrNotEditing
	}
	if n > 0x0F {
		return fmt.Errorf("nibble %d: %w", n, fault.ErrOutOfRange)
	}

	if v.nibbles%2 == 0 {
		v.pending = n<<4 | v.pending&0x0F
	} else {
		v.pending = v.pending&0xF0 | n
	}
	v.nibbles++
	v.damage.mark(v.CursorRow())
	return nil
}

// Pending returns the in-progress byte as two hex digits, or "" while viewing
func (v *Viewport) Pending() string {
	if v.state != Editing {
		return ""
	}
	return fmt.Sprintf("%02X", v.pending)
}

// Commit writes the pending byte through w and advances the cursor. An
// unchanged byte is not written. On a write failure the edit is abandoned:
// the viewport returns to Viewing with the cursor where it was.
func (v *Viewport) Commit(w history.Writer) (history.Record, bool, error) {
	if v.state != Editing {
		return history.Record{}, false, ErrNotEditing
	}

	rec := history.Record{Offset: v.offset, Previous: v.original, New: v.pending}
	v.state = Viewing
	v.damage.mark(v.CursorRow())

	written := false
	if rec.New != rec.Previous {
		if err := w.Write(rec.Offset, []byte{rec.New}); err != nil {
			return rec, false, fmt.Errorf("commit at %d: %w", rec.Offset, err)
		}
		written = true
	}

	if v.offset < v.lastOffset() {
		v.setCursor(v.offset + 1)
	}
	return rec, written, nil
}

// Cancel abandons the pending edit, leaving the cursor unchanged
func (v *Viewport) Cancel() {
	if v.state != Editing {
		return
	}
	v.state = Viewing
	v.damage.mark(v.CursorRow())
}

// MarkOffset flags the row showing off as stale, if it is visible
func (v *Viewport) MarkOffset(off int64) {
	if row := v.ScreenRow(off); row >= 0 {
		v.damage.mark(row)
	}
}

// TakeDamage returns the rows that went stale since the last call and resets
func (v *Viewport) TakeDamage() Damage {
	return v.damage.take()
}

// setCursor moves the cursor and scrolls the minimal whole number of rows
func (v *Viewport) setCursor(off int64) {
	oldRow := v.CursorRow()
	oldTop := v.top

	v.offset = off
	v.ensureVisible()

	if v.top != oldTop {
		v.damage.markAll()
		return
	}
	v.damage.mark(oldRow)
	v.damage.mark(v.CursorRow())
}

// ensureVisible shifts top so the cursor row is on screen
func (v *Viewport) ensureVisible() {
	w := int64(v.cfg.RowWidth)
	rowStart := v.offset - v.offset%w

	if rowStart < v.top {
		v.top = rowStart
	}
	if last := v.top + int64(v.rows-1)*w; rowStart > last {
		v.top = rowStart - int64(v.rows-1)*w
	}
}
