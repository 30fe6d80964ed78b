package view

import (
	"errors"
	"reflect"
	"testing"

	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/render"
)

type memWriter struct {
	data []byte
	err  error
}

func (m *memWriter) Write(offset int64, data []byte) error {
	if m.err != nil {
		return m.err
	}
	copy(m.data[offset:], data)
	return nil
}

func newViewport(t *testing.T, length int64, width, rows int) *Viewport {
	t.Helper()
	v, err := NewViewport(length, render.DisplayConfig{Base: render.Hexadecimal, RowWidth: width}, rows)
	if err != nil {
		t.Fatal(err)
	}
	v.TakeDamage()
	return v
}

func checkInvariant(t *testing.T, v *Viewport) {
	t.Helper()
	w := int64(v.Config().RowWidth)
	if v.Offset() < v.Top() || v.Offset() >= v.Top()+int64(v.Rows())*w {
		t.Fatalf("cursor %d outside window [%d, %d)", v.Offset(), v.Top(), v.Top()+int64(v.Rows())*w)
	}
	if v.Top()%w != 0 {
		t.Fatalf("top %d not aligned to width %d", v.Top(), w)
	}
	if v.Length() > 0 && v.Offset() >= v.Length() {
		t.Fatalf("cursor %d at or past length %d", v.Offset(), v.Length())
	}
}

func TestNewViewportRejectsBadConfig(t *testing.T) {
	if _, err := NewViewport(10, render.DisplayConfig{RowWidth: 0}, 4); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for width 0, got %v", err)
	}
	if _, err := NewViewport(10, render.DisplayConfig{RowWidth: 16}, 0); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for 0 rows, got %v", err)
	}
}

func TestInitialState(t *testing.T) {
	v, err := NewViewport(100, render.DisplayConfig{Base: render.Octal, RowWidth: 8}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if v.Offset() != 0 || v.Top() != 0 || v.State() != Viewing || v.Config().Base != render.Octal {
		t.Errorf("unexpected initial state")
	}
	if !v.TakeDamage().Full {
		t.Error("first draw must be a full redraw")
	}
}

func TestRelativeMovesClamp(t *testing.T) {
	v := newViewport(t, 100, 16, 4)

	v.MoveBytes(-5)
	if v.Offset() != 0 {
		t.Errorf("expected clamp at 0, got %d", v.Offset())
	}

	v.MoveRows(100)
	if v.Offset() != 99 {
		t.Errorf("expected clamp at 99, got %d", v.Offset())
	}
	checkInvariant(t, v)

	v.MovePages(-1)
	if v.Offset() != 99-64 {
		t.Errorf("expected page up to 35, got %d", v.Offset())
	}
	checkInvariant(t, v)

	v.GotoTop()
	if v.Offset() != 0 || v.Top() != 0 {
		t.Errorf("GotoTop: offset %d top %d", v.Offset(), v.Top())
	}
	v.GotoBottom()
	if v.Offset() != 99 {
		t.Errorf("GotoBottom: offset %d", v.Offset())
	}
	checkInvariant(t, v)
}

func TestScrollIsMinimalWholeRows(t *testing.T) {
	v := newViewport(t, 1000, 16, 4)

	// Last visible row is 48..63; moving to 64 scrolls by exactly one row
	v.JumpTo(63)
	if v.Top() != 0 {
		t.Fatalf("no scroll expected yet, top %d", v.Top())
	}
	v.MoveBytes(1)
	if v.Top() != 16 {
		t.Errorf("expected top 16 after one-row scroll, got %d", v.Top())
	}

	v.JumpTo(500)
	if v.Top() != 496-48 {
		t.Errorf("expected cursor row at bottom, top %d", v.Top())
	}

	v.JumpTo(440)
	if v.Top() != 432 {
		t.Errorf("expected scroll up to cursor row, top %d", v.Top())
	}
	checkInvariant(t, v)
}

func TestJumpOutOfRangeLeavesStateUnchanged(t *testing.T) {
	v := newViewport(t, 100, 16, 2)
	v.JumpTo(50)
	offset, top := v.Offset(), v.Top()

	for _, target := range []int64{100, 1 << 40, -1} {
		if err := v.JumpTo(target); !errors.Is(err, fault.ErrOutOfRange) {
			t.Errorf("JumpTo(%d): expected ErrOutOfRange, got %v", target, err)
		}
		if v.Offset() != offset || v.Top() != top {
			t.Errorf("JumpTo(%d) changed state to %d/%d", target, v.Offset(), v.Top())
		}
	}
}

func TestSetBaseForcesFullRedraw(t *testing.T) {
	v := newViewport(t, 100, 16, 4)

	if err := v.SetBase(render.Decimal); err != nil {
		t.Fatal(err)
	}
	if !v.TakeDamage().Full {
		t.Error("base change must redraw every row")
	}

	v.CycleBase()
	if v.Config().Base != render.Octal {
		t.Errorf("expected octal, got %s", v.Config().Base)
	}
	if err := v.SetBase(render.Base(9)); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetRowWidthKeepsCursorVisible(t *testing.T) {
	v := newViewport(t, 1000, 16, 4)
	v.JumpTo(600)
	v.TakeDamage()
	row := v.CursorRow()

	if err := v.SetRowWidth(10); err != nil {
		t.Fatal(err)
	}
	checkInvariant(t, v)
	if v.CursorRow() != row {
		t.Errorf("cursor moved from screen row %d to %d", row, v.CursorRow())
	}
	if !v.TakeDamage().Full {
		t.Error("width change must redraw every row")
	}

	if err := v.SetRowWidth(0); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for width 0, got %v", err)
	}
	if v.Config().RowWidth != 10 {
		t.Errorf("failed width change must not apply, width %d", v.Config().RowWidth)
	}
}

func TestSetRowsKeepsCursorVisible(t *testing.T) {
	v := newViewport(t, 1000, 16, 10)
	v.JumpTo(150)
	v.SetRows(2)
	checkInvariant(t, v)
	v.SetRows(0)
	if v.Rows() != 1 {
		t.Errorf("rows must stay positive, got %d", v.Rows())
	}
	checkInvariant(t, v)
}

func TestCursorMoveDamagesTwoRows(t *testing.T) {
	v := newViewport(t, 100, 16, 4)
	v.MoveRows(1)

	d := v.TakeDamage()
	if d.Full || !reflect.DeepEqual(d.Rows, []int{0, 1}) {
		t.Errorf("expected rows [0 1] damaged, got %+v", d)
	}
	if !v.TakeDamage().Empty() {
		t.Error("TakeDamage must reset")
	}
}

func TestEditCommit(t *testing.T) {
	w := &memWriter{data: make([]byte, 32)}
	v := newViewport(t, 32, 16, 2)
	v.JumpTo(10)

	if err := v.BeginEdit(w.data[10]); err != nil {
		t.Fatal(err)
	}
	if v.State() != Editing {
		t.Fatal("expected Editing")
	}
	if err := v.MoveBytes(1); !errors.Is(err, ErrEditing) {
		t.Errorf("navigation must be refused while editing, got %v", err)
	}
	if err := v.SetRowWidth(8); !errors.Is(err, ErrEditing) {
		t.Errorf("width change must be refused while editing, got %v", err)
	}

	v.InputNibble(0xF)
	if v.Pending() != "F0" {
		t.Errorf("expected pending F0, got %s", v.Pending())
	}
	v.InputNibble(0xF)
	v.TakeDamage()

	rec, written, err := v.Commit(w)
	if err != nil {
		t.Fatal(err)
	}
	if !written || rec.Offset != 10 || rec.Previous != 0x00 || rec.New != 0xFF {
		t.Errorf("unexpected record %+v written=%v", rec, written)
	}
	if w.data[10] != 0xFF {
		t.Errorf("expected 0xFF written, got %02X", w.data[10])
	}
	if v.State() != Viewing || v.Offset() != 11 {
		t.Errorf("expected Viewing at 11, got %s at %d", v.State(), v.Offset())
	}
	if d := v.TakeDamage(); d.Full || !reflect.DeepEqual(d.Rows, []int{0}) {
		t.Errorf("commit should redraw only the edited row, got %+v", d)
	}
}

func TestCommitUnchangedSkipsWrite(t *testing.T) {
	w := &memWriter{err: errors.New("must not be called")}
	v := newViewport(t, 4, 4, 1)

	v.BeginEdit(0x41)
	if _, written, err := v.Commit(w); err != nil || written {
		t.Errorf("unchanged commit: written=%v err=%v", written, err)
	}
	if v.Offset() != 1 {
		t.Errorf("commit should still advance, offset %d", v.Offset())
	}
}

func TestCommitAtLastByteStays(t *testing.T) {
	w := &memWriter{data: make([]byte, 4)}
	v := newViewport(t, 4, 4, 1)
	v.GotoBottom()

	v.BeginEdit(0)
	v.InputNibble(1)
	if _, _, err := v.Commit(w); err != nil {
		t.Fatal(err)
	}
	if v.Offset() != 3 {
		t.Errorf("cursor must not pass the last byte, offset %d", v.Offset())
	}
}

func TestCommitFailureRollsBack(t *testing.T) {
	w := &memWriter{err: fault.ErrIOFault}
	v := newViewport(t, 32, 16, 2)
	v.JumpTo(5)

	v.BeginEdit(0x00)
	v.InputNibble(0xA)
	_, written, err := v.Commit(w)
	if !errors.Is(err, fault.ErrIOFault) {
		t.Fatalf("expected ErrIOFault, got %v", err)
	}
	if written {
		t.Error("failed commit must not report a write")
	}
	if v.State() != Viewing || v.Offset() != 5 || v.Pending() != "" {
		t.Errorf("expected rollback to Viewing at 5, got %s at %d", v.State(), v.Offset())
	}
}

func TestCancelKeepsCursor(t *testing.T) {
	v := newViewport(t, 32, 16, 2)
	v.JumpTo(7)
	v.BeginEdit(0x12)
	v.InputNibble(3)
	v.Cancel()

	if v.State() != Viewing || v.Offset() != 7 {
		t.Errorf("cancel: %s at %d", v.State(), v.Offset())
	}
	if _, _, err := v.Commit(&memWriter{}); !errors.Is(err, ErrNotEditing) {
		t.Errorf("commit after cancel: expected ErrNotEditing, got %v", err)
	}
}

func TestEmptyFile(t *testing.T) {
	v := newViewport(t, 0, 16, 4)

	v.MoveBytes(10)
	if v.Offset() != 0 {
		t.Errorf("expected cursor at 0, got %d", v.Offset())
	}
	if err := v.BeginEdit(0); !errors.Is(err, fault.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange editing empty file, got %v", err)
	}
	if err := v.JumpTo(1); !errors.Is(err, fault.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestNibbleValidation(t *testing.T) {
	v := newViewport(t, 4, 4, 1)
	if err := v.InputNibble(1); !errors.Is(err, ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}
	v.BeginEdit(0)
	if err := v.InputNibble(16); !errors.Is(err, fault.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
