package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/source"
)

func sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestRenderRowCount(t *testing.T) {
	data := sequence(100)
	for w := 1; w <= 33; w++ {
		rows := Render(source.Window{Bytes: data}, DisplayConfig{RowWidth: w}, nil)
		want := (len(data) + w - 1) / w
		if len(rows) != want {
			t.Errorf("width %d: expected %d rows, got %d", w, want, len(rows))
		}
	}
}

func TestRenderASCIIReconstructsWindow(t *testing.T) {
	data := []byte("Hi\x00\x7f~ \x1fZ\xff")
	rows := Render(source.Window{Bytes: data}, DisplayConfig{RowWidth: 4}, nil)

	var got strings.Builder
	for _, r := range rows {
		if len(r.ASCII) != 4 {
			t.Errorf("ASCII column width %d, want 4", len(r.ASCII))
		}
		got.WriteString(r.ASCII[:r.Len()])
	}

	want := "Hi..~ .Z."
	if got.String() != want {
		t.Errorf("ASCII columns %q, want %q", got.String(), want)
	}
}

func TestThirtyFiveByteScenario(t *testing.T) {
	data := sequence(35)
	rows := Render(source.Window{Bytes: data}, DisplayConfig{Base: Hexadecimal, RowWidth: 16}, nil)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	labels := []string{"00000000", "00000010", "00000020"}
	for i, r := range rows {
		if r.Label != labels[i] {
			t.Errorf("row %d label %q, want %q", i, r.Label, labels[i])
		}
	}

	last := rows[2]
	if last.Len() != 3 {
		t.Errorf("last row holds %d bytes, want 3", last.Len())
	}
	if len(last.Cells) != 16 {
		t.Errorf("last row has %d cells, want 16", len(last.Cells))
	}
	for i := 3; i < 16; i++ {
		if last.Cells[i].Present || last.Cells[i].Hex() != "  " {
			t.Errorf("cell %d should be a blank placeholder", i)
		}
	}
	if last.ASCII != " !\""+strings.Repeat(" ", 13) {
		t.Errorf("unexpected ASCII column %q", last.ASCII)
	}

	// every line has the same geometry
	if len(rows[0].String()) != len(last.String()) {
		t.Errorf("short row misaligned: %q vs %q", rows[0].String(), last.String())
	}
	want := "00000020 20 21 22" + strings.Repeat("   ", 13) + "  " + " !\"" + strings.Repeat(" ", 13)
	if last.String() != want {
		t.Errorf("line\n got %q\nwant %q", last.String(), want)
	}
}

func TestBaseChangesOnlyLabels(t *testing.T) {
	window := source.Window{Offset: 64, Bytes: []byte("The quick brown fox jumps")}

	hex := Render(window, DisplayConfig{Base: Hexadecimal, RowWidth: 8}, nil)
	dec := Render(window, DisplayConfig{Base: Decimal, RowWidth: 8}, nil)
	oct := Render(window, DisplayConfig{Base: Octal, RowWidth: 8}, nil)

	wantLabels := map[Base][]string{
		Hexadecimal: {"00000040", "00000048", "00000050", "00000058"},
		Decimal:     {"0000000064", "0000000072", "0000000080", "0000000088"},
		Octal:       {"00000000100", "00000000110", "00000000120", "00000000130"},
	}

	for base, rows := range map[Base][]Row{Hexadecimal: hex, Decimal: dec, Octal: oct} {
		for i, r := range rows {
			if r.Label != wantLabels[base][i] {
				t.Errorf("%s row %d label %q, want %q", base, i, r.Label, wantLabels[base][i])
			}
			if !reflect.DeepEqual(r.Cells, hex[i].Cells) || r.ASCII != hex[i].ASCII {
				t.Errorf("%s row %d: byte or ASCII columns changed with base", base, i)
			}
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	window := source.Window{Offset: 3, Bytes: sequence(50)}
	cfg := DisplayConfig{Base: Octal, RowWidth: 7}
	modified := func(off int64) bool { return off%5 == 0 }

	a := Render(window, cfg, modified)
	b := Render(window, cfg, modified)
	if !reflect.DeepEqual(a, b) {
		t.Error("Render must return identical rows for identical arguments")
	}
}

func TestRenderMarksModified(t *testing.T) {
	window := source.Window{Offset: 16, Bytes: sequence(4)}
	rows := Render(window, DisplayConfig{RowWidth: 4}, func(off int64) bool { return off == 18 })

	for i, c := range rows[0].Cells {
		if c.Modified != (i == 2) {
			t.Errorf("cell %d modified=%v", i, c.Modified)
		}
	}
}

func TestRenderRejectsBadConfig(t *testing.T) {
	window := source.Window{Bytes: sequence(4)}
	if rows := Render(window, DisplayConfig{RowWidth: 0}, nil); rows != nil {
		t.Errorf("expected no rows for width 0, got %d", len(rows))
	}
	if err := (DisplayConfig{RowWidth: -1}).Validate(); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if err := (DisplayConfig{Base: Base(7), RowWidth: 1}).Validate(); !errors.Is(err, fault.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown base, got %v", err)
	}
}

func TestLabelWidthGrowsPastMinimum(t *testing.T) {
	window := source.Window{Offset: 0xFFFFFFF0, Bytes: sequence(32)}
	rows := Render(window, DisplayConfig{RowWidth: 16}, nil)

	if rows[0].Label != "0FFFFFFF0" || rows[1].Label != "100000000" {
		t.Errorf("labels not aligned: %q %q", rows[0].Label, rows[1].Label)
	}
}

func TestAutoRowWidth(t *testing.T) {
	tests := map[int]int{80: 16, 120: 26, 10: 1, 0: 1}
	for cols, want := range tests {
		if got := AutoRowWidth(cols); got != want {
			t.Errorf("AutoRowWidth(%d) = %d, want %d", cols, got, want)
		}
	}
}
