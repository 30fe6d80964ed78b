package view

import "sort"

// Damage lists the screen rows that must be redrawn. Full means the
// geometry or scroll position changed and every row is stale.
type Damage struct {
	Full bool
	Rows []int
}

// Empty reports whether nothing needs redrawing
func (d Damage) Empty() bool {
	return !d.Full && len(d.Rows) == 0
}

type damageSet struct {
	full bool
	rows map[int]struct{}
}

func (d *damageSet) mark(row int) {
	if d.full || row < 0 {
		return
	}
	if d.rows == nil {
		d.rows = make(map[int]struct{})
	}
	d.rows[row] = struct{}{}
}

func (d *damageSet) markAll() {
	d.full = true
	d.rows = nil
}

func (d *damageSet) take() Damage {
	out := Damage{Full: d.full}
	if !d.full {
		for row := range d.rows {
			out.Rows = append(out.Rows, row)
		}
		sort.Ints(out.Rows)
	}
	d.full = false
	d.rows = nil
	return out
}
