package history

import "errors"

// ErrEmpty is returned by Undo when there is nothing to undo
var ErrEmpty = errors.New("nothing to undo")

// Record is one committed byte write
type Record struct {
	Offset   int64
	Previous byte
	New      byte
}

// Writer is the part of a byte source that Undo needs
type Writer interface {
	Write(offset int64, data []byte) error
}

// Log is an append-only list of committed writes for one session.
// Records leave only through Undo.
type Log struct {
	records []Record
}

// Append records a committed write
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Len returns the number of undoable writes
func (l *Log) Len() int {
	return len(l.records)
}

// Last returns the most recent record
func (l *Log) Last() (Record, bool) {
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[len(l.records)-1], true
}

// Records returns a copy of the log, oldest first
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Undo writes back the previous value of the most recent record. The
// record is dropped only after the write succeeds.
func (l *Log) Undo(w Writer) (Record, error) {
	r, ok := l.Last()
	if !ok {
		return Record{}, ErrEmpty
	}

	if err := w.Write(r.Offset, []byte{r.Previous}); err != nil {
		return r, err
	}

	l.records = l.records[:len(l.records)-1]
	return r, nil
}
