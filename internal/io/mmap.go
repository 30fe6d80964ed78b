package io

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// MappedFile is a read-only memory mapping of a whole file
type MappedFile struct {
	path string
	data *mmap.ReaderAt
}

// OpenMapped maps path read-only
func OpenMapped(path string) (*MappedFile, error) {
	data, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &MappedFile{path: path, data: data}, nil
}

// Len returns the mapped length in bytes
func (m *MappedFile) Len() int64 {
	return int64(m.data.Len())
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Slice copies up to n bytes starting at off out of the mapping. Near the
// end of the file the result is short; at or past it the result is empty.
func (m *MappedFile) Slice(off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 {
		return nil, fmt.Errorf("slice %d bytes at %d of %s", n, off, m.path)
	}

	avail := m.Len() - off
	if avail <= 0 || n == 0 {
		return []byte{}, nil
	}
	if int64(n) > avail {
		n = int(avail)
	}

	buf := make([]byte, n)
	if _, err := m.data.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close unmaps the file
func (m *MappedFile) Close() error {
	return m.data.Close()
}
