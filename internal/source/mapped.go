package source

import (
	"fmt"

	"github.com/TimelordUK/hexdd/internal/fault"
	hexio "github.com/TimelordUK/hexdd/internal/io"
)

// MappedSource provides read-only bytes from a memory-mapped file.
// Dump mode uses it so a whole-file traversal never copies through read(2).
type MappedSource struct {
	file *hexio.MappedFile
}

// NewMappedSource maps path read-only
func NewMappedSource(path string) (*MappedSource, error) {
	if _, err := statFile(path); err != nil {
		return nil, err
	}

	file, err := hexio.OpenMapped(path)
	if err != nil {
		return nil, classifyOpenErr(path, err)
	}
	return &MappedSource{file: file}, nil
}

// Read returns up to length bytes at offset
func (s *MappedSource) Read(offset int64, length int) (Window, error) {
	if err := checkRead(offset, length, s.file.Len()); err != nil {
		return Window{}, err
	}

	data, err := s.file.Slice(offset, length)
	if err != nil {
		return Window{}, fmt.Errorf("read %d bytes at %d: %v: %w", length, offset, err, fault.ErrIOFault)
	}
	return Window{Offset: offset, Bytes: data}, nil
}

// Write always fails; the mapping is read-only
func (s *MappedSource) Write(offset int64, data []byte) error {
	return fmt.Errorf("write at %d: %w", offset, fault.ErrReadOnly)
}

// Length returns the file size
func (s *MappedSource) Length() int64 {
	return s.file.Len()
}

// Modified is always false for a read-only source
func (s *MappedSource) Modified(offset int64) bool {
	return false
}

// Dirty is always false for a read-only source
func (s *MappedSource) Dirty() bool {
	return false
}

// Writable is always false for a read-only source
func (s *MappedSource) Writable() bool {
	return false
}

// Path returns the file path
func (s *MappedSource) Path() string {
	return s.file.Path()
}

// Close unmaps the file
func (s *MappedSource) Close() error {
	return s.file.Close()
}
