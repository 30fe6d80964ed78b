package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TimelordUK/hexdd/internal/fault"
)

// FileSource provides random read/write access to a single file.
// Only the requested range is ever read; the file is not loaded whole.
type FileSource struct {
	file     *os.File
	path     string
	size     int64
	writable bool

	// load-time value of every byte written since open
	original map[int64]byte
}

// NewFileSource opens path for reading and writing, falling back to
// read-only access when the file is not writable
func NewFileSource(path string) (*FileSource, error) {
	info, err := statFile(path)
	if err != nil {
		return nil, err
	}

	writable := true
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrPermission) {
		writable = false
		file, err = os.Open(path)
	}
	if err != nil {
		return nil, classifyOpenErr(path, err)
	}

	return &FileSource{
		file:     file,
		path:     path,
		size:     info.Size(),
		writable: writable,
		original: make(map[int64]byte),
	}, nil
}

// Read returns up to length bytes at offset
func (s *FileSource) Read(offset int64, length int) (Window, error) {
	if err := checkRead(offset, length, s.size); err != nil {
		return Window{}, err
	}

	end := clampEnd(offset, length, s.size)
	buf := make([]byte, end-offset)
	if len(buf) == 0 {
		return Window{Offset: offset, Bytes: buf}, nil
	}

	n, err := s.file.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return Window{}, fmt.Errorf("read %d bytes at %d: %v: %w", len(buf), offset, err, fault.ErrIOFault)
	}

	return Window{Offset: offset, Bytes: buf[:n]}, nil
}

// Write overwrites len(data) bytes at offset and syncs them to disk
func (s *FileSource) Write(offset int64, data []byte) error {
	if !s.writable {
		return fmt.Errorf("write at %d: %w", offset, fault.ErrReadOnly)
	}
	if offset < 0 || offset+int64(len(data)) > s.size {
		return fmt.Errorf("write %d bytes at %d beyond length %d: %w", len(data), offset, s.size, fault.ErrOutOfRange)
	}
	if len(data) == 0 {
		return nil
	}

	// Capture load-time values before the first overwrite
	current, err := s.Read(offset, len(data))
	if err != nil {
		return err
	}

	if _, err := s.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("write %d bytes at %d: %v: %w", len(data), offset, err, fault.ErrIOFault)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %v: %w", s.path, err, fault.ErrIOFault)
	}

	for i, b := range data {
		pos := offset + int64(i)
		orig, tracked := s.original[pos]
		if !tracked {
			orig = current.Bytes[i]
		}
		if b == orig {
			delete(s.original, pos)
		} else {
			s.original[pos] = orig
		}
	}
	return nil
}

// Length returns the file size
func (s *FileSource) Length() int64 {
	return s.size
}

// Modified reports whether the byte at offset differs from its load-time value
func (s *FileSource) Modified(offset int64) bool {
	_, ok := s.original[offset]
	return ok
}

// Dirty reports whether any byte differs from its load-time value
func (s *FileSource) Dirty() bool {
	return len(s.original) > 0
}

// Writable reports whether the file was opened for writing
func (s *FileSource) Writable() bool {
	return s.writable
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Close closes the file source
func (s *FileSource) Close() error {
	return s.file.Close()
}
