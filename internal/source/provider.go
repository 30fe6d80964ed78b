package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/TimelordUK/hexdd/internal/fault"
)

// Window is a contiguous run of file bytes starting at Offset.
// Reads near end-of-file return a shorter window, never a padded one.
type Window struct {
	Offset int64
	Bytes  []byte
}

// Len returns the number of bytes in the window
func (w Window) Len() int {
	return len(w.Bytes)
}

// End returns the absolute offset one past the last byte
func (w Window) End() int64 {
	return w.Offset + int64(len(w.Bytes))
}

// ByteSource is the core abstraction for accessing file bytes.
// The renderer, dump engine and viewport only interact with this interface.
type ByteSource interface {
	// Read returns up to length bytes starting at offset
	Read(offset int64, length int) (Window, error)

	// Write overwrites bytes in place; the file never grows
	Write(offset int64, data []byte) error

	// Length returns the current total size
	Length() int64

	// Modified reports whether the byte at offset differs from its load-time value
	Modified(offset int64) bool

	// Dirty reports whether any byte differs from its load-time value
	Dirty() bool

	// Writable reports whether Write can succeed at all
	Writable() bool

	// Path returns the file path
	Path() string

	// Close releases the file handle
	Close() error
}

// checkRead validates a read request against the file size
func checkRead(offset int64, length int, size int64) error {
	if offset < 0 || length < 0 {
		return fmt.Errorf("read %d bytes at %d: %w", length, offset, fault.ErrOutOfRange)
	}
	if offset > size {
		return fmt.Errorf("read at %d beyond length %d: %w", offset, size, fault.ErrOutOfRange)
	}
	return nil
}

// clampEnd returns the exclusive end of a read, truncated at size
func clampEnd(offset int64, length int, size int64) int64 {
	end := offset + int64(length)
	if end > size {
		end = size
	}
	return end
}

// statFile checks that path names a regular file that can be opened.
// Missing paths and directories both fail with ErrFileNotFound.
func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classifyOpenErr(path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, fault.ErrFileNotFound)
	}
	return info, nil
}

// classifyOpenErr maps an open/stat failure onto the fault taxonomy
func classifyOpenErr(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%s: %w", path, fault.ErrFileNotFound)
	}
	return fmt.Errorf("%s: %v: %w", path, err, fault.ErrIOFault)
}
