package fault

import "errors"

// Error kinds shared by every layer. Wrap them with fmt.Errorf("...: %w")
// and classify with errors.Is.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrIOFault       = errors.New("i/o fault")
	ErrOutOfRange    = errors.New("out of range")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrReadOnly      = errors.New("file is read-only")
)

// Code is a process exit code surfaced to the caller
type Code int

const (
	CodeOk Code = iota
	CodeFileNotFound
	CodeIOFault
	CodeOutOfRange
	CodeInvalidConfig
	CodeFailure
)

// ExitCode classifies err into a process exit code
func ExitCode(err error) Code {
	switch {
	case err == nil:
		return CodeOk
	case errors.Is(err, ErrFileNotFound):
		return CodeFileNotFound
	case errors.Is(err, ErrIOFault):
		return CodeIOFault
	case errors.Is(err, ErrOutOfRange):
		return CodeOutOfRange
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	default:
		return CodeFailure
	}
}
