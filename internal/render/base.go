package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TimelordUK/hexdd/internal/fault"
)

// Base is the radix used for the offset label of each row.
// Byte values are always shown in hex.
type Base int

const (
	Hexadecimal Base = iota
	Decimal
	Octal
)

// String returns the short config name of the base
func (b Base) String() string {
	switch b {
	case Decimal:
		return "dec"
	case Octal:
		return "oct"
	default:
		return "hex"
	}
}

// Radix returns the numeric radix
func (b Base) Radix() int {
	switch b {
	case Decimal:
		return 10
	case Octal:
		return 8
	default:
		return 16
	}
}

// MinWidth is the minimum number of digits in an offset label.
// Each width holds any 32-bit offset in that base.
func (b Base) MinWidth() int {
	switch b {
	case Decimal:
		return 10
	case Octal:
		return 11
	default:
		return 8
	}
}

// Next cycles hex -> dec -> oct -> hex
func (b Base) Next() Base {
	return (b + 1) % 3
}

// Valid reports whether b is one of the known bases
func (b Base) Valid() bool {
	return b >= Hexadecimal && b <= Octal
}

// ParseBase accepts h/hex/hexadecimal, d/dec/decimal and o/oct/octal
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "hex", "hexadecimal", "":
		return Hexadecimal, nil
	case "d", "dec", "decimal":
		return Decimal, nil
	case "o", "oct", "octal":
		return Octal, nil
	}
	return Hexadecimal, fmt.Errorf("unknown offset base %q: %w", s, fault.ErrInvalidConfig)
}

// FormatOffset renders off in base b, zero-padded to at least width digits
func FormatOffset(off int64, b Base, width int) string {
	digits := strconv.FormatInt(off, b.Radix())
	if b == Hexadecimal {
		digits = strings.ToUpper(digits)
	}
	if pad := width - len(digits); pad > 0 {
		return strings.Repeat("0", pad) + digits
	}
	return digits
}

// LabelWidth returns the label width needed so every offset up to
// maxOffset lines up in base b
func LabelWidth(maxOffset int64, b Base) int {
	w := len(strconv.FormatInt(maxOffset, b.Radix()))
	if w < b.MinWidth() {
		return b.MinWidth()
	}
	return w
}

// ParseOffset parses an offset typed by the user. Digits are read in base
// b unless a 0x, 0o or 0d prefix selects another radix.
func ParseOffset(s string, b Base) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	radix := b.Radix()
	switch {
	case strings.HasPrefix(s, "0x"):
		radix, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"):
		radix, s = 8, s[2:]
	case strings.HasPrefix(s, "0d"):
		radix, s = 10, s[2:]
	}

	off, err := strconv.ParseInt(s, radix, 64)
	if err != nil || off < 0 {
		return 0, fmt.Errorf("bad offset %q: %w", s, fault.ErrOutOfRange)
	}
	return off, nil
}
