package difftree

import (
	"fmt"
	"strconv"
)

// DefaultBits is the mode of a regular, non-executable file.
const DefaultBits uint32 = 0o100644

// FileMode describes a file's permission bits, or the absence of the file.
// The zero value is a regular file with DefaultBits.
type FileMode struct {
	absent bool
	bits   uint32
}

// Absent is the mode of a file that does not exist on that side of the diff.
var Absent = FileMode{absent: true}

// Unix returns a present file mode with the given bits.
func Unix(bits uint32) FileMode {
	return FileMode{bits: bits}
}

// IsAbsent reports whether the mode represents a missing file.
func (m FileMode) IsAbsent() bool { return m.absent }

// Bits returns the unix mode bits. Absent modes report 0.
func (m FileMode) Bits() uint32 {
	switch {
	case m.absent:
		return 0
	case m.bits == 0:
		return DefaultBits
	default:
		return m.bits
	}
}

// Equal compares modes by meaning, treating the zero value as DefaultBits.
func (m FileMode) Equal(o FileMode) bool {
	return m.absent == o.absent && m.Bits() == o.Bits()
}

// IsZero reports whether the mode is the zero value. Used by encoding/json
// omitzero.
func (m FileMode) IsZero() bool {
	return !m.absent && m.bits == 0
}

func (m FileMode) String() string {
	if m.absent {
		return "absent"
	}
	return strconv.FormatUint(uint64(m.Bits()), 8)
}

// ParseFileMode parses "absent" or an octal mode such as "100755".
func ParseFileMode(s string) (FileMode, error) {
	if s == "absent" {
		return Absent, nil
	}

	bits, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return FileMode{}, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	if bits == 0 {
		return FileMode{}, fmt.Errorf("parse file mode %q: mode bits cannot be zero", s)
	}

	return Unix(uint32(bits)), nil
}

func (m FileMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *FileMode) UnmarshalText(text []byte) error {
	parsed, err := ParseFileMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
